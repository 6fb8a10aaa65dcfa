// Package store provides storage abstractions for jinbot state.
//
// This package defines interfaces for persisting reactions and the bound
// group chat, so the bot and HTTP endpoints are decoupled from the backend.
//
// # Available Backends
//
//   - file: likes.json and group_id.txt on local disk
//   - bolt: a single bbolt database file
//   - gorm: Postgres tables managed by golang-migrate
//
// # Usage
//
//	st := file.New(memeDir, stateDir, logger)
//	defer st.Close()
//
//	id, err := st.LoadGroupID()
//	if errors.Is(err, store.ErrGroupNotSet) {
//	    // Not bound yet
//	}
package store
