// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// The tables these stores use are created by the migrations in
// db/migrations; run "jinbot db migrate" before starting the bot with
// the postgres store.
package gorm
