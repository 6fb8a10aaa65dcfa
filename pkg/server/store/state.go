package store

// StateStore is the full set of persistence operations the bot needs.
// Each backend (file, bolt, gorm) implements all of it.
type StateStore interface {
	LikesStore
	GroupStore
	HealthStore

	// Close releases the backend's resources
	Close() error
}
