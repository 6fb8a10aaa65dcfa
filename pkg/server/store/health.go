package store

// HealthStore provides health check operations
type HealthStore interface {
	// CheckConnectivity verifies the backend is reachable
	CheckConnectivity() error
}
