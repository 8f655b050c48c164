package storage

// Backend is the durable key-value contract the reference stores persist
// through. It mirrors the browser localStorage shape the frontend relied on:
// Get returns (nil, nil) for a missing key, and no transactional guarantees
// are assumed beyond a single Set being written fully.
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}
