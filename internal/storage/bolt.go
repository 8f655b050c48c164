package storage

import (
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// bucketName is the single bucket all storefront keys live under.
var bucketName = []byte("storefront")

// BoltBackend is the durable Backend used in production. One bbolt file,
// one bucket, whole-value reads and writes.
type BoltBackend struct {
	db *bolt.DB
}

// OpenBolt initializes the durable store. It reads the file path from the
// STORE_PATH environment variable, falling back to a local file, so local
// dev works without any configuration.
func OpenBolt() (*BoltBackend, error) {
	path := os.Getenv("STORE_PATH")
	if path == "" {
		// FALLBACK: keep the store next to the binary for local dev.
		path = "crazycars.db"
	}
	return OpenBoltPath(path)
}

// OpenBoltPath opens (or creates) the bbolt file at the given path and makes
// sure our bucket exists. Used for BOTH the production path and test dirs.
func OpenBoltPath(path string) (*BoltBackend, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open store file %s", path)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create storefront bucket")
	}

	log.Printf("Persistence store opened at %s", path)
	return &BoltBackend{db: db}, nil
}

// Get returns the stored value for key, or (nil, nil) if the key was never set.
func (b *BoltBackend) Get(key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v != nil {
			// bbolt memory is only valid inside the transaction; copy out.
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "read key %s", key)
	}
	return out, nil
}

// Set writes the full value for key.
func (b *BoltBackend) Set(key string, value []byte) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	})
	return errors.Wrapf(err, "write key %s", key)
}

// Close releases the underlying file.
func (b *BoltBackend) Close() error {
	return b.db.Close()
}
