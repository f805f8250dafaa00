// Package storage provides the pluggable key/value persistence the
// holdings ledger, channel registry, and payment receiver are built
// on, mirroring channeldb's "wrap a bucket-oriented engine" shape but
// generalized to more than one concrete engine (see storage/bolt.go,
// storage/sql.go).
package storage

import "errors"

// ErrNotFound is returned by Get when the key does not exist in the
// bucket.
var ErrNotFound = errors.New("storage: key not found")

// Store is a minimal bucket-oriented key/value persistence
// capability. Buckets are created implicitly on first write.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put writes value under key in bucket, overwriting any existing
	// value.
	Put(bucket, key, value []byte) error

	// Get reads the value stored under key in bucket. It returns
	// ErrNotFound if absent.
	Get(bucket, key []byte) ([]byte, error)

	// Delete removes key from bucket. Deleting an absent key is not
	// an error.
	Delete(bucket, key []byte) error

	// ForEach calls fn for every key/value pair in bucket, in
	// unspecified order. If fn returns an error, iteration stops and
	// that error is returned.
	ForEach(bucket []byte, fn func(key, value []byte) error) error

	// Close releases any resources held by the store.
	Close() error
}

// Well-known bucket names shared by holdings, registry, and receiver.
var (
	BucketHoldings     = []byte("holdings")
	BucketRegistry     = []byte("registry")
	BucketKnownHeights = []byte("receiver_known_heights")
	BucketUnspent      = []byte("receiver_unspent")
)
