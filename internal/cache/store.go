// Package cache provides the shared key-value store backing cached
// read results, the refresh-token mirror, and the advisory locks that
// serialize conflicting mutations.
package cache

import "time"

// Store is the key-value surface the rest of the application depends
// on. It is injected rather than reached for as a process-wide
// singleton so tests can substitute an in-memory implementation.
type Store interface {
	// Get returns the value for key and whether it exists
	Get(key string) (string, bool, error)
	// Set stores value under key with the given TTL; ttl <= 0 means no expiry
	Set(key, value string, ttl time.Duration) error
	// Delete removes the given keys; missing keys are not an error
	Delete(keys ...string) error
	// DeletePattern removes every key matching a glob pattern
	DeletePattern(pattern string) error
	// SetNX stores value under key only if the key does not exist,
	// returning whether the write happened
	SetNX(key, value string, ttl time.Duration) (bool, error)
	// CompareAndDelete removes key only if its current value equals
	// value, returning whether it was removed. The comparison and the
	// delete are a single atomic step.
	CompareAndDelete(key, value string) (bool, error)
}

// ListTTL is how long cached listings and summaries live
const ListTTL = 30 * time.Minute
