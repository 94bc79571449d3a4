package cache

import (
	"time"

	"github.com/Rexomon/Finance-tracker/internal/domain"
	"github.com/google/uuid"
)

// Lock TTLs. Creation paths do more work (existence checks plus the
// ledger write) than update/delete paths, so they hold longer. The TTL
// also bounds how long a crashed holder can block others.
const (
	LockTTLCreate = 10 * time.Second
	LockTTLMutate = 5 * time.Second
)

// Locker is the advisory mutual-exclusion contract services depend on
type Locker interface {
	// Acquire takes the lock for key, returning a release token, or
	// domain.ErrLockNotAcquired when another caller holds it.
	Acquire(key string, ttl time.Duration) (string, error)
	// Release frees the lock only if token still owns it, and reports
	// whether it did. A stale token (the lock expired and was re-acquired
	// by someone else) is a no-op, never a theft.
	Release(key, token string) (bool, error)
}

// Lock implements Locker on a Store's conditional-set primitive. Locks
// are advisory: they only exclude callers who acquire the same key, and
// a holder that crashes simply lets its lock expire.
type Lock struct {
	store Store
}

// NewLock creates a Lock over the given store
func NewLock(store Store) *Lock {
	return &Lock{store: store}
}

// Acquire takes the lock for key with the given TTL
func (l *Lock) Acquire(key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := l.store.SetNX(key, token, ttl)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrLockNotAcquired
	}
	return token, nil
}

// Release frees the lock if token still owns it
func (l *Lock) Release(key, token string) (bool, error) {
	return l.store.CompareAndDelete(key, token)
}
