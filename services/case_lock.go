package services

import (
	"log"
	"sync"
)

// Numbering assignment and snapshot generation are read-compute-write
// sequences over a case's document set. Two concurrent writers for the same
// case could otherwise assign the same number or skip a group. Each such
// sequence runs under the case's exclusive lock; external calls (extraction,
// PDF rendering of bytes) must happen outside the lock.

// MaxConflictRetries bounds the retry loop for conflicted numbering transactions
const MaxConflictRetries = 3

var (
	caseLocksMu sync.Mutex
	caseLocks   = make(map[string]*sync.Mutex)
)

func lockForCase(caseID string) *sync.Mutex {
	caseLocksMu.Lock()
	defer caseLocksMu.Unlock()

	if mu, ok := caseLocks[caseID]; ok {
		return mu
	}
	mu := &sync.Mutex{}
	caseLocks[caseID] = mu
	return mu
}

// WithCaseLock runs fn while holding the exclusive lock for caseID
func WithCaseLock(caseID string, fn func() error) error {
	mu := lockForCase(caseID)
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

// RetryOnConflict runs fn under the case lock, retrying the whole sequence
// up to MaxConflictRetries times when it reports a ConflictError. Any other
// error is surfaced immediately.
func RetryOnConflict(caseID string, fn func() error) error {
	var err error
	for attempt := 0; attempt < MaxConflictRetries; attempt++ {
		err = WithCaseLock(caseID, fn)
		if err == nil || !IsConflict(err) {
			return err
		}
		log.Printf("Conflict on case %s (attempt %d/%d): %v", caseID, attempt+1, MaxConflictRetries, err)
	}
	return err
}
