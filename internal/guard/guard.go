// Package guard provides a per-subject try-lock. Multi-step mutations that
// read, decide, and then write (a bet: check balance, reserve the stake,
// resolve the outcome) hold the subject's lock for the whole sequence so two
// interleaved commands cannot both pass the same precondition.
//
// The lock is in-memory and process-local: the log itself needs no locking,
// only the read-decide-write sequences above it do.
package guard

import "sync"

// Locks is a keyed try-lock over subject IDs.
type Locks struct {
	mu   sync.Mutex
	held map[int64]bool
}

// New returns an empty lock set.
func New() *Locks {
	return &Locks{held: make(map[int64]bool)}
}

// TryAcquire takes the subject's lock if it is free. It never blocks; a
// false return means another sequence for this subject is in flight and the
// caller should report "try again" rather than wait.
func (l *Locks) TryAcquire(subject int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[subject] {
		return false
	}
	l.held[subject] = true
	return true
}

// Release frees the subject's lock. Releasing a lock that is not held is a
// no-op.
func (l *Locks) Release(subject int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, subject)
}
