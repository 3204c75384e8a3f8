package bridge

import (
	"sync"
	"time"
)

// frameStore holds the most recent frame for the control loop.
type frameStore struct {
	mu   sync.RWMutex
	last Frame
	at   time.Time
	seq  uint64
	bad  uint64
}

// Update stores the latest frame and advances the sequence counter.
func (s *frameStore) Update(f Frame, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = f
	s.at = at
	s.seq++
}

// Reject counts a malformed frame.
func (s *frameStore) Reject() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bad++
}

// Snapshot returns the most recent frame, when it arrived and its sequence
// number. seq is zero until the first frame.
func (s *frameStore) Snapshot() (Frame, time.Time, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.at, s.seq
}

// Counts returns the number of accepted and rejected frames.
func (s *frameStore) Counts() (good, bad uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq, s.bad
}
