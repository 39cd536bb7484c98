package engine

import (
	"strings"
	"sync"
)

// seenTracker enforces at-most-once delivery of completed payments. It
// tracks both the backend payment id and the payment hash so a payment
// cannot slip through twice under different identifiers.
type seenTracker struct {
	mu     sync.Mutex
	byID   map[string]struct{}
	byHash map[string]struct{}
}

func newSeenTracker() *seenTracker {
	return &seenTracker{
		byID:   make(map[string]struct{}),
		byHash: make(map[string]struct{}),
	}
}

// tryMarkSeen checks both sets and inserts into both as one atomic
// decision. Exactly one caller observes true for a given (id, hash)
// pair, even when the poller and a manual injection race.
func (s *seenTracker) tryMarkSeen(id, paymentHash string) bool {
	paymentHash = strings.ToLower(paymentHash)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; ok {
		return false
	}
	if paymentHash != "" {
		if _, ok := s.byHash[paymentHash]; ok {
			return false
		}
	}

	s.byID[id] = struct{}{}
	if paymentHash != "" {
		s.byHash[paymentHash] = struct{}{}
	}

	return true
}
