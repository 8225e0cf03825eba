package session

import (
	"sync"

	"github.com/jamescl604/MSFSVoiceAttackPlugin/datadef"
)

// Store holds the per-request pending counters and the latest snapshot per
// definition. It is shared by the caller and the receiver.
//
// A request stays pending until every submission for its ID has been
// answered. The snapshot always reflects the most recent answer.
type Store struct {
	mu        sync.RWMutex
	pending   map[datadef.RequestID]int
	snapshots map[datadef.DefinitionID]*datadef.Snapshot
}

func NewStore() *Store {
	return &Store{
		pending:   make(map[datadef.RequestID]int),
		snapshots: make(map[datadef.DefinitionID]*datadef.Snapshot),
	}
}

// MarkPending records one more outstanding submission for req.
func (s *Store) MarkPending(req datadef.RequestID) {
	s.mu.Lock()
	s.pending[req]++
	s.mu.Unlock()
}

// Unmark withdraws one submission for req that never reached the host. The
// snapshot is left alone.
func (s *Store) Unmark(req datadef.RequestID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle(req)
}

// Resolve settles one submission for req. A non-nil snap replaces the
// latest snapshot for its definition in the same critical section.
func (s *Store) Resolve(req datadef.RequestID, snap *datadef.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap != nil {
		s.snapshots[snap.Definition] = snap
	}
	s.settle(req)
}

// settle decrements the counter for req. Callers hold s.mu.
func (s *Store) settle(req datadef.RequestID) {
	if n := s.pending[req]; n > 1 {
		s.pending[req] = n - 1
	} else {
		delete(s.pending, req)
	}
}

// Pending reports whether req has unanswered submissions.
func (s *Store) Pending(req datadef.RequestID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending[req] > 0
}

// Snapshot returns the latest snapshot for def, or nil.
func (s *Store) Snapshot(def datadef.DefinitionID) *datadef.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshots[def]
}

// Reset clears every pending counter. Snapshots are kept.
func (s *Store) Reset() {
	s.mu.Lock()
	s.pending = make(map[datadef.RequestID]int)
	s.mu.Unlock()
}
