// Package snapshot provides score snapshot stores.
package snapshot

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"nexolend/internal/scoring"
	"nexolend/pkg/platform/sentinel"
)

type key struct {
	subject uuid.UUID
	track   scoring.Track
}

// InMemoryStore keeps snapshot history and staleness per subject and track.
type InMemoryStore struct {
	mu        sync.RWMutex
	snapshots map[key][]*scoring.Snapshot
	stale     map[key]bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		snapshots: make(map[key][]*scoring.Snapshot),
		stale:     make(map[key]bool),
	}
}

func (s *InMemoryStore) Save(_ context.Context, snapshot *scoring.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{snapshot.SubjectID, snapshot.Track}
	clone := cloneSnapshot(snapshot)
	s.snapshots[k] = append(s.snapshots[k], clone)
	s.stale[k] = false
	return nil
}

func (s *InMemoryStore) Latest(_ context.Context, subjectID uuid.UUID, track scoring.Track) (*scoring.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.snapshots[key{subjectID, track}]
	if len(history) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return cloneSnapshot(history[len(history)-1]), nil
}

// History returns all snapshots oldest first. Test helper.
func (s *InMemoryStore) History(subjectID uuid.UUID, track scoring.Track) []*scoring.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.snapshots[key{subjectID, track}]
	out := make([]*scoring.Snapshot, 0, len(history))
	for _, snap := range history {
		out = append(out, cloneSnapshot(snap))
	}
	return out
}

func (s *InMemoryStore) MarkStale(_ context.Context, subjectID uuid.UUID, track scoring.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stale[key{subjectID, track}] = true
	return nil
}

func (s *InMemoryStore) IsStale(_ context.Context, subjectID uuid.UUID, track scoring.Track) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale[key{subjectID, track}], nil
}

func cloneSnapshot(snap *scoring.Snapshot) *scoring.Snapshot {
	clone := *snap
	clone.Components = append([]scoring.Component(nil), snap.Components...)
	clone.Explanations = append([]string(nil), snap.Explanations...)
	if snap.Eligibility != nil {
		e := *snap.Eligibility
		clone.Eligibility = &e
	}
	if snap.Statistics != nil {
		st := *snap.Statistics
		clone.Statistics = &st
	}
	return &clone
}
