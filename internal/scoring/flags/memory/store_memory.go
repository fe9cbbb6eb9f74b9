package memory

import (
	"context"
	"sync"

	"nexolend/internal/scoring/flags"
	id "nexolend/pkg/domain"
	"nexolend/pkg/platform/sentinel"
	"nexolend/pkg/requestcontext"
)

// InMemoryStore keeps fraud flags indexed by flag ID and profile ID.
type InMemoryStore struct {
	mu        sync.RWMutex
	byID      map[id.FlagID]*flags.Flag
	byProfile map[id.ProfileID][]id.FlagID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:      make(map[id.FlagID]*flags.Flag),
		byProfile: make(map[id.ProfileID][]id.FlagID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, flag *flags.Flag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[flag.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *flag
	s.byID[flag.ID] = &clone
	s.byProfile[flag.ProfileID] = append(s.byProfile[flag.ProfileID], flag.ID)
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, flagID id.FlagID) (*flags.Flag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flag, ok := s.byID[flagID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *flag
	return &clone, nil
}

func (s *InMemoryStore) ListByProfile(_ context.Context, profileID id.ProfileID) ([]*flags.Flag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(profileID, false), nil
}

func (s *InMemoryStore) ListUnresolvedByProfile(_ context.Context, profileID id.ProfileID) ([]*flags.Flag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(profileID, true), nil
}

func (s *InMemoryStore) listLocked(profileID id.ProfileID, unresolvedOnly bool) []*flags.Flag {
	ids := s.byProfile[profileID]
	out := make([]*flags.Flag, 0, len(ids))
	// Newest first.
	for i := len(ids) - 1; i >= 0; i-- {
		flag := s.byID[ids[i]]
		if unresolvedOnly && flag.Resolved {
			continue
		}
		clone := *flag
		out = append(out, &clone)
	}
	return out
}

func (s *InMemoryStore) Resolve(ctx context.Context, flagID id.FlagID, resolvedBy, note string) (*flags.Flag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flag, ok := s.byID[flagID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if flag.Resolved {
		return nil, sentinel.ErrAlreadyResolved
	}

	now := requestcontext.Now(ctx)
	flag.Resolved = true
	flag.ResolvedBy = resolvedBy
	flag.ResolvedAt = &now
	flag.ResolutionNote = note

	clone := *flag
	return &clone, nil
}
