package memory

import (
	"context"
	"sync"
	"time"

	"nexolend/internal/scoring/ledger"
	id "nexolend/pkg/domain"
)

// InMemoryStore keeps ledger events per user, append order preserved.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.UserID][]*ledger.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.UserID][]*ledger.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.UserID][]*ledger.Event)
}

func (s *InMemoryStore) Append(_ context.Context, event *ledger.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *event
	s.events[event.UserID] = append(s.events[event.UserID], &clone)
	return nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID id.UserID, limit, offset int) ([]*ledger.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.events[userID]
	// Newest first.
	out := make([]*ledger.Event, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		clone := *stored[i]
		out = append(out, &clone)
	}

	if offset > 0 {
		if offset >= len(out) {
			return []*ledger.Event{}, nil
		}
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) CountByUser(_ context.Context, userID id.UserID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events[userID]), nil
}

func (s *InMemoryStore) SumImpactSince(_ context.Context, userID id.UserID, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := 0
	for _, e := range s.events[userID] {
		if !e.CreatedAt.Before(since) {
			sum += e.Impact
		}
	}
	return sum, nil
}
