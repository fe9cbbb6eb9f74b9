package ledger

import (
	"context"
	"time"

	id "nexolend/pkg/domain"
)

// Store persists ledger events. Implementations return sentinel errors from
// pkg/platform/sentinel; callers translate to domain errors.
type Store interface {
	// Append writes one event. Events are immutable once written.
	Append(ctx context.Context, event *Event) error

	// ListByUser returns events for a user, newest first, with offset
	// pagination. A limit <= 0 means no limit.
	ListByUser(ctx context.Context, userID id.UserID, limit, offset int) ([]*Event, error)

	// CountByUser returns the total number of events for a user.
	CountByUser(ctx context.Context, userID id.UserID) (int, error)

	// SumImpactSince returns the sum of impact hints for a user's events at
	// or after the cutoff. Used for display-only trend summaries.
	SumImpactSince(ctx context.Context, userID id.UserID, since time.Time) (int, error)
}
