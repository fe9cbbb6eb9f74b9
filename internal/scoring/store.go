package scoring

import (
	"context"

	"github.com/google/uuid"
)

// SnapshotStore persists score snapshots and per-subject staleness state.
// Snapshots are immutable; Save always appends a new one. Implementations
// return sentinel errors from pkg/platform/sentinel.
type SnapshotStore interface {
	// Save appends a new snapshot and clears the subject's stale marker.
	Save(ctx context.Context, snapshot *Snapshot) error

	// Latest returns the most recent snapshot for a subject and track, or
	// sentinel.ErrNotFound when the subject has never been scored.
	Latest(ctx context.Context, subjectID uuid.UUID, track Track) (*Snapshot, error)

	// MarkStale records that a qualifying event invalidated the subject's
	// cached snapshot.
	MarkStale(ctx context.Context, subjectID uuid.UUID, track Track) error

	// IsStale reports whether the subject's latest snapshot has been
	// invalidated. A never-scored subject is not stale, it is unscored.
	IsStale(ctx context.Context, subjectID uuid.UUID, track Track) (bool, error)
}
