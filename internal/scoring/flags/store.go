package flags

import (
	"context"

	id "nexolend/pkg/domain"
)

// Store persists fraud flags. Implementations return sentinel errors from
// pkg/platform/sentinel; callers translate to domain errors.
type Store interface {
	// Create writes a new flag.
	Create(ctx context.Context, flag *Flag) error

	// GetByID returns a flag or sentinel.ErrNotFound.
	GetByID(ctx context.Context, flagID id.FlagID) (*Flag, error)

	// ListByProfile returns all flags for a profile, newest first.
	ListByProfile(ctx context.Context, profileID id.ProfileID) ([]*Flag, error)

	// ListUnresolvedByProfile returns only unresolved flags, newest first.
	ListUnresolvedByProfile(ctx context.Context, profileID id.ProfileID) ([]*Flag, error)

	// Resolve marks a flag resolved. Returns sentinel.ErrNotFound for an
	// unknown flag and sentinel.ErrAlreadyResolved when already resolved.
	Resolve(ctx context.Context, flagID id.FlagID, resolvedBy, note string) (*Flag, error)
}
