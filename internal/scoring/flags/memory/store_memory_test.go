package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexolend/internal/scoring/flags"
	id "nexolend/pkg/domain"
	"nexolend/pkg/platform/sentinel"
	"nexolend/pkg/requestcontext"
)

func newFlag(profileID id.ProfileID, fraudType flags.FraudType) *flags.Flag {
	return &flags.Flag{
		ID:        id.NewFlagID(),
		ProfileID: profileID,
		Type:      fraudType,
		RaisedBy:  "SYSTEM",
		CreatedAt: time.Now(),
	}
}

func TestInMemoryStore_CreateAndGet(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	profileID := id.ProfileID(uuid.New())

	flag := newFlag(profileID, flags.FaceMismatch)
	require.NoError(t, store.Create(ctx, flag))

	got, err := store.GetByID(ctx, flag.ID)
	require.NoError(t, err)
	assert.Equal(t, flags.FaceMismatch, got.Type)
	assert.False(t, got.Resolved)
}

func TestInMemoryStore_CreateDuplicateID(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	flag := newFlag(id.ProfileID(uuid.New()), flags.DocumentBlurry)

	require.NoError(t, store.Create(ctx, flag))
	assert.ErrorIs(t, store.Create(ctx, flag), sentinel.ErrConflict)
}

func TestInMemoryStore_GetMissing(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.GetByID(context.Background(), id.NewFlagID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStore_ListUnresolvedExcludesResolved(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	profileID := id.ProfileID(uuid.New())

	first := newFlag(profileID, flags.DocumentBlurry)
	second := newFlag(profileID, flags.FaceMismatch)
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Create(ctx, second))

	_, err := store.Resolve(ctx, first.ID, "ADMIN:reviewer", "manual review passed")
	require.NoError(t, err)

	all, err := store.ListByProfile(ctx, profileID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	unresolved, err := store.ListUnresolvedByProfile(ctx, profileID)
	require.NoError(t, err)
	require.Len(t, unresolved, 1)
	assert.Equal(t, flags.FaceMismatch, unresolved[0].Type)
}

func TestInMemoryStore_ResolveUsesRequestTime(t *testing.T) {
	store := NewInMemoryStore()
	profileID := id.ProfileID(uuid.New())
	flag := newFlag(profileID, flags.DocumentExpired)
	require.NoError(t, store.Create(context.Background(), flag))

	frozen := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), frozen)

	resolved, err := store.Resolve(ctx, flag.ID, "ADMIN:reviewer", "document renewed")
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, frozen, *resolved.ResolvedAt)
	assert.Equal(t, "ADMIN:reviewer", resolved.ResolvedBy)
}

func TestInMemoryStore_ResolveTwice(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	flag := newFlag(id.ProfileID(uuid.New()), flags.DocumentExpired)
	require.NoError(t, store.Create(ctx, flag))

	_, err := store.Resolve(ctx, flag.ID, "ADMIN:a", "")
	require.NoError(t, err)

	_, err = store.Resolve(ctx, flag.ID, "ADMIN:b", "")
	assert.ErrorIs(t, err, sentinel.ErrAlreadyResolved)
}
