//go:build integration

package postgres

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
	"nexolend/pkg/testutil/containers"
)

const flagsDDL = `
CREATE TABLE fraud_flags (
    id              UUID PRIMARY KEY,
    profile_id      UUID NOT NULL,
    fraud_type      TEXT NOT NULL,
    details         TEXT NOT NULL DEFAULT '',
    confidence      DOUBLE PRECISION NOT NULL DEFAULT 0,
    raised_by       TEXT NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL,
    resolved        BOOLEAN NOT NULL DEFAULT FALSE,
    resolved_by     TEXT NOT NULL DEFAULT '',
    resolved_at     TIMESTAMPTZ,
    resolution_note TEXT NOT NULL DEFAULT ''
);
CREATE INDEX fraud_flags_profile_idx ON fraud_flags (profile_id, created_at DESC);`

func TestPostgresFlagStore(t *testing.T) {
	pc := containers.NewPostgresContainer(t)
	pc.Exec(t, flagsDDL)

	store := New(pc.DB)
	ctx := context.Background()
	profileID := id.ProfileID(uuid.New())
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	tampering := &flags.Flag{
		ID:         id.NewFlagID(),
		ProfileID:  profileID,
		Type:       flags.DocumentTampering,
		Details:    "authenticity 0.42",
		Confidence: 0.9,
		RaisedBy:   "SYSTEM",
		CreatedAt:  base,
	}
	vpn := &flags.Flag{
		ID:        id.NewFlagID(),
		ProfileID: profileID,
		Type:      flags.ProfileVPNDetected,
		RaisedBy:  "SYSTEM",
		CreatedAt: base.Add(time.Hour),
	}
	require.NoError(t, store.Create(ctx, tampering))
	require.NoError(t, store.Create(ctx, vpn))

	t.Run("get by id", func(t *testing.T) {
		got, err := store.GetByID(ctx, tampering.ID)
		require.NoError(t, err)
		assert.Equal(t, flags.DocumentTampering, got.Type)
		assert.Equal(t, "authenticity 0.42", got.Details)
		assert.InDelta(t, 0.9, got.Confidence, 1e-9)
		assert.False(t, got.Resolved)

		_, err = store.GetByID(ctx, id.NewFlagID())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("lists newest first", func(t *testing.T) {
		list, err := store.ListByProfile(ctx, profileID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, flags.ProfileVPNDetected, list[0].Type)
		assert.Equal(t, flags.DocumentTampering, list[1].Type)
	})

	t.Run("resolve and unresolved filter", func(t *testing.T) {
		resolved, err := store.Resolve(ctx, vpn.ID, "ADMIN:reviewer-1", "corporate VPN confirmed")
		require.NoError(t, err)
		assert.True(t, resolved.Resolved)
		assert.Equal(t, "ADMIN:reviewer-1", resolved.ResolvedBy)
		assert.Equal(t, "corporate VPN confirmed", resolved.ResolutionNote)
		require.NotNil(t, resolved.ResolvedAt)

		unresolved, err := store.ListUnresolvedByProfile(ctx, profileID)
		require.NoError(t, err)
		require.Len(t, unresolved, 1)
		assert.Equal(t, flags.DocumentTampering, unresolved[0].Type)
	})

	t.Run("resolve is not repeatable", func(t *testing.T) {
		_, err := store.Resolve(ctx, vpn.ID, "ADMIN:reviewer-2", "again")
		assert.ErrorIs(t, err, sentinel.ErrAlreadyResolved)

		_, err = store.Resolve(ctx, id.NewFlagID(), "ADMIN:reviewer-2", "missing")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
