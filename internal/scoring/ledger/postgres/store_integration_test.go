//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexolend/internal/scoring/ledger"
	id "nexolend/pkg/domain"
	"nexolend/pkg/testutil/containers"
)

const eventsDDL = `
CREATE TABLE score_events (
    id           UUID PRIMARY KEY,
    user_id      UUID NOT NULL,
    event_type   TEXT NOT NULL,
    description  TEXT NOT NULL,
    impact       INT NOT NULL,
    score_before INT NOT NULL,
    score_after  INT NOT NULL,
    processed_by TEXT NOT NULL,
    metadata     JSONB,
    created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX score_events_user_created_idx ON score_events (user_id, created_at DESC);`

func newEvent(userID id.UserID, eventType ledger.EventType, impact, before int, at time.Time) *ledger.Event {
	return &ledger.Event{
		ID:          id.NewEventID(),
		UserID:      userID,
		Type:        eventType,
		Description: eventType.Description(),
		Impact:      impact,
		ScoreBefore: before,
		ScoreAfter:  before + impact,
		ProcessedBy: "SYSTEM",
		CreatedAt:   at,
	}
}

func TestPostgresLedgerStore(t *testing.T) {
	pc := containers.NewPostgresContainer(t)
	pc.Exec(t, eventsDDL)

	store := New(pc.DB)
	ctx := context.Background()
	userID := mustUserID(t, "8c9e6f7a-1b2c-4d3e-8f90-a1b2c3d4e5f6")
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	first := newEvent(userID, ledger.EventInitialScore, 0, 0, base)
	first.ScoreAfter = 475
	first.Metadata = map[string]string{"trigger": "first_compute"}
	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, newEvent(userID, ledger.EventRepaymentOnTime, 15, 475, base.Add(time.Hour))))
	require.NoError(t, store.Append(ctx, newEvent(userID, ledger.EventRepaymentLate1To7Days, -20, 490, base.Add(2*time.Hour))))

	t.Run("lists newest first with pagination", func(t *testing.T) {
		events, err := store.ListByUser(ctx, userID, 2, 0)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, ledger.EventRepaymentLate1To7Days, events[0].Type)
		assert.Equal(t, ledger.EventRepaymentOnTime, events[1].Type)

		rest, err := store.ListByUser(ctx, userID, 2, 2)
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.Equal(t, ledger.EventInitialScore, rest[0].Type)
		assert.Equal(t, map[string]string{"trigger": "first_compute"}, rest[0].Metadata)
		assert.Equal(t, 475, rest[0].ScoreAfter)
	})

	t.Run("no limit returns everything", func(t *testing.T) {
		events, err := store.ListByUser(ctx, userID, 0, 0)
		require.NoError(t, err)
		assert.Len(t, events, 3)
	})

	t.Run("counts per user", func(t *testing.T) {
		count, err := store.CountByUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		other, err := store.CountByUser(ctx, mustUserID(t, "00000000-0000-0000-0000-000000000001"))
		require.NoError(t, err)
		assert.Zero(t, other)
	})

	t.Run("sums impact since cutoff", func(t *testing.T) {
		sum, err := store.SumImpactSince(ctx, userID, base.Add(30*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, -5, sum)

		all, err := store.SumImpactSince(ctx, userID, base.Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, -5, all)
	})
}

func mustUserID(t *testing.T, s string) id.UserID {
	t.Helper()
	userID, err := id.ParseUserID(s)
	require.NoError(t, err)
	return userID
}
