//go:build integration

package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexolend/internal/scoring"
	"nexolend/pkg/platform/sentinel"
	"nexolend/pkg/testutil/containers"
)

const snapshotsDDL = `
CREATE TABLE score_snapshots (
    id                BIGSERIAL PRIMARY KEY,
    subject_id        UUID NOT NULL,
    track             TEXT NOT NULL,
    total             INT NOT NULL,
    max_score         INT NOT NULL,
    components        JSONB NOT NULL,
    tier              TEXT NOT NULL,
    grade             TEXT NOT NULL,
    recommended_action TEXT NOT NULL,
    critical_override BOOLEAN NOT NULL,
    fraud_penalty     INT NOT NULL,
    unresolved_flags  INT NOT NULL,
    critical_flags    INT NOT NULL,
    explanations      JSONB NOT NULL,
    eligibility       JSONB,
    statistics        JSONB,
    computed_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX score_snapshots_subject_idx ON score_snapshots (subject_id, track, computed_at DESC);

CREATE TABLE score_staleness (
    subject_id UUID NOT NULL,
    track      TEXT NOT NULL,
    stale      BOOLEAN NOT NULL,
    PRIMARY KEY (subject_id, track)
);`

func TestPostgresSnapshotStore(t *testing.T) {
	pc := containers.NewPostgresContainer(t)
	pc.Exec(t, snapshotsDDL)

	store := NewPostgres(pc.DB)
	ctx := context.Background()
	subjectID := uuid.New()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	t.Run("unscored subject", func(t *testing.T) {
		_, err := store.Latest(ctx, subjectID, scoring.TrackCredit)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		stale, err := store.IsStale(ctx, subjectID, scoring.TrackCredit)
		require.NoError(t, err)
		assert.False(t, stale)
	})

	first := &scoring.Snapshot{
		SubjectID: subjectID,
		Track:     scoring.TrackCredit,
		Total:     475,
		Max:       scoring.MaxScore,
		Components: []scoring.Component{
			{Name: scoring.ComponentPaymentHistory, Raw: 50, Weight: 350},
			{Name: scoring.ComponentBehavior, Raw: 50, Weight: 50},
		},
		Tier:              "HIGH",
		Grade:             "C",
		RecommendedAction: "REVIEW",
		Eligibility: &scoring.Eligibility{
			Eligible:      false,
			Reason:        "KYC verification not completed",
			MaxLoanAmount: 0,
		},
		Statistics:   &scoring.CreditStatistics{OnTimePayments: 0},
		Explanations: []string{"Payment History: 50/100 (weight 350/1000)"},
		ComputedAt:   base,
	}
	require.NoError(t, store.Save(ctx, first))

	second := &scoring.Snapshot{
		SubjectID:         subjectID,
		Track:             scoring.TrackCredit,
		Total:             490,
		Max:               scoring.MaxScore,
		Components:        []scoring.Component{{Name: scoring.ComponentPaymentHistory, Raw: 100, Weight: 350}},
		Tier:              "HIGH",
		Grade:             "C",
		RecommendedAction: "REVIEW",
		Eligibility: &scoring.Eligibility{
			Eligible:        true,
			Reason:          "Limited loan eligibility",
			MaxLoanAmount:   20_000_000,
			MinInterestRate: 16,
			MaxInterestRate: 20,
		},
		Statistics:   &scoring.CreditStatistics{OnTimePayments: 1, TotalRepaid: 5_000_000},
		Explanations: []string{"Payment History: 100/100 (weight 350/1000)"},
		ComputedAt:   base.Add(time.Hour),
	}
	require.NoError(t, store.Save(ctx, second))

	t.Run("latest wins and sub-documents round-trip", func(t *testing.T) {
		got, err := store.Latest(ctx, subjectID, scoring.TrackCredit)
		require.NoError(t, err)
		assert.Equal(t, 490, got.Total)
		assert.Equal(t, second.Components, got.Components)
		require.NotNil(t, got.Eligibility)
		assert.True(t, got.Eligibility.Eligible)
		assert.Equal(t, int64(20_000_000), got.Eligibility.MaxLoanAmount)
		require.NotNil(t, got.Statistics)
		assert.Equal(t, int64(5_000_000), got.Statistics.TotalRepaid)
	})

	t.Run("tracks are independent", func(t *testing.T) {
		_, err := store.Latest(ctx, subjectID, scoring.TrackKYC)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		kyc := &scoring.Snapshot{
			SubjectID:         subjectID,
			Track:             scoring.TrackKYC,
			Total:             911,
			Max:               scoring.MaxScore,
			Components:        []scoring.Component{{Name: scoring.ComponentDocument, Raw: 950, Weight: 40}},
			Tier:              "LOW",
			Grade:             "A",
			RecommendedAction: "Auto Approve",
			Explanations:      []string{"Document score: 950/1000 (weight 40%)"},
			ComputedAt:        base,
		}
		require.NoError(t, store.Save(ctx, kyc))

		got, err := store.Latest(ctx, subjectID, scoring.TrackKYC)
		require.NoError(t, err)
		assert.Equal(t, 911, got.Total)
		// KYC snapshots carry no credit sub-documents.
		assert.Nil(t, got.Eligibility)
		assert.Nil(t, got.Statistics)
	})

	t.Run("staleness lifecycle", func(t *testing.T) {
		require.NoError(t, store.MarkStale(ctx, subjectID, scoring.TrackCredit))
		stale, err := store.IsStale(ctx, subjectID, scoring.TrackCredit)
		require.NoError(t, err)
		assert.True(t, stale)

		kycStale, err := store.IsStale(ctx, subjectID, scoring.TrackKYC)
		require.NoError(t, err)
		assert.False(t, kycStale)

		require.NoError(t, store.Save(ctx, second))
		stale, err = store.IsStale(ctx, subjectID, scoring.TrackCredit)
		require.NoError(t, err)
		assert.False(t, stale)
	})
}
