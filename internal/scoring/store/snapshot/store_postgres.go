package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"nexolend/internal/scoring"
	"nexolend/pkg/platform/sentinel"
)

// PostgresStore persists snapshot history in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE score_snapshots (
//	    id                BIGSERIAL PRIMARY KEY,
//	    subject_id        UUID NOT NULL,
//	    track             TEXT NOT NULL,
//	    total             INT NOT NULL,
//	    max_score         INT NOT NULL,
//	    components        JSONB NOT NULL,
//	    tier              TEXT NOT NULL,
//	    grade             TEXT NOT NULL,
//	    recommended_action TEXT NOT NULL,
//	    critical_override BOOLEAN NOT NULL,
//	    fraud_penalty     INT NOT NULL,
//	    unresolved_flags  INT NOT NULL,
//	    critical_flags    INT NOT NULL,
//	    explanations      JSONB NOT NULL,
//	    eligibility       JSONB,
//	    statistics        JSONB,
//	    computed_at       TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX score_snapshots_subject_idx ON score_snapshots (subject_id, track, computed_at DESC);
//
//	CREATE TABLE score_staleness (
//	    subject_id UUID NOT NULL,
//	    track      TEXT NOT NULL,
//	    stale      BOOLEAN NOT NULL,
//	    PRIMARY KEY (subject_id, track)
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, snapshot *scoring.Snapshot) error {
	components, err := json.Marshal(snapshot.Components)
	if err != nil {
		return fmt.Errorf("marshal components: %w", err)
	}
	explanations, err := json.Marshal(snapshot.Explanations)
	if err != nil {
		return fmt.Errorf("marshal explanations: %w", err)
	}
	// Absent sub-documents stay SQL NULL rather than the JSON literal "null".
	var eligibility, statistics []byte
	if snapshot.Eligibility != nil {
		if eligibility, err = json.Marshal(snapshot.Eligibility); err != nil {
			return fmt.Errorf("marshal eligibility: %w", err)
		}
	}
	if snapshot.Statistics != nil {
		if statistics, err = json.Marshal(snapshot.Statistics); err != nil {
			return fmt.Errorf("marshal statistics: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO score_snapshots
			(subject_id, track, total, max_score, components, tier, grade, recommended_action,
			 critical_override, fraud_penalty, unresolved_flags, critical_flags, explanations,
			 eligibility, statistics, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		snapshot.SubjectID, string(snapshot.Track), snapshot.Total, snapshot.Max,
		components, snapshot.Tier, snapshot.Grade, snapshot.RecommendedAction,
		snapshot.CriticalOverride, snapshot.FraudPenalty, snapshot.UnresolvedFlags,
		snapshot.CriticalFlags, explanations, eligibility, statistics, snapshot.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO score_staleness (subject_id, track, stale)
		VALUES ($1, $2, FALSE)
		ON CONFLICT (subject_id, track) DO UPDATE SET stale = FALSE`,
		snapshot.SubjectID, string(snapshot.Track),
	)
	if err != nil {
		return fmt.Errorf("clear staleness: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) Latest(ctx context.Context, subjectID uuid.UUID, track scoring.Track) (*scoring.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT subject_id, track, total, max_score, components, tier, grade, recommended_action,
		       critical_override, fraud_penalty, unresolved_flags, critical_flags, explanations,
		       eligibility, statistics, computed_at
		FROM score_snapshots
		WHERE subject_id = $1 AND track = $2
		ORDER BY computed_at DESC, id DESC
		LIMIT 1`,
		subjectID, string(track),
	)

	var (
		snap         scoring.Snapshot
		trackText    string
		components   []byte
		explanations []byte
		eligibility  []byte
		statistics   []byte
	)
	err := row.Scan(&snap.SubjectID, &trackText, &snap.Total, &snap.Max, &components,
		&snap.Tier, &snap.Grade, &snap.RecommendedAction, &snap.CriticalOverride,
		&snap.FraudPenalty, &snap.UnresolvedFlags, &snap.CriticalFlags,
		&explanations, &eligibility, &statistics, &snap.ComputedAt)
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load latest snapshot: %w", err)
	}

	snap.Track = scoring.Track(trackText)
	if err := json.Unmarshal(components, &snap.Components); err != nil {
		return nil, fmt.Errorf("unmarshal components: %w", err)
	}
	if err := json.Unmarshal(explanations, &snap.Explanations); err != nil {
		return nil, fmt.Errorf("unmarshal explanations: %w", err)
	}
	if len(eligibility) > 0 {
		snap.Eligibility = &scoring.Eligibility{}
		if err := json.Unmarshal(eligibility, snap.Eligibility); err != nil {
			return nil, fmt.Errorf("unmarshal eligibility: %w", err)
		}
	}
	if len(statistics) > 0 {
		snap.Statistics = &scoring.CreditStatistics{}
		if err := json.Unmarshal(statistics, snap.Statistics); err != nil {
			return nil, fmt.Errorf("unmarshal statistics: %w", err)
		}
	}
	return &snap, nil
}

func (s *PostgresStore) MarkStale(ctx context.Context, subjectID uuid.UUID, track scoring.Track) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO score_staleness (subject_id, track, stale)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (subject_id, track) DO UPDATE SET stale = TRUE`,
		subjectID, string(track),
	)
	if err != nil {
		return fmt.Errorf("mark stale: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsStale(ctx context.Context, subjectID uuid.UUID, track scoring.Track) (bool, error) {
	var stale bool
	err := s.db.QueryRowContext(ctx,
		`SELECT stale FROM score_staleness WHERE subject_id = $1 AND track = $2`,
		subjectID, string(track),
	).Scan(&stale)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check staleness: %w", err)
	}
	return stale, nil
}
