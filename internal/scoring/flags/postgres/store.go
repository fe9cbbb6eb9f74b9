package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nexolend/internal/scoring/flags"
	id "nexolend/pkg/domain"
	"nexolend/pkg/platform/sentinel"
	"nexolend/pkg/requestcontext"
)

// Store persists fraud flags in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE fraud_flags (
//	    id              UUID PRIMARY KEY,
//	    profile_id      UUID NOT NULL,
//	    fraud_type      TEXT NOT NULL,
//	    details         TEXT NOT NULL DEFAULT '',
//	    confidence      DOUBLE PRECISION NOT NULL DEFAULT 0,
//	    raised_by       TEXT NOT NULL,
//	    created_at      TIMESTAMPTZ NOT NULL,
//	    resolved        BOOLEAN NOT NULL DEFAULT FALSE,
//	    resolved_by     TEXT NOT NULL DEFAULT '',
//	    resolved_at     TIMESTAMPTZ,
//	    resolution_note TEXT NOT NULL DEFAULT ''
//	);
//	CREATE INDEX fraud_flags_profile_idx ON fraud_flags (profile_id, created_at DESC);
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, flag *flags.Flag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fraud_flags
			(id, profile_id, fraud_type, details, confidence, raised_by, created_at, resolved, resolved_by, resolved_at, resolution_note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.UUID(flag.ID), uuid.UUID(flag.ProfileID), string(flag.Type),
		flag.Details, flag.Confidence, flag.RaisedBy, flag.CreatedAt,
		flag.Resolved, flag.ResolvedBy, flag.ResolvedAt, flag.ResolutionNote,
	)
	if err != nil {
		return fmt.Errorf("create fraud flag: %w", err)
	}
	return nil
}

const selectColumns = `id, profile_id, fraud_type, details, confidence, raised_by, created_at, resolved, resolved_by, resolved_at, resolution_note`

func (s *Store) GetByID(ctx context.Context, flagID id.FlagID) (*flags.Flag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM fraud_flags WHERE id = $1`,
		uuid.UUID(flagID),
	)
	flag, err := scanFlag(row)
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get fraud flag: %w", err)
	}
	return flag, nil
}

func (s *Store) ListByProfile(ctx context.Context, profileID id.ProfileID) ([]*flags.Flag, error) {
	return s.list(ctx, profileID, false)
}

func (s *Store) ListUnresolvedByProfile(ctx context.Context, profileID id.ProfileID) ([]*flags.Flag, error) {
	return s.list(ctx, profileID, true)
}

func (s *Store) list(ctx context.Context, profileID id.ProfileID, unresolvedOnly bool) ([]*flags.Flag, error) {
	query := `SELECT ` + selectColumns + ` FROM fraud_flags WHERE profile_id = $1`
	if unresolvedOnly {
		query += ` AND NOT resolved`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(profileID))
	if err != nil {
		return nil, fmt.Errorf("list fraud flags: %w", err)
	}
	defer rows.Close()

	var out []*flags.Flag
	for rows.Next() {
		flag, err := scanFlag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fraud flag: %w", err)
		}
		out = append(out, flag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fraud flags: %w", err)
	}
	return out, nil
}

func (s *Store) Resolve(ctx context.Context, flagID id.FlagID, resolvedBy, note string) (*flags.Flag, error) {
	now := requestcontext.Now(ctx)

	result, err := s.db.ExecContext(ctx, `
		UPDATE fraud_flags
		SET resolved = TRUE, resolved_by = $2, resolved_at = $3, resolution_note = $4
		WHERE id = $1 AND NOT resolved`,
		uuid.UUID(flagID), resolvedBy, now, note,
	)
	if err != nil {
		return nil, fmt.Errorf("resolve fraud flag: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("resolve fraud flag: %w", err)
	}
	if affected == 0 {
		// Either missing or already resolved; distinguish for the caller.
		existing, getErr := s.GetByID(ctx, flagID)
		if getErr != nil {
			return nil, getErr
		}
		if existing.Resolved {
			return nil, sentinel.ErrAlreadyResolved
		}
		return nil, sentinel.ErrNotFound
	}

	return s.GetByID(ctx, flagID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlag(row rowScanner) (*flags.Flag, error) {
	var (
		flagID     uuid.UUID
		profileID  uuid.UUID
		fraudType  string
		details    string
		confidence float64
		raisedBy   string
		createdAt  time.Time
		resolved   bool
		resolvedBy string
		resolvedAt sql.NullTime
		note       string
	)
	if err := row.Scan(&flagID, &profileID, &fraudType, &details, &confidence,
		&raisedBy, &createdAt, &resolved, &resolvedBy, &resolvedAt, &note); err != nil {
		return nil, err
	}

	flag := &flags.Flag{
		ID:             id.FlagID(flagID),
		ProfileID:      id.ProfileID(profileID),
		Type:           flags.FraudType(fraudType),
		Details:        details,
		Confidence:     confidence,
		RaisedBy:       raisedBy,
		CreatedAt:      createdAt,
		Resolved:       resolved,
		ResolvedBy:     resolvedBy,
		ResolutionNote: note,
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		flag.ResolvedAt = &t
	}
	return flag, nil
}
