package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nexolend/internal/scoring/ledger"
	id "nexolend/pkg/domain"
)

// Store persists ledger events in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE score_events (
//	    id           UUID PRIMARY KEY,
//	    user_id      UUID NOT NULL,
//	    event_type   TEXT NOT NULL,
//	    description  TEXT NOT NULL,
//	    impact       INT NOT NULL,
//	    score_before INT NOT NULL,
//	    score_after  INT NOT NULL,
//	    processed_by TEXT NOT NULL,
//	    metadata     JSONB,
//	    created_at   TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX score_events_user_created_idx ON score_events (user_id, created_at DESC);
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event *ledger.Event) error {
	var metadata []byte
	if len(event.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("marshal event metadata: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO score_events
			(id, user_id, event_type, description, impact, score_before, score_after, processed_by, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.UUID(event.ID), uuid.UUID(event.UserID), string(event.Type),
		event.Description, event.Impact, event.ScoreBefore, event.ScoreAfter,
		event.ProcessedBy, metadata, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append score event: %w", err)
	}
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID id.UserID, limit, offset int) ([]*ledger.Event, error) {
	query := `
		SELECT id, user_id, event_type, description, impact, score_before, score_after, processed_by, metadata, created_at
		FROM score_events
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		OFFSET $2`
	args := []any{uuid.UUID(userID), offset}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list score events: %w", err)
	}
	defer rows.Close()

	var events []*ledger.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score events: %w", err)
	}
	return events, nil
}

func (s *Store) CountByUser(ctx context.Context, userID id.UserID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM score_events WHERE user_id = $1`,
		uuid.UUID(userID),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count score events: %w", err)
	}
	return count, nil
}

func (s *Store) SumImpactSince(ctx context.Context, userID id.UserID, since time.Time) (int, error) {
	var sum int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(impact), 0) FROM score_events WHERE user_id = $1 AND created_at >= $2`,
		uuid.UUID(userID), since,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum score event impact: %w", err)
	}
	return sum, nil
}

func scanEvent(rows *sql.Rows) (*ledger.Event, error) {
	var (
		eventID     uuid.UUID
		userID      uuid.UUID
		eventType   string
		description string
		impact      int
		scoreBefore int
		scoreAfter  int
		processedBy string
		metadata    []byte
		createdAt   time.Time
	)
	if err := rows.Scan(&eventID, &userID, &eventType, &description, &impact,
		&scoreBefore, &scoreAfter, &processedBy, &metadata, &createdAt); err != nil {
		return nil, fmt.Errorf("scan score event: %w", err)
	}

	event := &ledger.Event{
		ID:          id.EventID(eventID),
		UserID:      id.UserID(userID),
		Type:        ledger.EventType(eventType),
		Description: description,
		Impact:      impact,
		ScoreBefore: scoreBefore,
		ScoreAfter:  scoreAfter,
		ProcessedBy: processedBy,
		CreatedAt:   createdAt,
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal event metadata: %w", err)
		}
	}
	return event, nil
}
