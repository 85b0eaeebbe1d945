package viewed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// PostgresStore implements Store using PostgreSQL.
// Rows live in the viewed_events table with a unique (user_id, post_id)
// constraint; Record relies on it for idempotent upserts.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *sql.DB, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{
		db:     db,
		logger: logger,
	}
}

// LoadIDs returns every event ID the user has decided on.
func (s *PostgresStore) LoadIDs(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT post_id FROM viewed_events WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewed event ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan viewed event id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate viewed event ids: %w", err)
	}
	return ids, nil
}

// Record upserts a viewed-event row keyed by (user, event). A repeated
// decision for the same pair overwrites the action and timestamp.
func (s *PostgresStore) Record(ctx context.Context, userID, eventID string, action Action, viewedAt time.Time) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	if !action.Valid() {
		return ErrInvalidAction
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO viewed_events (user_id, post_id, action, viewed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, post_id)
		DO UPDATE SET action = EXCLUDED.action, viewed_at = EXCLUDED.viewed_at
	`, userID, eventID, string(action), viewedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert viewed event: %w", err)
	}
	return nil
}

// IsViewed reports whether the user has decided on eventID.
func (s *PostgresStore) IsViewed(ctx context.Context, userID, eventID string) (bool, error) {
	if userID == "" {
		return false, ErrEmptyUserID
	}

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM viewed_events WHERE user_id = $1 AND post_id = $2
		)
	`, userID, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check viewed event: %w", err)
	}
	return exists, nil
}

// Stats returns the user's saved/passed decision counts.
func (s *PostgresStore) Stats(ctx context.Context, userID string) (*Stats, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	stats := &Stats{}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE action = 'saved'),
			COUNT(*) FILTER (WHERE action = 'passed')
		FROM viewed_events
		WHERE user_id = $1
	`, userID).Scan(&stats.Total, &stats.Saved, &stats.Passed)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewed event stats: %w", err)
	}
	return stats, nil
}
