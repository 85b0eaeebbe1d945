package saved

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
)

// Postgres unique_violation error code, raised when (user_id, post_id)
// already exists in saved_events.
const uniqueViolation = "23505"

// PostgresStore implements Store using PostgreSQL.
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

// Save creates the relation for (user, event). A unique-constraint
// violation means the event was already saved and is treated as success.
func (s *PostgresStore) Save(ctx context.Context, userID, eventID, notes string) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	var notesVal interface{}
	if notes != "" {
		notesVal = notes
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saved_events (user_id, post_id, notes)
		VALUES ($1, $2, $3)
	`, userID, eventID, notesVal)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			s.logger.Debug("event already saved", "user_id", userID, "event_id", eventID)
			return nil
		}
		return fmt.Errorf("failed to save event: %w", err)
	}
	return nil
}

// Unsave removes the relation.
func (s *PostgresStore) Unsave(ctx context.Context, userID, eventID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM saved_events WHERE user_id = $1 AND post_id = $2
	`, userID, eventID)
	if err != nil {
		return fmt.Errorf("failed to unsave event: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read unsave result: %w", err)
	}
	if affected == 0 {
		return ErrNotSaved
	}
	return nil
}

// IsSaved reports whether the user has saved eventID.
func (s *PostgresStore) IsSaved(ctx context.Context, userID, eventID string) (bool, error) {
	if userID == "" {
		return false, ErrEmptyUserID
	}

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM saved_events WHERE user_id = $1 AND post_id = $2
		)
	`, userID, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check saved event: %w", err)
	}
	return exists, nil
}

// List returns the user's saved events ordered by saved_at DESC, post ID
// ASC as a tie-breaker for stable ordering.
func (s *PostgresStore) List(ctx context.Context, userID string) ([]*SavedEvent, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, post_id, COALESCE(notes, ''), saved_at
		FROM saved_events
		WHERE user_id = $1
		ORDER BY saved_at DESC, post_id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved events: %w", err)
	}
	defer rows.Close()

	var results []*SavedEvent
	for rows.Next() {
		rec := &SavedEvent{}
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.EventID, &rec.Notes, &rec.SavedAt); err != nil {
			return nil, fmt.Errorf("failed to scan saved event: %w", err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate saved events: %w", err)
	}
	return results, nil
}

// UpdateNotes replaces the notes on a saved event.
func (s *PostgresStore) UpdateNotes(ctx context.Context, userID, eventID, notes string) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE saved_events SET notes = $3 WHERE user_id = $1 AND post_id = $2
	`, userID, eventID, notes)
	if err != nil {
		return fmt.Errorf("failed to update saved event notes: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return ErrNotSaved
	}
	return nil
}
