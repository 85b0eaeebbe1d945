// Package saved manages the saved-event relation: events a user swiped
// right on, kept in their personal collection.
package saved

import (
	"context"
	"errors"
	"time"
)

// Common errors for saved-event operations.
var (
	// ErrEmptyUserID is returned when an operation requires a user identity
	// and none was supplied.
	ErrEmptyUserID = errors.New("user id is required")

	// ErrNotSaved is returned when an operation targets a saved event that
	// does not exist for the user.
	ErrNotSaved = errors.New("event is not saved")
)

// SavedEvent is one row in a user's saved collection.
type SavedEvent struct {
	ID      string    `json:"id"`
	UserID  string    `json:"user_id"`
	EventID string    `json:"event_id"`
	Notes   string    `json:"notes,omitempty"`
	SavedAt time.Time `json:"saved_at"`
}

// Store persists the saved-event relation.
type Store interface {
	// Save creates the relation for (user, event). Saving an event that is
	// already saved is success, not an error: the existing row is kept.
	Save(ctx context.Context, userID, eventID, notes string) error

	// Unsave removes the relation. Removing a relation that does not exist
	// returns ErrNotSaved.
	Unsave(ctx context.Context, userID, eventID string) error

	// IsSaved reports whether the user has saved eventID.
	IsSaved(ctx context.Context, userID, eventID string) (bool, error)

	// List returns the user's saved events ordered by saved_at DESC.
	List(ctx context.Context, userID string) ([]*SavedEvent, error)

	// UpdateNotes replaces the notes on a saved event.
	// Returns ErrNotSaved if the relation does not exist.
	UpdateNotes(ctx context.Context, userID, eventID, notes string) error
}
