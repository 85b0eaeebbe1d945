package viewed

import (
	"context"
	"errors"
	"time"
)

// Common errors for viewed-event operations.
var (
	// ErrEmptyUserID is returned when an operation requires a user identity
	// and none was supplied.
	ErrEmptyUserID = errors.New("user id is required")

	// ErrInvalidAction is returned when an action is neither saved nor passed.
	ErrInvalidAction = errors.New("action must be 'saved' or 'passed'")
)

// Record is one persisted viewed-event row.
type Record struct {
	UserID   string    `json:"user_id"`
	EventID  string    `json:"event_id"`
	Action   Action    `json:"action"`
	ViewedAt time.Time `json:"viewed_at"`
}

// Stats summarizes a user's decision history.
type Stats struct {
	Total  int `json:"total"`
	Saved  int `json:"saved"`
	Passed int `json:"passed"`
}

// Store is the authoritative remote set of viewed events per user.
type Store interface {
	// LoadIDs returns every event ID the user has decided on.
	LoadIDs(ctx context.Context, userID string) ([]string, error)

	// Record upserts a viewed-event row keyed by (user, event). Repeated
	// calls for the same pair are safe: the action and timestamp are
	// overwritten, no duplicate row is created.
	Record(ctx context.Context, userID, eventID string, action Action, viewedAt time.Time) error

	// IsViewed reports whether the user has decided on eventID.
	IsViewed(ctx context.Context, userID, eventID string) (bool, error)

	// Stats returns the user's saved/passed decision counts.
	Stats(ctx context.Context, userID string) (*Stats, error)
}
