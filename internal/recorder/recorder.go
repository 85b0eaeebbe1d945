// Package recorder commits swipe decisions to the backing stores. Writes
// are fire-and-forget with respect to the deck: the deck advances on its
// own timer and never waits for, or hears about, a write result.
package recorder

import (
	"context"
	"log/slog"
	"time"

	"github.com/driftwood-collective/driftdeck/internal/saved"
	"github.com/driftwood-collective/driftdeck/internal/viewed"
)

// Default time allowed for a decision's writes once detached from the
// caller's request lifetime.
const commitTimeout = 10 * time.Second

// Recorder persists swipe decisions.
type Recorder struct {
	viewedStore viewed.Store
	savedStore  saved.Store
	metrics     *Metrics
	logger      *slog.Logger
}

// NewRecorder creates a Recorder. metrics may be nil to disable counters.
func NewRecorder(viewedStore viewed.Store, savedStore saved.Store, metrics *Metrics, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		viewedStore: viewedStore,
		savedStore:  savedStore,
		metrics:     metrics,
		logger:      logger,
	}
}

// Commit persists one decision: the viewed-event upsert always, plus the
// saved-event relation when the action is a save. A duplicate save is
// success. Failures are logged and counted, never returned: the deck's
// responsiveness must not depend on write confirmation, so the caller has
// nothing to act on.
func (r *Recorder) Commit(ctx context.Context, userID, eventID string, action viewed.Action) {
	if userID == "" || eventID == "" || !action.Valid() {
		r.logger.Warn("dropping malformed decision",
			"user_id", userID, "event_id", eventID, "action", string(action))
		return
	}

	if action == viewed.ActionSaved {
		if err := r.savedStore.Save(ctx, userID, eventID, ""); err != nil {
			r.logger.Error("failed to save event",
				"error", err, "user_id", userID, "event_id", eventID)
			if r.metrics != nil {
				r.metrics.IncWriteFailures()
			}
		}
	}

	if err := r.viewedStore.Record(ctx, userID, eventID, action, time.Now()); err != nil {
		r.logger.Error("failed to record viewed event",
			"error", err, "user_id", userID, "event_id", eventID, "action", string(action))
		if r.metrics != nil {
			r.metrics.IncWriteFailures()
		}
	}

	if r.metrics != nil {
		r.metrics.IncDecisions(action)
	}
}

// CommitAsync runs Commit on its own goroutine with a detached context, so
// the decision outlives the request or gesture that produced it.
func (r *Recorder) CommitAsync(userID, eventID string, action viewed.Action) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
		defer cancel()
		r.Commit(ctx, userID, eventID, action)
	}()
}
