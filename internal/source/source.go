// Package source provides the candidate feed for the discovery deck:
// fetching batches of not-yet-viewed events from the backing store.
package source

import (
	"context"
	"errors"
	"log/slog"

	"github.com/driftwood-collective/driftdeck/internal/event"
)

// ErrInvalidLimit is returned when a fetch is requested with limit < 1.
var ErrInvalidLimit = errors.New("limit must be >= 1")

// ErrNotFound is returned by FetchByID when no event has the given ID.
var ErrNotFound = errors.New("event not found")

// Source retrieves candidate events ordered most-recently-created first.
type Source interface {
	// FetchCandidates returns up to limit raw event records whose IDs are
	// not in exclude, ordered by created_at DESC with id ASC tie-break.
	// Each record is enriched with its location and agenda items.
	FetchCandidates(ctx context.Context, exclude []string, limit int) ([]event.RawEventRecord, error)

	// FetchByID returns the single record with the given ID, enriched the
	// same way as a candidate batch, or ErrNotFound.
	FetchByID(ctx context.Context, id string) (*event.RawEventRecord, error)
}

// SafeSource wraps a Source so fetch failures degrade to an empty result
// instead of an error. The deck cannot distinguish a failed fetch from
// exhaustion and must treat both the same way; the underlying cause is
// logged for operators.
type SafeSource struct {
	inner  Source
	logger *slog.Logger
}

// NewSafeSource creates a SafeSource around inner.
func NewSafeSource(inner Source, logger *slog.Logger) *SafeSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &SafeSource{
		inner:  inner,
		logger: logger,
	}
}

// FetchCandidates returns candidates from the wrapped source, or an empty
// slice when the fetch fails. It never returns an error.
func (s *SafeSource) FetchCandidates(ctx context.Context, exclude []string, limit int) []event.RawEventRecord {
	records, err := s.inner.FetchCandidates(ctx, exclude, limit)
	if err != nil {
		s.logger.Error("candidate fetch failed, returning empty batch",
			"error", err, "limit", limit, "excluded", len(exclude))
		return []event.RawEventRecord{}
	}
	return records
}
