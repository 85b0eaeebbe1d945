package source

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/driftwood-collective/driftdeck/internal/event"
)

// timestampedRecord pairs a raw record with its creation time for ordering.
type timestampedRecord struct {
	record    event.RawEventRecord
	createdAt time.Time
}

// InMemorySource is an in-memory implementation of Source, mirroring the
// ordering and exclusion semantics of the Postgres source.
// Thread-safe via RWMutex.
type InMemorySource struct {
	mu      sync.RWMutex
	records map[string]timestampedRecord
}

// NewInMemorySource creates a new in-memory candidate source.
func NewInMemorySource() *InMemorySource {
	return &InMemorySource{
		records: make(map[string]timestampedRecord),
	}
}

// Add registers a record with the given creation time.
func (s *InMemorySource) Add(rec event.RawEventRecord, createdAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = timestampedRecord{record: rec, createdAt: createdAt}
}

// FetchCandidates returns up to limit records not in exclude, ordered by
// created_at DESC with id ASC tie-break.
func (s *InMemorySource) FetchCandidates(ctx context.Context, exclude []string, limit int) ([]event.RawEventRecord, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	excluded := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []timestampedRecord
	for id, rec := range s.records {
		if _, skip := excluded[id]; skip {
			continue
		}
		candidates = append(candidates, rec)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].createdAt.After(candidates[j].createdAt) {
			return true
		}
		if candidates[i].createdAt.Before(candidates[j].createdAt) {
			return false
		}
		return candidates[i].record.ID < candidates[j].record.ID
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	results := make([]event.RawEventRecord, len(candidates))
	for i, c := range candidates {
		results[i] = c.record
	}
	return results, nil
}

// FetchByID returns the record with the given ID, or ErrNotFound.
func (s *InMemorySource) FetchByID(ctx context.Context, id string) (*event.RawEventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tr, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	rec := tr.record
	return &rec, nil
}
