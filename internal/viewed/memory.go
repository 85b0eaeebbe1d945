package viewed

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore is an in-memory implementation of Store.
// Thread-safe via RWMutex.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]map[string]*Record // userID -> eventID -> record
}

// NewInMemoryStore creates a new in-memory viewed-event store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]map[string]*Record),
	}
}

// LoadIDs returns every event ID the user has decided on.
func (s *InMemoryStore) LoadIDs(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.records[userID]
	ids := make([]string, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	return ids, nil
}

// Record upserts a viewed-event row keyed by (user, event).
func (s *InMemoryStore) Record(ctx context.Context, userID, eventID string, action Action, viewedAt time.Time) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	if !action.Valid() {
		return ErrInvalidAction
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.records[userID]
	if !ok {
		rows = make(map[string]*Record)
		s.records[userID] = rows
	}

	rows[eventID] = &Record{
		UserID:   userID,
		EventID:  eventID,
		Action:   action,
		ViewedAt: viewedAt,
	}
	return nil
}

// IsViewed reports whether the user has decided on eventID.
func (s *InMemoryStore) IsViewed(ctx context.Context, userID, eventID string) (bool, error) {
	if userID == "" {
		return false, ErrEmptyUserID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.records[userID][eventID]
	return ok, nil
}

// Stats returns the user's saved/passed decision counts.
func (s *InMemoryStore) Stats(ctx context.Context, userID string) (*Stats, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{}
	for _, rec := range s.records[userID] {
		stats.Total++
		switch rec.Action {
		case ActionSaved:
			stats.Saved++
		case ActionPassed:
			stats.Passed++
		}
	}
	return stats, nil
}
