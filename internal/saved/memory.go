package saved

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is an in-memory implementation of Store.
// Thread-safe via RWMutex.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]map[string]*SavedEvent // userID -> eventID -> row
}

// NewInMemoryStore creates a new in-memory saved-event store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]map[string]*SavedEvent),
	}
}

// Save creates the relation for (user, event). Duplicate saves keep the
// existing row untouched, matching the unique-constraint behavior of the
// Postgres store.
func (s *InMemoryStore) Save(ctx context.Context, userID, eventID, notes string) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.records[userID]
	if !ok {
		rows = make(map[string]*SavedEvent)
		s.records[userID] = rows
	}

	if _, exists := rows[eventID]; exists {
		// Already saved; duplicate saves are success.
		return nil
	}

	rows[eventID] = &SavedEvent{
		ID:      uuid.New().String(),
		UserID:  userID,
		EventID: eventID,
		Notes:   notes,
		SavedAt: time.Now(),
	}
	return nil
}

// Unsave removes the relation.
func (s *InMemoryStore) Unsave(ctx context.Context, userID, eventID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.records[userID]
	if _, ok := rows[eventID]; !ok {
		return ErrNotSaved
	}
	delete(rows, eventID)
	return nil
}

// IsSaved reports whether the user has saved eventID.
func (s *InMemoryStore) IsSaved(ctx context.Context, userID, eventID string) (bool, error) {
	if userID == "" {
		return false, ErrEmptyUserID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.records[userID][eventID]
	return ok, nil
}

// List returns the user's saved events ordered by saved_at DESC, event ID
// ASC as a tie-breaker for stable ordering.
func (s *InMemoryStore) List(ctx context.Context, userID string) ([]*SavedEvent, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]*SavedEvent, 0, len(s.records[userID]))
	for _, rec := range s.records[userID] {
		recCopy := *rec
		rows = append(rows, &recCopy)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SavedAt.After(rows[j].SavedAt) {
			return true
		}
		if rows[i].SavedAt.Before(rows[j].SavedAt) {
			return false
		}
		return rows[i].EventID < rows[j].EventID
	})
	return rows, nil
}

// UpdateNotes replaces the notes on a saved event.
func (s *InMemoryStore) UpdateNotes(ctx context.Context, userID, eventID, notes string) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID][eventID]
	if !ok {
		return ErrNotSaved
	}
	rec.Notes = notes
	return nil
}
