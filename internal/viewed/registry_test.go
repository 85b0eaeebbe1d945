package viewed

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"testing"
	"time"
)

// failingStore errors on every call, for fail-open tests.
type failingStore struct{}

func (failingStore) LoadIDs(ctx context.Context, userID string) ([]string, error) {
	return nil, errors.New("store unavailable")
}

func (failingStore) Record(ctx context.Context, userID, eventID string, action Action, viewedAt time.Time) error {
	return errors.New("store unavailable")
}

func (failingStore) IsViewed(ctx context.Context, userID, eventID string) (bool, error) {
	return false, errors.New("store unavailable")
}

func (failingStore) Stats(ctx context.Context, userID string) (*Stats, error) {
	return nil, errors.New("store unavailable")
}

// notifyingStore wraps an InMemoryStore and signals each Record call, so
// tests can observe whether the registry ever wrote remotely.
type notifyingStore struct {
	*InMemoryStore
	recorded chan string
}

func newNotifyingStore() *notifyingStore {
	return &notifyingStore{
		InMemoryStore: NewInMemoryStore(),
		recorded:      make(chan string, 8),
	}
}

func (s *notifyingStore) Record(ctx context.Context, userID, eventID string, action Action, viewedAt time.Time) error {
	err := s.InMemoryStore.Record(ctx, userID, eventID, action, viewedAt)
	s.recorded <- eventID
	return err
}

func TestRegistryLoadMergesRemoteSet(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	if err := store.Record(ctx, "user-1", "ev-1", ActionSaved, time.Now()); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, "user-1", "ev-2", ActionPassed, time.Now()); err != nil {
		t.Fatalf("Record: %v", err)
	}
	// Other users' decisions stay invisible.
	if err := store.Record(ctx, "user-2", "ev-3", ActionSaved, time.Now()); err != nil {
		t.Fatalf("Record: %v", err)
	}

	reg := NewRegistry("user-1", store, slog.Default())
	reg.MarkLocal("ev-local", ActionSaved)
	reg.Load(ctx)

	if reg.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", reg.Len())
	}
	for _, id := range []string{"ev-1", "ev-2", "ev-local"} {
		if !reg.Contains(id) {
			t.Errorf("Contains(%q) = false, want true", id)
		}
	}
	if reg.Contains("ev-3") {
		t.Error("Contains(ev-3) = true, want false")
	}
}

func TestRegistryLoadFailsOpen(t *testing.T) {
	reg := NewRegistry("user-1", failingStore{}, slog.Default())
	reg.MarkLocal("ev-1", ActionPassed)

	reg.Load(context.Background())

	// The local set survives a failed load untouched.
	if reg.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", reg.Len())
	}
	if !reg.Contains("ev-1") {
		t.Error("Contains(ev-1) = false after failed load")
	}
}

func TestRegistryMarkLocalNeverWritesRemote(t *testing.T) {
	store := newNotifyingStore()
	reg := NewRegistry("user-1", store, slog.Default())

	reg.MarkLocal("ev-1", ActionSaved)
	reg.MarkLocal("ev-2", ActionPassed)

	select {
	case <-store.recorded:
		t.Fatal("MarkLocal performed a remote write")
	case <-time.After(50 * time.Millisecond):
	}
	for _, id := range []string{"ev-1", "ev-2"} {
		if !reg.Contains(id) {
			t.Errorf("Contains(%q) = false after MarkLocal", id)
		}
	}
}

func TestRegistryExcludedIDsIsACopy(t *testing.T) {
	reg := NewRegistry("user-1", NewInMemoryStore(), slog.Default())
	reg.MarkLocal("ev-1", ActionSaved)
	reg.MarkLocal("ev-2", ActionPassed)

	ids := reg.ExcludedIDs()
	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "ev-1" || ids[1] != "ev-2" {
		t.Fatalf("ExcludedIDs() = %v, want [ev-1 ev-2]", ids)
	}

	ids[0] = "mutated"
	if !reg.Contains("ev-1") {
		t.Error("mutating the returned slice affected the registry")
	}
}

func TestActionValid(t *testing.T) {
	if !ActionSaved.Valid() || !ActionPassed.Valid() {
		t.Error("canonical actions must be valid")
	}
	if Action("liked").Valid() {
		t.Error(`Action("liked").Valid() = true, want false`)
	}
	if Action("").Valid() {
		t.Error(`Action("").Valid() = true, want false`)
	}
}
