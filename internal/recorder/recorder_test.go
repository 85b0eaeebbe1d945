package recorder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/driftwood-collective/driftdeck/internal/saved"
	"github.com/driftwood-collective/driftdeck/internal/viewed"
)

// callLog captures call order across both stores so tests can assert the
// save relation lands before the viewed upsert.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

type loggingViewedStore struct {
	*viewed.InMemoryStore
	log *callLog
	err error
}

func (s *loggingViewedStore) Record(ctx context.Context, userID, eventID string, action viewed.Action, viewedAt time.Time) error {
	s.log.add("viewed.Record " + eventID)
	if s.err != nil {
		return s.err
	}
	return s.InMemoryStore.Record(ctx, userID, eventID, action, viewedAt)
}

type loggingSavedStore struct {
	*saved.InMemoryStore
	log *callLog
	err error
}

func (s *loggingSavedStore) Save(ctx context.Context, userID, eventID, notes string) error {
	s.log.add("saved.Save " + eventID)
	if s.err != nil {
		return s.err
	}
	return s.InMemoryStore.Save(ctx, userID, eventID, notes)
}

func newTestStores() (*loggingViewedStore, *loggingSavedStore, *callLog) {
	log := &callLog{}
	vs := &loggingViewedStore{InMemoryStore: viewed.NewInMemoryStore(), log: log}
	ss := &loggingSavedStore{InMemoryStore: saved.NewInMemoryStore(), log: log}
	return vs, ss, log
}

func TestCommitSaveWritesBothStores(t *testing.T) {
	ctx := context.Background()
	vs, ss, log := newTestStores()
	rec := NewRecorder(vs, ss, nil, slog.Default())

	rec.Commit(ctx, "user-1", "ev-1", viewed.ActionSaved)

	calls := log.snapshot()
	want := []string{"saved.Save ev-1", "viewed.Record ev-1"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", calls, want)
		}
	}

	ok, err := ss.IsSaved(ctx, "user-1", "ev-1")
	if err != nil {
		t.Fatalf("IsSaved: %v", err)
	}
	if !ok {
		t.Error("save relation missing after commit")
	}
	ok, err = vs.IsViewed(ctx, "user-1", "ev-1")
	if err != nil {
		t.Fatalf("IsViewed: %v", err)
	}
	if !ok {
		t.Error("viewed record missing after commit")
	}
}

func TestCommitPassSkipsSavedStore(t *testing.T) {
	ctx := context.Background()
	vs, ss, log := newTestStores()
	rec := NewRecorder(vs, ss, nil, slog.Default())

	rec.Commit(ctx, "user-1", "ev-1", viewed.ActionPassed)

	calls := log.snapshot()
	if len(calls) != 1 || calls[0] != "viewed.Record ev-1" {
		t.Fatalf("calls = %v, want only the viewed record", calls)
	}

	ok, err := ss.IsSaved(ctx, "user-1", "ev-1")
	if err != nil {
		t.Fatalf("IsSaved: %v", err)
	}
	if ok {
		t.Error("pass created a save relation")
	}
}

func TestCommitSaveFailureStillRecordsViewed(t *testing.T) {
	ctx := context.Background()
	vs, ss, log := newTestStores()
	ss.err = errors.New("db down")
	rec := NewRecorder(vs, ss, nil, slog.Default())

	rec.Commit(ctx, "user-1", "ev-1", viewed.ActionSaved)

	// The viewed upsert proceeds even when the save relation failed, so
	// the event never re-enters the deck.
	calls := log.snapshot()
	want := []string{"saved.Save ev-1", "viewed.Record ev-1"}
	if len(calls) != len(want) || calls[1] != want[1] {
		t.Fatalf("calls = %v, want %v", calls, want)
	}

	ok, err := vs.IsViewed(ctx, "user-1", "ev-1")
	if err != nil {
		t.Fatalf("IsViewed: %v", err)
	}
	if !ok {
		t.Error("viewed record missing after failed save")
	}
}

func TestCommitDropsMalformedDecisions(t *testing.T) {
	ctx := context.Background()
	vs, ss, log := newTestStores()
	rec := NewRecorder(vs, ss, nil, slog.Default())

	rec.Commit(ctx, "", "ev-1", viewed.ActionSaved)
	rec.Commit(ctx, "user-1", "", viewed.ActionSaved)
	rec.Commit(ctx, "user-1", "ev-1", viewed.Action("liked"))

	if calls := log.snapshot(); len(calls) != 0 {
		t.Errorf("malformed decisions reached the stores: %v", calls)
	}
}

func TestCommitAsyncDetachesFromCaller(t *testing.T) {
	vs, ss, _ := newTestStores()
	rec := NewRecorder(vs, ss, nil, slog.Default())

	rec.CommitAsync("user-1", "ev-1", viewed.ActionSaved)

	deadline := time.After(2 * time.Second)
	for {
		ok, err := vs.IsViewed(context.Background(), "user-1", "ev-1")
		if err != nil {
			t.Fatalf("IsViewed: %v", err)
		}
		if ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("async commit never landed")
		case <-time.After(5 * time.Millisecond):
		}
	}

	ok, err := ss.IsSaved(context.Background(), "user-1", "ev-1")
	if err != nil {
		t.Fatalf("IsSaved: %v", err)
	}
	if !ok {
		t.Error("save relation missing after async commit")
	}
}
