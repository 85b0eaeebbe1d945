package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/driftwood-collective/driftdeck/internal/saved"
)

func TestSavedListReturnsNewestFirst(t *testing.T) {
	store := saved.NewInMemoryStore()
	h := NewSavedHandlers(store, slog.Default())

	ctx := context.Background()
	for _, id := range []string{"ev-old", "ev-new"} {
		if err := store.Save(ctx, "user-1", id, ""); err != nil {
			t.Fatalf("Save(%s): %v", id, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	r := authedRequest(http.MethodGet, "/saved-events", "", "user-1")
	w := httptest.NewRecorder()
	h.List(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. Body: %s", w.Code, w.Body.String())
	}

	var resp SavedEventsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.SavedEvents) != 2 {
		t.Fatalf("got %d saved events, want 2", len(resp.SavedEvents))
	}
	if resp.SavedEvents[0].EventID != "ev-new" || resp.SavedEvents[1].EventID != "ev-old" {
		t.Errorf("order = [%s %s], want [ev-new ev-old]",
			resp.SavedEvents[0].EventID, resp.SavedEvents[1].EventID)
	}
}

func TestSavedListEmptyIsArray(t *testing.T) {
	h := NewSavedHandlers(saved.NewInMemoryStore(), slog.Default())

	r := authedRequest(http.MethodGet, "/saved-events", "", "user-1")
	w := httptest.NewRecorder()
	h.List(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	// The empty list must serialize as [], not null.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if string(raw["saved_events"]) != "[]" {
		t.Errorf("saved_events = %s, want []", raw["saved_events"])
	}
}

func TestSavedUnsave(t *testing.T) {
	store := saved.NewInMemoryStore()
	h := NewSavedHandlers(store, slog.Default())

	if err := store.Save(context.Background(), "user-1", "ev-1", ""); err != nil {
		t.Fatalf("Save: %v", err)
	}

	r := authedRequest(http.MethodDelete, "/saved-events/ev-1", "", "user-1")
	w := httptest.NewRecorder()
	h.Unsave(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204. Body: %s", w.Code, w.Body.String())
	}

	ok, err := store.IsSaved(context.Background(), "user-1", "ev-1")
	if err != nil {
		t.Fatalf("IsSaved: %v", err)
	}
	if ok {
		t.Error("event still saved after unsave")
	}
}

func TestSavedUnsaveNotFound(t *testing.T) {
	h := NewSavedHandlers(saved.NewInMemoryStore(), slog.Default())

	r := authedRequest(http.MethodDelete, "/saved-events/never-saved", "", "user-1")
	w := httptest.NewRecorder()
	h.Unsave(w, r)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if code := decodeErrorCode(t, w); code != ErrCodeNotSaved {
		t.Errorf("error code = %q, want %q", code, ErrCodeNotSaved)
	}
}

func TestSavedUpdateNotes(t *testing.T) {
	store := saved.NewInMemoryStore()
	h := NewSavedHandlers(store, slog.Default())

	if err := store.Save(context.Background(), "user-1", "ev-1", "old"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	r := authedRequest(http.MethodPatch, "/saved-events/ev-1/notes", `{"notes":"bring earplugs"}`, "user-1")
	w := httptest.NewRecorder()
	h.UpdateNotes(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204. Body: %s", w.Code, w.Body.String())
	}

	rows, err := store.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if rows[0].Notes != "bring earplugs" {
		t.Errorf("notes = %q, want updated text", rows[0].Notes)
	}
}

func TestSavedUpdateNotesNotFound(t *testing.T) {
	h := NewSavedHandlers(saved.NewInMemoryStore(), slog.Default())

	r := authedRequest(http.MethodPatch, "/saved-events/never-saved/notes", `{"notes":"x"}`, "user-1")
	w := httptest.NewRecorder()
	h.UpdateNotes(w, r)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if code := decodeErrorCode(t, w); code != ErrCodeNotSaved {
		t.Errorf("error code = %q, want %q", code, ErrCodeNotSaved)
	}
}

func TestSavedHandlersRequireAuth(t *testing.T) {
	h := NewSavedHandlers(saved.NewInMemoryStore(), slog.Default())

	tests := []struct {
		name   string
		method string
		target string
		body   string
		call   func(w http.ResponseWriter, r *http.Request)
	}{
		{"list", http.MethodGet, "/saved-events", "", h.List},
		{"unsave", http.MethodDelete, "/saved-events/ev-1", "", h.Unsave},
		{"update notes", http.MethodPatch, "/saved-events/ev-1/notes", `{"notes":"x"}`, h.UpdateNotes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := authedRequest(tt.method, tt.target, tt.body, "")
			w := httptest.NewRecorder()
			tt.call(w, r)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}
