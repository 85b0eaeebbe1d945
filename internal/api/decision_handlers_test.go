package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/driftwood-collective/driftdeck/internal/middleware"
	"github.com/driftwood-collective/driftdeck/internal/recorder"
	"github.com/driftwood-collective/driftdeck/internal/saved"
	"github.com/driftwood-collective/driftdeck/internal/viewed"
)

// authedRequest builds a request whose context carries an authenticated user,
// as RequireAuth would have left it.
func authedRequest(method, target, body, userID string) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	if userID != "" {
		r = r.WithContext(middleware.SetUserID(r.Context(), userID))
	}
	return r
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error body %q: %v", rec.Body.String(), err)
	}
	return resp.Error.Code
}

func newDecisionHandlers(vs viewed.Store, ss saved.Store) *DecisionHandlers {
	rec := recorder.NewRecorder(vs, ss, nil, slog.Default())
	return NewDecisionHandlers(rec, slog.Default())
}

func TestRecordDecisionAccepted(t *testing.T) {
	vs := viewed.NewInMemoryStore()
	ss := saved.NewInMemoryStore()
	h := newDecisionHandlers(vs, ss)

	r := authedRequest(http.MethodPost, "/events/ev-1/decision", `{"action":"saved"}`, "user-1")
	w := httptest.NewRecorder()
	h.RecordDecision(w, r)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202. Body: %s", w.Code, w.Body.String())
	}

	var resp DecisionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "accepted" {
		t.Errorf("status = %q, want accepted", resp.Status)
	}

	// The write is async; wait for it to land.
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
			t.Fatal("decision never persisted")
		case <-time.After(5 * time.Millisecond):
		}
	}

	ok, err := ss.IsSaved(context.Background(), "user-1", "ev-1")
	if err != nil {
		t.Fatalf("IsSaved: %v", err)
	}
	if !ok {
		t.Error("save relation missing")
	}
}

func TestRecordDecisionInvalidAction(t *testing.T) {
	h := newDecisionHandlers(viewed.NewInMemoryStore(), saved.NewInMemoryStore())

	r := authedRequest(http.MethodPost, "/events/ev-1/decision", `{"action":"liked"}`, "user-1")
	w := httptest.NewRecorder()
	h.RecordDecision(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if code := decodeErrorCode(t, w); code != ErrCodeInvalidAction {
		t.Errorf("error code = %q, want %q", code, ErrCodeInvalidAction)
	}
}

func TestRecordDecisionBadRequests(t *testing.T) {
	h := newDecisionHandlers(viewed.NewInMemoryStore(), saved.NewInMemoryStore())

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		userID     string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "wrong method",
			method:     http.MethodGet,
			target:     "/events/ev-1/decision",
			body:       "",
			userID:     "user-1",
			wantStatus: http.StatusMethodNotAllowed,
			wantCode:   ErrCodeBadRequest,
		},
		{
			name:       "unauthenticated",
			method:     http.MethodPost,
			target:     "/events/ev-1/decision",
			body:       `{"action":"saved"}`,
			userID:     "",
			wantStatus: http.StatusUnauthorized,
			wantCode:   ErrCodeAuthFailed,
		},
		{
			name:       "malformed path",
			method:     http.MethodPost,
			target:     "/events/ev-1/something-else",
			body:       `{"action":"saved"}`,
			userID:     "user-1",
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
		{
			name:       "missing event id",
			method:     http.MethodPost,
			target:     "/events//decision",
			body:       `{"action":"saved"}`,
			userID:     "user-1",
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
		{
			name:       "invalid json",
			method:     http.MethodPost,
			target:     "/events/ev-1/decision",
			body:       `{not json`,
			userID:     "user-1",
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := authedRequest(tt.method, tt.target, tt.body, tt.userID)
			w := httptest.NewRecorder()
			h.RecordDecision(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if code := decodeErrorCode(t, w); code != tt.wantCode {
				t.Errorf("error code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}
