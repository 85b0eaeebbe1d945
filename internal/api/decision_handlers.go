package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/driftwood-collective/driftdeck/internal/middleware"
	"github.com/driftwood-collective/driftdeck/internal/recorder"
	"github.com/driftwood-collective/driftdeck/internal/viewed"
)

// DecisionRequest represents the request body for recording a swipe decision.
type DecisionRequest struct {
	Action string `json:"action"`
}

// DecisionResponse represents the response body after a decision is accepted.
type DecisionResponse struct {
	Status string `json:"status"`
}

// DecisionHandlers holds dependencies for decision HTTP handlers.
type DecisionHandlers struct {
	recorder *recorder.Recorder
	logger   *slog.Logger
}

// NewDecisionHandlers creates a new DecisionHandlers instance.
func NewDecisionHandlers(rec *recorder.Recorder, logger *slog.Logger) *DecisionHandlers {
	return &DecisionHandlers{
		recorder: rec,
		logger:   logger,
	}
}

// RecordDecision handles POST /events/{id}/decision.
//
// The write is fire-and-forget: the response is 202 Accepted as soon as the
// decision is queued, and persistence failures are logged server-side rather
// than surfaced. The client's local session state is authoritative either way.
func (h *DecisionHandlers) RecordDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		ctx = middleware.SetErrorCode(ctx, ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		ctx = middleware.SetErrorCode(ctx, ErrCodeAuthFailed)
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	// Expected: /events/{id}/decision
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/events/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "decision" {
		ctx = middleware.SetErrorCode(ctx, ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid URL path")
		return
	}
	eventID := parts[0]

	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx = middleware.SetErrorCode(ctx, ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}

	action := viewed.Action(req.Action)
	if !action.Valid() {
		ctx = middleware.SetErrorCode(ctx, ErrCodeInvalidAction)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidAction, `action must be "saved" or "passed"`)
		return
	}

	h.recorder.CommitAsync(userID, eventID, action)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(DecisionResponse{Status: "accepted"}); err != nil {
		h.logger.ErrorContext(ctx, "failed to encode decision response", "error", err)
	}
}
