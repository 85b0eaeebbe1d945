package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/driftwood-collective/driftdeck/internal/middleware"
	"github.com/driftwood-collective/driftdeck/internal/saved"
)

// SavedHandlers holds dependencies for saved-event HTTP handlers.
type SavedHandlers struct {
	store  saved.Store
	logger *slog.Logger
}

// NewSavedHandlers creates a new SavedHandlers instance.
func NewSavedHandlers(store saved.Store, logger *slog.Logger) *SavedHandlers {
	return &SavedHandlers{
		store:  store,
		logger: logger,
	}
}

// SavedEventsResponse represents the response body for the saved list.
type SavedEventsResponse struct {
	SavedEvents []*saved.SavedEvent `json:"saved_events"`
}

// UpdateNotesRequest represents the request body for updating saved notes.
type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

// List handles GET /saved-events.
// Returns the caller's saved events, most recently saved first.
func (h *SavedHandlers) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
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

	events, err := h.store.List(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list saved events", "error", err, "user_id", userID)
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to list saved events")
		return
	}
	if events == nil {
		events = []*saved.SavedEvent{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(SavedEventsResponse{SavedEvents: events}); err != nil {
		h.logger.ErrorContext(ctx, "failed to encode saved events response", "error", err)
	}
}

// Unsave handles DELETE /saved-events/{id}.
// Removes the event from the caller's saved list.
func (h *SavedHandlers) Unsave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodDelete {
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

	eventID := strings.TrimPrefix(r.URL.Path, "/saved-events/")
	if eventID == "" || strings.Contains(eventID, "/") {
		ctx = middleware.SetErrorCode(ctx, ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid URL path")
		return
	}

	if err := h.store.Unsave(ctx, userID, eventID); err != nil {
		if errors.Is(err, saved.ErrNotSaved) {
			ctx = middleware.SetErrorCode(ctx, ErrCodeNotSaved)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotSaved, "Event is not saved")
			return
		}
		h.logger.ErrorContext(ctx, "failed to unsave event", "error", err, "user_id", userID, "event_id", eventID)
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to unsave event")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateNotes handles PATCH /saved-events/{id}/notes.
// Replaces the caller's notes on a saved event.
func (h *SavedHandlers) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPatch {
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

	// Expected: /saved-events/{id}/notes
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/saved-events/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "notes" {
		ctx = middleware.SetErrorCode(ctx, ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid URL path")
		return
	}
	eventID := parts[0]

	var req UpdateNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx = middleware.SetErrorCode(ctx, ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}

	if err := h.store.UpdateNotes(ctx, userID, eventID, req.Notes); err != nil {
		if errors.Is(err, saved.ErrNotSaved) {
			ctx = middleware.SetErrorCode(ctx, ErrCodeNotSaved)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotSaved, "Event is not saved")
			return
		}
		h.logger.ErrorContext(ctx, "failed to update saved notes", "error", err, "user_id", userID, "event_id", eventID)
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to update notes")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
