package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/driftwood-collective/driftdeck/internal/event"
	"github.com/driftwood-collective/driftdeck/internal/middleware"
	"github.com/driftwood-collective/driftdeck/internal/source"
	"github.com/driftwood-collective/driftdeck/internal/viewed"
)

// Candidate batch size limits for the discovery endpoint.
const (
	DefaultCandidateLimit = 3
	MaxCandidateLimit     = 25
)

// DiscoveryHandlers holds dependencies for candidate discovery HTTP handlers.
type DiscoveryHandlers struct {
	source      source.Source
	viewedStore viewed.Store
	logger      *slog.Logger
}

// NewDiscoveryHandlers creates a new DiscoveryHandlers instance.
func NewDiscoveryHandlers(src source.Source, viewedStore viewed.Store, logger *slog.Logger) *DiscoveryHandlers {
	return &DiscoveryHandlers{
		source:      src,
		viewedStore: viewedStore,
		logger:      logger,
	}
}

// CandidatesResponse represents the response body for a candidate batch.
type CandidatesResponse struct {
	Candidates []event.CandidateEvent `json:"candidates"`
}

// GetCandidates handles GET /discovery/candidates.
//
// Query parameters:
//   - limit: maximum batch size (default 3, capped at 25)
//   - exclude: comma-separated event IDs already held by the client's deck
//
// The caller's full viewed history is excluded server-side; the exclude
// parameter only covers cards currently in flight on the client. A failure
// to load the viewed history fails open: candidates are served and any
// repeats are filtered client-side.
func (h *DiscoveryHandlers) GetCandidates(w http.ResponseWriter, r *http.Request) {
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

	limit := DefaultCandidateLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			ctx = middleware.SetErrorCode(ctx, ErrCodeInvalidLimit)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidLimit, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > MaxCandidateLimit {
		limit = MaxCandidateLimit
	}

	exclude := splitIDs(r.URL.Query().Get("exclude"))

	// Merge the persisted viewed history into the exclusion set. Errors
	// fail open so a storage hiccup never blanks the discovery feed.
	seen := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		seen[id] = struct{}{}
	}
	viewedIDs, err := h.viewedStore.LoadIDs(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to load viewed history, serving unfiltered candidates",
			"error", err,
			"user_id", userID,
		)
	}
	for _, id := range viewedIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			exclude = append(exclude, id)
		}
	}

	records, err := h.source.FetchCandidates(ctx, exclude, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to fetch candidates", "error", err, "user_id", userID)
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to fetch candidates")
		return
	}

	candidates := make([]event.CandidateEvent, 0, len(records))
	for _, rec := range records {
		candidates = append(candidates, event.MapToDisplay(rec))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(CandidatesResponse{Candidates: candidates}); err != nil {
		h.logger.ErrorContext(ctx, "failed to encode candidates response", "error", err)
	}
}

// EventResponse represents the response body for a single event lookup.
type EventResponse struct {
	Event event.CandidateEvent `json:"event"`
}

// GetEvent handles GET /events/{id}, returning the same display shape a
// candidate batch uses. Saved-list and deep-link clients fetch full event
// details through this endpoint.
func (h *DiscoveryHandlers) GetEvent(w http.ResponseWriter, r *http.Request) {
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

	// Expected: /events/{id}
	eventID := strings.TrimPrefix(r.URL.Path, "/events/")
	if eventID == "" || strings.Contains(eventID, "/") {
		ctx = middleware.SetErrorCode(ctx, ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid URL path")
		return
	}

	rec, err := h.source.FetchByID(ctx, eventID)
	if errors.Is(err, source.ErrNotFound) {
		ctx = middleware.SetErrorCode(ctx, ErrCodeNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Event not found")
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to fetch event", "error", err, "event_id", eventID)
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to fetch event")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(EventResponse{Event: event.MapToDisplay(*rec)}); err != nil {
		h.logger.ErrorContext(ctx, "failed to encode event response", "error", err)
	}
}

// splitIDs parses a comma-separated ID list, dropping empty entries.
func splitIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
