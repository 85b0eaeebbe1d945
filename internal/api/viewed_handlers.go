package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/driftwood-collective/driftdeck/internal/middleware"
	"github.com/driftwood-collective/driftdeck/internal/viewed"
)

// ViewedHandlers holds dependencies for viewed-history HTTP handlers.
type ViewedHandlers struct {
	store  viewed.Store
	logger *slog.Logger
}

// NewViewedHandlers creates a new ViewedHandlers instance.
func NewViewedHandlers(store viewed.Store, logger *slog.Logger) *ViewedHandlers {
	return &ViewedHandlers{
		store:  store,
		logger: logger,
	}
}

// Stats handles GET /viewed-events/stats.
// Returns the caller's viewed-history counts by action.
func (h *ViewedHandlers) Stats(w http.ResponseWriter, r *http.Request) {
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

	stats, err := h.store.Stats(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load viewed stats", "error", err, "user_id", userID)
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load stats")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		h.logger.ErrorContext(ctx, "failed to encode stats response", "error", err)
	}
}
