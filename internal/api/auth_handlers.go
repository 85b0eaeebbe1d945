package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/driftwood-collective/driftdeck/internal/auth"
	"github.com/driftwood-collective/driftdeck/internal/middleware"
)

// TokenRequest represents the request body for minting development tokens.
type TokenRequest struct {
	UserID string `json:"user_id"`
}

// TokenResponse represents the response body containing a token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthHandlers holds dependencies for token HTTP handlers.
type AuthHandlers struct {
	jwtService *auth.JWTService
	devTokens  bool
	logger     *slog.Logger
}

// NewAuthHandlers creates a new AuthHandlers instance. devTokens enables the
// unauthenticated token mint endpoint and must be false in production, where
// clients arrive with tokens issued by the identity provider.
func NewAuthHandlers(jwtService *auth.JWTService, devTokens bool, logger *slog.Logger) *AuthHandlers {
	return &AuthHandlers{
		jwtService: jwtService,
		devTokens:  devTokens,
		logger:     logger,
	}
}

// MintToken handles POST /auth/token.
// Development only: issues an access/refresh pair for an arbitrary user ID.
func (h *AuthHandlers) MintToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		ctx = middleware.SetErrorCode(ctx, ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	if !h.devTokens {
		ctx = middleware.SetErrorCode(ctx, ErrCodeForbidden)
		WriteError(w, ctx, http.StatusForbidden, ErrCodeForbidden, "Token minting is disabled")
		return
	}

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "user_id is required")
		return
	}

	access, err := h.jwtService.GenerateAccessToken(req.UserID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", "error", err)
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to generate token")
		return
	}

	refresh, err := h.jwtService.GenerateRefreshToken(req.UserID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate refresh token", "error", err)
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to generate token")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(TokenResponse{AccessToken: access, RefreshToken: refresh}); err != nil {
		h.logger.ErrorContext(ctx, "failed to encode token response", "error", err)
	}
}
