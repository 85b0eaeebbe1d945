package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/driftwood-collective/driftdeck/internal/auth"
)

func TestMintTokenIssuesValidPair(t *testing.T) {
	svc := auth.NewJWTService(testJWTSecret)
	h := NewAuthHandlers(svc, true, slog.Default())

	r := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"user_id":"user-123"}`))
	w := httptest.NewRecorder()
	h.MintToken(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. Body: %s", w.Code, w.Body.String())
	}

	var resp TokenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	claims, err := svc.ValidateToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if claims.Subject != "user-123" || claims.Type != auth.TokenTypeAccess {
		t.Errorf("access claims = {%s %s}, want {user-123 access}", claims.Subject, claims.Type)
	}

	claims, err = svc.ValidateToken(resp.RefreshToken)
	if err != nil {
		t.Fatalf("refresh token invalid: %v", err)
	}
	if claims.Type != auth.TokenTypeRefresh {
		t.Errorf("refresh token type = %q, want refresh", claims.Type)
	}
}

func TestMintTokenDisabledInProduction(t *testing.T) {
	h := NewAuthHandlers(auth.NewJWTService(testJWTSecret), false, slog.Default())

	r := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"user_id":"user-123"}`))
	w := httptest.NewRecorder()
	h.MintToken(w, r)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if code := decodeErrorCode(t, w); code != ErrCodeForbidden {
		t.Errorf("error code = %q, want %q", code, ErrCodeForbidden)
	}
}

func TestMintTokenValidation(t *testing.T) {
	h := NewAuthHandlers(auth.NewJWTService(testJWTSecret), true, slog.Default())

	tests := []struct {
		name string
		body string
	}{
		{"missing user_id", `{}`},
		{"empty user_id", `{"user_id":""}`},
		{"invalid json", `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.MintToken(w, r)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if code := decodeErrorCode(t, w); code != ErrCodeValidation {
				t.Errorf("error code = %q, want %q", code, ErrCodeValidation)
			}
		})
	}
}

func TestMintTokenMethodNotAllowed(t *testing.T) {
	h := NewAuthHandlers(auth.NewJWTService(testJWTSecret), true, slog.Default())

	r := httptest.NewRequest(http.MethodGet, "/auth/token", nil)
	w := httptest.NewRecorder()
	h.MintToken(w, r)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}
