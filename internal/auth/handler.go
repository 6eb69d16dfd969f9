package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/neighborhood-app/backend/internal/apperr"
	"github.com/neighborhood-app/backend/internal/httpx"
	"github.com/neighborhood-app/backend/internal/models"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// TokenRevoker marks a token id as no longer accepted.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string) error
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users   UserStore
	issuer  *TokenIssuer
	revoked TokenRevoker
	log     *slog.Logger
}

func NewHandler(users UserStore, issuer *TokenIssuer, revoked TokenRevoker, log *slog.Logger) *Handler {
	return &Handler{users: users, issuer: issuer, revoked: revoked, log: log}
}

// Register creates a new user and returns an identity token for them.
//
// POST /auth/register => 201 {"token": ..., "user": {...}}
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		httpx.WriteError(w, fmt.Errorf("%w: invalid request body", apperr.ErrBadRequest))
		return
	}
	if req.Username == "" || req.Password == "" || req.Email == "" {
		httpx.WriteError(w, fmt.Errorf("%w: username, password, and email are required", apperr.ErrBadRequest))
		return
	}

	user, err := h.users.Register(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	token, err := h.issuer.Issue(user.Username)
	if err != nil {
		h.log.Error("issue token", "username", user.Username, "err", err)
		httpx.WriteError(w, err)
		return
	}

	h.log.Info("user registered", "username", user.Username)
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"token": token, "user": user})
}

// Login verifies credentials and returns an identity token.
//
// POST /auth/token => {"token": ...}
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		httpx.WriteError(w, fmt.Errorf("%w: invalid request body", apperr.ErrBadRequest))
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	token, err := h.issuer.Issue(user.Username)
	if err != nil {
		h.log.Error("issue token", "username", user.Username, "err", err)
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Logout revokes the presented token. Requests without a valid token still
// get a success response so logout stays idempotent.
//
// POST /auth/logout => {"message": "logged out"}
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		if claims, err := h.issuer.Verify(tokenString); err == nil {
			if err := h.revoked.Revoke(r.Context(), claims.ID); err != nil {
				h.log.Warn("revoke token on logout", "err", err)
			}
		}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
