package users

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/neighborhood-app/backend/internal/apperr"
	"github.com/neighborhood-app/backend/internal/httpx"
	"github.com/neighborhood-app/backend/internal/middleware"
	"github.com/neighborhood-app/backend/internal/models"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	Get(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, username string, req models.UpdateUserRequest) (*models.UserUpdated, error)
	Remove(ctx context.Context, username string) error
	FavoriteProperty(ctx context.Context, username string, zpid int64) error
	UnfavoriteProperty(ctx context.Context, username string, zpid int64) error
}

// TokenRevoker revokes the caller's token once their account is gone.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string) error
}

// Handler holds the /users HTTP handlers. Every route is guarded by
// EnsureCorrectUser, so handlers can trust the {username} parameter.
type Handler struct {
	store   UserStore
	revoker TokenRevoker
	log     *slog.Logger
}

func NewHandler(store UserStore, revoker TokenRevoker, log *slog.Logger) *Handler {
	return &Handler{store: store, revoker: revoker, log: log}
}

// Get returns the user with their favorited property zpids.
//
// GET /users/{username} => {"user": {id, username, firstName, lastName, email, favoritedProperties}}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]*models.User{"user": user})
}

// Update applies a partial update to the user.
//
// PATCH /users/{username} => {"user": {username, firstName, lastName, email}}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateUserRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		httpx.WriteError(w, fmt.Errorf("%w: invalid request body", apperr.ErrBadRequest))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		httpx.WriteError(w, fmt.Errorf("%w: %s", apperr.ErrBadRequest, strings.Join(errs, "; ")))
		return
	}

	user, err := h.store.Update(r.Context(), chi.URLParam(r, "username"), req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]*models.UserUpdated{"user": user})
}

// Delete removes the user, cascading to their favorites, and revokes the
// token the request was made with.
//
// DELETE /users/{username} => {"deleted": username}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := h.store.Remove(r.Context(), username); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.revoker.Revoke(r.Context(), tokenIDFrom(r)); err != nil {
		h.log.Warn("revoke token after account delete", "username", username, "err", err)
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"deleted": username})
}

// Favorite records a favorited property for the user.
//
// POST /users/{username}/{propertyZpid} => {"favorited": propertyZpid}
func (h *Handler) Favorite(w http.ResponseWriter, r *http.Request) {
	zpid, err := zpidParam(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.store.FavoriteProperty(r.Context(), chi.URLParam(r, "username"), zpid); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"favorited": zpid})
}

// Unfavorite removes a favorited property. Unfavoriting a property that was
// never favorited is a successful no-op.
//
// DELETE /users/{username}/{propertyZpid} => {"unFavorited": propertyZpid}
func (h *Handler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	zpid, err := zpidParam(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.store.UnfavoriteProperty(r.Context(), chi.URLParam(r, "username"), zpid); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"unFavorited": zpid})
}

func tokenIDFrom(r *http.Request) string {
	if id := middleware.IdentityFrom(r.Context()); id != nil {
		return id.TokenID
	}
	return ""
}

// zpidParam coerces the {propertyZpid} path segment to a numeric id.
func zpidParam(r *http.Request) (int64, error) {
	zpid, err := strconv.ParseInt(chi.URLParam(r, "propertyZpid"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: propertyZpid must be numeric", apperr.ErrBadRequest)
	}
	return zpid, nil
}
