package users

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neighborhood-app/backend/internal/apperr"
	"github.com/neighborhood-app/backend/internal/auth"
	"github.com/neighborhood-app/backend/internal/middleware"
	"github.com/neighborhood-app/backend/internal/models"
)

type fakeUserStore struct {
	users     map[string]*models.User
	updateErr error

	favorited   []int64
	unfavorited []int64
	removed     []string
	lastUpdate  models.UpdateUserRequest
}

func (f *fakeUserStore) Get(_ context.Context, username string) (*models.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) Update(_ context.Context, username string, req models.UpdateUserRequest) (*models.UserUpdated, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.lastUpdate = req
	u, ok := f.users[username]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &models.UserUpdated{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}, nil
}

func (f *fakeUserStore) Remove(_ context.Context, username string) error {
	if _, ok := f.users[username]; !ok {
		return apperr.ErrNotFound
	}
	f.removed = append(f.removed, username)
	return nil
}

func (f *fakeUserStore) FavoriteProperty(_ context.Context, username string, zpid int64) error {
	if _, ok := f.users[username]; !ok {
		return apperr.ErrNotFound
	}
	f.favorited = append(f.favorited, zpid)
	return nil
}

func (f *fakeUserStore) UnfavoriteProperty(_ context.Context, username string, zpid int64) error {
	if _, ok := f.users[username]; !ok {
		return apperr.ErrNotFound
	}
	f.unfavorited = append(f.unfavorited, zpid)
	return nil
}

type fakeRevoker struct{ revoked []string }

func (f *fakeRevoker) Revoke(_ context.Context, jti string) error {
	f.revoked = append(f.revoked, jti)
	return nil
}

type fakeRevocations struct{}

func (fakeRevocations) IsRevoked(context.Context, string) (bool, error) { return false, nil }

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// newServer mounts the user routes exactly the way cmd/server does: token
// authentication followed by the self-match guard.
func newServer(t *testing.T, store *fakeUserStore, revoker *fakeRevoker) (chi.Router, *auth.TokenIssuer) {
	t.Helper()
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	h := NewHandler(store, revoker, discard)

	r := chi.NewRouter()
	r.Use(middleware.Authenticate(issuer, fakeRevocations{}))
	r.Route("/users", func(r chi.Router) {
		r.Route("/{username}", func(r chi.Router) {
			r.Use(middleware.EnsureCorrectUser)
			r.Get("/", h.Get)
			r.Patch("/", h.Update)
			r.Delete("/", h.Delete)
			r.Post("/{propertyZpid}", h.Favorite)
			r.Delete("/{propertyZpid}", h.Unfavorite)
		})
	})
	return r, issuer
}

func do(t *testing.T, r http.Handler, issuer *auth.TokenIssuer, as, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if as != "" {
		token, err := issuer.Issue(as)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func seededStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{
		"u1": {
			ID:                  1,
			Username:            "u1",
			FirstName:           "First",
			LastName:            "Last",
			Email:               "u1@email.com",
			FavoritedProperties: []int64{123},
		},
	}}
}

func TestGetUser(t *testing.T) {
	r, issuer := newServer(t, seededStore(), &fakeRevoker{})

	rec := do(t, r, issuer, "u1", http.MethodGet, "/users/u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		User models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "u1", body.User.Username)
	assert.Equal(t, []int64{123}, body.User.FavoritedProperties)
}

func TestGetUser_NoFavoritesStillListsField(t *testing.T) {
	store := seededStore()
	store.users["u1"].FavoritedProperties = []int64{}
	r, issuer := newServer(t, store, &fakeRevoker{})

	rec := do(t, r, issuer, "u1", http.MethodGet, "/users/u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"favoritedProperties":[]`)
}

func TestGetUser_WrongIdentity(t *testing.T) {
	r, issuer := newServer(t, seededStore(), &fakeRevoker{})

	rec := do(t, r, issuer, "u2", http.MethodGet, "/users/u1", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUser_Anonymous(t *testing.T) {
	r, issuer := newServer(t, seededStore(), &fakeRevoker{})

	rec := do(t, r, issuer, "", http.MethodGet, "/users/u1", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPatchUser(t *testing.T) {
	store := seededStore()
	r, issuer := newServer(t, store, &fakeRevoker{})

	rec := do(t, r, issuer, "u1", http.MethodPatch, "/users/u1",
		map[string]string{"firstName": "Updated"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, store.lastUpdate.FirstName)
	assert.Equal(t, "Updated", *store.lastUpdate.FirstName)
	assert.Nil(t, store.lastUpdate.Password)
	assert.NotContains(t, rec.Body.String(), "favoritedProperties")
}

func TestPatchUser_UnknownFieldRejected(t *testing.T) {
	r, issuer := newServer(t, seededStore(), &fakeRevoker{})

	rec := do(t, r, issuer, "u1", http.MethodPatch, "/users/u1",
		map[string]any{"username": "other"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPatchUser_FieldViolations(t *testing.T) {
	r, issuer := newServer(t, seededStore(), &fakeRevoker{})

	rec := do(t, r, issuer, "u1", http.MethodPatch, "/users/u1",
		map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email")
}

func TestPatchUser_EmptyBodyPropagatesBadRequest(t *testing.T) {
	store := seededStore()
	store.updateErr = fmt.Errorf("%w: no fields to update", apperr.ErrBadRequest)
	r, issuer := newServer(t, store, &fakeRevoker{})

	rec := do(t, r, issuer, "u1", http.MethodPatch, "/users/u1", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteUser(t *testing.T) {
	store := seededStore()
	revoker := &fakeRevoker{}
	r, issuer := newServer(t, store, revoker)

	rec := do(t, r, issuer, "u1", http.MethodDelete, "/users/u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":"u1"}`, rec.Body.String())
	assert.Equal(t, []string{"u1"}, store.removed)
	assert.Len(t, revoker.revoked, 1)
}

func TestFavoriteProperty(t *testing.T) {
	store := seededStore()
	r, issuer := newServer(t, store, &fakeRevoker{})

	rec := do(t, r, issuer, "u1", http.MethodPost, "/users/u1/456", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"favorited":456}`, rec.Body.String())
	assert.Equal(t, []int64{456}, store.favorited)
}

func TestFavoriteProperty_WrongIdentity(t *testing.T) {
	store := seededStore()
	r, issuer := newServer(t, store, &fakeRevoker{})

	rec := do(t, r, issuer, "u2", http.MethodPost, "/users/u1/456", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, store.favorited)
}

func TestUnfavoriteProperty(t *testing.T) {
	store := seededStore()
	r, issuer := newServer(t, store, &fakeRevoker{})

	rec := do(t, r, issuer, "u1", http.MethodDelete, "/users/u1/123", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"unFavorited":123}`, rec.Body.String())
	assert.Equal(t, []int64{123}, store.unfavorited)
}

func TestUnfavoriteProperty_WrongIdentity(t *testing.T) {
	store := seededStore()
	r, issuer := newServer(t, store, &fakeRevoker{})

	rec := do(t, r, issuer, "u2", http.MethodDelete, "/users/u1/123", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, store.unfavorited)
}

func TestFavoriteProperty_NonNumericZpid(t *testing.T) {
	r, issuer := newServer(t, seededStore(), &fakeRevoker{})

	rec := do(t, r, issuer, "u1", http.MethodPost, "/users/u1/not-a-zpid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUser_NotFoundAfterRemove(t *testing.T) {
	store := seededStore()
	r, issuer := newServer(t, store, &fakeRevoker{})

	rec := do(t, r, issuer, "u1", http.MethodDelete, "/users/u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	delete(store.users, "u1")
	rec = do(t, r, issuer, "u1", http.MethodGet, "/users/u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
