package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/azelenovic/fitcoach/internal/auth"
	"github.com/azelenovic/fitcoach/pkg"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Register(t *testing.T) {
	repo := newRepoMock()
	handler := NewHandler(repo)

	reqBody := fmt.Sprintf(
		`{"email": %q, "displayName": %q, "password": "s3cret-pass"}`,
		gofakeit.Email(), gofakeit.Name(),
	)
	req := httptest.NewRequest("POST", "/users/register", strings.NewReader(reqBody))
	rr := httptest.NewRecorder()

	handler.HandleRegister(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, auth.RoleUser, resp.Data.Role)
	assert.NotZero(t, resp.Data.ID)

	// password hash never leaves the server
	assert.NotContains(t, rr.Body.String(), "password")

	stored, err := repo.Get(context.Background(), resp.Data.ID)
	require.NoError(t, err)
	assert.True(t, pkg.CheckPasswordHash("s3cret-pass", stored.PasswordHash))
}

func TestHandler_Register_DuplicateEmail(t *testing.T) {
	repo := newRepoMock()
	handler := NewHandler(repo)

	email := gofakeit.Email()
	reqBody := fmt.Sprintf(`{"email": %q, "displayName": "First", "password": "s3cret-pass"}`, email)

	req := httptest.NewRequest("POST", "/users/register", strings.NewReader(reqBody))
	rr := httptest.NewRecorder()
	handler.HandleRegister(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	req = httptest.NewRequest("POST", "/users/register", strings.NewReader(reqBody))
	rr = httptest.NewRecorder()
	handler.HandleRegister(rr, req)
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "already registered")
}

func TestHandler_Register_InvalidRequest(t *testing.T) {
	handler := NewHandler(newRepoMock())

	for name, body := range map[string]string{
		"not json":       "definitely not json",
		"missing email":  `{"displayName": "X", "password": "s3cret-pass"}`,
		"bad email":      `{"email": "nope", "displayName": "X", "password": "s3cret-pass"}`,
		"short password": `{"email": "a@b.com", "displayName": "X", "password": "short"}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/users/register", strings.NewReader(body))
			rr := httptest.NewRecorder()
			handler.HandleRegister(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandler_UpdateRole(t *testing.T) {
	repo := newRepoMock()
	handler := NewHandler(repo)

	admin, err := repo.Add(context.Background(), User{Email: gofakeit.Email(), Role: auth.RoleAdmin})
	require.NoError(t, err)
	member, err := repo.Add(context.Background(), User{Email: gofakeit.Email(), Role: auth.RoleUser})
	require.NoError(t, err)

	updateRole := func(principal auth.Principal, targetID int, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("PUT", fmt.Sprintf("/users/%d/role", targetID), strings.NewReader(body))
		req = mux.SetURLVars(req, map[string]string{"id": fmt.Sprintf("%d", targetID)})
		req = req.WithContext(auth.ContextWithPrincipal(req.Context(), principal))
		rr := httptest.NewRecorder()
		handler.HandleUpdateRole(rr, req)
		return rr
	}

	adminPrincipal := auth.Principal{UserID: admin.ID, Role: auth.RoleAdmin}

	t.Run("promote member to coach", func(t *testing.T) {
		rr := updateRole(adminPrincipal, member.ID, `{"role": "coach"}`)
		require.Equal(t, http.StatusOK, rr.Code)

		updated, err := repo.Get(context.Background(), member.ID)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleCoach, updated.Role)
	})

	t.Run("admin cannot change own role", func(t *testing.T) {
		rr := updateRole(adminPrincipal, admin.ID, `{"role": "user"}`)
		require.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "own role")

		unchanged, err := repo.Get(context.Background(), admin.ID)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, unchanged.Role)
	})

	t.Run("non-admin rejected", func(t *testing.T) {
		rr := updateRole(auth.Principal{UserID: member.ID, Role: auth.RoleCoach}, member.ID, `{"role": "admin"}`)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("unknown role", func(t *testing.T) {
		rr := updateRole(adminPrincipal, member.ID, `{"role": "superuser"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		rr := updateRole(adminPrincipal, 999, `{"role": "coach"}`)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHandler_Delete(t *testing.T) {
	repo := newRepoMock()
	handler := NewHandler(repo)

	admin, err := repo.Add(context.Background(), User{Email: gofakeit.Email(), Role: auth.RoleAdmin})
	require.NoError(t, err)
	member, err := repo.Add(context.Background(), User{Email: gofakeit.Email(), Role: auth.RoleUser})
	require.NoError(t, err)

	deleteUser := func(principal auth.Principal, targetID int) *httptest.ResponseRecorder {
		req := httptest.NewRequest("DELETE", fmt.Sprintf("/users/%d", targetID), nil)
		req = mux.SetURLVars(req, map[string]string{"id": fmt.Sprintf("%d", targetID)})
		req = req.WithContext(auth.ContextWithPrincipal(req.Context(), principal))
		rr := httptest.NewRecorder()
		handler.HandleDelete(rr, req)
		return rr
	}

	adminPrincipal := auth.Principal{UserID: admin.ID, Role: auth.RoleAdmin}

	t.Run("admin cannot delete own account", func(t *testing.T) {
		rr := deleteUser(adminPrincipal, admin.ID)
		require.Equal(t, http.StatusForbidden, rr.Code)

		_, err := repo.Get(context.Background(), admin.ID)
		assert.NoError(t, err)
	})

	t.Run("member cannot delete", func(t *testing.T) {
		rr := deleteUser(auth.Principal{UserID: member.ID, Role: auth.RoleUser}, member.ID)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("admin deletes member", func(t *testing.T) {
		rr := deleteUser(adminPrincipal, member.ID)
		require.Equal(t, http.StatusOK, rr.Code)

		_, err := repo.Get(context.Background(), member.ID)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestHandler_List(t *testing.T) {
	repo := newRepoMock()
	handler := NewHandler(repo)

	for i := 0; i < 3; i++ {
		_, err := repo.Add(context.Background(), User{Email: gofakeit.Email(), Role: auth.RoleUser})
		require.NoError(t, err)
	}

	req := httptest.NewRequest("GET", "/users", nil)
	req = req.WithContext(auth.ContextWithPrincipal(req.Context(), auth.Principal{UserID: 1, Role: auth.RoleAdmin}))
	rr := httptest.NewRecorder()
	handler.HandleList(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success bool   `json:"success"`
		Data    []User `json:"data"`
		Count   int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)
	assert.Len(t, resp.Data, 3)

	// coach tier is not enough for the user list
	req = httptest.NewRequest("GET", "/users", nil)
	req = req.WithContext(auth.ContextWithPrincipal(req.Context(), auth.Principal{UserID: 2, Role: auth.RoleCoach}))
	rr = httptest.NewRecorder()
	handler.HandleList(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
