package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/azelenovic/fitcoach/pkg"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accountsRepoMock struct {
	accounts map[string]*UserAccount
}

func newAccountsRepoMock() *accountsRepoMock {
	return &accountsRepoMock{
		accounts: make(map[string]*UserAccount),
	}
}

func (r *accountsRepoMock) GetAccountByEmail(_ context.Context, email string) (*UserAccount, error) {
	account, ok := r.accounts[email]
	if !ok {
		return nil, errors.New("account not found")
	}
	return account, nil
}

func TestHandler_HandleLogin(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	service := NewService(testSigningKey, time.Hour, db)
	testTokenID := "login_handler_token"
	service.RandStringFunc = func(s int) (string, error) {
		return testTokenID, nil
	}

	passwordHash, err := pkg.HashPassword("trening123")
	require.NoError(t, err)

	accounts := newAccountsRepoMock()
	accounts.accounts["mika@example.com"] = &UserAccount{
		ID:           7,
		Email:        "mika@example.com",
		DisplayName:  "Mika",
		PasswordHash: passwordHash,
		Role:         RoleUser,
	}

	h := NewHandler(accounts, service)

	t.Run("ok", func(t *testing.T) {
		mock.Regexp().ExpectSet(sessionKeyPrefix+testTokenID, `\d+`, time.Hour).SetVal("OK")
		mock.ExpectSAdd(tokensSetKey, testTokenID).SetVal(1)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/a/login", bytes.NewReader([]byte(
			`{"email":"mika@example.com","password":"trening123"}`,
		)))

		h.HandleLogin(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp pkg.APIResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)

		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.NotEmpty(t, data["token"])
		assert.Equal(t, float64(7), data["userId"])
		assert.Equal(t, "user", data["role"])
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/a/login", bytes.NewReader([]byte(
			`{"email":"mika@example.com","password":"wrong"}`,
		)))

		h.HandleLogin(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/a/login", bytes.NewReader([]byte(
			`{"email":"nobody@example.com","password":"trening123"}`,
		)))

		h.HandleLogin(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed payload", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/a/login", bytes.NewReader([]byte(`{"email":"not-an-email"}`)))

		h.HandleLogin(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_HandleLogout(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	service := NewService(testSigningKey, time.Hour, db)
	testTokenID := "logout_handler_token"
	service.RandStringFunc = func(s int) (string, error) {
		return testTokenID, nil
	}

	now := time.Now()
	sessionKey := sessionKeyPrefix + testTokenID
	mock.ExpectSet(sessionKey, now.Unix(), time.Hour).SetVal(fmt.Sprintf("%d", now.Unix()))
	mock.ExpectSAdd(tokensSetKey, testTokenID).SetVal(1)
	token, err := service.Login(context.Background(), testPrincipal, now)
	require.NoError(t, err)

	h := NewHandler(newAccountsRepoMock(), service)

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/a/logout", nil)

		h.HandleLogout(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ok", func(t *testing.T) {
		mock.ExpectDel(sessionKey).SetVal(1)
		mock.ExpectSRem(tokensSetKey, testTokenID).SetVal(1)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/a/logout", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		h.HandleLogout(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
