package completions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/azelenovic/fitcoach/internal/auth"
	"github.com/azelenovic/fitcoach/internal/telemetry/metrics"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() (*Handler, *repoMock) {
	repo := newRepoMock()
	return NewHandler(NewService(repo, metrics.NewTestManager())), repo
}

func withPrincipal(req *http.Request, principal auth.Principal) *http.Request {
	return req.WithContext(auth.ContextWithPrincipal(req.Context(), principal))
}

func TestHandler_Record(t *testing.T) {
	handler, _ := newTestHandler()

	body := `{"programId": 3, "sessionId": 1, "durationMinutes": 42, "feeling": "good", "notes": "solid run"}`
	req := withPrincipal(
		httptest.NewRequest("POST", "/completions", strings.NewReader(body)),
		auth.Principal{UserID: 7, Role: auth.RoleUser},
	)
	rr := httptest.NewRecorder()
	handler.HandleRecord(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Data Completion `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Data.UserID)
	assert.Equal(t, 1, resp.Data.SessionID)
	require.NotNil(t, resp.Data.DurationMinutes)
	assert.Equal(t, 42, *resp.Data.DurationMinutes)
	require.NotNil(t, resp.Data.Feeling)
	assert.Equal(t, FeelingGood, *resp.Data.Feeling)
	assert.False(t, resp.Data.CompletedAt.IsZero())
}

func TestHandler_Record_BadRequests(t *testing.T) {
	handler, _ := newTestHandler()

	for name, body := range map[string]string{
		"no session":        `{"programId": 3}`,
		"no program":        `{"sessionId": 1}`,
		"garbage":           `garbage`,
		"unknown feeling":   `{"programId": 3, "sessionId": 1, "feeling": "euphoric"}`,
		"negative duration": `{"programId": 3, "sessionId": 1, "durationMinutes": -5}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := withPrincipal(
				httptest.NewRequest("POST", "/completions", strings.NewReader(body)),
				auth.Principal{UserID: 7, Role: auth.RoleUser},
			)
			rr := httptest.NewRecorder()
			handler.HandleRecord(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandler_Record_NoPrincipal(t *testing.T) {
	handler, _ := newTestHandler()

	req := httptest.NewRequest("POST", "/completions", strings.NewReader(`{"programId": 3, "sessionId": 1}`))
	rr := httptest.NewRecorder()
	handler.HandleRecord(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandler_Lists(t *testing.T) {
	handler, repo := newTestHandler()
	ctx := context.Background()

	_, err := repo.Record(ctx, Completion{UserID: 7, ProgramID: 3, SessionID: 1})
	require.NoError(t, err)
	_, err = repo.Record(ctx, Completion{UserID: 7, ProgramID: 4, SessionID: 9})
	require.NoError(t, err)
	_, err = repo.Record(ctx, Completion{UserID: 8, ProgramID: 3, SessionID: 1})
	require.NoError(t, err)

	listCount := func(handle http.HandlerFunc, path string, vars map[string]string) int {
		req := mux.SetURLVars(httptest.NewRequest("GET", path, nil), vars)
		rr := httptest.NewRecorder()
		handle(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		return resp.Count
	}

	assert.Equal(t, 2, listCount(handler.HandleListByUser, "/completions/user/7", map[string]string{"userId": "7"}))
	assert.Equal(t, 2, listCount(handler.HandleListByProgram, "/completions/program/3", map[string]string{"programId": "3"}))
	assert.Equal(t, 2, listCount(handler.HandleListBySession, "/completions/session/1", map[string]string{"sessionId": "1"}))
	assert.Equal(t, 0, listCount(handler.HandleListByUser, "/completions/user/99", map[string]string{"userId": "99"}))
}

func TestHandler_Delete_Ownership(t *testing.T) {
	handler, repo := newTestHandler()

	completion, err := repo.Record(context.Background(), Completion{UserID: 7, ProgramID: 3, SessionID: 1})
	require.NoError(t, err)

	deleteAs := func(principal auth.Principal) *httptest.ResponseRecorder {
		req := httptest.NewRequest("DELETE", fmt.Sprintf("/completions/%d", completion.ID), nil)
		req = mux.SetURLVars(req, map[string]string{"id": fmt.Sprintf("%d", completion.ID)})
		req = withPrincipal(req, principal)
		rr := httptest.NewRecorder()
		handler.HandleDelete(rr, req)
		return rr
	}

	// another regular user cannot touch it
	rr := deleteAs(auth.Principal{UserID: 8, Role: auth.RoleUser})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// the owner can
	rr = deleteAs(auth.Principal{UserID: 7, Role: auth.RoleUser})
	require.Equal(t, http.StatusOK, rr.Code)

	// already gone
	rr = deleteAs(auth.Principal{UserID: 7, Role: auth.RoleUser})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_Delete_CoachTier(t *testing.T) {
	handler, repo := newTestHandler()

	completion, err := repo.Record(context.Background(), Completion{UserID: 7, ProgramID: 3, SessionID: 1})
	require.NoError(t, err)

	req := httptest.NewRequest("DELETE", fmt.Sprintf("/completions/%d", completion.ID), nil)
	req = mux.SetURLVars(req, map[string]string{"id": fmt.Sprintf("%d", completion.ID)})
	req = withPrincipal(req, auth.Principal{UserID: 50, Role: auth.RoleCoach})
	rr := httptest.NewRecorder()
	handler.HandleDelete(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHandler_ActivityFeed_BadLimit(t *testing.T) {
	handler, _ := newTestHandler()

	req := httptest.NewRequest("GET", "/completions/feed/3?limit=nope", nil)
	req = mux.SetURLVars(req, map[string]string{"programId": "3"})
	rr := httptest.NewRecorder()
	handler.HandleActivityFeed(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_UserProgramStats(t *testing.T) {
	handler, repo := newTestHandler()
	ctx := context.Background()

	_, err := repo.Record(ctx, Completion{UserID: 7, ProgramID: 3, SessionID: 1, DurationMinutes: intPtr(30)})
	require.NoError(t, err)
	_, err = repo.Record(ctx, Completion{UserID: 7, ProgramID: 3, SessionID: 2, DurationMinutes: intPtr(45)})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/completions/stats/7/3", nil)
	req = mux.SetURLVars(req, map[string]string{"userId": "7", "programId": "3"})
	rr := httptest.NewRecorder()
	handler.HandleUserProgramStats(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data UserProgramStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.TotalCompletions)
	assert.Equal(t, 2, resp.Data.UniqueSessionsCompleted)
	assert.Equal(t, 75, resp.Data.TotalMinutes)
	require.NotNil(t, resp.Data.LastCompletion)
}
