package programs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/azelenovic/fitcoach/internal/auth"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	coachPrincipal = auth.Principal{UserID: 10, Role: auth.RoleCoach}
	userPrincipal  = auth.Principal{UserID: 20, Role: auth.RoleUser}
)

func addProgramReq(principal auth.Principal, body string) *http.Request {
	req := httptest.NewRequest("POST", "/programs", strings.NewReader(body))
	return req.WithContext(auth.ContextWithPrincipal(req.Context(), principal))
}

func TestHandler_AddProgram(t *testing.T) {
	repo := newRepoMock()
	handler := NewHandler(repo)

	rr := httptest.NewRecorder()
	handler.HandleAdd(rr, addProgramReq(coachPrincipal,
		`{"title": "5K Base", "description": "couch to 5k", "difficulty": "beginner", "durationWeeks": 8}`,
	))
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Data Program `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "5K Base", resp.Data.Title)
	assert.Equal(t, DifficultyBeginner, resp.Data.Difficulty)
	// coach id comes from the principal, not the payload
	assert.Equal(t, coachPrincipal.UserID, resp.Data.CoachID)
}

func TestHandler_AddProgram_Forbidden(t *testing.T) {
	handler := NewHandler(newRepoMock())

	rr := httptest.NewRecorder()
	handler.HandleAdd(rr, addProgramReq(userPrincipal,
		`{"title": "5K Base", "difficulty": "beginner", "durationWeeks": 8}`,
	))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestHandler_AddProgram_Validation(t *testing.T) {
	handler := NewHandler(newRepoMock())

	for name, body := range map[string]string{
		"missing title":   `{"difficulty": "beginner", "durationWeeks": 8}`,
		"bad difficulty":  `{"title": "X", "difficulty": "brutal", "durationWeeks": 8}`,
		"zero duration":   `{"title": "X", "difficulty": "beginner", "durationWeeks": 0}`,
		"not json at all": `nope`,
	} {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.HandleAdd(rr, addProgramReq(coachPrincipal, body))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandler_Sessions(t *testing.T) {
	repo := newRepoMock()
	handler := NewHandler(repo)

	program, err := repo.AddProgram(context.Background(), Program{Title: "Strength", Difficulty: DifficultyIntermediate})
	require.NoError(t, err)

	addSession := func(principal auth.Principal, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", fmt.Sprintf("/programs/%d/sessions", program.ID), strings.NewReader(body))
		req = mux.SetURLVars(req, map[string]string{"id": fmt.Sprintf("%d", program.ID)})
		req = req.WithContext(auth.ContextWithPrincipal(req.Context(), principal))
		rr := httptest.NewRecorder()
		handler.HandleAddSession(rr, req)
		return rr
	}

	rr := addSession(coachPrincipal, `{"title": "Day 1 - Squats", "dayNumber": 1, "durationMinutes": 45}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = addSession(coachPrincipal, `{"title": "Day 2 - Deadlifts", "dayNumber": 2, "durationMinutes": 40}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = addSession(userPrincipal, `{"title": "Day 3", "dayNumber": 3}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	req := httptest.NewRequest("GET", fmt.Sprintf("/programs/%d/sessions", program.ID), nil)
	req = mux.SetURLVars(req, map[string]string{"id": fmt.Sprintf("%d", program.ID)})
	listRR := httptest.NewRecorder()
	handler.HandleListSessions(listRR, req)
	require.Equal(t, http.StatusOK, listRR.Code)

	var resp struct {
		Data  []Session `json:"data"`
		Count int       `json:"count"`
	}
	require.NoError(t, json.Unmarshal(listRR.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "Day 1 - Squats", resp.Data[0].Title)
	assert.Equal(t, "Day 2 - Deadlifts", resp.Data[1].Title)

	count, err := repo.SessionsCount(context.Background(), program.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestHandler_UpdateDeleteProgram(t *testing.T) {
	repo := newRepoMock()
	handler := NewHandler(repo)

	program, err := repo.AddProgram(context.Background(), Program{Title: "Old", Difficulty: DifficultyBeginner, CoachID: 10})
	require.NoError(t, err)

	req := httptest.NewRequest("PUT", fmt.Sprintf("/programs/%d", program.ID),
		strings.NewReader(`{"title": "New", "difficulty": "advanced", "durationWeeks": 12}`))
	req = mux.SetURLVars(req, map[string]string{"id": fmt.Sprintf("%d", program.ID)})
	req = req.WithContext(auth.ContextWithPrincipal(req.Context(), coachPrincipal))
	rr := httptest.NewRecorder()
	handler.HandleUpdate(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	updated, err := repo.GetProgram(context.Background(), program.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, DifficultyAdvanced, updated.Difficulty)
	assert.Equal(t, 10, updated.CoachID)

	req = httptest.NewRequest("DELETE", fmt.Sprintf("/programs/%d", program.ID), nil)
	req = mux.SetURLVars(req, map[string]string{"id": fmt.Sprintf("%d", program.ID)})
	req = req.WithContext(auth.ContextWithPrincipal(req.Context(), coachPrincipal))
	rr = httptest.NewRecorder()
	handler.HandleDelete(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	_, err = repo.GetProgram(context.Background(), program.ID)
	assert.ErrorIs(t, err, ErrProgramNotFound)
}
