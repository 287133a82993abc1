package programs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/azelenovic/fitcoach/internal/auth"
	"github.com/azelenovic/fitcoach/internal/telemetry/tracing"
	"github.com/azelenovic/fitcoach/pkg"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type programsRepo interface {
	AddProgram(ctx context.Context, program Program) (*Program, error)
	GetProgram(ctx context.Context, id int) (*Program, error)
	ListPrograms(ctx context.Context) ([]Program, error)
	UpdateProgram(ctx context.Context, program Program) error
	DeleteProgram(ctx context.Context, id int) error
	AddSession(ctx context.Context, session Session) (*Session, error)
	ListSessions(ctx context.Context, programID int) ([]Session, error)
	DeleteSession(ctx context.Context, id int) error
}

type Handler struct {
	repo     programsRepo
	validate *validator.Validate
}

func NewHandler(repo programsRepo) *Handler {
	return &Handler{
		repo:     repo,
		validate: validator.New(),
	}
}

type programRequest struct {
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description"`
	Difficulty    string `json:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
	DurationWeeks int    `json:"durationWeeks" validate:"required,min=1"`
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.add")
	defer span.End()

	principal, ok := requireCoach(w, ctx)
	if !ok {
		return
	}

	var req programRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.WriteAPIError(w, http.StatusBadRequest, "invalid program request")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		pkg.WriteAPIError(w, http.StatusBadRequest, "title, difficulty and duration (weeks) required")
		return
	}

	program, err := h.repo.AddProgram(ctx, Program{
		Title:         req.Title,
		Description:   req.Description,
		Difficulty:    Difficulty(req.Difficulty),
		DurationWeeks: req.DurationWeeks,
		CoachID:       principal.UserID,
	})
	if err != nil {
		log.Errorf("add program: %s", err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to create program")
		return
	}

	log.Debugf("program %d created by coach %d", program.ID, principal.UserID)
	pkg.WriteAPISuccess(w, http.StatusCreated, program)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.list")
	defer span.End()

	programs, err := h.repo.ListPrograms(ctx)
	if err != nil {
		log.Errorf("list programs: %s", err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to list programs")
		return
	}

	pkg.WriteAPIList(w, programs, len(programs))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.get")
	defer span.End()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	program, err := h.repo.GetProgram(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProgramNotFound) {
			pkg.WriteAPIError(w, http.StatusNotFound, "program not found")
			return
		}
		log.Errorf("get program %d: %s", id, err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to get program")
		return
	}

	pkg.WriteAPISuccess(w, http.StatusOK, program)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.update")
	defer span.End()

	if _, ok := requireCoach(w, ctx); !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req programRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.WriteAPIError(w, http.StatusBadRequest, "invalid program request")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		pkg.WriteAPIError(w, http.StatusBadRequest, "title, difficulty and duration (weeks) required")
		return
	}

	err := h.repo.UpdateProgram(ctx, Program{
		ID:            id,
		Title:         req.Title,
		Description:   req.Description,
		Difficulty:    Difficulty(req.Difficulty),
		DurationWeeks: req.DurationWeeks,
	})
	if err != nil {
		if errors.Is(err, ErrProgramNotFound) {
			pkg.WriteAPIError(w, http.StatusNotFound, "program not found")
			return
		}
		log.Errorf("update program %d: %s", id, err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to update program")
		return
	}

	pkg.WriteAPISuccess(w, http.StatusOK, "updated")
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.delete")
	defer span.End()

	if _, ok := requireCoach(w, ctx); !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.repo.DeleteProgram(ctx, id); err != nil {
		if errors.Is(err, ErrProgramNotFound) {
			pkg.WriteAPIError(w, http.StatusNotFound, "program not found")
			return
		}
		log.Errorf("delete program %d: %s", id, err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to delete program")
		return
	}

	pkg.WriteAPISuccess(w, http.StatusOK, "deleted")
}

type sessionRequest struct {
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description"`
	DayNumber       int    `json:"dayNumber" validate:"required,min=1"`
	DurationMinutes int    `json:"durationMinutes" validate:"min=0"`
}

func (h *Handler) HandleAddSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.addsession")
	defer span.End()

	if _, ok := requireCoach(w, ctx); !ok {
		return
	}

	programID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.WriteAPIError(w, http.StatusBadRequest, "invalid session request")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		pkg.WriteAPIError(w, http.StatusBadRequest, "title and day number required")
		return
	}

	session, err := h.repo.AddSession(ctx, Session{
		ProgramID:       programID,
		Title:           req.Title,
		Description:     req.Description,
		DayNumber:       req.DayNumber,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		log.Errorf("add session to program %d: %s", programID, err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	pkg.WriteAPISuccess(w, http.StatusCreated, session)
}

func (h *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.listsessions")
	defer span.End()

	programID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	sessions, err := h.repo.ListSessions(ctx, programID)
	if err != nil {
		log.Errorf("list sessions for program %d: %s", programID, err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	pkg.WriteAPIList(w, sessions, len(sessions))
}

func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.deletesession")
	defer span.End()

	if _, ok := requireCoach(w, ctx); !ok {
		return
	}

	sessionID, ok := pathID(w, r, "sessionId")
	if !ok {
		return
	}

	if err := h.repo.DeleteSession(ctx, sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			pkg.WriteAPIError(w, http.StatusNotFound, "session not found")
			return
		}
		log.Errorf("delete session %d: %s", sessionID, err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}

	pkg.WriteAPISuccess(w, http.StatusOK, "deleted")
}

func requireCoach(w http.ResponseWriter, ctx context.Context) (auth.Principal, bool) {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok || !principal.Role.CanCoach() {
		pkg.WriteAPIError(w, http.StatusForbidden, "requires role: coach or admin")
		return auth.Principal{}, false
	}
	return principal, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		pkg.WriteAPIError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
