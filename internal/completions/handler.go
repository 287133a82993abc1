package completions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/azelenovic/fitcoach/internal/auth"
	"github.com/azelenovic/fitcoach/internal/telemetry/tracing"
	"github.com/azelenovic/fitcoach/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

type recordRequest struct {
	ProgramID       int        `json:"programId"`
	SessionID       int        `json:"sessionId"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	DurationMinutes *int       `json:"durationMinutes,omitempty"`
	PhotoURL        *string    `json:"photoUrl,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	Feeling         *string    `json:"feeling,omitempty"`
}

// HandleRecord records that the authenticated user finished a session.
// Repeats of the same session are expected, this tracks frequency.
func (h *Handler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.completions.record")
	defer span.End()

	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		pkg.WriteAPIError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProgramID <= 0 || req.SessionID <= 0 {
		pkg.WriteAPIError(w, http.StatusBadRequest, "programId and sessionId required")
		return
	}
	if req.DurationMinutes != nil && *req.DurationMinutes < 0 {
		pkg.WriteAPIError(w, http.StatusBadRequest, "durationMinutes cannot be negative")
		return
	}

	completion := Completion{
		UserID:          principal.UserID,
		ProgramID:       req.ProgramID,
		SessionID:       req.SessionID,
		DurationMinutes: req.DurationMinutes,
		PhotoURL:        req.PhotoURL,
		Notes:           req.Notes,
	}
	if req.CompletedAt != nil {
		completion.CompletedAt = *req.CompletedAt
	}
	if req.Feeling != nil {
		feeling := Feeling(*req.Feeling)
		completion.Feeling = &feeling
	}

	recorded, err := h.service.Record(ctx, completion)
	if err != nil {
		if errors.Is(err, ErrInvalidFeeling) {
			pkg.WriteAPIError(w, http.StatusBadRequest,
				"feeling must be one of: terrible, bad, okay, good, excellent")
			return
		}
		log.Errorf("record completion for user %d: %s", principal.UserID, err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to record completion")
		return
	}

	pkg.WriteAPISuccess(w, http.StatusCreated, recorded)
}

func (h *Handler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.completions.listbyuser")
	defer span.End()

	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	h.writeList(w, func() ([]Completion, error) {
		return h.service.ListByUser(ctx, userID)
	})
}

func (h *Handler) HandleListByProgram(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.completions.listbyprogram")
	defer span.End()

	programID, ok := pathID(w, r, "programId")
	if !ok {
		return
	}

	h.writeList(w, func() ([]Completion, error) {
		return h.service.ListByProgram(ctx, programID)
	})
}

func (h *Handler) HandleListBySession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.completions.listbysession")
	defer span.End()

	sessionID, ok := pathID(w, r, "sessionId")
	if !ok {
		return
	}

	h.writeList(w, func() ([]Completion, error) {
		return h.service.ListBySession(ctx, sessionID)
	})
}

func (h *Handler) writeList(w http.ResponseWriter, list func() ([]Completion, error)) {
	completions, err := list()
	if err != nil {
		log.Errorf("list completions: %s", err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to list completions")
		return
	}
	pkg.WriteAPIList(w, completions, len(completions))
}

func (h *Handler) HandleUserProgramStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.completions.stats")
	defer span.End()

	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	programID, ok := pathID(w, r, "programId")
	if !ok {
		return
	}

	stats, err := h.service.UserProgramStats(ctx, userID, programID)
	if err != nil {
		log.Errorf("user %d program %d stats: %s", userID, programID, err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	pkg.WriteAPISuccess(w, http.StatusOK, stats)
}

func (h *Handler) HandleActivityFeed(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.completions.feed")
	defer span.End()

	programID, ok := pathID(w, r, "programId")
	if !ok {
		return
	}

	limit := 0
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		var err error
		if limit, err = strconv.Atoi(rawLimit); err != nil || limit < 0 {
			pkg.WriteAPIError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	feed, err := h.service.ActivityFeed(ctx, programID, limit)
	if err != nil {
		log.Errorf("activity feed for program %d: %s", programID, err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to build activity feed")
		return
	}

	pkg.WriteAPIList(w, feed, len(feed))
}

// HandleDelete removes a completion. Owners delete their own records,
// the coach tier can clean up anyone's.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.completions.delete")
	defer span.End()

	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		pkg.WriteAPIError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	completion, err := h.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrCompletionNotFound) {
			pkg.WriteAPIError(w, http.StatusNotFound, "completion not found")
			return
		}
		log.Errorf("get completion %d: %s", id, err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to delete completion")
		return
	}

	if completion.UserID != principal.UserID && !principal.Role.CanCoach() {
		pkg.WriteAPIError(w, http.StatusForbidden, "requires ownership or role: coach or admin")
		return
	}

	if err := h.service.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrCompletionNotFound) {
			pkg.WriteAPIError(w, http.StatusNotFound, "completion not found")
			return
		}
		log.Errorf("delete completion %d: %s", id, err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to delete completion")
		return
	}

	pkg.WriteAPISuccess(w, http.StatusOK, "deleted")
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		pkg.WriteAPIError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
