package enrollments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

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

type enrollRequest struct {
	ProgramID int `json:"programId"`
}

// HandleEnroll enrolls the authenticated user into a program. A second
// enroll for the same pair answers 409.
func (h *Handler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.enrollments.enroll")
	defer span.End()

	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		pkg.WriteAPIError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProgramID <= 0 {
		pkg.WriteAPIError(w, http.StatusBadRequest, "programId required")
		return
	}

	enrollment, err := h.service.Enroll(ctx, principal.UserID, req.ProgramID)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEnrollment):
			pkg.WriteAPIError(w, http.StatusConflict, "already enrolled in this program")
		case errors.Is(err, ErrProgramNotFound):
			pkg.WriteAPIError(w, http.StatusNotFound, "program not found")
		default:
			log.Errorf("enroll user %d in program %d: %s", principal.UserID, req.ProgramID, err)
			pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to enroll")
		}
		return
	}

	pkg.WriteAPISuccess(w, http.StatusCreated, enrollment)
}

func (h *Handler) HandleUnenroll(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.enrollments.unenroll")
	defer span.End()

	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		pkg.WriteAPIError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	programID, ok := pathID(w, r, "programId")
	if !ok {
		return
	}

	if err := h.service.Unenroll(ctx, principal.UserID, programID); err != nil {
		if errors.Is(err, ErrEnrollmentNotFound) {
			pkg.WriteAPIError(w, http.StatusNotFound, "enrollment not found")
			return
		}
		log.Errorf("unenroll user %d from program %d: %s", principal.UserID, programID, err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to unenroll")
		return
	}

	pkg.WriteAPISuccess(w, http.StatusOK, "unenrolled")
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.enrollments.updatestatus")
	defer span.End()

	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		pkg.WriteAPIError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	programID, ok := pathID(w, r, "programId")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.WriteAPIError(w, http.StatusBadRequest, "status required")
		return
	}

	if err := h.service.UpdateStatus(ctx, principal.UserID, programID, req.Status); err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatus):
			pkg.WriteAPIError(w, http.StatusBadRequest,
				"status must be one of: active, paused, completed, abandoned")
		case errors.Is(err, ErrEnrollmentNotFound):
			pkg.WriteAPIError(w, http.StatusNotFound, "enrollment not found")
		default:
			log.Errorf("update enrollment status, user %d program %d: %s", principal.UserID, programID, err)
			pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to update status")
		}
		return
	}

	pkg.WriteAPISuccess(w, http.StatusOK, "status updated")
}

// HandleCheck reports whether a user is enrolled in a program. The user
// is the authenticated principal when a token was sent, otherwise the
// userId query param.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.enrollments.check")
	defer span.End()

	programID, ok := pathID(w, r, "programId")
	if !ok {
		return
	}

	userID, ok := resolveUserID(w, r)
	if !ok {
		return
	}

	enrolled, err := h.service.IsEnrolled(ctx, userID, programID)
	if err != nil {
		log.Errorf("check enrollment, user %d program %d: %s", userID, programID, err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to check enrollment")
		return
	}

	pkg.WriteAPISuccess(w, http.StatusOK, map[string]bool{"enrolled": enrolled})
}

func (h *Handler) HandleUsersByProgram(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.enrollments.usersbyprogram")
	defer span.End()

	programID, ok := pathID(w, r, "programId")
	if !ok {
		return
	}

	users, err := h.service.UsersByProgram(ctx, programID)
	if err != nil {
		log.Errorf("users by program %d: %s", programID, err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to list enrolled users")
		return
	}

	pkg.WriteAPIList(w, users, len(users))
}

func (h *Handler) HandleProgramsByUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.enrollments.programsbyuser")
	defer span.End()

	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	programs, err := h.service.ProgramsByUser(ctx, userID)
	if err != nil {
		log.Errorf("programs by user %d: %s", userID, err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to list user programs")
		return
	}

	pkg.WriteAPIList(w, programs, len(programs))
}

func (h *Handler) HandleProgramStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.enrollments.programstats")
	defer span.End()

	programID, ok := pathID(w, r, "programId")
	if !ok {
		return
	}

	stats, err := h.service.ProgramStats(ctx, programID)
	if err != nil {
		log.Errorf("program stats %d: %s", programID, err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to compute program stats")
		return
	}

	pkg.WriteAPISuccess(w, http.StatusOK, stats)
}

func resolveUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		return principal.UserID, true
	}
	if rawID := r.URL.Query().Get("userId"); rawID != "" {
		userID, err := strconv.Atoi(rawID)
		if err != nil {
			pkg.WriteAPIError(w, http.StatusBadRequest, "invalid userId")
			return 0, false
		}
		return userID, true
	}
	pkg.WriteAPIError(w, http.StatusUnauthorized, "missing bearer token or userId")
	return 0, false
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		pkg.WriteAPIError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
