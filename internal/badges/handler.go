package badges

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/azelenovic/fitcoach/internal/auth"
	"github.com/azelenovic/fitcoach/internal/telemetry/metrics"
	"github.com/azelenovic/fitcoach/internal/telemetry/tracing"
	"github.com/azelenovic/fitcoach/pkg"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type badgesRepo interface {
	Add(ctx context.Context, badge Badge) (*Badge, error)
	List(ctx context.Context) ([]Badge, error)
	Delete(ctx context.Context, id int) error
	Award(ctx context.Context, badgeID, userID, awardedBy int) error
	ListForUser(ctx context.Context, userID int) ([]UserBadge, error)
}

type Handler struct {
	repo     badgesRepo
	metrics  *metrics.Manager
	validate *validator.Validate
}

func NewHandler(repo badgesRepo, metrics *metrics.Manager) *Handler {
	return &Handler{
		repo:     repo,
		metrics:  metrics,
		validate: validator.New(),
	}
}

type badgeRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl"`
}

// HandleAdd creates a catalog badge. Admin only.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.badges.add")
	defer span.End()

	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok || !principal.Role.CanAdmin() {
		pkg.WriteAPIError(w, http.StatusForbidden, "requires role: admin")
		return
	}

	var req badgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.WriteAPIError(w, http.StatusBadRequest, "invalid badge request")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		pkg.WriteAPIError(w, http.StatusBadRequest, "badge name required")
		return
	}

	badge, err := h.repo.Add(ctx, Badge{
		Name:        req.Name,
		Description: req.Description,
		IconURL:     req.IconURL,
	})
	if err != nil {
		log.Errorf("add badge: %s", err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to create badge")
		return
	}

	pkg.WriteAPISuccess(w, http.StatusCreated, badge)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.badges.list")
	defer span.End()

	badges, err := h.repo.List(ctx)
	if err != nil {
		log.Errorf("list badges: %s", err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to list badges")
		return
	}

	pkg.WriteAPIList(w, badges, len(badges))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.badges.delete")
	defer span.End()

	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok || !principal.Role.CanAdmin() {
		pkg.WriteAPIError(w, http.StatusForbidden, "requires role: admin")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrBadgeNotFound) {
			pkg.WriteAPIError(w, http.StatusNotFound, "badge not found")
			return
		}
		log.Errorf("delete badge %d: %s", id, err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to delete badge")
		return
	}

	pkg.WriteAPISuccess(w, http.StatusOK, "deleted")
}

// HandleAward grants a badge to a user. Coach tier.
func (h *Handler) HandleAward(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.badges.award")
	defer span.End()

	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok || !principal.Role.CanCoach() {
		pkg.WriteAPIError(w, http.StatusForbidden, "requires role: coach or admin")
		return
	}

	badgeID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.repo.Award(ctx, badgeID, userID, principal.UserID); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateAward):
			pkg.WriteAPIError(w, http.StatusConflict, "user already holds this badge")
		case errors.Is(err, ErrBadgeNotFound):
			pkg.WriteAPIError(w, http.StatusNotFound, "badge or user not found")
		default:
			log.Errorf("award badge %d to user %d: %s", badgeID, userID, err)
			pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to award badge")
		}
		return
	}

	h.metrics.CounterBadgesAwarded.Inc()
	log.Debugf("badge %d awarded to user %d by %d", badgeID, userID, principal.UserID)
	pkg.WriteAPISuccess(w, http.StatusCreated, "awarded")
}

func (h *Handler) HandleListForUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.badges.listforuser")
	defer span.End()

	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	userBadges, err := h.repo.ListForUser(ctx, userID)
	if err != nil {
		log.Errorf("list badges for user %d: %s", userID, err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to list user badges")
		return
	}

	pkg.WriteAPIList(w, userBadges, len(userBadges))
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		pkg.WriteAPIError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
