package users

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

type usersRepo interface {
	Add(ctx context.Context, user User) (*User, error)
	Get(ctx context.Context, id int) (*User, error)
	List(ctx context.Context) ([]User, error)
	UpdateRole(ctx context.Context, id int, role auth.Role) error
	Delete(ctx context.Context, id int) error
}

type Handler struct {
	repo     usersRepo
	validate *validator.Validate
}

func NewHandler(repo usersRepo) *Handler {
	return &Handler{
		repo:     repo,
		validate: validator.New(),
	}
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"required"`
	Password    string `json:"password" validate:"required,min=8"`
}

// HandleRegister creates a new member account. Accounts always start with
// the member role, promotion goes through the role endpoint.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.register")
	defer span.End()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("register, unmarshal json params: %s", err)
		pkg.WriteAPIError(w, http.StatusBadRequest, "invalid register request")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		pkg.WriteAPIError(w, http.StatusBadRequest, "email, display name and password (min 8 chars) required")
		return
	}

	passwordHash, err := pkg.HashPassword(req.Password)
	if err != nil {
		log.Errorf("register, hash password: %s", err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user, err := h.repo.Add(ctx, User{
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: passwordHash,
		Role:         auth.RoleUser,
	})
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			pkg.WriteAPIError(w, http.StatusConflict, "email already registered")
			return
		}
		log.Errorf("register user: %s", err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	log.Debugf("new user registered: %d [%s]", user.ID, user.Email)
	pkg.WriteAPISuccess(w, http.StatusCreated, user)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.list")
	defer span.End()

	if !requireAdmin(w, ctx) {
		return
	}

	users, err := h.repo.List(ctx)
	if err != nil {
		log.Errorf("list users: %s", err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	pkg.WriteAPIList(w, users, len(users))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.get")
	defer span.End()

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	user, err := h.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			pkg.WriteAPIError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Errorf("get user %d: %s", id, err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	pkg.WriteAPISuccess(w, http.StatusOK, user)
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// HandleUpdateRole changes a user's role. Admin only, and an admin can
// never change their own role, so the platform always keeps at least the
// acting admin.
func (h *Handler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.updaterole")
	defer span.End()

	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok || !principal.Role.CanAdmin() {
		pkg.WriteAPIError(w, http.StatusForbidden, "requires role: admin")
		return
	}

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if id == principal.UserID {
		pkg.WriteAPIError(w, http.StatusForbidden, "admins cannot change their own role")
		return
	}

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.WriteAPIError(w, http.StatusBadRequest, "invalid role request")
		return
	}

	role, err := auth.ParseRole(req.Role)
	if err != nil {
		pkg.WriteAPIError(w, http.StatusBadRequest, "unknown role: "+req.Role)
		return
	}

	if err := h.repo.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			pkg.WriteAPIError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Errorf("update role for user %d: %s", id, err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to update role")
		return
	}

	log.Debugf("user %d role set to %s by admin %d", id, role, principal.UserID)
	pkg.WriteAPISuccess(w, http.StatusOK, "updated")
}

// HandleDelete removes a user account. Admin only, self-deletion rejected.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.delete")
	defer span.End()

	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok || !principal.Role.CanAdmin() {
		pkg.WriteAPIError(w, http.StatusForbidden, "requires role: admin")
		return
	}

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if id == principal.UserID {
		pkg.WriteAPIError(w, http.StatusForbidden, "admins cannot delete their own account")
		return
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			pkg.WriteAPIError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Errorf("delete user %d: %s", id, err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	log.Debugf("user %d deleted by admin %d", id, principal.UserID)
	pkg.WriteAPISuccess(w, http.StatusOK, "deleted")
}

func requireAdmin(w http.ResponseWriter, ctx context.Context) bool {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok || !principal.Role.CanAdmin() {
		pkg.WriteAPIError(w, http.StatusForbidden, "requires role: admin")
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		pkg.WriteAPIError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}
