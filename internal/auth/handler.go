package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/azelenovic/fitcoach/internal/telemetry/tracing"
	"github.com/azelenovic/fitcoach/pkg"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// UserAccount is the credentials view of a platform user, provided by
// the users repo.
type UserAccount struct {
	ID           int
	Email        string
	DisplayName  string
	PasswordHash string
	Role         Role
}

type accountsRepo interface {
	GetAccountByEmail(ctx context.Context, email string) (*UserAccount, error)
}

type Handler struct {
	accounts accountsRepo
	service  *Service
	validate *validator.Validate
}

func NewHandler(accounts accountsRepo, service *Service) *Handler {
	return &Handler{
		accounts: accounts,
		service:  service,
		validate: validator.New(),
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token       string `json:"token"`
	UserID      int    `json:"userId"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var loginReq loginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		log.Tracef("login, unmarshal json params: %s", err)
		pkg.WriteAPIError(w, http.StatusBadRequest, "invalid login request")
		return
	}
	if err := h.validate.Struct(loginReq); err != nil {
		pkg.WriteAPIError(w, http.StatusBadRequest, "email and password required")
		return
	}

	account, err := h.accounts.GetAccountByEmail(ctx, loginReq.Email)
	if err != nil {
		log.Tracef("[email] failed login attempt for: %s", loginReq.Email)
		pkg.WriteAPIError(w, http.StatusUnauthorized, "wrong credentials")
		return
	}

	if !pkg.CheckPasswordHash(loginReq.Password, account.PasswordHash) {
		log.Tracef("[password] failed login attempt for user: %s", loginReq.Email)
		pkg.WriteAPIError(w, http.StatusUnauthorized, "wrong credentials")
		return
	}

	token, err := h.service.Login(ctx, Principal{
		UserID: account.ID,
		Role:   account.Role,
	}, time.Now())
	if err != nil {
		log.Errorf("login failed, generate token error: %s", err)
		pkg.WriteAPIError(w, http.StatusInternalServerError, "generate token error")
		return
	}

	log.Tracef("new login success: user %d", account.ID)
	pkg.WriteAPISuccess(w, http.StatusOK, loginResponse{
		Token:       token,
		UserID:      account.ID,
		DisplayName: account.DisplayName,
		Role:        string(account.Role),
	})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	token := ExtractBearerToken(r)
	if token == "" {
		pkg.WriteAPIError(w, http.StatusUnauthorized, "no can do")
		return
	}

	if err := h.service.Logout(ctx, token); err != nil {
		log.Tracef("logout failed: %s", err)
		pkg.WriteAPIError(w, http.StatusUnauthorized, "no can do")
		return
	}

	pkg.WriteAPISuccess(w, http.StatusOK, "logged-out")
}

// ExtractBearerToken reads the bearer token from the Authorization header.
func ExtractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}
