package middleware

import (
	"net/http"
	"strings"

	"github.com/azelenovic/fitcoach/internal/auth"
	"github.com/azelenovic/fitcoach/internal/telemetry/tracing"
	"github.com/azelenovic/fitcoach/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

type AuthMiddlewareHandler struct {
	tokenChecker         auth.Checker
	allowedPaths         map[string]bool
	allowedPathsPrefixes []string
}

func NewAuthMiddlewareHandler(tokenChecker auth.Checker) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		tokenChecker: tokenChecker,
		allowedPaths: map[string]bool{
			"/":        true,
			"/version": true,

			// login-logout:
			"/a/login":  true,
			"/a/logout": true,

			// sign up is open, everything else under /users is gated
			"/users/register": true,
		},
		allowedPathsPrefixes: []string{
			// marketing site pulls the badge catalog without a principal
			"/badges",
		},
	}
}

func (h *AuthMiddlewareHandler) pathIsAlwaysAllowed(r *http.Request) bool {
	if h.allowedPaths[r.URL.Path] {
		return true
	}

	// enrollment and completion reads are public, mutations are not
	if r.Method == http.MethodGet &&
		(strings.HasPrefix(r.URL.Path, "/enrollments/") ||
			strings.HasPrefix(r.URL.Path, "/completions/")) {
		return true
	}

	if r.Method == http.MethodGet {
		for _, prefix := range h.allowedPathsPrefixes {
			if strings.HasPrefix(r.URL.Path, prefix) {
				return true
			}
		}
	}

	return false
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.pathIsAlwaysAllowed(r) {
				// best effort: public reads still resolve the principal
				// when a valid token is sent along
				if authToken := auth.ExtractBearerToken(r); authToken != "" {
					if principal, err := h.tokenChecker.Check(ctx, authToken); err == nil {
						r = r.WithContext(auth.ContextWithPrincipal(ctx, principal))
					}
				}
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			authToken := auth.ExtractBearerToken(r)
			if authToken == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				pkg.WriteAPIError(w, http.StatusUnauthorized, "missing bearer token")
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			principal, err := h.tokenChecker.Check(ctx, authToken)
			if err != nil {
				reqIp, _ := pkg.ReadUserIP(r)
				log.Tracef("[invalid token] [auth middleware] unauthorized request from %s => %s", reqIp, r.URL.Path)
				pkg.WriteAPIError(w, http.StatusUnauthorized, "invalid or expired token")
				span.SetStatus(codes.Error, "not-logged")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.ContextWithPrincipal(ctx, principal)))
		})
	}
}
