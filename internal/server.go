package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/azelenovic/fitcoach/internal/auth"
	"github.com/azelenovic/fitcoach/internal/badges"
	"github.com/azelenovic/fitcoach/internal/completions"
	"github.com/azelenovic/fitcoach/internal/config"
	"github.com/azelenovic/fitcoach/internal/db"
	"github.com/azelenovic/fitcoach/internal/enrollments"
	"github.com/azelenovic/fitcoach/internal/middleware"
	"github.com/azelenovic/fitcoach/internal/programs"
	"github.com/azelenovic/fitcoach/internal/telemetry/metrics"
	"github.com/azelenovic/fitcoach/internal/telemetry/tracing"
	"github.com/azelenovic/fitcoach/internal/users"
	"github.com/azelenovic/fitcoach/pkg"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/multierr"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config *config.Config
	dbPool *pgxpool.Pool

	redisClient  *redis.Client
	authService  *auth.Service
	tokenChecker *auth.TokenChecker

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config         *config.Config
	JWTSigningKey  string
	RedisPassword  string
	VersionInfo    string
	TracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		TracingEnabled: params.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("backend", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	authService := auth.NewService([]byte(params.JWTSigningKey), auth.DefaultTTL, rdb)
	go func() {
		for range time.Tick(time.Hour * 8) {
			authService.ScanAndClean(ctx)
		}
	}()

	otelShutdown, err := tracing.Setup(params.TracingEnabled, "fitcoach-backend")
	if err != nil {
		return nil, err
	}

	return &Server{
		config:      params.Config,
		dbPool:      dbPool,
		versionInfo: params.VersionInfo,

		redisClient:  rdb,
		authService:  authService,
		tokenChecker: auth.NewTokenChecker(authService, rdb),

		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, "I'm OK, thanks!")
	}).Methods("GET").Name("root")
	r.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, s.versionInfo)
	}).Methods("GET").Name("version")

	usersRepo := users.NewRepo(s.dbPool)

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	authHandler := auth.NewHandler(usersRepo, s.authService)
	authRouter := r.PathPrefix("/a").Subrouter()
	authRouter.Use(middleware.RateLimit(
		reqRateLimiter, "login",
		s.config.LoginRateLimitAllowedPerMin,
		s.metricsManager,
	))
	authRouter.HandleFunc("/login", authHandler.HandleLogin).Methods("POST", "OPTIONS").Name("login")
	authRouter.HandleFunc("/logout", authHandler.HandleLogout).Methods("GET", "OPTIONS").Name("logout")

	usersHandler := users.NewHandler(usersRepo)
	r.HandleFunc("/users/register", usersHandler.HandleRegister).Methods("POST", "OPTIONS").Name("register")
	r.HandleFunc("/users", usersHandler.HandleList).Methods("GET", "OPTIONS").Name("list-users")
	r.HandleFunc("/users/{id}", usersHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-user")
	r.HandleFunc("/users/{id}/role", usersHandler.HandleUpdateRole).Methods("PUT", "OPTIONS").Name("update-user-role")
	r.HandleFunc("/users/{id}", usersHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-user")

	programsHandler := programs.NewHandler(programs.NewRepo(s.dbPool))
	r.HandleFunc("/programs", programsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-program")
	r.HandleFunc("/programs", programsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-programs")
	r.HandleFunc("/programs/{id}", programsHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-program")
	r.HandleFunc("/programs/{id}", programsHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-program")
	r.HandleFunc("/programs/{id}", programsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-program")
	r.HandleFunc("/programs/{id}/sessions", programsHandler.HandleAddSession).Methods("POST", "OPTIONS").Name("new-session")
	r.HandleFunc("/programs/{id}/sessions", programsHandler.HandleListSessions).Methods("GET", "OPTIONS").Name("list-sessions")
	r.HandleFunc("/programs/{id}/sessions/{sessionId}", programsHandler.HandleDeleteSession).Methods("DELETE", "OPTIONS").Name("delete-session")

	enrollmentsHandler := enrollments.NewHandler(
		enrollments.NewService(enrollments.NewRepo(s.dbPool), s.metricsManager),
	)
	r.HandleFunc("/enrollments", enrollmentsHandler.HandleEnroll).Methods("POST", "OPTIONS").Name("enroll")
	r.HandleFunc("/enrollments/{programId}", enrollmentsHandler.HandleUnenroll).Methods("DELETE", "OPTIONS").Name("unenroll")
	r.HandleFunc("/enrollments/{programId}/status", enrollmentsHandler.HandleUpdateStatus).Methods("PUT", "OPTIONS").Name("update-enrollment-status")
	r.HandleFunc("/enrollments/check/{programId}", enrollmentsHandler.HandleCheck).Methods("GET", "OPTIONS").Name("check-enrollment")
	r.HandleFunc("/enrollments/program/{programId}/users", enrollmentsHandler.HandleUsersByProgram).Methods("GET", "OPTIONS").Name("users-by-program")
	r.HandleFunc("/enrollments/user/{userId}/programs", enrollmentsHandler.HandleProgramsByUser).Methods("GET", "OPTIONS").Name("programs-by-user")
	r.HandleFunc("/enrollments/program/{programId}/stats", enrollmentsHandler.HandleProgramStats).Methods("GET", "OPTIONS").Name("program-stats")

	completionsHandler := completions.NewHandler(
		completions.NewService(completions.NewRepo(s.dbPool), s.metricsManager),
	)
	r.HandleFunc("/completions", completionsHandler.HandleRecord).Methods("POST", "OPTIONS").Name("record-completion")
	r.HandleFunc("/completions/user/{userId}", completionsHandler.HandleListByUser).Methods("GET", "OPTIONS").Name("completions-by-user")
	r.HandleFunc("/completions/program/{programId}", completionsHandler.HandleListByProgram).Methods("GET", "OPTIONS").Name("completions-by-program")
	r.HandleFunc("/completions/session/{sessionId}", completionsHandler.HandleListBySession).Methods("GET", "OPTIONS").Name("completions-by-session")
	r.HandleFunc("/completions/stats/{userId}/{programId}", completionsHandler.HandleUserProgramStats).Methods("GET", "OPTIONS").Name("user-program-stats")
	r.HandleFunc("/completions/feed/{programId}", completionsHandler.HandleActivityFeed).Methods("GET", "OPTIONS").Name("activity-feed")
	r.HandleFunc("/completions/{id}", completionsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-completion")

	badgesHandler := badges.NewHandler(badges.NewRepo(s.dbPool), s.metricsManager)
	r.HandleFunc("/badges", badgesHandler.HandleList).Methods("GET", "OPTIONS").Name("list-badges")
	r.HandleFunc("/badges", badgesHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-badge")
	r.HandleFunc("/badges/{id}", badgesHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-badge")
	r.HandleFunc("/badges/{id}/award/{userId}", badgesHandler.HandleAward).Methods("POST", "OPTIONS").Name("award-badge")
	r.HandleFunc("/users/{id}/badges", badgesHandler.HandleListForUser).Methods("GET", "OPTIONS").Name("user-badges")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.tokenChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(_ context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() error {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	var shutdownErr error

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			shutdownErr = multierr.Append(shutdownErr, fmt.Errorf("close redis client: %w", err))
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		shutdownErr = multierr.Append(shutdownErr, fmt.Errorf("shutdown http server: %w", err))
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		shutdownErr = multierr.Append(shutdownErr, fmt.Errorf("shutdown metrics http server: %w", err))
	}
	log.Warnln("metrics server shut down")

	return shutdownErr
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
