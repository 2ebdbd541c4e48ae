package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"numtree-backend/infrastructure/di"
	"numtree-backend/interfaces/http/rest/handlers"
	"numtree-backend/interfaces/http/rest/middleware"
	"numtree-backend/pkg/common"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RoleRegistered is required on routes that create trees or operations
const RoleRegistered = "REGISTERED"

const readinessTimeout = 2 * time.Second

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{
		container: container,
		logger:    container.Logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	c := rt.container
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(c.ErrorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if c.Metrics != nil {
		router.Use(middleware.Metrics(c.Metrics))
	}

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   c.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/", rt.welcome)
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if c.Config.EnableMetrics && c.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", c.Metrics.Handler())
	}

	authenticate := middleware.Authenticate(c.Tokens, c.Users, c.ErrorHandler, rt.logger)
	registered := middleware.RequireRole(c.ErrorHandler, RoleRegistered)

	authHandler := handlers.NewAuthHandler(c.CommandBus, c.QueryBus, handlers.CookieOptions{
		Name:   middleware.TokenCookie,
		MaxAge: c.Config.CookieMaxAge,
		Secure: c.Config.IsProduction(),
	}, c.ErrorHandler, rt.logger)
	treeHandler := handlers.NewTreeHandler(c.CommandBus, c.QueryBus, c.ErrorHandler, rt.logger)

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(c.RateLimiter, c.ErrorHandler, rt.logger))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/sign-up", authHandler.SignUp)
			r.Post("/login", authHandler.Login)
			r.With(authenticate).Post("/register", authHandler.Register)
			r.With(authenticate).Get("/me", authHandler.Me)
		})

		r.Route("/trees", func(r chi.Router) {
			r.Get("/", treeHandler.ListTrees)
			r.With(authenticate).Get("/{id}", treeHandler.GetTree)
			r.With(authenticate, registered).Post("/", treeHandler.CreateTree)
			r.With(authenticate, registered).Post("/{id}/operations", treeHandler.AddOperation)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		c.ErrorHandler.HandleStatus(w, r, http.StatusNotFound, fmt.Sprintf("Can't find %s on this server!", r.URL.Path))
	})

	return router
}

// welcome handles GET /
func (rt *Router) welcome(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Welcome to the number tree API"))
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	if err := common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"}); err != nil {
		rt.logger.Error("Failed to encode health response", zap.Error(err))
	}
}

// readinessCheck reports ready only when storage answers a ping
func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := rt.container.Health.Ping(ctx); err != nil {
		rt.logger.Warn("Readiness check failed", zap.Error(err))
		rt.container.ErrorHandler.HandleStatus(w, r, http.StatusServiceUnavailable, "storage is not reachable")
		return
	}

	if err := common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"}); err != nil {
		rt.logger.Error("Failed to encode readiness response", zap.Error(err))
	}
}
