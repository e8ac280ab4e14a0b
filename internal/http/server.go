package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/storerate/storerate/internal/auth"
	"github.com/storerate/storerate/internal/config"
	"github.com/storerate/storerate/internal/db"
	"github.com/storerate/storerate/internal/repository"
	"github.com/storerate/storerate/internal/service"
)

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg      config.Config
	db       *db.DB
	repo     *repository.Repository
	auth     *auth.Service
	ratings  *service.RatingService
	logger   *log.Logger
	validate *validator.Validate
	router   chi.Router
	httpSrv  *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, database *db.DB, repo *repository.Repository, authSvc *auth.Service, ratings *service.RatingService, logger *log.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:      cfg,
		db:       database,
		repo:     repo,
		auth:     authSvc,
		ratings:  ratings,
		logger:   logger,
		validate: validator.New(),
		router:   r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/me", s.handleMe)
			r.Put("/password", s.handleChangePassword)
		})
	})

	s.router.Route("/stores", func(r chi.Router) {
		r.Get("/", s.handleListStores)
		r.Get("/{storeID}", s.handleGetStore)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateStore)
			r.Patch("/{storeID}", s.handleUpdateStore)
			r.Delete("/{storeID}", s.handleDeleteStore)
		})
	})

	s.router.Route("/ratings", func(r chi.Router) {
		r.With(s.optionalAuth).Get("/store/{storeID}", s.handleStoreRatings)
		r.Get("/store/{storeID}/stats", s.handleStoreStats)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleListAllRatings)
			r.Get("/stats", s.handleOverallStats)
			r.Get("/user/{userID}", s.handleUserRatings)
			r.Post("/", s.handleSubmitRating)
			r.Put("/{ratingID}", s.handleUpdateRating)
			r.Delete("/{ratingID}", s.handleDeleteRating)
		})
	})

	s.router.Route("/users", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleListUsers)
		r.Get("/{userID}", s.handleGetUser)
		r.Delete("/{userID}", s.handleDeactivateUser)
	})
}

// Start boots the HTTP server asynchronously.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.HealthCheck(ctx); err != nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

type identityCtxKey int

const identityKey identityCtxKey = 1

// requireAuth resolves the bearer credential and stores the identity in the
// request context, rejecting the request when resolution fails.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := s.auth.Resolve(r.Context(), bearerToken(r))
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
				return
			}
			s.logger.Printf("resolve identity: %v", err)
			s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to authenticate request")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
	})
}

// optionalAuth attaches the identity when a valid credential is present and
// proceeds anonymously otherwise.
func (s *Server) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if identity, err := s.auth.Resolve(r.Context(), token); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), identityKey, identity))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func identityFrom(r *http.Request) (auth.Identity, bool) {
	identity, ok := r.Context().Value(identityKey).(auth.Identity)
	return identity, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
