package services

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/upadhyai/backend/repository"
	ws "github.com/upadhyai/backend/websocket"
)

// Server holds all server dependencies
type Server struct {
	config *Config
	repo   *repository.GORMRepository
	store  ObjectStore

	authService       *AuthService
	profileResolver   *ProfileResolver
	agentResolver     *AgentAccessResolver
	adminResolver     *AdminDataResolver
	accessService     *RoleAccessService
	invoker           *AgentInvoker
	authEndpoints     *AuthEndpoints
	accessEndpoints   *AccessEndpoints
	profileEndpoints  *ProfileEndpoints
	agentEndpoints    *AgentEndpoints
	trainingEndpoints *TrainingEndpoints
	resumeEndpoints   *ResumeEndpoints
	adminEndpoints    *AdminEndpoints

	wsHub    *ws.Hub
	upgrader websocket.Upgrader
}

// NewServer creates a new server instance
func NewServer(config *Config) *Server {
	return &Server{
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return CheckOrigin(r, config.WebSocket.AllowedOrigins)
			},
		},
	}
}

// SetDatabase sets the database connection
func (s *Server) SetDatabase(repo *repository.GORMRepository) {
	s.repo = repo
}

// SetStorage sets the object storage client for resume uploads
func (s *Server) SetStorage(store ObjectStore) {
	s.store = store
}

// InitializeServices wires the resolvers, the facade, the invoker, and the
// endpoint groups. Must be called after SetDatabase.
func (s *Server) InitializeServices() error {
	s.wsHub = ws.NewHub()
	go s.wsHub.Run()

	s.authService = NewAuthService(s.repo, s.config.JWT.Secret)
	s.authEndpoints = NewAuthEndpoints(s.authService)

	s.profileResolver = NewProfileResolver(s.repo)
	s.agentResolver = NewAgentAccessResolver(s.repo)
	s.adminResolver = NewAdminDataResolver(s.repo)
	s.accessService = NewRoleAccessService(s.profileResolver, s.agentResolver, s.adminResolver)

	s.invoker = NewAgentInvoker(s.repo, s.wsHub, s.config.Webhook.Timeout)

	s.accessEndpoints = NewAccessEndpoints(s.repo, s.accessService)
	s.profileEndpoints = NewProfileEndpoints(s.repo, s.profileResolver, s.accessService)
	s.agentEndpoints = NewAgentEndpoints(s.repo, s.accessService, s.invoker)
	s.trainingEndpoints = NewTrainingEndpoints(s.repo)
	s.resumeEndpoints = NewResumeEndpoints(s.repo, s.store)
	s.adminEndpoints = NewAdminEndpoints(s.repo, s.accessService)

	slog.Info("Services initialized")
	return nil
}

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes (no middleware)
		s.authEndpoints.RegisterPublicRoutes(r)

		// Everything else requires a session
		r.Group(func(r chi.Router) {
			r.Use(s.authService.Middleware)

			s.authEndpoints.RegisterProtectedRoutes(r)
			s.accessEndpoints.RegisterRoutes(r)
			s.profileEndpoints.RegisterRoutes(r)
			s.agentEndpoints.RegisterRoutes(r)
			s.trainingEndpoints.RegisterRoutes(r)
			s.resumeEndpoints.RegisterRoutes(r)
			s.adminEndpoints.RegisterRoutes(r)

			r.Get("/ws", s.websocketHandlerFunc)
		})
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start() {
	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.SetupRoutes(),
	}

	// Graceful shutdown
	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// CheckOrigin validates the origin of WebSocket connections to prevent CSRF
// attacks. An empty allow-list denies everything.
func CheckOrigin(r *http.Request, allowedOriginsStr string) bool {
	origin := r.Header.Get("Origin")

	if allowedOriginsStr == "" {
		slog.Warn("WebSocket connection rejected: no allowed origins configured", "origin", origin)
		return false
	}

	allowedOrigins := strings.Split(allowedOriginsStr, ",")
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}

	for _, allowed := range allowedOrigins {
		if allowed == origin {
			return true
		}
	}

	slog.Warn("WebSocket connection rejected: origin not allowed", "origin", origin, "allowed_origins", allowedOriginsStr)
	return false
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "not configured"

	if s.repo != nil {
		if err := s.repo.Ping(r.Context()); err != nil {
			dbStatus = "down"
			status = "degraded"
		} else {
			dbStatus = "up"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"` + status + `","database":"` + dbStatus + `"}`))

	slog.Info("Health check", "status", status, "database", dbStatus)
}

// websocketHandlerFunc upgrades the connection and attaches it to the event
// hub under the caller's user id.
func (s *Server) websocketHandlerFunc(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		slog.Error("WebSocket connection failed - user not found in context")
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	slog.Info("WebSocket connection established", "user_id", user.ID, "email", user.Email)

	client := s.wsHub.RegisterClient(conn, user.ID)
	go client.WritePump()
	client.ReadPump()
}
