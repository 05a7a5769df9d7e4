package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/todmy/botcheck/internal/aimodel"
	"github.com/todmy/botcheck/internal/analyzer"
	"github.com/todmy/botcheck/internal/auth"
	"github.com/todmy/botcheck/internal/storage"
)

// ServerConfig holds the dependencies of the HTTP server.
type ServerConfig struct {
	DB         *sql.DB
	JWTSecret  string
	AIModelKey string
	Logger     zerolog.Logger
}

type Server struct {
	router      *chi.Mux
	engine      *analyzer.Engine
	scoreRepo   storage.ScoreRepository
	authService auth.Service
	logger      zerolog.Logger
}

// NewServer wires the engine, repositories and routes.
func NewServer(config ServerConfig) *Server {
	authConfig := auth.DefaultConfig()
	if config.JWTSecret != "" {
		authConfig.SecretKey = config.JWTSecret
	}

	engineConfig := analyzer.EngineConfig{}
	if config.AIModelKey != "" {
		engineConfig.Scorer = aimodel.NewClient(config.AIModelKey)
	}

	s := &Server{
		router:      chi.NewRouter(),
		engine:      analyzer.NewEngine(engineConfig),
		scoreRepo:   storage.NewPostgresScoreRepository(config.DB),
		authService: auth.NewJWTService(authConfig, auth.NewPostgresRepository(config.DB)),
		logger:      config.Logger,
	}
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (public)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		// Scoring (public, rate limited)
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(60, time.Minute))
			r.Post("/analyze", s.handleAnalyze)
		})

		// Score history (operators only)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.authService))
			r.Get("/users/{userID}/score", s.handleGetUserScore)
			r.Get("/users/{userID}/history", s.handleGetUserHistory)
			r.Get("/stats", s.handleGetStats)
		})
	})
}

func (s *Server) Run(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("listening")
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Helper to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
