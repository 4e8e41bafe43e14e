// Package server exposes the decision engine over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iskra-project/spark-engine/internal/engine"
)

// Server is the spark HTTP API server.
type Server struct {
	engine  *engine.Engine
	router  chi.Router
	version string
	started time.Time
}

// New creates a Server around an engine.
func New(e *engine.Engine, version string) *Server {
	s := &Server{
		engine:  e,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/turn", s.handleTurn)
		r.Get("/state", s.handleState)
		r.Get("/phase", s.handlePhase)
		r.Post("/voice/feedback", s.handleVoiceFeedback)
		r.Post("/voice/override", s.handleVoiceOverride)
		r.Get("/ritual/pending", s.handleRitualPending)
		r.Post("/ritual/confirm", s.handleRitualConfirm)
		r.Get("/eval/{responseID}", s.handleEval)
	})

	s.router = r
}
