package server

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/spacesedan/emotiflow/config"
	"github.com/spacesedan/emotiflow/internal/models"
	"github.com/spacesedan/emotiflow/internal/monitoring"
)

//go:embed static/index.html
var staticFS embed.FS

// Detector is the emotion classification the facade depends on.
type Detector interface {
	Detect(ctx context.Context, text string) (models.EmotionResult, error)
}

// Analyzer and HistoryProvider are optional; when the injected Detector also
// implements them the JSON API reports ids and history.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (models.Analysis, error)
}

type HistoryProvider interface {
	History(ctx context.Context, limit int) ([]models.Analysis, error)
}

// Server holds all the components for the web application
type Server struct {
	cfg        config.Config
	httpServer *http.Server
	router     *mux.Router
	detector   Detector
	health     *monitoring.ClassifierHealth
}

func New(cfg config.Config, detector Detector, health *monitoring.ClassifierHealth) *Server {
	if health == nil {
		health = &monitoring.ClassifierHealth{}
	}
	s := &Server{
		cfg:      cfg,
		router:   mux.NewRouter(),
		detector: detector,
		health:   health,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/emotionDetector", s.handleEmotionDetector).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/emotions", s.handleEmotions).Methods(http.MethodGet)
	api.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)

	s.router.Use(logRequests)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP connections
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.cfg.WatsonTimeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("[Server] Listening", slog.String("url", fmt.Sprintf("http://localhost:%d", s.cfg.Port)))
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("[Server] Request handled",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("elapsed", time.Since(start)))
	})
}
