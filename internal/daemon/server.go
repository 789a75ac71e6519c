package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ihavespoons/feelsy/internal/config"
	"github.com/ihavespoons/feelsy/internal/creative"
	"github.com/ihavespoons/feelsy/internal/emotion"
	"github.com/ihavespoons/feelsy/internal/gif"
	"github.com/ihavespoons/feelsy/internal/hooks"
	"github.com/ihavespoons/feelsy/internal/logger"
	"github.com/ihavespoons/feelsy/internal/monologue"
	"github.com/ihavespoons/feelsy/internal/store"
)

// Server is the feelsy daemon: feed tailer, processing pipeline, HTTP API,
// and SSE fan-out in one process.
type Server struct {
	httpServer  *http.Server
	handlers    *Handlers
	broadcaster *SSEBroadcaster
	pipeline    *Pipeline
	tailer      *Tailer
	lifecycle   *Lifecycle
	creative    *creative.Manager
	port        int
}

// NewServer creates a daemon server from configuration
func NewServer(cfg *config.Config, st store.Store, version string) (*Server, error) {
	catalog := emotion.DefaultCatalog()
	tracker := emotion.NewTracker(catalog, cfg.Settings.Classifier.HistoryCapacity)

	var (
		manager            *creative.Manager
		creativeClassifier emotion.CreativeClassifier
	)
	if cfg.Creative != nil && cfg.Creative.Enabled {
		m, err := creative.NewManager(cfg.Creative, creative.DefaultFactories())
		if err != nil {
			return nil, fmt.Errorf("failed to build creative manager: %w", err)
		}
		manager = m
		creativeClassifier = m
	}

	mode := emotion.ParseMode(cfg.Settings.Classifier.Mode)
	classifier := emotion.NewClassifier(catalog, creativeClassifier, tracker, mode)

	var gifCfg gif.Config
	if cfg.Gif != nil {
		gifCfg = *cfg.Gif
	}
	if gifCfg.CacheFile == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			gifCfg.CacheFile = filepath.Join(homeDir, ".feelsy", "gif-cache.json")
		}
	}
	gifs := gif.NewClient(gifCfg, nil)

	feedFile, err := cfg.FeedFilePath()
	if err != nil {
		return nil, err
	}

	broadcaster := NewSSEBroadcaster()
	pipeline := NewPipeline(classifier, monologue.NewGenerator(nil), gifs, st, broadcaster)
	tailer := NewTailer(feedFile, cfg.Settings.Daemon.PollIntervalDuration(), func(entry *hooks.FeedEntry) {
		pipeline.Process(context.Background(), entry)
	})

	handlers := NewHandlers(st, catalog, broadcaster, tailer, version)
	lifecycle := NewLifecycle(cfg.Settings.Daemon)

	port := cfg.Settings.Daemon.Port
	if port == 0 {
		port = 8765
	}

	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("GET /health", handlers.Health)
	mux.HandleFunc("GET /api/sessions", handlers.Sessions)
	mux.HandleFunc("GET /api/thoughts", handlers.Thoughts)
	mux.HandleFunc("GET /api/stats", handlers.Stats)
	mux.HandleFunc("GET /api/rules", handlers.Rules)
	mux.HandleFunc("GET /api/sequences", handlers.Sequences)
	mux.HandleFunc("DELETE /api/purge", handlers.Purge)
	mux.HandleFunc("POST /ingest", handlers.Ingest)

	// SSE endpoint
	mux.HandleFunc("GET /sse/events", broadcaster.ServeHTTP)

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("127.0.0.1:%d", port),
			Handler:           corsMiddleware(mux),
			ReadHeaderTimeout: 10 * time.Second,
		},
		handlers:    handlers,
		broadcaster: broadcaster,
		pipeline:    pipeline,
		tailer:      tailer,
		lifecycle:   lifecycle,
		creative:    manager,
		port:        port,
	}, nil
}

// Start starts the server
func (s *Server) Start(ctx context.Context) error {
	// Write PID file
	if err := s.lifecycle.WritePID(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	s.broadcaster.Start(ctx)
	s.tailer.Start(ctx)

	logger.Info().
		Int("port", s.port).
		Str("url", fmt.Sprintf("http://127.0.0.1:%d", s.port)).
		Msg("Starting feelsy daemon")

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Server error")
		}
	}()

	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	logger.Info().Msg("Stopping feelsy daemon")

	s.tailer.Stop()
	s.broadcaster.Stop()

	if s.creative != nil {
		_ = s.creative.Close()
	}

	// Remove PID file
	_ = s.lifecycle.RemovePID()

	return s.httpServer.Shutdown(ctx)
}

// Port returns the server port
func (s *Server) Port() int {
	return s.port
}

// Lifecycle returns the lifecycle manager
func (s *Server) Lifecycle() *Lifecycle {
	return s.lifecycle
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
