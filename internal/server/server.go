package server

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"pingboard/internal/config"
	"pingboard/internal/widget"
)

//go:embed static/*
var embeddedStatic embed.FS

// Server wraps HTTP serving of the widget page and its websocket sessions.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	staticFS   fs.FS
	cfg        config.Config
	location   *time.Location
	logger     *slog.Logger
	scheduler  widget.Scheduler

	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	closing  bool
	sessions sync.WaitGroup
}

// Option customises a Server.
type Option func(*Server)

// WithScheduler replaces the auto-refresh timer used by every session.
func WithScheduler(s widget.Scheduler) Option {
	return func(srv *Server) {
		srv.scheduler = s
	}
}

// New creates a configured HTTP server for the dashboard.
func New(cfg config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	mux := http.NewServeMux()
	s := &Server{
		handler:  mux,
		staticFS: staticFS,
		cfg:      cfg,
		location: loc,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.registerRoutes(mux)
	return s, nil
}

// Handler exposes the route multiplexer, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run blocks and serves HTTP traffic.
func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown ends all widget sessions and gracefully shuts the server down.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	s.cancel()
	err := s.httpServer.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	fileServer := http.FileServer(http.FS(s.staticFS))

	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		data, err := fs.ReadFile(s.staticFS, "index.html")
		if err != nil {
			http.Error(w, "index missing", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(data)
	}))
	mux.Handle("/static/", http.StripPrefix("/static/", fileServer))
	mux.Handle("/favicon.ico", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		icon, err := fs.ReadFile(s.staticFS, "favicon.ico")
		if err != nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "image/x-icon")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(icon)
	}))
	mux.HandleFunc("/ws", s.handleSession)
	mux.HandleFunc("/api/endpoint", s.handleEndpoint)
	mux.HandleFunc("/healthz", s.handleHealth)
}

func (s *Server) handleEndpoint(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"endpoint":     s.cfg.ResolveEndpoint(r.URL.RawQuery),
		"interval_ms":  s.cfg.RefreshInterval.Milliseconds(),
		"auto_refresh": s.cfg.AutoRefresh,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
