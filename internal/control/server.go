// Package control is the local control endpoint of the widget daemon. It
// serves a small HTTP API on a unix socket in the output directory so
// short-lived commands can reach the running render loop.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/genricoloni/mucwidget/internal/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SocketName is the control socket created inside the output directory
const SocketName = "widgetd.sock"

// Resizer re-renders one instance at a new size
type Resizer interface {
	Resize(ctx context.Context, id, minHeight int) error
}

// ResizeRequest is the body of POST /widgets/{id}/resize
type ResizeRequest struct {
	MinHeight int `json:"min_height"`
}

// SocketPath returns the control socket location for cfg
func SocketPath(cfg *config.AppConfig) string {
	return filepath.Join(cfg.OutputDir, SocketName)
}

// Server exposes the daemon's render loop on a unix socket
type Server struct {
	logger  *zap.Logger
	path    string
	resizer Resizer
	srv     *http.Server
}

// NewServer creates a control server; it listens only after Start
func NewServer(logger *zap.Logger, cfg *config.AppConfig, resizer Resizer) *Server {
	s := &Server{
		logger:  logger,
		path:    SocketPath(cfg),
		resizer: resizer,
	}
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routes of the control API
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	r.Post("/widgets/{id}/resize", s.handleResize)
	return r
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		http.Error(w, "invalid widget id", http.StatusBadRequest)
		return
	}

	var body ResizeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.MinHeight <= 0 {
		http.Error(w, "min_height must be positive", http.StatusBadRequest)
		return
	}

	if err := s.resizer.Resize(r.Context(), id, body.MinHeight); err != nil {
		s.logger.Error("Resize request failed", zap.Int("widget", id), zap.Error(err))
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"id": id, "min_height": body.MinHeight})
}

// Start listens on the socket and serves in the background
func (s *Server) Start(ctx context.Context) error {
	// A socket left behind by a crashed daemon blocks Listen
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "unix", s.path)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.path, err)
	}

	s.logger.Info("Control socket listening", zap.String("path", s.path))

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Control server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the server down and removes the socket
func (s *Server) Stop(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		s.logger.Warn("Failed to remove control socket", zap.Error(rmErr))
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
