// Package api provides the HTTP surface for the organizer backend.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"organizer/pkg/logx"
	"organizer/pkg/planner"
	"organizer/pkg/version"
)

// Server handles HTTP requests from the desktop client.
type Server struct {
	planner        *planner.Service
	logger         *logx.Logger
	metricsEnabled bool
	shutdownDone   chan struct{}
}

// NewServer creates a new API server around the planning service.
func NewServer(plannerSvc *planner.Service, metricsEnabled bool) *Server {
	return &Server{
		planner:        plannerSvc,
		logger:         logx.NewLogger("api"),
		metricsEnabled: metricsEnabled,
		shutdownDone:   make(chan struct{}),
	}
}

// getStructureRequest is the POST /api/get-structure payload.
type getStructureRequest struct {
	FilesInfo []planner.FileDescriptor `json:"files_info"`
	Prompt    string                   `json:"prompt"`
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", s.withRequestID(s.handleIndex))
	mux.HandleFunc("/api/get-structure", s.withRequestID(s.handleGetStructure))
	mux.HandleFunc("/api/execute-moves", s.withRequestID(s.handleExecuteMoves))
	mux.HandleFunc("/api/rollback", s.withRequestID(s.handleRollback))
	mux.HandleFunc("/api/healthz", s.withRequestID(s.handleHealthz))
	mux.HandleFunc("/api/logs", s.withRequestID(s.handleLogs))

	if s.metricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
}

// withRequestID tags each response with an X-Request-ID for log correlation.
func (s *Server) withRequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		next(w, r)
	}
}

// handleIndex implements GET / - liveness and model info.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": fmt.Sprintf("AI Organizer Backend (%s) is running.", s.planner.ModelName()),
	})
}

// handleGetStructure implements POST /api/get-structure - the main planning endpoint.
func (s *Server) handleGetStructure(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req getStructureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if len(req.FilesInfo) == 0 {
		// Generation is never invoked for an empty file list.
		s.writeError(w, http.StatusBadRequest, "No file information provided.")
		return
	}

	plan, err := s.planner.ProposeStructure(r.Context(), req.FilesInfo, req.Prompt)
	if err != nil {
		status := http.StatusInternalServerError
		var pErr *planner.Error
		if errors.As(err, &pErr) {
			status = pErr.HTTPStatus()
		}
		s.logger.Error("get-structure failed (%s): %v", planner.KindOf(err), err)
		s.writeError(w, status, err.Error())
		return
	}

	// The plan is the raw extracted JSON span; write it through verbatim.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(plan); err != nil {
		s.logger.Error("Failed to write plan response: %v", err)
	}
}

// handleExecuteMoves implements POST /api/execute-moves.
// Permanently disabled: move execution is the desktop client's responsibility.
func (s *Server) handleExecuteMoves(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeError(w, http.StatusNotFound, "This endpoint is deprecated. Execute moves on the client.")
}

// handleRollback implements POST /api/rollback.
// Permanently disabled: rollback is the desktop client's responsibility.
func (s *Server) handleRollback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeError(w, http.StatusNotFound, "This endpoint is deprecated. Rollback on the client.")
}

// handleHealthz implements GET /api/healthz.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	generation := "enabled"
	if !s.planner.Enabled() {
		generation = "disabled"
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":     "healthy",
		"generation": generation,
		"model":      s.planner.ModelName(),
		"version":    version.Version,
	})
}

// handleLogs implements GET /api/logs - returns recent log entries from the in-memory buffer.
// Accepts an optional ?since=RFC3339 query parameter.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var since time.Time
	if sinceParam := r.URL.Query().Get("since"); sinceParam != "" {
		parsed, err := time.Parse(time.RFC3339, sinceParam)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid since parameter: %v", err))
			return
		}
		since = parsed
	}

	entries := logx.GetRecentLogEntries(since)
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// StartServer starts the HTTP server and wires graceful shutdown to ctx.
func (s *Server) StartServer(ctx context.Context, host string, port int) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	addr := fmt.Sprintf("%s:%d", host, port)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Starting organizer backend on %s", addr)

	// Start server in a goroutine (non-blocking).
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Server error: %v", err)
		}
	}()

	// Start graceful shutdown handler in background.
	go func() {
		defer close(s.shutdownDone)
		<-ctx.Done()
		// Graceful shutdown - use background context with timeout since parent is cancelled.
		s.logger.Info("Shutting down organizer backend")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		//nolint:contextcheck // Parent context is cancelled; we need a fresh context for shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("HTTP server shutdown failed: %v", err)
		}
	}()

	return nil
}

// ShutdownDone returns a channel closed once the server has finished draining
// in-flight requests after its context is cancelled.
func (s *Server) ShutdownDone() <-chan struct{} {
	return s.shutdownDone
}
