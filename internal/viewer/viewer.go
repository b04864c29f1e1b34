// Package viewer serves analyses over HTTP for an external renderer. A client
// posts a task list and gets back both engine outputs; the last successful
// analysis stays available for GET.
package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/joshharrison/pertloom/internal/analysis"
	"github.com/joshharrison/pertloom/internal/graph"
)

// maxBody caps request bodies on POST /analyze.
const maxBody = 4 << 20

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error  string   `json:"error"`
	Kind   string   `json:"kind,omitempty"` // validation error kind, e.g. "cyclic dependency"
	TaskID string   `json:"taskId,omitempty"`
	Cycle  []string `json:"cycle,omitempty"`
}

type server struct {
	logger *slog.Logger

	mu   sync.RWMutex
	last *analysis.Result
}

// Handler returns the HTTP handler:
//
//	POST /analyze  task list (JSON array or {"tasks": [...]}) -> analysis.Result
//	GET  /analyze  last successful analysis, 404 before the first
//	GET  /healthz  liveness
func Handler(logger *slog.Logger) http.Handler {
	srv := &server{logger: logger}
	mux := http.NewServeMux()

	mux.HandleFunc("/analyze", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			srv.handlePostAnalyze(w, r)
		case http.MethodGet:
			srv.handleGetAnalyze(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		}
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return mux
}

func (s *server) handlePostAnalyze(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "read body: " + err.Error()})
		return
	}
	if len(body) > maxBody {
		writeError(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large"})
		return
	}

	tasks, err := graph.ParseJSON(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, errorResponse(err))
		return
	}

	res, err := analysis.Run(r.Context(), tasks, s.logger)
	if err != nil {
		s.logger.Debug("analysis rejected", "tasks", len(tasks), "error", err)
		status := http.StatusUnprocessableEntity
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, errorResponse(err))
		return
	}

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, res)
}

func (s *server) handleGetAnalyze(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	res := s.last
	s.mu.RUnlock()

	if res == nil {
		writeError(w, http.StatusNotFound, ErrorResponse{Error: "no analysis yet"})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// errorResponse exposes the kind and task of validation errors so clients
// can point at the offending task.
func errorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Error: err.Error()}
	var gerr *graph.Error
	if errors.As(err, &gerr) {
		resp.Kind = gerr.Kind.Error()
		resp.TaskID = gerr.TaskID
		resp.Cycle = gerr.Cycle
	}
	return resp
}

func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Serve listens on addr and serves Handler until ctx is cancelled, then
// shuts down gracefully. ready, if non-nil, receives the bound address once
// the listener is open.
func Serve(ctx context.Context, addr string, logger *slog.Logger, ready func(addr string)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	httpSrv := &http.Server{
		Handler:           Handler(logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(ln)
	}()
	logger.Info("serving", "addr", ln.Addr().String())
	if ready != nil {
		ready(ln.Addr().String())
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// IsPortOpen checks if something is listening on the given address.
func IsPortOpen(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
