package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/docenhance/internal/config"
	ferrors "git.home.luguber.info/inful/docenhance/internal/foundation/errors"
	"git.home.luguber.info/inful/docenhance/internal/logfields"
	"git.home.luguber.info/inful/docenhance/internal/metrics"
	"git.home.luguber.info/inful/docenhance/internal/version"
)

// HTTPServer serves the enhanced site plus health, report and metrics
// endpoints on a single address.
type HTTPServer struct {
	cfg    *config.Config
	daemon *Daemon
	errs   *ferrors.HTTPErrorAdapter

	server   *http.Server
	listener net.Listener
}

// NewHTTPServer creates the server. Nothing is bound until Start.
func NewHTTPServer(cfg *config.Config, d *Daemon) *HTTPServer {
	return &HTTPServer{cfg: cfg, daemon: d, errs: ferrors.NewHTTPErrorAdapter(nil)}
}

// Start binds the configured address and begins serving. Binding happens
// before the goroutine starts so an occupied port fails the daemon start
// instead of logging asynchronously.
func (s *HTTPServer) Start(ctx context.Context) error {
	addr := s.cfg.Daemon.HTTP.Addr

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryDaemon, "bind HTTP address").
			WithContext("addr", addr).
			Build()
	}
	s.listener = ln

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.cfg.Site.Root)))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/report", s.handleReport)
	if s.daemon.registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(s.daemon.registry))
	}

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", logfields.Error(err))
		}
	}()

	slog.Info("Serving enhanced site",
		slog.String("addr", ln.Addr().String()),
		logfields.Path(s.cfg.Site.Root),
		slog.Bool("metrics", s.daemon.registry != nil))
	return nil
}

// Addr returns the bound address, which differs from the configured one
// when the listener was asked for an ephemeral port.
func (s *HTTPServer) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Daemon.HTTP.Addr
}

// Stop drains in-flight requests and closes the listener.
func (s *HTTPServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type healthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	Watching  bool      `json:"watching"`
	LastRunID string    `json:"last_run_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    string(s.daemon.Status()),
		Version:   version.Version,
		Uptime:    s.daemon.Uptime().Round(time.Second).String(),
		Watching:  s.daemon.watcher != nil,
		Timestamp: time.Now().UTC(),
	}
	if report := s.daemon.LastReport(); report != nil {
		resp.LastRunID = report.RunID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleReport(w http.ResponseWriter, r *http.Request) {
	report := s.daemon.LastReport()
	if report == nil {
		// Info severity: polling before the first sweep finishes is normal.
		s.errs.WriteErrorResponse(w, r,
			ferrors.NewError(ferrors.CategoryNotFound, "no sweep has completed yet").
				WithSeverity(ferrors.SeverityInfo).
				Build())
		return
	}
	writeJSON(w, http.StatusOK, report.Serializable())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", logfields.Error(err))
	}
}
