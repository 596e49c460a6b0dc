// Package daemon keeps an enhanced documentation site current. It watches
// the site tree and re-enhances pages as the generator rewrites them, sweeps
// the whole site on a schedule and serves the result over HTTP.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docenhance/internal/config"
	"git.home.luguber.info/inful/docenhance/internal/events"
	ferrors "git.home.luguber.info/inful/docenhance/internal/foundation/errors"
	"git.home.luguber.info/inful/docenhance/internal/logfields"
	"git.home.luguber.info/inful/docenhance/internal/metrics"
	"git.home.luguber.info/inful/docenhance/internal/site"
	"git.home.luguber.info/inful/docenhance/internal/state"
)

// Status represents the daemon lifecycle state.
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
)

// Daemon wires a site processor to a filesystem watcher, a periodic sweep
// scheduler and an HTTP endpoint serving the enhanced site.
type Daemon struct {
	cfg       *config.Config
	processor *site.Processor
	watcher   *Watcher
	scheduler *Scheduler
	http      *HTTPServer

	store     *state.Store
	publisher *events.Publisher
	registry  *prom.Registry

	status    atomic.Value // Status
	startTime time.Time
	mu        sync.Mutex

	// runMu serializes full sweeps and watcher triggered page passes so
	// they never write the same file concurrently.
	runMu      sync.Mutex
	lastReport atomic.Pointer[site.Report]

	runCtx    context.Context
	runCancel context.CancelFunc
}

// New assembles a daemon from configuration. The daemon config section must
// be present; everything else (state store, metrics, events) is optional
// and wired only when configured.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ferrors.DaemonError("configuration is required").Build()
	}
	if cfg.Daemon == nil {
		return nil, ferrors.DaemonError("daemon section missing from configuration").
			WithContext("hint", "add a daemon: block to the config file").
			Build()
	}

	d := &Daemon{cfg: cfg}
	d.status.Store(StatusStopped)

	var opts []site.Option

	if path := cfg.State.Path; path != "" {
		store, err := state.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open state store: %w", err)
		}
		d.store = store
		opts = append(opts, site.WithStore(store))
	}

	if cfg.Daemon.MetricsEnabled() {
		d.registry = prom.NewRegistry()
		opts = append(opts, site.WithRecorder(
			metrics.NewPrometheusRecorder(d.registry, cfg.Daemon.Metrics.Namespace)))
	}

	if url := cfg.Events.NATSURL; url != "" {
		pub, err := events.Connect(url, cfg.Events.Subject)
		if err != nil {
			d.closeResources()
			return nil, fmt.Errorf("connect event publisher: %w", err)
		}
		d.publisher = pub
		opts = append(opts, site.WithPublisher(pub))
	}

	d.processor = site.NewProcessor(cfg, opts...)

	if cfg.Daemon.WatchEnabled() {
		w, err := NewWatcher(cfg, d.handleChanges)
		if err != nil {
			d.closeResources()
			return nil, fmt.Errorf("create watcher: %w", err)
		}
		d.watcher = w
	}

	sched, err := NewScheduler()
	if err != nil {
		if d.watcher != nil {
			d.watcher.Stop()
		}
		d.closeResources()
		return nil, err
	}
	d.scheduler = sched

	d.http = NewHTTPServer(cfg, d)

	return d, nil
}

// Start brings up the HTTP endpoint, the watcher and the sweep schedule,
// then kicks off an initial full sweep in the background.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.Status() != StatusStopped {
		return ferrors.DaemonError("daemon is not stopped").
			WithContext("status", string(d.Status())).
			Build()
	}
	d.status.Store(StatusStarting)
	d.startTime = time.Now()
	d.runCtx, d.runCancel = context.WithCancel(ctx)

	slog.Info("Starting enhancement daemon",
		logfields.Path(d.cfg.Site.Root),
		slog.Bool("watch", d.watcher != nil),
		slog.Duration("sweep_interval", d.cfg.Daemon.SweepDuration()))

	if err := d.http.Start(ctx); err != nil {
		d.fail()
		return fmt.Errorf("start HTTP server: %w", err)
	}

	if d.watcher != nil {
		if err := d.watcher.Start(d.runCtx); err != nil {
			d.fail()
			return fmt.Errorf("start watcher: %w", err)
		}
	}

	if err := d.scheduler.ScheduleSweep(d.cfg.Daemon.SweepDuration(), d.Sweep); err != nil {
		d.fail()
		return err
	}
	d.scheduler.Start(ctx)

	d.status.Store(StatusRunning)
	slog.Info("Daemon started", slog.String("addr", d.http.Addr()))

	// Initial sweep so the site is current before the first scheduled one.
	go d.Sweep()

	return nil
}

// fail reverts a partial start. Callers hold d.mu.
func (d *Daemon) fail() {
	if d.runCancel != nil {
		d.runCancel()
	}
	if err := d.http.Stop(context.Background()); err != nil {
		slog.Error("Failed to stop HTTP server", logfields.Error(err))
	}
	d.status.Store(StatusStopped)
}

// Stop shuts components down in reverse start order, waits for an in-flight
// sweep to finish and closes shared resources.
func (d *Daemon) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	cur := d.Status()
	if cur == StatusStopped || cur == StatusStopping {
		return nil
	}
	d.status.Store(StatusStopping)
	slog.Info("Stopping enhancement daemon")

	if d.runCancel != nil {
		d.runCancel()
	}

	if d.watcher != nil {
		d.watcher.Stop()
	}
	if err := d.scheduler.Stop(ctx); err != nil {
		slog.Error("Failed to stop scheduler", logfields.Error(err))
	}
	if err := d.http.Stop(ctx); err != nil {
		slog.Error("Failed to stop HTTP server", logfields.Error(err))
	}

	// Drain any sweep still holding the run lock before resources go away.
	d.runMu.Lock()
	d.runMu.Unlock() //nolint:staticcheck // empty section waits out the sweep

	d.closeResources()
	d.status.Store(StatusStopped)
	slog.Info("Daemon stopped")
	return nil
}

func (d *Daemon) closeResources() {
	if d.publisher != nil {
		d.publisher.Close()
		d.publisher = nil
	}
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			slog.Error("Failed to close state store", logfields.Error(err))
		}
		d.store = nil
	}
}

// Sweep runs one full site pass. Concurrent calls are serialized so a
// scheduled sweep never interleaves with a watcher pass or another sweep.
func (d *Daemon) Sweep() {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	ctx := d.runCtx
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return
	}

	report, err := d.processor.EnhanceSite(ctx)
	if err != nil {
		slog.Error("Site sweep failed", logfields.Error(err))
	}
	if report != nil {
		d.lastReport.Store(report)
	}
}

// handleChanges re-enhances the pages a debounced watcher batch reported.
func (d *Daemon) handleChanges(ctx context.Context, paths []string) {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		status, err := d.processor.EnhancePage(ctx, path)
		if err != nil {
			slog.Error("Failed to enhance changed page",
				logfields.Page(path), logfields.Error(err))
			continue
		}
		slog.Debug("Watched page processed",
			logfields.Page(path), slog.String("status", string(status)))
	}
}

// Status returns the current lifecycle state.
func (d *Daemon) Status() Status {
	if s, ok := d.status.Load().(Status); ok {
		return s
	}
	return StatusStopped
}

// Uptime reports how long the daemon has been running.
func (d *Daemon) Uptime() time.Duration {
	if d.startTime.IsZero() {
		return 0
	}
	return time.Since(d.startTime)
}

// LastReport returns the most recent sweep report, or nil before the first
// sweep completes.
func (d *Daemon) LastReport() *site.Report {
	return d.lastReport.Load()
}
