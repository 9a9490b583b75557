package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"encore/internal/config"
	"encore/internal/detect"
	"encore/internal/logging"
	"encore/internal/notify"
	"encore/internal/pipeline"
	"encore/internal/requests"
)

// Daemon owns the running services and enforces single-instance execution.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *requests.Store
	dispatcher *notify.Dispatcher
	pipeline   *pipeline.Pipeline
	sources    []detect.Source
	api        *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running        bool     `json:"running"`
	OrgID          string   `json:"org_id"`
	Performer      string   `json:"performer"`
	Sources        []string `json:"sources"`
	ActiveRequests int      `json:"active_requests"`
	NotifyEnabled  bool     `json:"notify_enabled"`
	DatabasePath   string   `json:"database_path"`
	LockFilePath   string   `json:"lock_file_path"`
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *requests.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, and logger")
	}

	dispatcher := notify.NewDispatcher(cfg, store, logger)
	pipe := pipeline.New(cfg, store, dispatcher, logger)
	if pipe == nil {
		return nil, errors.New("build pipeline")
	}

	d := &Daemon{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		store:      store,
		dispatcher: dispatcher,
		pipeline:   pipe,
		lockPath:   filepath.Join(cfg.Paths.LogDir, "encored.lock"),
	}
	d.lock = flock.New(d.lockPath)

	if source := detect.NewFileSource(cfg, logger, pipe.Submit); source != nil {
		d.sources = append(d.sources, source)
	}
	if source := detect.NewPlaylistSource(cfg, logger, pipe.Submit); source != nil {
		d.sources = append(d.sources, source)
	}
	if len(d.sources) == 0 {
		return nil, errors.New("no track sources enabled")
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and launches the pipeline and sources.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another encore daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	if err := d.pipeline.Start(d.ctx); err != nil {
		d.releaseOnStartFailure()
		return fmt.Errorf("start pipeline: %w", err)
	}
	for _, source := range d.sources {
		if err := source.Start(d.ctx); err != nil {
			d.stopServices()
			d.releaseOnStartFailure()
			return fmt.Errorf("start source: %w", err)
		}
	}
	if d.api != nil {
		if err := d.api.start(d.ctx); err != nil {
			d.stopServices()
			d.releaseOnStartFailure()
			return fmt.Errorf("start api: %w", err)
		}
	}

	d.running.Store(true)
	d.logger.Info("encore daemon started",
		logging.String(logging.FieldOrgID, d.cfg.Performer.OrgID),
		logging.Int("sources", len(d.sources)),
		logging.String("lock", d.lockPath))
	return nil
}

// Stop halts services and releases the daemon lock. In-flight pipeline work
// finishes before Stop returns.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.stopServices()
	if d.api != nil {
		d.api.stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("encore daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

func (d *Daemon) stopServices() {
	for _, source := range d.sources {
		source.Stop()
	}
	d.pipeline.Stop()
}

func (d *Daemon) releaseOnStartFailure() {
	_ = d.lock.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.ctx = nil
}

// Status reports daemon runtime information.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:       d.running.Load(),
		OrgID:         d.cfg.Performer.OrgID,
		Performer:     d.cfg.Performer.Name,
		NotifyEnabled: d.dispatcher.Enabled(),
		DatabasePath:  d.cfg.DatabasePath(),
		LockFilePath:  d.lockPath,
	}
	if d.cfg.FileSource.Enabled {
		status.Sources = append(status.Sources, "file")
	}
	if d.cfg.LivePlaylist.Enabled {
		status.Sources = append(status.Sources, "playlist")
	}
	if active, err := d.store.ActiveRequests(ctx, d.cfg.Performer.OrgID); err == nil {
		status.ActiveRequests = len(active)
	}
	return status
}

// TestNotification exercises the configured gateways.
func (d *Daemon) TestNotification(ctx context.Context, phone, email string) error {
	if !d.dispatcher.Enabled() {
		return errors.New("no notification channel configured")
	}
	return d.dispatcher.Test(ctx, phone, email)
}
