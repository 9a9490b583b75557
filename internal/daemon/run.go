package daemon

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"encore/internal/config"
	"encore/internal/logging"
	"encore/internal/requests"
)

// RunOptions configures daemon process runtime behavior.
type RunOptions struct {
	LogLevel string
}

// Run starts the encore daemon and blocks until the context is canceled or a
// termination signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts RunOptions) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:  level,
		Format: cfg.Logging.Format,
		OutputPaths: []string{
			"stdout",
			filepath.Join(cfg.Paths.LogDir, "encore.log"),
		},
	})
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	store, err := requests.Open(cfg)
	if err != nil {
		return fmt.Errorf("open request store: %w", err)
	}

	d, err := New(cfg, store, logger)
	if err != nil {
		store.Close()
		return err
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}

	<-signalCtx.Done()
	d.Stop()
	return nil
}
