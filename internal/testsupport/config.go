package testsupport

import (
	"path/filepath"
	"testing"

	"encore/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Performer.OrgID = "org-test"
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.FileSource.Path = filepath.Join(base, "now_playing.txt")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithOrgID overrides the organization on the test config.
func WithOrgID(orgID string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Performer.OrgID = orgID
	}
}
