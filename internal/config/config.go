package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
	APIBind string `toml:"api_bind"`
}

// Performer identifies whose requests this daemon fulfills.
type Performer struct {
	OrgID string `toml:"org_id"`
	Name  string `toml:"name"`
}

// FileSource contains configuration for the now-playing text file watcher.
type FileSource struct {
	Enabled              bool   `toml:"enabled"`
	Path                 string `toml:"path"`
	StabilityThresholdMs int    `toml:"stability_threshold_ms"`
	PollIntervalMs       int    `toml:"poll_interval_ms"`
	DedupeWindowMs       int    `toml:"dedupe_window_ms"`
}

// LivePlaylist contains configuration for the hosted live playlist poller.
type LivePlaylist struct {
	Enabled        bool   `toml:"enabled"`
	Username       string `toml:"username"`
	BaseURL        string `toml:"base_url"`
	PollIntervalMs int    `toml:"poll_interval_ms"`
	DedupeWindowMs int    `toml:"dedupe_window_ms"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Matching contains fuzzy matching thresholds.
type Matching struct {
	Threshold float64 `toml:"threshold"`
}

// SMS contains configuration for the Twilio-style SMS gateway.
type SMS struct {
	Enabled        bool   `toml:"enabled"`
	AccountSID     string `toml:"account_sid"`
	AuthToken      string `toml:"auth_token"`
	FromNumber     string `toml:"from_number"`
	BaseURL        string `toml:"base_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Email contains configuration for the transactional email gateway.
type Email struct {
	Enabled        bool   `toml:"enabled"`
	APIKey         string `toml:"api_key"`
	FromAddress    string `toml:"from_address"`
	BaseURL        string `toml:"base_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Pipeline contains configuration for the detection pipeline worker.
type Pipeline struct {
	QueueSize int `toml:"queue_size"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for encore.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and API bind address
//   - Performer: organization scope for request matching
//   - FileSource: now-playing text file watcher
//   - LivePlaylist: hosted live playlist poller
//   - Matching: similarity threshold
//   - SMS / Email: notification gateway credentials
//   - Pipeline: detection pipeline sizing
//   - Logging: log format and level
type Config struct {
	Paths        Paths        `toml:"paths"`
	Performer    Performer    `toml:"performer"`
	FileSource   FileSource   `toml:"file_source"`
	LivePlaylist LivePlaylist `toml:"live_playlist"`
	Matching     Matching     `toml:"matching"`
	SMS          SMS          `toml:"sms"`
	Email        Email        `toml:"email"`
	Pipeline     Pipeline     `toml:"pipeline"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/encore/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	// Gateway secrets may live in a .env file next to the working directory
	// instead of the TOML file. Absence is not an error.
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("encore.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the requests database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "encore.db")
}

// WriteSample writes the embedded sample configuration to path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", trimmed, err)
	}
	return abs, nil
}
