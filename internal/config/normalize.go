package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeFileSource(); err != nil {
		return err
	}
	c.normalizeLivePlaylist()
	c.normalizeMatching()
	c.normalizeGateways()
	c.normalizePipeline()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Performer.OrgID = strings.TrimSpace(c.Performer.OrgID)
	c.Performer.Name = strings.TrimSpace(c.Performer.Name)
	return nil
}

func (c *Config) normalizeFileSource() error {
	var err error
	if c.FileSource.Path, err = expandPath(c.FileSource.Path); err != nil {
		return fmt.Errorf("file_source.path: %w", err)
	}
	if c.FileSource.StabilityThresholdMs <= 0 {
		c.FileSource.StabilityThresholdMs = defaultStabilityThresholdMs
	}
	if c.FileSource.PollIntervalMs <= 0 {
		c.FileSource.PollIntervalMs = defaultFilePollIntervalMs
	}
	if c.FileSource.DedupeWindowMs <= 0 {
		c.FileSource.DedupeWindowMs = defaultFileDedupeWindowMs
	}
	return nil
}

func (c *Config) normalizeLivePlaylist() {
	c.LivePlaylist.Username = strings.TrimSpace(c.LivePlaylist.Username)
	c.LivePlaylist.BaseURL = strings.TrimRight(strings.TrimSpace(c.LivePlaylist.BaseURL), "/")
	if c.LivePlaylist.BaseURL == "" {
		c.LivePlaylist.BaseURL = defaultPlaylistBaseURL
	}
	if c.LivePlaylist.PollIntervalMs <= 0 {
		c.LivePlaylist.PollIntervalMs = defaultPlaylistPollIntervalMs
	}
	if c.LivePlaylist.DedupeWindowMs <= 0 {
		c.LivePlaylist.DedupeWindowMs = defaultPlaylistDedupeWindowMs
	}
	if c.LivePlaylist.RequestTimeout <= 0 {
		c.LivePlaylist.RequestTimeout = defaultGatewayTimeoutSeconds
	}
}

func (c *Config) normalizeMatching() {
	if c.Matching.Threshold == 0 {
		c.Matching.Threshold = defaultMatchThreshold
	}
}

func (c *Config) normalizeGateways() {
	c.SMS.AccountSID = strings.TrimSpace(c.SMS.AccountSID)
	c.SMS.AuthToken = strings.TrimSpace(c.SMS.AuthToken)
	c.SMS.FromNumber = strings.TrimSpace(c.SMS.FromNumber)
	c.SMS.BaseURL = strings.TrimRight(strings.TrimSpace(c.SMS.BaseURL), "/")
	if c.SMS.BaseURL == "" {
		c.SMS.BaseURL = defaultSMSBaseURL
	}
	if c.SMS.RequestTimeout <= 0 {
		c.SMS.RequestTimeout = defaultGatewayTimeoutSeconds
	}
	if c.SMS.AccountSID == "" {
		if value, ok := os.LookupEnv("TWILIO_ACCOUNT_SID"); ok {
			c.SMS.AccountSID = strings.TrimSpace(value)
		}
	}
	if c.SMS.AuthToken == "" {
		if value, ok := os.LookupEnv("TWILIO_AUTH_TOKEN"); ok {
			c.SMS.AuthToken = strings.TrimSpace(value)
		}
	}

	c.Email.APIKey = strings.TrimSpace(c.Email.APIKey)
	c.Email.FromAddress = strings.TrimSpace(c.Email.FromAddress)
	c.Email.BaseURL = strings.TrimRight(strings.TrimSpace(c.Email.BaseURL), "/")
	if c.Email.BaseURL == "" {
		c.Email.BaseURL = defaultEmailBaseURL
	}
	if c.Email.RequestTimeout <= 0 {
		c.Email.RequestTimeout = defaultGatewayTimeoutSeconds
	}
	if c.Email.APIKey == "" {
		if value, ok := os.LookupEnv("RESEND_API_KEY"); ok {
			c.Email.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.QueueSize <= 0 {
		c.Pipeline.QueueSize = defaultPipelineQueueSize
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
