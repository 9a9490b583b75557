package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Invalid static configuration
// is the only fatal condition in the system, so this runs before anything else
// starts.
func (c *Config) Validate() error {
	if err := c.validatePerformer(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateGateways(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePerformer() error {
	if c.Performer.OrgID == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/encore/config.toml"
		}
		return fmt.Errorf("performer.org_id is required. Edit %s (create with 'encore config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateSources() error {
	if !c.FileSource.Enabled && !c.LivePlaylist.Enabled {
		return errors.New("at least one track source must be enabled (file_source or live_playlist)")
	}
	if c.FileSource.Enabled && strings.TrimSpace(c.FileSource.Path) == "" {
		return errors.New("file_source.path must be set when file_source.enabled is true")
	}
	if c.LivePlaylist.Enabled && c.LivePlaylist.Username == "" {
		return errors.New("live_playlist.username must be set when live_playlist.enabled is true")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.Threshold <= 0 || c.Matching.Threshold > 1 {
		return errors.New("matching.threshold must be in (0, 1]")
	}
	return nil
}

func (c *Config) validateGateways() error {
	if c.SMS.Enabled {
		if c.SMS.AccountSID == "" {
			return errors.New("sms.account_sid must be set when sms.enabled is true (or set TWILIO_ACCOUNT_SID)")
		}
		if c.SMS.AuthToken == "" {
			return errors.New("sms.auth_token must be set when sms.enabled is true (or set TWILIO_AUTH_TOKEN)")
		}
		if c.SMS.FromNumber == "" {
			return errors.New("sms.from_number must be set when sms.enabled is true")
		}
	}
	if c.Email.Enabled {
		if c.Email.APIKey == "" {
			return errors.New("email.api_key must be set when email.enabled is true (or set RESEND_API_KEY)")
		}
		if c.Email.FromAddress == "" {
			return errors.New("email.from_address must be set when email.enabled is true")
		}
	}
	return nil
}
