package config

const (
	defaultDataDir                = "~/.local/share/encore"
	defaultLogDir                 = "~/.local/share/encore/logs"
	defaultAPIBind                = "127.0.0.1:7623"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultStabilityThresholdMs   = 100
	defaultFilePollIntervalMs     = 5000
	defaultFileDedupeWindowMs     = 5000
	defaultPlaylistPollIntervalMs = 5000
	defaultPlaylistDedupeWindowMs = 30000
	defaultPlaylistBaseURL        = "https://serato.com/playlists"
	defaultGatewayTimeoutSeconds  = 10
	defaultSMSBaseURL             = "https://api.twilio.com/2010-04-01"
	defaultEmailBaseURL           = "https://api.resend.com"
	defaultMatchThreshold         = 0.85
	defaultPipelineQueueSize      = 16
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		FileSource: FileSource{
			Enabled:              true,
			StabilityThresholdMs: defaultStabilityThresholdMs,
			PollIntervalMs:       defaultFilePollIntervalMs,
			DedupeWindowMs:       defaultFileDedupeWindowMs,
		},
		LivePlaylist: LivePlaylist{
			Enabled:        false,
			BaseURL:        defaultPlaylistBaseURL,
			PollIntervalMs: defaultPlaylistPollIntervalMs,
			DedupeWindowMs: defaultPlaylistDedupeWindowMs,
			RequestTimeout: defaultGatewayTimeoutSeconds,
		},
		Matching: Matching{
			Threshold: defaultMatchThreshold,
		},
		SMS: SMS{
			BaseURL:        defaultSMSBaseURL,
			RequestTimeout: defaultGatewayTimeoutSeconds,
		},
		Email: Email{
			BaseURL:        defaultEmailBaseURL,
			RequestTimeout: defaultGatewayTimeoutSeconds,
		},
		Pipeline: Pipeline{
			QueueSize: defaultPipelineQueueSize,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
