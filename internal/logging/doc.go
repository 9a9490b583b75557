// Package logging configures slog-based structured logging for encore.
//
// It provides console and JSON handlers, attribute helpers shared across
// components, and a no-op logger for tests. Components attach a stable
// "component" attribute via NewComponentLogger so log lines can be filtered
// per subsystem (file-source, live-playlist, pipeline, notify).
package logging
