// Package config loads, normalizes, and validates encore configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for gateway
// credentials such as TWILIO_AUTH_TOKEN. The Config type centralizes every
// knob the daemon and CLI need: track source settings, matching threshold,
// store location, and notification gateways.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
