// Package config loads, normalizes, and validates the autopost TOML
// configuration.
//
// Configuration is resolved from an explicit path, the AUTOPOST_CONFIG
// environment variable, ~/.config/autopost/config.toml, or an
// autopost.toml in the working directory, in that order. Missing files
// fall back to defaults; validation rejects configs without a complete
// bucket role mapping.
package config
