// Package config loads, validates, and defaults the daemon's TOML
// configuration.
package config
