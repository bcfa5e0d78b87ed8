// Package logging wraps log/slog with the daemon's handler setup and the
// standardized structured field names used across components.
package logging
