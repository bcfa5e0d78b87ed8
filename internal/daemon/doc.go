// Package daemon ties the poller, dispatcher, and recognition scheduler
// into a single lifecycle with flock-based locking to prevent multiple
// instances from polling the same bot token.
package daemon
