package blob

import (
	"context"
	"errors"
	"io"
	"time"
)

// Store holds submitted file content. Refs are opaque storage keys owned
// by the implementation.
type Store interface {
	// Upload stores content under the owner's namespace and returns the
	// storage ref. A failed upload persists nothing.
	Upload(ctx context.Context, ownerID, name, mimeType string, content io.Reader) (string, error)
	// Move relocates an object into a category folder and returns the new
	// ref. Implementations must make Move idempotent: retrying after a
	// partial move converges on the same final ref.
	Move(ctx context.Context, ref, folder string) (string, error)
	// Delete removes an object. Deleting an absent object is not an error.
	Delete(ctx context.Context, ref string) error
}

// Transient marks an error as a retryable network condition.
type Transient struct {
	Err error
}

func (t *Transient) Error() string { return t.Err.Error() }

func (t *Transient) Unwrap() error { return t.Err }

// IsTransient reports whether err is marked retryable.
func IsTransient(err error) bool {
	var transient *Transient
	return errors.As(err, &transient)
}

const retryBackoff = 250 * time.Millisecond

// WithRetry retries op up to attempts times while it keeps failing with a
// transient error. Non-transient failures and exhaustion are fatal for
// the operation.
func WithRetry(ctx context.Context, attempts int, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) || attempt == attempts-1 {
			break
		}
		select {
		case <-time.After(retryBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
