// Package blob defines the binary object storage contract for submitted
// files and the bounded retry policy applied to idempotent operations.
package blob
