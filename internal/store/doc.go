// Package store persists user records, their documents, and callback
// tokens in SQLite. Each user's record is only ever mutated from that
// user's dispatcher lane, so the store needs no cross-request locking
// beyond SQLite's own write serialization.
package store
