// Package engine drives the intake conversation. Every inbound event is
// funneled through the sender's execution lane, claimed by the first
// responsible handler in a fixed chain, and followed by a state
// recomputation from the user's stored documents.
package engine
