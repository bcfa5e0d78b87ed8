// Package dispatch serializes all work for a user on a sticky lane drawn
// from a fixed pool. Work for one user never interleaves; work for
// different users on different lanes runs concurrently. The lane is the
// only lock the user record needs.
package dispatch
