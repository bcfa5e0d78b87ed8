// Package transport defines the chat transport contract the engine
// consumes: the closed set of inbound events and the outbound responses
// a handler can produce. Implementations live in subpackages.
package transport
