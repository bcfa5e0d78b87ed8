package engine

import (
	"context"

	"onboardbot/internal/flow"
	"onboardbot/internal/transport"
)

// Result is what a handler produces when it claims an event. Ack replies
// go out immediately, before the deferred action runs; the deferred
// action performs the state-mutating work and may produce follow-up
// replies of its own.
type Result struct {
	Ack      []transport.Outbound
	Deferred func(ctx context.Context) ([]transport.Outbound, error)
}

// Handler is one link in the dispatch chain. Returning a nil Result
// declines the event and passes it to the next handler.
type Handler interface {
	Handle(ctx context.Context, user *flow.UserRecord, event transport.Event) (*Result, error)
}
