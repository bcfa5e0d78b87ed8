package engine

import (
	"context"

	"onboardbot/internal/flow"
	"onboardbot/internal/store"
	"onboardbot/internal/transport"
)

// finishHandler matches the literal reply-keyboard answers to the
// "are you finished" question. A "no more documents" answer forces
// completion regardless of which optional classes are still missing.
type finishHandler struct {
	store *store.Store
}

func (h *finishHandler) Handle(ctx context.Context, user *flow.UserRecord, event transport.Event) (*Result, error) {
	msg, ok := event.(transport.Message)
	if !ok || !msg.HasText() {
		return nil, nil
	}

	switch msg.Text {
	case answerNo:
		return &Result{
			Deferred: func(ctx context.Context) ([]transport.Outbound, error) {
				// Forced completion is persisted directly, never derived
				// from the document set.
				if err := h.store.UpdateState(ctx, user.Username, flow.StateCompleted); err != nil {
					return nil, err
				}
				return nil, nil
			},
		}, nil
	case answerYes:
		// Claimed but nothing to do: the user keeps submitting.
		return &Result{}, nil
	default:
		return nil, nil
	}
}
