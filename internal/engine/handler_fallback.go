package engine

import (
	"context"
	"log/slog"

	"onboardbot/internal/flow"
	"onboardbot/internal/logging"
	"onboardbot/internal/transport"
)

// fallbackHandler claims any remaining text message. It only logs: free
// text outside the known answers gets no reply.
type fallbackHandler struct {
	logger *slog.Logger
}

func (h *fallbackHandler) Handle(_ context.Context, user *flow.UserRecord, event transport.Event) (*Result, error) {
	msg, ok := event.(transport.Message)
	if !ok || !msg.HasText() {
		return nil, nil
	}
	h.logger.Info("ignoring free-form text message",
		logging.String(logging.FieldUser, user.Username),
		logging.Int64(logging.FieldChatID, msg.ChatID))
	return &Result{}, nil
}
