package telegram

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"onboardbot/internal/logging"
	"onboardbot/internal/transport"
)

// pollErrorBackoff spaces retries after a failed getUpdates call so a
// broken network does not spin the loop.
const pollErrorBackoff = 5 * time.Second

// EventHandler consumes inbound events from the poller.
type EventHandler interface {
	HandleEvent(ctx context.Context, event transport.Event) error
}

// Poller drives the long-poll loop and feeds events to the handler.
type Poller struct {
	client  *Client
	handler EventHandler
	logger  *slog.Logger
	offset  int64
}

// NewPoller constructs a poller over the given client.
func NewPoller(client *Client, handler EventHandler, logger *slog.Logger) *Poller {
	return &Poller{
		client:  client,
		handler: handler,
		logger:  logging.NewComponentLogger(logger, "telegram"),
	}
}

// Run polls until ctx is canceled. Every update advances the offset even
// when its event is dropped, so a poisoned update can never wedge the loop.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("starting long-poll loop")
	for {
		updates, err := p.client.GetUpdates(ctx, p.offset)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			p.logger.Error("polling updates failed", logging.Error(err))
			select {
			case <-time.After(pollErrorBackoff):
			case <-ctx.Done():
				return
			}
			continue
		}

		for _, update := range updates {
			p.offset = update.ID + 1
			if update.Event == nil {
				continue
			}
			if err := p.handler.HandleEvent(ctx, update.Event); err != nil {
				p.logger.Error("handling update failed",
					logging.Int64("update_id", update.ID),
					logging.Error(err))
			}
		}

		if ctx.Err() != nil {
			return
		}
	}
}
