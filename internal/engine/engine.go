package engine

import (
	"context"
	"log/slog"

	"onboardbot/internal/blob"
	"onboardbot/internal/flow"
	"onboardbot/internal/logging"
	"onboardbot/internal/store"
	"onboardbot/internal/transport"
)

// Lanes serializes per-user work and releases a finished user's lane.
// Satisfied by dispatch.Pool.
type Lanes interface {
	Do(username string, task func()) error
	Release(username string)
}

// Waker reactivates the classification scheduler after a new submission.
type Waker interface {
	Wake()
}

// Engine routes inbound events through the handler chain. All per-user
// work runs on the user's lane, so handlers never race on the same
// user record.
type Engine struct {
	store     *store.Store
	responder transport.Responder
	lanes     Lanes
	waker     Waker
	logger    *slog.Logger
	handlers  []Handler
}

// Options collects the engine's collaborators.
type Options struct {
	Store     *store.Store
	Blobs     blob.Store
	Fetcher   transport.FileFetcher
	Responder transport.Responder
	Lanes     Lanes
	Waker     Waker
	Logger    *slog.Logger
}

// New wires the handler chain in claim order: callback answers first,
// then file uploads, then the finish-keyboard replies, then the
// logging fallback.
func New(opts Options) *Engine {
	e := &Engine{
		store:     opts.Store,
		responder: opts.Responder,
		lanes:     opts.Lanes,
		waker:     opts.Waker,
		logger:    logging.NewComponentLogger(opts.Logger, "engine"),
	}
	e.handlers = []Handler{
		&callbackHandler{store: opts.Store, blobs: opts.Blobs, logger: e.logger},
		&documentHandler{blobs: opts.Blobs, fetcher: opts.Fetcher, store: opts.Store, waker: opts.Waker, logger: e.logger},
		&photoHandler{blobs: opts.Blobs, fetcher: opts.Fetcher, store: opts.Store, waker: opts.Waker, logger: e.logger},
		&finishHandler{store: opts.Store},
		&fallbackHandler{logger: e.logger},
	}
	return e
}

// HandleEvent enqueues the event onto the sender's lane. It blocks only
// when the lane's queue is full, which preserves per-user arrival order.
func (e *Engine) HandleEvent(ctx context.Context, event transport.Event) error {
	username := event.EventSender().Username
	if username == "" {
		e.logger.Warn("dropping event without a sender username",
			logging.Int64(logging.FieldChatID, event.EventChatID()))
		return nil
	}
	return e.lanes.Do(username, func() {
		e.process(ctx, event)
	})
}

func (e *Engine) process(ctx context.Context, event transport.Event) {
	username := event.EventSender().Username
	chatID := event.EventChatID()

	if query, ok := event.(transport.CallbackQuery); ok {
		// Best effort: a failed ack only leaves a spinner in the client.
		if err := e.responder.AckCallback(ctx, query.QueryID); err != nil {
			e.logger.Debug("callback ack failed",
				logging.String(logging.FieldUser, username),
				logging.Error(err))
		}
	}

	user, err := e.store.LoadUser(ctx, username)
	if err != nil {
		e.logger.Error("loading user failed",
			logging.String(logging.FieldUser, username),
			logging.Error(err))
		e.send(ctx, transport.TextMessage{ChatID: chatID, Text: textUploadError})
		return
	}
	if user == nil {
		if user = e.firstContact(ctx, event); user == nil {
			return
		}
	}

	if user.State.Terminal() {
		e.lanes.Release(username)
		e.logger.Debug("ignoring event from completed user",
			logging.String(logging.FieldUser, username))
		return
	}

	for _, handler := range e.handlers {
		result, err := handler.Handle(ctx, user, event)
		if err != nil {
			e.logger.Error("handler failed",
				logging.String(logging.FieldUser, username),
				logging.Error(err))
			e.send(ctx, transport.TextMessage{ChatID: chatID, Text: textUploadError})
			return
		}
		if result == nil {
			continue
		}
		for _, out := range result.Ack {
			e.send(ctx, out)
		}
		if result.Deferred != nil {
			outs, err := result.Deferred(ctx)
			if err != nil {
				e.logger.Error("deferred action failed",
					logging.String(logging.FieldUser, username),
					logging.Error(err))
				e.send(ctx, transport.TextMessage{ChatID: chatID, Text: textUploadError})
				return
			}
			for _, out := range outs {
				e.send(ctx, out)
			}
		}
		e.settleState(ctx, username, chatID, user.State)
		return
	}
}

// firstContact creates the user record, greets, and moves the user to
// awaiting submissions. The created record is returned so the triggering
// event still runs through the chain.
func (e *Engine) firstContact(ctx context.Context, event transport.Event) *flow.UserRecord {
	sender := event.EventSender()
	user := &flow.UserRecord{
		Username:  sender.Username,
		FirstName: sender.FirstName,
		LastName:  sender.LastName,
		ChatID:    event.EventChatID(),
		State:     flow.StateNew,
	}
	if err := e.store.InsertUser(ctx, user); err != nil {
		e.logger.Error("creating user failed",
			logging.String(logging.FieldUser, sender.Username),
			logging.Error(err))
		return nil
	}
	e.logger.Info("new user joined the flow",
		logging.String(logging.FieldUser, sender.Username),
		logging.Int64(logging.FieldChatID, user.ChatID))
	e.send(ctx, transport.TextMessage{ChatID: user.ChatID, Text: textGreeting})
	if err := e.store.UpdateState(ctx, sender.Username, flow.StateAwaitingSubmissions); err != nil {
		e.logger.Error("advancing new user failed",
			logging.String(logging.FieldUser, sender.Username),
			logging.Error(err))
		return nil
	}
	user.State = flow.StateAwaitingSubmissions
	return user
}

// settleState recomputes the flow state from the stored documents after
// a claimed event and sends the transition replies. A completion that a
// handler already persisted is kept as-is, never re-derived.
func (e *Engine) settleState(ctx context.Context, username string, chatID int64, prev flow.FlowState) {
	user, err := e.store.LoadUser(ctx, username)
	if err != nil || user == nil {
		e.logger.Error("reloading user after event failed",
			logging.String(logging.FieldUser, username),
			logging.Error(err))
		return
	}

	next := user.State
	if !user.State.Terminal() {
		next = flow.ComputeState(user.Documents)
		if next != user.State {
			if err := e.store.UpdateState(ctx, username, next); err != nil {
				e.logger.Error("persisting state transition failed",
					logging.String(logging.FieldUser, username),
					logging.Error(err))
				return
			}
			e.logger.Info("flow state changed",
				logging.String(logging.FieldUser, username),
				logging.String(logging.FieldState, string(next)))
		}
	}

	switch {
	case next.Terminal():
		if !prev.Terminal() {
			e.send(ctx, transport.TextMessage{ChatID: chatID, Text: textAllReceived, RemoveKeyboard: true})
		}
		e.lanes.Release(username)
	case next == flow.StateMandatorySatisfied && prev != flow.StateMandatorySatisfied:
		e.send(ctx, transport.TextMessage{
			ChatID:        chatID,
			Text:          textAreYouDone,
			ReplyKeyboard: [][]string{{answerYes}, {answerNo}},
		})
	}
}

func (e *Engine) send(ctx context.Context, out transport.Outbound) {
	if err := e.responder.Send(ctx, out); err != nil {
		e.logger.Error("sending reply failed", logging.Error(err))
	}
}
