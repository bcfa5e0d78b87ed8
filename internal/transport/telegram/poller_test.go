package telegram_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"onboardbot/internal/logging"
	"onboardbot/internal/transport"
	"onboardbot/internal/transport/telegram"
)

type collectingHandler struct {
	mu     sync.Mutex
	events []transport.Event
	done   context.CancelFunc
}

func (h *collectingHandler) HandleEvent(_ context.Context, event transport.Event) error {
	h.mu.Lock()
	h.events = append(h.events, event)
	count := len(h.events)
	h.mu.Unlock()
	// Stop after the second poll so the test can observe the advanced
	// offset on the second getUpdates call.
	if count >= 2 {
		h.done()
	}
	return nil
}

func TestPollerDeliversEventsAndAdvancesOffset(t *testing.T) {
	api := newFakeAPI(t)
	api.results["getUpdates"] = `[
		{"update_id": 7, "message": {
			"message_id": 1,
			"from": {"username": "avpod"},
			"chat": {"id": 100},
			"text": "hello"
		}}
	]`
	client := newClient(t, api)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	handler := &collectingHandler{done: cancel}

	telegram.NewPoller(client, handler, logging.NewNop()).Run(ctx)

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.events) == 0 {
		t.Fatal("poller delivered no events")
	}
	msg, ok := handler.events[0].(transport.Message)
	if !ok || msg.Text != "hello" {
		t.Fatalf("unexpected event: %+v", handler.events[0])
	}

	// The second poll after the first batch must ask past update 7.
	api.mu.Lock()
	defer api.mu.Unlock()
	var sawAdvanced bool
	for _, call := range api.calls {
		if call.Body["offset"] == float64(8) {
			sawAdvanced = true
		}
	}
	if !sawAdvanced {
		t.Error("poll offset never advanced past the delivered update")
	}
}
