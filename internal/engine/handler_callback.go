package engine

import (
	"context"
	"fmt"
	"log/slog"

	"onboardbot/internal/blob"
	"onboardbot/internal/callback"
	"onboardbot/internal/flow"
	"onboardbot/internal/logging"
	"onboardbot/internal/store"
	"onboardbot/internal/transport"
)

// callbackHandler resolves answered classification prompts. Stale tokens
// and already-resolved documents are absorbed silently so late taps on
// old prompts never error.
type callbackHandler struct {
	store  *store.Store
	blobs  blob.Store
	logger *slog.Logger
}

func (h *callbackHandler) Handle(ctx context.Context, user *flow.UserRecord, event transport.Event) (*Result, error) {
	query, ok := event.(transport.CallbackQuery)
	if !ok {
		return nil, nil
	}

	return &Result{
		Deferred: func(ctx context.Context) ([]transport.Outbound, error) {
			entry, err := h.store.ResolveCallbackToken(ctx, query.Data)
			if err != nil {
				return nil, fmt.Errorf("resolve callback token: %w", err)
			}
			if entry == nil {
				h.logger.Warn("ignoring unknown callback token",
					logging.String(logging.FieldUser, user.Username),
					logging.String(logging.FieldToken, query.Data))
				return nil, nil
			}

			deletePrompt := transport.DeleteMessage{ChatID: query.ChatID, MessageID: query.MessageID}
			doc := user.DocumentByID(entry.DocumentID)
			if doc == nil {
				// Another button on the same prompt already resolved it.
				return []transport.Outbound{deletePrompt}, nil
			}

			switch entry.Action {
			case callback.ActionDelete:
				h.logger.Info("deleting document on user request",
					logging.String(logging.FieldUser, user.Username),
					logging.String(logging.FieldDocumentID, entry.DocumentID))
				if err := h.blobs.Delete(ctx, doc.StorageRef); err != nil {
					return nil, fmt.Errorf("delete stored file: %w", err)
				}
				if _, err := h.store.DeleteDocument(ctx, user.Username, entry.DocumentID); err != nil {
					return nil, err
				}
			case callback.ActionClassify:
				h.logger.Info("user classified document",
					logging.String(logging.FieldUser, user.Username),
					logging.String(logging.FieldDocumentID, entry.DocumentID),
					logging.String(logging.FieldClass, string(entry.Class)))
				newRef, err := h.blobs.Move(ctx, doc.StorageRef, entry.Class.Folder())
				if err != nil {
					return nil, fmt.Errorf("move stored file: %w", err)
				}
				if _, err := h.store.ClassifyDocument(ctx, user.Username, entry.DocumentID, entry.Class, newRef); err != nil {
					return nil, err
				}
			default:
				return nil, fmt.Errorf("callback token %s has unknown action %q", entry.Token, entry.Action)
			}

			return []transport.Outbound{deletePrompt}, nil
		},
	}, nil
}
