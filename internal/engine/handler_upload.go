package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"onboardbot/internal/blob"
	"onboardbot/internal/flow"
	"onboardbot/internal/logging"
	"onboardbot/internal/store"
	"onboardbot/internal/transport"
)

// documentHandler stores file attachments. The upload happens before any
// record is written, so a failed upload leaves no dangling document row.
type documentHandler struct {
	blobs   blob.Store
	fetcher transport.FileFetcher
	store   *store.Store
	waker   Waker
	logger  *slog.Logger
}

func (h *documentHandler) Handle(ctx context.Context, user *flow.UserRecord, event transport.Event) (*Result, error) {
	msg, ok := event.(transport.Message)
	if !ok || msg.Document == nil {
		return nil, nil
	}
	attachment := *msg.Document

	return &Result{
		Deferred: func(ctx context.Context) ([]transport.Outbound, error) {
			storedName := user.Username + "_" + attachment.FileName
			ref, err := storeUpload(ctx, h.blobs, h.fetcher, user.Username, storedName, attachment.MimeType, attachment.FileID)
			if err != nil {
				return nil, err
			}
			doc := &flow.DocumentRecord{
				ID:               uuid.NewString(),
				Class:            flow.ClassUnclassified,
				StorageRef:       ref,
				OriginalFilename: attachment.FileName,
				StoredFilename:   storedName,
				TransportFileID:  attachment.FileID,
				CreatedAt:        msg.SentAt,
			}
			if err := h.store.AppendDocument(ctx, user.Username, doc); err != nil {
				return nil, err
			}
			h.logger.Info("stored document submission",
				logging.String(logging.FieldUser, user.Username),
				logging.String(logging.FieldDocumentID, doc.ID))
			h.waker.Wake()
			return []transport.Outbound{
				transport.TextMessage{ChatID: msg.ChatID, Text: textUploadSuccess},
			}, nil
		},
	}, nil
}

// photoHandler stores photo attachments. The largest rendition is the
// stored file; the smallest becomes the thumbnail shown on
// classification prompts.
type photoHandler struct {
	blobs   blob.Store
	fetcher transport.FileFetcher
	store   *store.Store
	waker   Waker
	logger  *slog.Logger
}

func (h *photoHandler) Handle(ctx context.Context, user *flow.UserRecord, event transport.Event) (*Result, error) {
	msg, ok := event.(transport.Message)
	if !ok || len(msg.Photos) == 0 {
		return nil, nil
	}
	largest := *msg.LargestPhoto()
	thumbnail := *msg.SmallestPhoto()

	return &Result{
		Deferred: func(ctx context.Context) ([]transport.Outbound, error) {
			storedName := fmt.Sprintf("%s_photo_%s.jpg", user.Username, largest.FileID)
			ref, err := storeUpload(ctx, h.blobs, h.fetcher, user.Username, storedName, "image/jpeg", largest.FileID)
			if err != nil {
				return nil, err
			}
			doc := &flow.DocumentRecord{
				ID:              uuid.NewString(),
				Class:           flow.ClassUnclassified,
				StorageRef:      ref,
				StoredFilename:  storedName,
				TransportFileID: largest.FileID,
				ThumbnailFileID: thumbnail.FileID,
				CreatedAt:       msg.SentAt,
			}
			if err := h.store.AppendDocument(ctx, user.Username, doc); err != nil {
				return nil, err
			}
			h.logger.Info("stored photo submission",
				logging.String(logging.FieldUser, user.Username),
				logging.String(logging.FieldDocumentID, doc.ID))
			h.waker.Wake()
			return []transport.Outbound{
				transport.TextMessage{ChatID: msg.ChatID, Text: textUploadSuccess},
			}, nil
		},
	}, nil
}

func storeUpload(ctx context.Context, blobs blob.Store, fetcher transport.FileFetcher, username, name, mimeType, fileID string) (string, error) {
	content, err := fetcher.FetchFile(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("fetch file %s: %w", fileID, err)
	}
	defer content.Close()
	ref, err := blobs.Upload(ctx, username, name, mimeType, content)
	if err != nil {
		return "", fmt.Errorf("upload file %s: %w", fileID, err)
	}
	return ref, nil
}
