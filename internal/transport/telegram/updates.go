package telegram

import (
	"context"
	"time"

	"onboardbot/internal/transport"
)

type apiUser struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type apiChat struct {
	ID int64 `json:"id"`
}

type apiDocument struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
}

type apiPhotoSize struct {
	FileID string `json:"file_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type apiMessage struct {
	MessageID int64          `json:"message_id"`
	From      *apiUser       `json:"from"`
	Chat      apiChat        `json:"chat"`
	Date      int64          `json:"date"`
	Text      string         `json:"text"`
	Document  *apiDocument   `json:"document"`
	Photo     []apiPhotoSize `json:"photo"`
}

type apiCallbackQuery struct {
	ID      string      `json:"id"`
	From    *apiUser    `json:"from"`
	Message *apiMessage `json:"message"`
	Data    string      `json:"data"`
}

type apiUpdate struct {
	UpdateID      int64             `json:"update_id"`
	Message       *apiMessage       `json:"message"`
	CallbackQuery *apiCallbackQuery `json:"callback_query"`
}

// GetUpdates long-polls for new updates past offset. It returns when the
// server responds, which may be up to the configured poll timeout later.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	var raw []apiUpdate
	err := c.call(ctx, "getUpdates", map[string]any{
		"offset":          offset,
		"timeout":         c.pollTimeout,
		"allowed_updates": []string{"message", "callback_query"},
	}, &raw)
	if err != nil {
		return nil, err
	}

	updates := make([]Update, 0, len(raw))
	for _, u := range raw {
		updates = append(updates, Update{ID: u.UpdateID, Event: u.toEvent()})
	}
	return updates, nil
}

// Update pairs a transport event with the server-side update id used to
// advance the poll offset. Event is nil for update kinds the flow does
// not consume.
type Update struct {
	ID    int64
	Event transport.Event
}

func (u apiUpdate) toEvent() transport.Event {
	switch {
	case u.Message != nil && u.Message.From != nil:
		msg := u.Message
		event := transport.Message{
			From:      toSender(msg.From),
			ChatID:    msg.Chat.ID,
			MessageID: msg.MessageID,
			SentAt:    time.Unix(msg.Date, 0).UTC(),
			Text:      msg.Text,
		}
		if msg.Document != nil {
			event.Document = &transport.Document{
				FileID:   msg.Document.FileID,
				FileName: msg.Document.FileName,
				MimeType: msg.Document.MimeType,
			}
		}
		for _, p := range msg.Photo {
			event.Photos = append(event.Photos, transport.PhotoSize{
				FileID: p.FileID,
				Width:  p.Width,
				Height: p.Height,
			})
		}
		return event
	case u.CallbackQuery != nil && u.CallbackQuery.From != nil && u.CallbackQuery.Message != nil:
		query := u.CallbackQuery
		return transport.CallbackQuery{
			From:      toSender(query.From),
			ChatID:    query.Message.Chat.ID,
			MessageID: query.Message.MessageID,
			QueryID:   query.ID,
			Data:      query.Data,
		}
	default:
		return nil
	}
}

func toSender(u *apiUser) transport.Sender {
	return transport.Sender{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
