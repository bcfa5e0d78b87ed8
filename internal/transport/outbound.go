package transport

import (
	"context"
	"io"
)

// Button is one inline choice in a prompt keyboard. Data is the opaque
// callback token echoed back in a CallbackQuery.
type Button struct {
	Label string
	Data  string
}

// Outbound is the closed sum of responses the engine can send.
type Outbound interface {
	isOutbound()
}

// TextMessage sends plain text, optionally with a one-time reply keyboard
// (rows of literal answer texts) or an instruction to remove one.
type TextMessage struct {
	ChatID         int64
	Text           string
	ReplyKeyboard  [][]string
	RemoveKeyboard bool
}

func (TextMessage) isOutbound() {}

// PhotoPrompt sends a photo with a caption and an inline choice keyboard.
type PhotoPrompt struct {
	ChatID  int64
	FileID  string
	Caption string
	Buttons []Button
}

func (PhotoPrompt) isOutbound() {}

// DocumentPrompt re-sends a stored document with a caption and an inline
// choice keyboard.
type DocumentPrompt struct {
	ChatID  int64
	FileID  string
	Caption string
	Buttons []Button
}

func (DocumentPrompt) isOutbound() {}

// DeleteMessage removes a previously sent message, typically an answered
// prompt.
type DeleteMessage struct {
	ChatID    int64
	MessageID int64
}

func (DeleteMessage) isOutbound() {}

// Responder sends outbound responses to the chat transport.
type Responder interface {
	Send(ctx context.Context, out Outbound) error
	// AckCallback acknowledges an answered inline choice so the client
	// stops showing a progress indicator. Best effort.
	AckCallback(ctx context.Context, queryID string) error
}

// FileFetcher downloads submitted file content from the transport.
type FileFetcher interface {
	FetchFile(ctx context.Context, fileID string) (io.ReadCloser, error)
}
