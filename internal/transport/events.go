package transport

import "time"

// Sender identifies the user behind an inbound event.
type Sender struct {
	Username  string
	FirstName string
	LastName  string
}

// Document describes an attached file in a message.
type Document struct {
	FileID   string
	FileName string
	MimeType string
}

// PhotoSize is one rendition of an attached photo. Transports deliver
// several sizes per photo, smallest first.
type PhotoSize struct {
	FileID string
	Width  int
	Height int
}

// Event is the closed sum of inbound transport events. Exactly one of
// the concrete types below is delivered per update.
type Event interface {
	// EventSender returns who produced the event.
	EventSender() Sender
	// EventChatID returns the chat the event arrived on.
	EventChatID() int64
}

// Message is an inbound chat message carrying text, a document, or photos.
type Message struct {
	From      Sender
	ChatID    int64
	MessageID int64
	SentAt    time.Time
	Text      string
	Document  *Document
	Photos    []PhotoSize
}

func (m Message) EventSender() Sender { return m.From }

func (m Message) EventChatID() int64 { return m.ChatID }

// HasText reports whether the message carries plain text.
func (m Message) HasText() bool { return m.Text != "" }

// LargestPhoto returns the highest-resolution rendition, or nil.
func (m Message) LargestPhoto() *PhotoSize {
	if len(m.Photos) == 0 {
		return nil
	}
	best := m.Photos[0]
	for _, p := range m.Photos[1:] {
		if p.Width*p.Height > best.Width*best.Height {
			best = p
		}
	}
	return &best
}

// SmallestPhoto returns the lowest-resolution rendition, or nil. Used as
// the thumbnail reference for classification prompts.
func (m Message) SmallestPhoto() *PhotoSize {
	if len(m.Photos) == 0 {
		return nil
	}
	best := m.Photos[0]
	for _, p := range m.Photos[1:] {
		if p.Width*p.Height < best.Width*best.Height {
			best = p
		}
	}
	return &best
}

// CallbackQuery is an inbound answer to an inline choice prompt. Data
// carries the opaque callback token; MessageID references the prompt
// message so it can be deleted after the answer.
type CallbackQuery struct {
	From      Sender
	ChatID    int64
	MessageID int64
	QueryID   string
	Data      string
}

func (c CallbackQuery) EventSender() Sender { return c.From }

func (c CallbackQuery) EventChatID() int64 { return c.ChatID }
