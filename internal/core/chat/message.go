// Package chat holds the conversation log and the request lifecycle that
// feeds it.
package chat

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Content is the body of a message. It is either PlainText typed by the user
// or a RawResult returned by a provider. Renderers only use Text.
type Content interface {
	Text() string
	isContent()
}

// PlainText is user-entered text.
type PlainText string

// Text returns the text itself.
func (p PlainText) Text() string { return string(p) }

func (PlainText) isContent() {}

// RawResult is a provider reply with its extracted text and the provider's
// native response value.
type RawResult struct {
	Body string
	Raw  any
}

// Text returns the extracted reply text.
func (r RawResult) Text() string { return r.Body }

func (RawResult) isContent() {}

// Message is a single entry in a conversation.
type Message struct {
	ID        string
	Content   Content
	Sender    Sender
	Timestamp time.Time
}

// Text is shorthand for m.Content.Text().
func (m Message) Text() string {
	if m.Content == nil {
		return ""
	}
	return m.Content.Text()
}

// NewMessage creates a message stamped with now. IDs are UUIDv7, which sort
// in creation order.
func NewMessage(sender Sender, content Content, now time.Time) Message {
	return Message{
		ID:        newID(),
		Content:   content,
		Sender:    sender,
		Timestamp: now,
	}
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
