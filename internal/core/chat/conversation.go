package chat

import "slices"

// Conversation is an append-only, ordered message log for one session.
type Conversation struct {
	messages []Message
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{messages: make([]Message, 0, 16)}
}

// Append adds m to the end of the log.
func (c *Conversation) Append(m Message) {
	c.messages = append(c.messages, m)
}

// Messages returns the messages in insertion order. The returned slice is a
// copy and may be modified by the caller.
func (c *Conversation) Messages() []Message {
	return slices.Clone(c.messages)
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Last returns the most recent message from sender.
func (c *Conversation) Last(sender Sender) (Message, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Sender == sender {
			return c.messages[i], true
		}
	}
	return Message{}, false
}
