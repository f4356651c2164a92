// Package conversation models the ordered message history threaded through an
// agent loop run. A Conversation is append-only and exclusively owned by its
// caller; the loop appends to the instance it is given and never retains it.
package conversation

import "github.com/sashabaranov/go-openai"

// Conversation is an append-only sequence of chat messages. It is not safe for
// concurrent use: each session must own its own instance.
type Conversation struct {
	msgs []openai.ChatCompletionMessage
}

// New creates a conversation, optionally seeded with a system prompt.
func New(systemPrompt string) *Conversation {
	c := &Conversation{}
	if systemPrompt != "" {
		c.msgs = append(c.msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	return c
}

// Append adds messages to the end of the conversation.
func (c *Conversation) Append(msgs ...openai.ChatCompletionMessage) {
	c.msgs = append(c.msgs, msgs...)
}

// AddUser appends a user message.
func (c *Conversation) AddUser(text string) {
	c.msgs = append(c.msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})
}

// Messages returns a copy of the message slice, in order. The copy keeps
// callers from mutating history out from under the loop.
func (c *Conversation) Messages() []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(c.msgs))
	copy(out, c.msgs)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int { return len(c.msgs) }

// Last returns the most recent message, or false when empty.
func (c *Conversation) Last() (openai.ChatCompletionMessage, bool) {
	if len(c.msgs) == 0 {
		return openai.ChatCompletionMessage{}, false
	}
	return c.msgs[len(c.msgs)-1], true
}
