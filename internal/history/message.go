package history

import "time"

// Message is a single conversational message persisted per session. ToolCallID
// and ToolCalls carry the round-trip bookkeeping for tool-role and assistant
// messages so a reloaded session replays cleanly.
type Message struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	ToolCallID string    `json:"tool_call_id,omitempty"`
	ToolCalls  string    `json:"tool_calls,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
