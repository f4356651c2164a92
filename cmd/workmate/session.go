package main

import (
	"encoding/json"

	openai "github.com/sashabaranov/go-openai"

	"github.com/trungvq/workmate/internal/conversation"
	"github.com/trungvq/workmate/internal/history"
	"github.com/trungvq/workmate/internal/logger"
)

// persistTurn saves every message the turn appended to conv, starting at index
// from. Assistant tool requests keep their tool_calls payload so the session
// can be replayed later.
func persistTurn(store *history.Store, sessionID string, conv *conversation.Conversation, from int) {
	msgs := conv.Messages()
	for _, msg := range msgs[from:] {
		rec := history.Message{
			SessionID:  sessionID,
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
		}
		if len(msg.ToolCalls) > 0 {
			raw, err := json.Marshal(msg.ToolCalls)
			if err != nil {
				logger.L.Error("failed to encode tool calls for history", "error", err)
			} else {
				rec.ToolCalls = string(raw)
			}
		}
		store.Save(rec)
	}
}

// restoreConversation rebuilds a session's conversation from the store. It
// returns nil when the session has no saved messages.
func restoreConversation(store *history.Store, sessionID, systemPrompt string) *conversation.Conversation {
	saved := store.List(sessionID)
	if len(saved) == 0 {
		return nil
	}

	conv := conversation.New(systemPrompt)
	for _, rec := range saved {
		msg := openai.ChatCompletionMessage{
			Role:       rec.Role,
			Content:    rec.Content,
			ToolCallID: rec.ToolCallID,
		}
		if rec.ToolCalls != "" {
			if err := json.Unmarshal([]byte(rec.ToolCalls), &msg.ToolCalls); err != nil {
				logger.L.Warn("skipping undecodable tool calls in history", "session_id", sessionID, "error", err)
			}
		}
		conv.Append(msg)
	}
	return conv
}
