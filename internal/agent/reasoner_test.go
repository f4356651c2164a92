package agent

import (
	"context"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	"github.com/trungvq/workmate/internal/conversation"
	"github.com/trungvq/workmate/internal/tools"
)

// recordingLLM captures the request for inspection.
type recordingLLM struct {
	lastReq openai.ChatCompletionRequest
	resp    openai.ChatCompletionResponse
}

func (m *recordingLLM) CreateChatCompletion(ctx context.Context, r openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.lastReq = r
	return m.resp, nil
}

func TestDecide_PassesConversationAndSchemas(t *testing.T) {
	reg, err := tools.NewRegistry(tools.Spec{
		Name:        "list_tasks",
		Description: "Liệt kê các công việc",
		Run:         func(ctx context.Context, args map[string]any) (string, error) { return "", nil },
	})
	require.NoError(t, err)

	client := &recordingLLM{resp: finalResponse("hi")}
	r := NewReasoner(client, "gpt-4o", reg)

	conv := conversation.New("system prompt")
	conv.AddUser("hello")
	conv.Append(openai.ChatCompletionMessage{Role: openai.ChatMessageRoleTool, ToolCallID: "x", Content: "earlier result"})

	_, err = r.Decide(context.Background(), conv)
	require.NoError(t, err)

	require.Equal(t, "gpt-4o", client.lastReq.Model)
	require.Len(t, client.lastReq.Messages, 3, "full history passed verbatim, tool results included")
	require.Len(t, client.lastReq.Tools, 1)
	require.Equal(t, "list_tasks", client.lastReq.Tools[0].Function.Name)
}

// A response without tool calls is Final even when the content is empty; the
// raw content is surfaced and no retry happens.
func TestDecide_EmptyContentIsFinal(t *testing.T) {
	client := &recordingLLM{resp: finalResponse("")}
	r := NewReasoner(client, "gpt-4o", emptyRegistry(t))

	conv := conversation.New("s")
	conv.AddUser("u")

	d, err := r.Decide(context.Background(), conv)
	require.NoError(t, err)
	require.False(t, d.IsAct())
	require.Equal(t, "", d.Final)
}

func TestDecide_ToolCallsBecomeOrderedInvocations(t *testing.T) {
	client := &recordingLLM{resp: actResponse(
		toolCall("c1", "list_events", `{"start_time":"2025-08-20T00:00:00+07:00"}`),
		toolCall("c2", "list_tasks", `{}`),
	)}
	r := NewReasoner(client, "gpt-4o", emptyRegistry(t))

	conv := conversation.New("s")
	conv.AddUser("u")

	d, err := r.Decide(context.Background(), conv)
	require.NoError(t, err)
	require.True(t, d.IsAct())
	require.Len(t, d.Invocations, 2)
	require.Equal(t, "c1", d.Invocations[0].ID)
	require.Equal(t, "list_events", d.Invocations[0].Name)
	require.Equal(t, "c2", d.Invocations[1].ID)
}
