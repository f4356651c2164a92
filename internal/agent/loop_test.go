package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	"github.com/trungvq/workmate/internal/conversation"
	"github.com/trungvq/workmate/internal/tools"
)

// mockLLM replays a queue of canned responses, one per call.
type mockLLM struct {
	mu    sync.Mutex
	calls []openai.ChatCompletionResponse
	seen  [][]openai.ChatCompletionMessage
	err   error
}

func (m *mockLLM) CreateChatCompletion(ctx context.Context, r openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return openai.ChatCompletionResponse{}, m.err
	}
	m.seen = append(m.seen, r.Messages)
	if len(m.calls) == 0 {
		panic("mockLLM: no more responses configured")
	}
	resp := m.calls[0]
	m.calls = m.calls[1:]
	return resp, nil
}

func finalResponse(text string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Content: text},
		}},
	}
}

func actResponse(calls ...openai.ToolCall) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{ToolCalls: calls},
		}},
	}
}

func toolCall(id, name, args string) openai.ToolCall {
	return openai.ToolCall{
		ID:       id,
		Type:     openai.ToolTypeFunction,
		Function: openai.FunctionCall{Name: name, Arguments: args},
	}
}

// countingSpec wraps a tool and counts invocations.
type countingSpec struct {
	mu    sync.Mutex
	count int
}

func (c *countingSpec) spec(name string, out string, err error) tools.Spec {
	return tools.Spec{
		Name: name,
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			c.mu.Lock()
			c.count++
			c.mu.Unlock()
			return out, err
		},
	}
}

func newLoop(t *testing.T, client *mockLLM, registry *tools.Registry, opts ...Option) *Loop {
	t.Helper()
	r := NewReasoner(client, "gpt-4o", registry)
	e := NewExecutor(registry, 0)
	return NewLoop(r, e, opts...)
}

func emptyRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	reg, err := tools.NewRegistry()
	require.NoError(t, err)
	return reg
}

// A final decision on the first call appends exactly one assistant message and
// executes nothing.
func TestInvoke_FinalImmediately(t *testing.T) {
	counter := &countingSpec{}
	reg, err := tools.NewRegistry(counter.spec("list_tasks", "ok", nil))
	require.NoError(t, err)

	client := &mockLLM{calls: []openai.ChatCompletionResponse{finalResponse("Chào bạn!")}}
	loop := newLoop(t, client, reg)

	conv := conversation.New("system prompt")
	conv.AddUser("hi")
	before := conv.Len()

	out, err := loop.Invoke(context.Background(), conv)
	require.NoError(t, err)
	require.Equal(t, "Chào bạn!", out)
	require.Equal(t, before+1, conv.Len())
	require.Equal(t, 0, counter.count)

	last, _ := conv.Last()
	require.Equal(t, openai.ChatMessageRoleAssistant, last.Role)
	require.Equal(t, "Chào bạn!", last.Content)
}

// The very first decision must reach the model: a fresh Invoke with one final
// response completes instead of stalling in the initial state.
func TestInvoke_FirstDecisionReachesModel(t *testing.T) {
	client := &mockLLM{calls: []openai.ChatCompletionResponse{finalResponse("ok")}}
	loop := newLoop(t, client, emptyRegistry(t))

	conv := conversation.New("system prompt")
	conv.AddUser("hi")

	out, err := loop.Invoke(context.Background(), conv)
	require.NoError(t, err)
	require.Equal(t, "ok", out)
	require.Len(t, client.seen, 1)
	require.Equal(t, "system prompt", client.seen[0][0].Content)
}

// Scenario: single tool round-trip. create_task succeeds, the loop re-asks the
// reasoner, and the final conversation carries system, user, assistant(tool
// call), tool result, assistant(final) — five messages.
func TestInvoke_SingleToolRoundTrip(t *testing.T) {
	reg, err := tools.NewRegistry(tools.Spec{
		Name: "create_task",
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			require.Equal(t, "buy milk", args["title"])
			require.Equal(t, "2025-08-20", args["due_date"])
			return "Đã tạo thành công công việc: 'buy milk'.", nil
		},
	})
	require.NoError(t, err)

	client := &mockLLM{calls: []openai.ChatCompletionResponse{
		actResponse(toolCall("call_1", "create_task", `{"title":"buy milk","due_date":"2025-08-20"}`)),
		finalResponse("Mình đã tạo công việc 'buy milk' với hạn 2025-08-20."),
	}}
	loop := newLoop(t, client, reg)

	conv := conversation.New("system prompt")
	conv.AddUser("create task 'buy milk' due 2025-08-20")

	out, err := loop.Invoke(context.Background(), conv)
	require.NoError(t, err)
	require.Equal(t, "Mình đã tạo công việc 'buy milk' với hạn 2025-08-20.", out)

	msgs := conv.Messages()
	require.Len(t, msgs, 5)
	require.Equal(t, openai.ChatMessageRoleSystem, msgs[0].Role)
	require.Equal(t, openai.ChatMessageRoleUser, msgs[1].Role)
	require.Len(t, msgs[2].ToolCalls, 1)
	require.Equal(t, openai.ChatMessageRoleTool, msgs[3].Role)
	require.Equal(t, "call_1", msgs[3].ToolCallID)
	require.Equal(t, openai.ChatMessageRoleAssistant, msgs[4].Role)

	// The second model call must have seen the tool result.
	require.Len(t, client.seen, 2)
	secondCallMsgs := client.seen[1]
	require.Equal(t, openai.ChatMessageRoleTool, secondCallMsgs[len(secondCallMsgs)-1].Role)
}

// Scenario: ambiguous update. The reasoner searches, sees two matches, and
// must come back with a question instead of guessing — update_event is never
// invoked.
func TestInvoke_AmbiguousUpdateStopsAndAsks(t *testing.T) {
	updateCounter := &countingSpec{}
	reg, err := tools.NewRegistry(
		tools.Spec{
			Name: "list_events",
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				return "Đây là các sự kiện được tìm thấy:\n- ID: ev1\n  Tóm tắt: Họp nhóm\n\n- ID: ev2\n  Tóm tắt: Họp khách hàng", nil
			},
		},
		updateCounter.spec("update_event", "updated", nil),
	)
	require.NoError(t, err)

	client := &mockLLM{calls: []openai.ChatCompletionResponse{
		actResponse(toolCall("call_1", "list_events", `{}`)),
		finalResponse("Mình tìm thấy 2 cuộc họp ngày mai. Bạn muốn cập nhật cuộc họp nào?"),
	}}
	loop := newLoop(t, client, reg)

	conv := conversation.New("system prompt")
	conv.AddUser("update the meeting tomorrow")

	out, err := loop.Invoke(context.Background(), conv)
	require.NoError(t, err)
	require.Contains(t, out, "cuộc họp nào")
	require.Equal(t, 0, updateCounter.count)
}

// Scenario: tool failure recovery. delete_task fails with a not-found error;
// the failure tool result must be on the conversation before the final answer.
func TestInvoke_ToolFailureRecovery(t *testing.T) {
	reg, err := tools.NewRegistry(tools.Spec{
		Name: "delete_task",
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			return "", errors.New("404 not found")
		},
	})
	require.NoError(t, err)

	client := &mockLLM{calls: []openai.ChatCompletionResponse{
		actResponse(toolCall("call_1", "delete_task", `{"task_id":"t1"}`)),
		finalResponse("Mình không tìm thấy công việc đó để xóa."),
	}}
	loop := newLoop(t, client, reg)

	conv := conversation.New("system prompt")
	conv.AddUser("delete task t1")

	out, err := loop.Invoke(context.Background(), conv)
	require.NoError(t, err)
	require.Equal(t, "Mình không tìm thấy công việc đó để xóa.", out)

	msgs := conv.Messages()
	// ... assistant(tool call), tool(failure), assistant(final)
	require.Equal(t, openai.ChatMessageRoleTool, msgs[len(msgs)-2].Role)
	require.Contains(t, msgs[len(msgs)-2].Content, "404 not found")
	require.Equal(t, openai.ChatMessageRoleAssistant, msgs[len(msgs)-1].Role)
}

// A pathological reasoner that always acts must terminate via the turn bound,
// at exactly the configured number of round-trips.
func TestInvoke_LoopBound(t *testing.T) {
	const bound = 10
	counter := &countingSpec{}
	reg, err := tools.NewRegistry(counter.spec("list_tasks", "Bạn không có công việc nào.", nil))
	require.NoError(t, err)

	calls := make([]openai.ChatCompletionResponse, bound+5)
	for i := range calls {
		calls[i] = actResponse(toolCall(fmt.Sprintf("call_%d", i), "list_tasks", `{}`))
	}
	client := &mockLLM{calls: calls}
	loop := newLoop(t, client, reg, WithMaxTurns(bound))

	conv := conversation.New("system prompt")
	conv.AddUser("list my tasks forever")

	_, err = loop.Invoke(context.Background(), conv)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrLoopBoundExceeded))
	require.Equal(t, bound, len(client.seen), "reasoner consulted exactly bound times")
	require.Equal(t, bound, counter.count, "executor ran for every round-trip")
	// Partial messages stay on the conversation for diagnosability.
	require.Equal(t, 2+2*bound, conv.Len())
}

// A reasoner-level failure aborts the turn without appending anything for the
// failed call.
func TestInvoke_ReasonerFailure(t *testing.T) {
	client := &mockLLM{err: context.DeadlineExceeded}
	loop := newLoop(t, client, emptyRegistry(t))

	conv := conversation.New("system prompt")
	conv.AddUser("hi")
	before := conv.Len()

	_, err := loop.Invoke(context.Background(), conv)
	require.Error(t, err)
	var rerr *ReasonerError
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, before, conv.Len(), "conversation untouched")
}

// A response with no choices is a malformed decision and aborts the turn.
func TestInvoke_MalformedDecision(t *testing.T) {
	client := &mockLLM{calls: []openai.ChatCompletionResponse{{}}}
	loop := newLoop(t, client, emptyRegistry(t))

	conv := conversation.New("system prompt")
	conv.AddUser("hi")

	_, err := loop.Invoke(context.Background(), conv)
	require.True(t, errors.Is(err, ErrMalformedDecision))
}

// Cancellation takes effect before the next reasoner call.
func TestInvoke_Cancellation(t *testing.T) {
	client := &mockLLM{calls: []openai.ChatCompletionResponse{finalResponse("never reached")}}
	loop := newLoop(t, client, emptyRegistry(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conv := conversation.New("system prompt")
	conv.AddUser("hi")

	_, err := loop.Invoke(ctx, conv)
	require.Error(t, err)
	require.Empty(t, client.seen, "no model call after cancellation")
}

// Two concurrent turns on distinct conversations sharing one registry and one
// loop never interleave writes into each other's history.
func TestInvoke_ConversationIsolation(t *testing.T) {
	reg, err := tools.NewRegistry(tools.Spec{
		Name: "echo",
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			return tools.StringArg(args, "text"), nil
		},
	})
	require.NoError(t, err)

	runTurn := func(tag string) *conversation.Conversation {
		client := &mockLLM{calls: []openai.ChatCompletionResponse{
			actResponse(toolCall("call_"+tag, "echo", `{"text":"`+tag+`"}`)),
			finalResponse("done " + tag),
		}}
		loop := newLoop(t, client, reg)
		conv := conversation.New("system " + tag)
		conv.AddUser("user " + tag)
		out, err := loop.Invoke(context.Background(), conv)
		require.NoError(t, err)
		require.Equal(t, "done "+tag, out)
		return conv
	}

	var wg sync.WaitGroup
	convs := make([]*conversation.Conversation, 2)
	for i, tag := range []string{"a", "b"} {
		wg.Add(1)
		go func(i int, tag string) {
			defer wg.Done()
			convs[i] = runTurn(tag)
		}(i, tag)
	}
	wg.Wait()

	for i, tag := range []string{"a", "b"} {
		for _, m := range convs[i].Messages() {
			if m.Role == openai.ChatMessageRoleTool {
				require.Equal(t, tag, m.Content)
			}
		}
	}
}

// The step observer sees tool calls, tool results, and the final answer in
// order.
func TestInvoke_StepObserver(t *testing.T) {
	reg, err := tools.NewRegistry(tools.Spec{
		Name: "list_tasks",
		Run:  func(ctx context.Context, args map[string]any) (string, error) { return "no tasks", nil },
	})
	require.NoError(t, err)

	client := &mockLLM{calls: []openai.ChatCompletionResponse{
		actResponse(toolCall("call_1", "list_tasks", `{}`)),
		finalResponse("Bạn không có công việc nào."),
	}}

	var events []StepEvent
	loop := newLoop(t, client, reg, WithStepObserver(func(ev StepEvent) {
		events = append(events, ev)
	}))

	conv := conversation.New("system prompt")
	conv.AddUser("list tasks")

	_, err = loop.Invoke(context.Background(), conv)
	require.NoError(t, err)

	require.Len(t, events, 3)
	require.Equal(t, StepToolCall, events[0].Kind)
	require.Equal(t, "list_tasks", events[0].ToolName)
	require.Equal(t, StepToolResult, events[1].Kind)
	require.Equal(t, StepFinal, events[2].Kind)
}
