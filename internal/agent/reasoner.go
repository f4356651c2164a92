package agent

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"github.com/trungvq/workmate/internal/conversation"
	"github.com/trungvq/workmate/internal/llm"
	"github.com/trungvq/workmate/internal/logger"
	"github.com/trungvq/workmate/internal/tools"
)

// Invocation is one tool call requested by the model: an identifier the
// eventual result message must reference, the tool name, and the raw JSON
// argument object.
type Invocation struct {
	ID        string
	Name      string
	Arguments string
}

// Decision is the reasoner's per-step output: either a final text answer or a
// non-empty ordered batch of invocations to execute before asking again.
type Decision struct {
	Final       string
	Invocations []Invocation

	// assistant is the raw model message carrying this decision; the loop
	// appends it to the conversation verbatim so tool-call ids line up.
	assistant openai.ChatCompletionMessage
}

// IsAct reports whether the decision requests tool execution.
func (d Decision) IsAct() bool { return len(d.Invocations) > 0 }

// Reasoner wraps the external model call. It passes the entire conversation
// and the registry's schemas on every call and never retries: an empty or
// garbled answer without tool calls is surfaced as a final decision with the
// raw content.
type Reasoner struct {
	client llm.Client
	model  string
	tools  []openai.Tool
}

// NewReasoner creates a reasoner for the given model and tool registry.
func NewReasoner(client llm.Client, model string, registry *tools.Registry) *Reasoner {
	return &Reasoner{client: client, model: model, tools: registry.OpenAITools()}
}

// Decide performs exactly one model call over the conversation so far. The
// decision is Act if and only if the response explicitly requests one or more
// tool calls; anything else is Final. A failed or choice-less response returns
// an error and leaves the conversation untouched.
func (r *Reasoner) Decide(ctx context.Context, conv *conversation.Conversation) (Decision, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    r.model,
		Messages: conv.Messages(),
		Tools:    r.tools,
	})
	if err != nil {
		return Decision{}, &ReasonerError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return Decision{}, ErrMalformedDecision
	}

	msg := resp.Choices[0].Message
	// Uphold the conversation invariant locally rather than trusting the
	// response to carry the role.
	msg.Role = openai.ChatMessageRoleAssistant
	logger.L.Debug("model response received", "tool_calls", len(msg.ToolCalls))

	d := Decision{assistant: msg}
	if len(msg.ToolCalls) == 0 {
		d.Final = msg.Content
		return d, nil
	}
	for _, tc := range msg.ToolCalls {
		d.Invocations = append(d.Invocations, Invocation{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return d, nil
}
