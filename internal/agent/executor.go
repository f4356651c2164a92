package agent

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/trungvq/workmate/internal/logger"
	"github.com/trungvq/workmate/internal/tools"
)

// Executor runs a batch of requested invocations against the registry. Every
// failure — unknown tool, unparsable arguments, tool error, timeout — is
// folded into the corresponding tool-result message so the reasoner gets a
// chance to recover; the batch itself never aborts.
type Executor struct {
	registry *tools.Registry
	timeout  time.Duration
}

// NewExecutor creates an executor. timeout bounds each individual tool call;
// zero means no per-call bound beyond the caller's context.
func NewExecutor(registry *tools.Registry, timeout time.Duration) *Executor {
	return &Executor{registry: registry, timeout: timeout}
}

// Run executes the invocations concurrently and returns one tool-result
// message per invocation, in the original request order regardless of
// completion order.
func (e *Executor) Run(ctx context.Context, invocations []Invocation) []openai.ChatCompletionMessage {
	results := make([]openai.ChatCompletionMessage, len(invocations))

	var wg sync.WaitGroup
	for i, inv := range invocations {
		wg.Add(1)
		go func(i int, inv Invocation) {
			defer wg.Done()
			results[i] = e.runOne(ctx, inv)
		}(i, inv)
	}
	wg.Wait()

	return results
}

func (e *Executor) runOne(ctx context.Context, inv Invocation) openai.ChatCompletionMessage {
	msg := openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		ToolCallID: inv.ID,
		Name:       inv.Name,
	}

	spec, err := e.registry.Resolve(inv.Name)
	if err != nil {
		logger.L.Warn("requested tool not registered", "tool", inv.Name)
		msg.Content = "Lỗi: không tìm thấy công cụ '" + inv.Name + "'."
		return msg
	}

	var args map[string]any
	if inv.Arguments != "" {
		if err := json.Unmarshal([]byte(inv.Arguments), &args); err != nil {
			logger.L.Error("failed to unmarshal tool arguments", "tool", inv.Name, "error", err)
			msg.Content = "Lỗi: không thể đọc tham số cho công cụ '" + inv.Name + "'."
			return msg
		}
	}

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	output, err := spec.Run(callCtx, args)
	if err != nil {
		logger.L.Warn("tool execution failed", "tool", inv.Name, "error", err)
		if errors.Is(err, context.DeadlineExceeded) {
			msg.Content = "Lỗi: công cụ '" + inv.Name + "' hết thời gian chờ."
			return msg
		}
		msg.Content = "Lỗi khi thực thi công cụ '" + inv.Name + "': " + err.Error()
		return msg
	}
	msg.Content = output
	return msg
}
