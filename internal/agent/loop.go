// Package agent implements the reasoner/executor control loop driving a
// tool-calling conversation to completion.
package agent

import (
	"context"
	"fmt"

	"github.com/qmuntal/stateless"

	"github.com/trungvq/workmate/internal/conversation"
	"github.com/trungvq/workmate/internal/logger"
)

// FSM states.
type FSMState stateless.State

var (
	StateAwaitingDecision FSMState = "AwaitingDecision"
	StateExecuting        FSMState = "Executing"
	StateDone             FSMState = "Done"  // Terminal: final answer produced
	StateError            FSMState = "Error" // Terminal: turn aborted
)

// FSM triggers.
type FSMTrigger stateless.Trigger

var (
	TriggerStart           FSMTrigger = "Start"
	TriggerDecisionFinal   FSMTrigger = "DecisionFinal"
	TriggerDecisionAct     FSMTrigger = "DecisionAct"
	TriggerResultsAppended FSMTrigger = "ResultsAppended"
	TriggerFailure         FSMTrigger = "Failure"
)

// StepKind identifies an intermediate loop event.
type StepKind string

const (
	StepToolCall   StepKind = "tool_call"
	StepToolResult StepKind = "tool_result"
	StepFinal      StepKind = "final"
)

// StepEvent is emitted to the optional observer as the loop progresses. It is
// a convenience for streaming UIs and changes no loop semantics.
type StepEvent struct {
	Kind         StepKind
	ToolName     string
	InvocationID string
	Content      string
}

// DefaultMaxTurns bounds reasoner/executor round-trips per user turn.
const DefaultMaxTurns = 10

// Loop orchestrates the reasoner and executor over a conversation until the
// reasoner produces a final answer, the turn bound is hit, or an unrecoverable
// error occurs. A Loop is read-only shared state: concurrent sessions may
// share one Loop as long as each Invoke call gets its own Conversation.
type Loop struct {
	reasoner *Reasoner
	executor *Executor
	maxTurns int
	onStep   func(StepEvent)
}

// Option configures a Loop.
type Option func(*Loop)

// WithMaxTurns overrides the round-trip bound.
func WithMaxTurns(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.maxTurns = n
		}
	}
}

// WithStepObserver registers a callback for intermediate step events.
func WithStepObserver(fn func(StepEvent)) Option {
	return func(l *Loop) { l.onStep = fn }
}

// NewLoop creates a loop with the default turn bound.
func NewLoop(r *Reasoner, e *Executor, opts ...Option) *Loop {
	l := &Loop{reasoner: r, executor: e, maxTurns: DefaultMaxTurns}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// loopRun holds the per-invocation state threaded through the FSM actions.
type loopRun struct {
	conv         *conversation.Conversation
	pending      []Invocation
	finalContent string
	lastErr      error
	turn         int
}

// Invoke runs one full user turn: the caller has already appended the user
// message to conv. On success the final assistant message has been appended to
// conv and its text is returned. On a reasoner failure nothing is appended for
// the failed call and the error is returned; messages committed by earlier
// round-trips of the same turn remain.
func (l *Loop) Invoke(ctx context.Context, conv *conversation.Conversation) (string, error) {
	run := &loopRun{conv: conv}

	fsm := stateless.NewStateMachine(StateAwaitingDecision)

	// AwaitingDecision: ask the reasoner what to do next. Entered once via the
	// start trigger and again after every executed batch. The start trigger is
	// a reentry so the initial OnEntry actually runs; entering the initial
	// state at construction executes no actions.
	fsm.Configure(StateAwaitingDecision).
		PermitReentry(TriggerStart).
		PermitReentry(TriggerResultsAppended).
		OnEntry(func(ctx context.Context, _ ...any) error {
			if err := ctx.Err(); err != nil {
				run.lastErr = err
				return fsm.FireCtx(ctx, TriggerFailure)
			}
			if run.turn >= l.maxTurns {
				logger.L.Warn("turn bound reached", "max_turns", l.maxTurns)
				run.lastErr = fmt.Errorf("%w (bound %d)", ErrLoopBoundExceeded, l.maxTurns)
				return fsm.FireCtx(ctx, TriggerFailure)
			}
			run.turn++

			decision, err := l.reasoner.Decide(ctx, run.conv)
			if err != nil {
				run.lastErr = err
				return fsm.FireCtx(ctx, TriggerFailure)
			}

			// The assistant message goes on the conversation either way: a
			// final answer persists for the next turn, a tool request must
			// precede its results.
			run.conv.Append(decision.assistant)

			if decision.IsAct() {
				run.pending = decision.Invocations
				return fsm.FireCtx(ctx, TriggerDecisionAct)
			}
			run.finalContent = decision.Final
			return fsm.FireCtx(ctx, TriggerDecisionFinal)
		}).
		Permit(TriggerDecisionAct, StateExecuting).
		Permit(TriggerDecisionFinal, StateDone).
		Permit(TriggerFailure, StateError)

	// Executing: run the requested batch, append results in request order,
	// then hand control back to the reasoner.
	fsm.Configure(StateExecuting).
		OnEntry(func(ctx context.Context, _ ...any) error {
			for _, inv := range run.pending {
				l.emit(StepEvent{Kind: StepToolCall, ToolName: inv.Name, InvocationID: inv.ID, Content: inv.Arguments})
			}
			results := l.executor.Run(ctx, run.pending)
			for _, res := range results {
				l.emit(StepEvent{Kind: StepToolResult, ToolName: res.Name, InvocationID: res.ToolCallID, Content: res.Content})
			}
			run.conv.Append(results...)
			run.pending = nil
			return fsm.FireCtx(ctx, TriggerResultsAppended)
		}).
		Permit(TriggerResultsAppended, StateAwaitingDecision).
		Permit(TriggerFailure, StateError)

	fsm.Configure(StateDone)
	fsm.Configure(StateError)

	// Kick off the first decision; transitions then run synchronously until a
	// terminal state is reached.
	if err := fsm.FireCtx(ctx, TriggerStart); err != nil {
		if run.lastErr != nil {
			return "", run.lastErr
		}
		return "", fmt.Errorf("state machine start: %w", err)
	}

	state, err := fsm.State(ctx)
	if err != nil {
		return "", fmt.Errorf("state machine internal error: %w", err)
	}

	switch state {
	case StateDone:
		l.emit(StepEvent{Kind: StepFinal, Content: run.finalContent})
		return run.finalContent, nil
	case StateError:
		if run.lastErr != nil {
			return "", run.lastErr
		}
		return "", fmt.Errorf("turn aborted without a specific error")
	default:
		return "", fmt.Errorf("state machine ended in an unexpected state: %v", state)
	}
}

func (l *Loop) emit(ev StepEvent) {
	if l.onStep != nil {
		l.onStep(ev)
	}
}
