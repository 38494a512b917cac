package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/logging"
	"github.com/hupe1980/agentloop/model"
)

// Strategy supplies the two phases of a step. Think reports whether Act should
// run; Act returns the step summary.
type Strategy interface {
	Think(ctx context.Context, a *Agent) (bool, error)
	Act(ctx context.Context, a *Agent) (string, error)
}

// ReasoningStrategy asks the model for a plain thought each step.
type ReasoningStrategy struct{}

// Think records the model's thought as an assistant message. Backend failures
// are returned wrapped and end the run.
func (ReasoningStrategy) Think(ctx context.Context, a *Agent) (bool, error) {
	a.consumeDirective()

	start := time.Now()
	thought, err := a.llm.Ask(ctx, model.Request{
		Messages: a.memory.Messages(),
		System:   a.systemContext(),
	})
	logging.BackendCall(a.logger, a.llm.Info().Name, time.Since(start), err, "agent", a.name)
	if err != nil {
		return false, fmt.Errorf("reasoning phase: %w", err)
	}

	a.lastThought = thought
	a.memory.Add(core.AssistantMessage(thought))
	return true, nil
}

// Act returns the thought recorded by Think.
func (ReasoningStrategy) Act(_ context.Context, a *Agent) (string, error) {
	return a.lastThought, nil
}

// ToolCallStrategy asks the model for tool calls and dispatches them.
type ToolCallStrategy struct{}

// Think stores the selected tool calls on the agent and records them with the
// assistant message. A backend failure is recorded as an assistant note and
// treated as a turn without calls.
func (ToolCallStrategy) Think(ctx context.Context, a *Agent) (bool, error) {
	a.consumeDirective()

	start := time.Now()
	resp, err := a.llm.AskWithTools(ctx, model.Request{
		Messages:   a.memory.Messages(),
		System:     a.systemContext(),
		Tools:      a.registry.Schemas(),
		ToolChoice: a.toolChoice,
	})
	logging.BackendCall(a.logger, a.llm.Info().Name, time.Since(start), err, "agent", a.name)
	if err != nil {
		var backendErr *core.BackendError
		if !errors.As(err, &backendErr) {
			return false, fmt.Errorf("reasoning phase: %w", err)
		}
		a.toolCalls = nil
		a.memory.Add(core.AssistantMessage("Error encountered while processing: " + err.Error()))
		return false, nil
	}

	a.toolCalls = append([]core.ToolCall(nil), resp.ToolCalls...)
	a.lastThought = resp.Content
	a.memory.Add(core.AssistantToolCallMessage(resp.Content, a.toolCalls))

	a.logger.Debug("agent.think", "agent", a.name, "tool_calls", len(a.toolCalls))
	return len(a.toolCalls) > 0, nil
}

// Act dispatches the stored tool calls in order. Each call produces exactly
// one tool message; a failing call does not stop the ones after it. A terminal
// tool finishes the agent and skips the calls still queued behind it.
func (ToolCallStrategy) Act(ctx context.Context, a *Agent) (string, error) {
	if len(a.toolCalls) == 0 {
		return NoToolsNotice, nil
	}

	results := make([]string, 0, len(a.toolCalls))
	for _, call := range a.toolCalls {
		name := call.Function.Name

		content, err := dispatch(ctx, a, call)
		if err != nil {
			content = err.Error()
		}
		a.memory.Add(core.ToolMessage(call.ID, name, content))
		results = append(results, fmt.Sprintf("[%s]: %s", name, content))

		if a.IsTerminal(name) {
			a.logger.Info("agent.terminal_tool", "agent", a.name, "tool", name)
			a.Finish()
			break
		}
	}

	return strings.Join(results, "\n"), nil
}

// dispatch parses the argument blob and executes one call through the registry.
func dispatch(ctx context.Context, a *Agent, call core.ToolCall) (string, error) {
	name := call.Function.Name
	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return "", &core.ToolDispatchError{Tool: name, CallID: call.ID, Err: fmt.Errorf("invalid arguments: %w", err)}
		}
		if args == nil {
			args = map[string]any{}
		}
	}

	start := time.Now()
	out, err := a.registry.Execute(ctx, name, args)
	if err != nil {
		a.logger.Warn("tool.dispatch.error", "agent", a.name, "tool", name, "error", err.Error())
		return "", &core.ToolDispatchError{Tool: name, CallID: call.ID, Err: err}
	}
	a.logger.Debug("tool.dispatch", "agent", a.name, "tool", name,
		"duration_ms", time.Since(start).Milliseconds())
	return out, nil
}
