package model

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hupe1980/agentloop/core"
)

// ErrScriptExhausted is wrapped into a BackendError when a ScriptedModel has
// no queued reply left.
var ErrScriptExhausted = errors.New("scripted model: no replies left")

// Reply is one queued answer of a ScriptedModel. Err, when set, is returned
// as a BackendError instead of the content.
type Reply struct {
	Content   string
	ToolCalls []core.ToolCall
	Err       error
}

// Text queues a plain content reply.
func Text(content string) Reply { return Reply{Content: content} }

// Calls queues a reply selecting the given tools. Each call gets a fresh ID
// when it has none.
func Calls(content string, calls ...core.ToolCall) Reply {
	out := make([]core.ToolCall, len(calls))
	for i, c := range calls {
		if c.ID == "" {
			c.ID = "call_" + uuid.NewString()
		}
		if c.Type == "" {
			c.Type = "function"
		}
		out[i] = c
	}
	return Reply{Content: content, ToolCalls: out}
}

// Failure queues a backend failure.
func Failure(err error) Reply { return Reply{Err: err} }

// ScriptedModel is a deterministic in-memory Model for tests and examples.
// Ask and AskWithTools share one reply queue and every request is recorded.
type ScriptedModel struct {
	mu       sync.Mutex
	info     Info
	replies  []Reply
	requests []Request
	fallback *Reply
}

// NewScriptedModel constructs a ScriptedModel answering with replies in order.
func NewScriptedModel(replies ...Reply) *ScriptedModel {
	return &ScriptedModel{
		info:    Info{Name: "scripted", Provider: "scripted", SupportsTools: true},
		replies: replies,
	}
}

// Enqueue appends replies to the script.
func (m *ScriptedModel) Enqueue(replies ...Reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, replies...)
}

// RepeatWhenExhausted makes r the answer once the queue is empty.
func (m *ScriptedModel) RepeatWhenExhausted(r Reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = &r
}

// Requests returns a copy of every request received so far.
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// Remaining reports how many queued replies are left.
func (m *ScriptedModel) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.replies)
}

// Ask implements Model.
func (m *ScriptedModel) Ask(ctx context.Context, req Request) (string, error) {
	r, err := m.next(ctx, "ask", req)
	if err != nil {
		return "", err
	}
	return r.Content, nil
}

// AskWithTools implements Model.
func (m *ScriptedModel) AskWithTools(ctx context.Context, req Request) (Response, error) {
	r, err := m.next(ctx, "ask_with_tools", req)
	if err != nil {
		return Response{ToolCalls: []core.ToolCall{}}, err
	}
	resp := Response{Content: r.Content, ToolCalls: []core.ToolCall{}, FinishReason: "stop"}
	if req.ToolChoice != core.ToolChoiceNone && len(r.ToolCalls) > 0 {
		resp.ToolCalls = append(resp.ToolCalls, r.ToolCalls...)
		resp.FinishReason = "tool_calls"
	}
	return resp, nil
}

// Info implements Model.
func (m *ScriptedModel) Info() Info { return m.info }

func (m *ScriptedModel) next(ctx context.Context, op string, req Request) (Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, Request{
		Messages:   core.CloneMessages(req.Messages),
		System:     core.CloneMessages(req.System),
		Tools:      append([]ToolDefinition(nil), req.Tools...),
		ToolChoice: req.ToolChoice,
	})

	if err := ctx.Err(); err != nil {
		return Reply{}, core.NewBackendError(m.info.Provider, op, err)
	}

	var r Reply
	switch {
	case len(m.replies) > 0:
		r = m.replies[0]
		m.replies = m.replies[1:]
	case m.fallback != nil:
		r = *m.fallback
	default:
		return Reply{}, core.NewBackendError(m.info.Provider, op, ErrScriptExhausted)
	}

	if r.Err != nil {
		return Reply{}, core.NewBackendError(m.info.Provider, op, fmt.Errorf("scripted failure: %w", r.Err))
	}
	return r, nil
}
