package testutil

import (
	"github.com/hupe1980/agentloop/core"
)

// ConversationBuilder helps construct message histories with fluent chaining.
// Example:
//
//	msgs := NewConversationBuilder().System("be brief").User("hi").Assistant("hello").Build()
type ConversationBuilder struct {
	msgs []core.Message
}

// NewConversationBuilder creates an empty builder.
func NewConversationBuilder() *ConversationBuilder { return &ConversationBuilder{} }

// System appends a system message (chainable).
func (b *ConversationBuilder) System(text string) *ConversationBuilder {
	b.msgs = append(b.msgs, core.SystemMessage(text))
	return b
}

// User appends a user message (chainable).
func (b *ConversationBuilder) User(text string) *ConversationBuilder {
	b.msgs = append(b.msgs, core.UserMessage(text))
	return b
}

// Assistant appends an assistant message (chainable).
func (b *ConversationBuilder) Assistant(text string) *ConversationBuilder {
	b.msgs = append(b.msgs, core.AssistantMessage(text))
	return b
}

// AssistantCalls appends an assistant message carrying tool calls (chainable).
func (b *ConversationBuilder) AssistantCalls(text string, calls ...core.ToolCall) *ConversationBuilder {
	b.msgs = append(b.msgs, core.AssistantToolCallMessage(text, calls))
	return b
}

// Tool appends a tool result message (chainable).
func (b *ConversationBuilder) Tool(callID, name, result string) *ConversationBuilder {
	b.msgs = append(b.msgs, core.ToolMessage(callID, name, result))
	return b
}

// Build returns a copy of the accumulated messages.
func (b *ConversationBuilder) Build() []core.Message {
	return core.CloneMessages(b.msgs)
}
