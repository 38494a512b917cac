package model

import (
	"context"

	"github.com/hupe1980/agentloop/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// NewToolDefinition builds a function ToolDefinition.
func NewToolDefinition(name, description string, parameters map[string]any) ToolDefinition {
	return ToolDefinition{
		Type: "function",
		Function: FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

// Request captures the normalized model input produced by the agent loop.
//
// System messages are sent ahead of Messages. Tools and ToolChoice are only
// honoured by AskWithTools.
type Request struct {
	Messages   []core.Message   `json:"messages"`
	System     []core.Message   `json:"system,omitempty"`
	Tools      []ToolDefinition `json:"tools,omitempty"`
	ToolChoice core.ToolChoice  `json:"tool_choice,omitempty"`
}

// AllMessages returns System followed by Messages.
func (r Request) AllMessages() []core.Message {
	out := make([]core.Message, 0, len(r.System)+len(r.Messages))
	out = append(out, r.System...)
	return append(out, r.Messages...)
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the result of a tool-enabled completion.
// ToolCalls is never nil; an empty slice means the model selected no tool.
type Response struct {
	Content      string          `json:"content"`
	ToolCalls    []core.ToolCall `json:"tool_calls"`
	FinishReason string          `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage     `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "scripted", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by agents to drive generation.
//
// Implementations report transport and provider failures as *core.BackendError.
type Model interface {
	// Ask returns a plain text completion.
	Ask(ctx context.Context, req Request) (string, error)

	// AskWithTools returns text plus any tool calls selected by the model.
	// With ToolChoice none the returned ToolCalls is always empty.
	AskWithTools(ctx context.Context, req Request) (Response, error)

	// Info returns information about the model implementation.
	Info() Info
}
