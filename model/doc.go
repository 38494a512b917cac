// Package model defines the provider-agnostic language model contract used by
// agents: a plain completion (Ask) and a tool-enabled completion
// (AskWithTools) over a unified message and tool call representation.
//
// Provider adapters live in subpackages (model/openai, model/anthropic).
// ScriptedModel is a deterministic queue-driven implementation for tests.
package model
