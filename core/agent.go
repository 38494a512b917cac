package core

import (
	"fmt"
	"strings"
)

// AgentState is the lifecycle state of a single agent instance.
type AgentState string

const (
	// StateIdle is the initial state and the state after a failed run.
	StateIdle AgentState = "IDLE"
	// StateRunning is held only while Run is executing.
	StateRunning AgentState = "RUNNING"
	// StateFinished is terminal until the agent is re-initialized.
	StateFinished AgentState = "FINISHED"
)

// ToolChoice is the policy hint passed to the backend controlling whether tool
// calls must, may, or must not be produced.
type ToolChoice string

const (
	// ToolChoiceAuto lets the model decide.
	ToolChoiceAuto ToolChoice = "auto"
	// ToolChoiceRequired forces at least one tool call.
	ToolChoiceRequired ToolChoice = "required"
	// ToolChoiceNone forbids tool calls.
	ToolChoiceNone ToolChoice = "none"
)

// ParseToolChoice maps a case-insensitive string onto a ToolChoice. The empty
// string maps to ToolChoiceAuto.
func ParseToolChoice(s string) (ToolChoice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ToolChoiceAuto, nil
	case "required", "any":
		return ToolChoiceRequired, nil
	case "none":
		return ToolChoiceNone, nil
	}
	return "", fmt.Errorf("unknown tool choice %q", s)
}

// AgentKind selects which specialization of the control loop to build.
type AgentKind string

const (
	// KindReasoning is the reasoning-only loop.
	KindReasoning AgentKind = "react"
	// KindToolCall adds tool dispatch.
	KindToolCall AgentKind = "tool"
	// KindPlanning adds plan derivation and tracking on top of tool dispatch.
	KindPlanning AgentKind = "planning"
)

// ParseAgentKind maps a string onto an AgentKind.
func ParseAgentKind(s string) (AgentKind, error) {
	switch AgentKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindReasoning, "reasoning":
		return KindReasoning, nil
	case KindToolCall, "toolcall":
		return KindToolCall, nil
	case KindPlanning, "plan":
		return KindPlanning, nil
	}
	return "", fmt.Errorf("unknown agent kind %q", s)
}
