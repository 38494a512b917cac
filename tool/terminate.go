package tool

import (
	"context"
	"fmt"
)

// TerminateName is the default terminal tool name.
const TerminateName = "terminate"

// terminateTool lets the model end the run explicitly. The agent loop, not the
// tool, performs the state change when it sees a terminal tool name.
type terminateTool struct{}

// NewTerminateTool constructs the terminate tool instance.
func NewTerminateTool() Tool { return &terminateTool{} }

func (t *terminateTool) Name() string { return TerminateName }

func (t *terminateTool) Description() string {
	return "Terminate the interaction when the request is met or cannot be completed. Provide the reason."
}

func (t *terminateTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reason": map[string]any{"type": "string", "description": "Why the task is finished"},
		},
		"required": []string{"reason"},
	}
}

func (t *terminateTool) Call(_ context.Context, args map[string]any) (any, error) {
	raw, ok := args["reason"]
	if !ok {
		return nil, fmt.Errorf("missing required field 'reason'")
	}
	reason, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("field 'reason' must be a string")
	}
	return fmt.Sprintf("Task completed: %s", reason), nil
}
