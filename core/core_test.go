package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_Validate(t *testing.T) {
	assert.NoError(t, UserMessage("hi").Validate())
	assert.NoError(t, ToolMessage("c1", "calc", "4").Validate())

	assert.Error(t, Message{Role: "robot"}.Validate())
	assert.Error(t, Message{Role: RoleTool, Content: "4", Name: "calc"}.Validate())
	assert.Error(t, Message{Role: RoleTool, Content: "4", ToolCallID: "c1"}.Validate())
}

func TestMessage_CloneDoesNotShareToolCalls(t *testing.T) {
	orig := AssistantToolCallMessage("", []ToolCall{NewToolCall("c1", "calc", `{}`)})
	cp := orig.Clone()
	cp.ToolCalls[0].Function.Name = "changed"

	assert.Equal(t, "calc", orig.ToolCalls[0].Function.Name)
}

func TestAssistantToolCallMessage_EmptyCalls(t *testing.T) {
	m := AssistantToolCallMessage("thinking", []ToolCall{})
	assert.Nil(t, m.ToolCalls)
	assert.Equal(t, RoleAssistant, m.Role)
}

func TestParseToolChoice(t *testing.T) {
	tests := []struct {
		in      string
		want    ToolChoice
		wantErr bool
	}{
		{"", ToolChoiceAuto, false},
		{"AUTO", ToolChoiceAuto, false},
		{"required", ToolChoiceRequired, false},
		{"any", ToolChoiceRequired, false},
		{" none ", ToolChoiceNone, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseToolChoice(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAgentKind(t *testing.T) {
	for in, want := range map[string]AgentKind{
		"react":     KindReasoning,
		"reasoning": KindReasoning,
		"Tool":      KindToolCall,
		"toolcall":  KindToolCall,
		"planning":  KindPlanning,
		"plan":      KindPlanning,
	} {
		got, err := ParseAgentKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseAgentKind("swarm")
	assert.Error(t, err)
}

func TestStepBudget(t *testing.T) {
	b := NewStepBudget(2)
	assert.False(t, b.Exhausted())

	assert.True(t, b.Next())
	assert.True(t, b.Next())
	assert.False(t, b.Next())
	assert.True(t, b.Exhausted())
	assert.Equal(t, 2, b.Count())
	assert.Equal(t, 0, b.Remaining())

	b.Reset()
	assert.Equal(t, 0, b.Count())
	assert.Equal(t, 2, b.Remaining())

	assert.Equal(t, 1, NewStepBudget(0).Max())
}

func TestErrors(t *testing.T) {
	t.Run("backend", func(t *testing.T) {
		assert.Nil(t, NewBackendError("openai", "ask", nil))

		err := fmt.Errorf("reasoning phase: %w", NewBackendError("openai", "ask", errors.New("timeout")))
		var be *BackendError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, "openai", be.Provider)
		assert.Equal(t, "reasoning phase: openai backend ask: timeout", err.Error())
	})

	t.Run("tool not found", func(t *testing.T) {
		err := &ToolDispatchError{Tool: "calc", CallID: "c1", Err: &ToolNotFoundError{Name: "calc"}}
		assert.ErrorIs(t, err, ErrToolNotFound)
		assert.Equal(t, "Error executing calc: tool not found: calc", err.Error())
	})

	t.Run("plan derivation", func(t *testing.T) {
		inner := errors.New("no steps")
		err := &PlanDerivationError{Err: inner}
		assert.ErrorIs(t, err, inner)
		assert.Equal(t, "no steps", err.Error())
	})
}
