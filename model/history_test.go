package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/internal/testutil"
)

func TestPairToolCalls_DropsUnansweredCalls(t *testing.T) {
	// A terminal tool stopped the turn before calc ran.
	msgs := testutil.NewConversationBuilder().
		User("finish").
		AssistantCalls("",
			core.NewToolCall("c1", "terminate", `{"reason":"done"}`),
			core.NewToolCall("c2", "calc", `{}`)).
		Tool("c1", "terminate", "Task completed: done").
		Build()

	got := PairToolCalls(msgs)

	require.Len(t, got, 3)
	require.Len(t, got[1].ToolCalls, 1)
	assert.Equal(t, "c1", got[1].ToolCalls[0].ID)
	assert.Equal(t, "c1", got[2].ToolCallID)
	assert.Len(t, msgs[1].ToolCalls, 2)
}

func TestPairToolCalls_DropsOrphanedResults(t *testing.T) {
	msgs := testutil.NewConversationBuilder().
		User("again").
		Tool("c9", "calc", "4").
		Assistant("done").
		Build()

	got := PairToolCalls(msgs)

	require.Len(t, got, 2)
	assert.Equal(t, core.RoleUser, got[0].Role)
	assert.Equal(t, core.RoleAssistant, got[1].Role)
}

func TestPairToolCalls_DropsEmptyAssistantTurn(t *testing.T) {
	msgs := testutil.NewConversationBuilder().
		User("hi").
		AssistantCalls("", core.NewToolCall("c1", "calc", `{}`)).
		System("Current plan status").
		Build()

	got := PairToolCalls(msgs)

	require.Len(t, got, 2)
	assert.Equal(t, core.RoleSystem, got[1].Role)
}

func TestPairToolCalls_KeepsCompleteTurns(t *testing.T) {
	msgs := testutil.NewConversationBuilder().
		User("add").
		AssistantCalls("working",
			core.NewToolCall("c1", "calc", `{}`),
			core.NewToolCall("c2", "calc", `{}`)).
		Tool("c1", "calc", "1").
		Tool("c2", "calc", "2").
		Build()

	assert.Equal(t, msgs, PairToolCalls(msgs))
}

func TestFlattenToolCalls(t *testing.T) {
	msgs := testutil.NewConversationBuilder().
		User("add").
		AssistantCalls("working", core.NewToolCall("c1", "calc", `{"a":1}`)).
		Tool("c1", "calc", "1").
		Build()

	got := FlattenToolCalls(msgs)

	require.Len(t, got, 3)
	assert.Equal(t, core.AssistantMessage("working\nCalled tool calc with arguments {\"a\":1}"), got[1])
	assert.Equal(t, core.UserMessage("Tool calc returned: 1"), got[2])
}
