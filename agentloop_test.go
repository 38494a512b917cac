package agentloop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloop/agent"
	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/model"
	"github.com/hupe1980/agentloop/tool"
)

func TestNew_RegistersTerminateTool(t *testing.T) {
	l := New(model.NewScriptedModel())

	_, ok := l.Registry().Get(tool.TerminateName)
	assert.True(t, ok)
}

func TestAgentLoop_NewAgent(t *testing.T) {
	l := New(model.NewScriptedModel(), func(o *Options) {
		o.AgentOptions = append(o.AgentOptions, func(ao *agent.Options) { ao.MaxSteps = 3 })
	})

	a := l.NewAgent(core.KindToolCall, nil, func(o *agent.Options) { o.Name = "worker" })
	assert.Equal(t, "worker", a.Name())
	assert.Equal(t, 3, a.MaxSteps())
	assert.Same(t, l.Registry(), a.Registry())
	assert.Nil(t, a.Plan())

	r := l.NewAgent(core.KindReasoning, nil)
	assert.Equal(t, agent.DefaultReasoningPrompt(), r.SystemPrompt())
}

func TestAgentLoop_Run(t *testing.T) {
	echo := tool.NewFunctionTool("echo", "echoes text", nil, func(_ context.Context, args map[string]any) (any, error) {
		return args["text"], nil
	})
	llm := model.NewScriptedModel(
		model.Calls("", core.NewToolCall("c1", "echo", `{"text":"hi"}`)),
		model.Calls("", core.NewToolCall("c2", tool.TerminateName, `{"reason":"echoed"}`)),
	)
	l := New(llm, func(o *Options) { o.Tools = []tool.Tool{echo} })
	ctx := context.Background()

	res, err := l.Run(ctx, "conv", core.KindToolCall, "say hi")
	require.NoError(t, err)
	assert.Equal(t, "[echo]: hi\n[terminate]: Task completed: echoed", res.Output)

	history, err := l.History(ctx, "conv")
	require.NoError(t, err)
	assert.Equal(t, res.Persisted, len(history))

	_, err = l.LatestPlan(ctx, "conv")
	assert.ErrorIs(t, err, core.ErrPlanNotFound)
}
