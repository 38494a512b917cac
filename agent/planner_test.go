package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/model"
	"github.com/hupe1980/agentloop/plan"
	"github.com/hupe1980/agentloop/tool"
)

const twoStepPlan = "Here is the plan:\n```json\n" +
	`{"title":"Greet","description":"Say hello twice","steps":[{"id":1,"description":"first"},{"id":2,"description":"second"}]}` +
	"\n```"

const threeStepPlan = `{"title":"Three","description":"d","steps":[{"id":1,"description":"s0"},{"id":2,"description":"s1"},{"id":3,"description":"s2"}]}`

func systemWithPrefix(msgs []core.Message, prefix string) []string {
	var out []string
	for _, m := range msgs {
		if m.Role == core.RoleSystem && strings.HasPrefix(m.Content, prefix) {
			out = append(out, m.Content)
		}
	}
	return out
}

func TestPlanner_FallbackWithoutStructuredBlock(t *testing.T) {
	llm := model.NewScriptedModel(model.Text("I will simply do it."))
	a := NewPlanningAgent(llm, nil, nil)

	a.planner.Derive(context.Background(), a, "book a table")

	p := a.Plan()
	require.NotNil(t, p)
	assert.Equal(t, "Fallback Plan", p.Title)
	require.Len(t, p.Steps, 3)
	assert.Equal(t, []string{"Analyze the request", "Execute the task directly", "Verify the result"},
		[]string{p.Steps[0].Description, p.Steps[1].Description, p.Steps[2].Description})
	for _, s := range p.Steps {
		assert.Equal(t, plan.StatusPending, s.Status)
	}
	assert.Equal(t, 0, p.CurrentStepIndex)

	notes := systemWithPrefix(a.Memory().Messages(), "Error creating detailed plan: ")
	require.Len(t, notes, 1)
	assert.Equal(t, "Error creating detailed plan: no structured block found. Using fallback plan instead.", notes[0])
}

func TestPlanner_FallbackOnBackendError(t *testing.T) {
	llm := model.NewScriptedModel(model.Failure(errors.New("timeout")))
	a := NewPlanningAgent(llm, nil, nil)

	a.planner.Derive(context.Background(), a, "anything")
	require.NotNil(t, a.Plan())
	assert.Equal(t, "Fallback Plan", a.Plan().Title)
	assert.Len(t, systemWithPrefix(a.Memory().Messages(), "Error creating detailed plan: "), 1)
}

func TestPlanner_DerivedPlanRecordsSummary(t *testing.T) {
	llm := model.NewScriptedModel(model.Text(twoStepPlan))
	a := NewPlanningAgent(llm, nil, nil)

	a.planner.Derive(context.Background(), a, "say hello")

	p := a.Plan()
	require.NotNil(t, p)
	assert.Equal(t, "Greet", p.Title)
	assert.Len(t, p.Steps, 2)

	msgs := a.Memory().Messages()
	assert.Len(t, systemWithPrefix(msgs, `Create a detailed step-by-step plan to accomplish this task: "say hello"`), 1)
	last := msgs[len(msgs)-1]
	assert.Equal(t, core.RoleAssistant, last.Role)
	assert.Equal(t, "Generated plan: Greet\nSay hello twice\n\nSteps:\n1. first\n2. second", last.Content)

	reqs := llm.Requests()
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].Tools)
}

func TestPlanningAgent_AdvancesAfterStep(t *testing.T) {
	llm := model.NewScriptedModel(
		model.Text(threeStepPlan),
		model.Calls("", core.NewToolCall("c1", "a", `{"text":"x"}`)),
	)
	a := NewPlanningAgent(llm, tool.NewRegistry(echoTool("a"), tool.NewTerminateTool()), nil, func(o *Options) {
		o.MaxSteps = 1
	})

	_, err := a.Run(context.Background(), "do three things")
	require.NoError(t, err)

	p := a.Plan()
	require.NotNil(t, p)
	assert.Equal(t, plan.StatusCompleted, p.Steps[0].Status)
	assert.Equal(t, "[a]: a:x", p.Steps[0].Result)
	assert.Equal(t, 1, p.CurrentStepIndex)
	assert.Equal(t, plan.StatusInProgress, p.Steps[1].Status)
	assert.Equal(t, plan.StatusPending, p.Steps[2].Status)
}

func TestPlanningAgent_FullLifecycle(t *testing.T) {
	llm := model.NewScriptedModel(
		model.Text(twoStepPlan),
		model.Calls("", core.NewToolCall("c1", "a", `{"text":"one"}`)),
		model.Calls("", core.NewToolCall("c2", "a", `{"text":"two"}`)),
		model.Calls("", core.NewToolCall("c3", "terminate", `{"reason":"greeted"}`)),
	)
	a := NewPlanningAgent(llm, tool.NewRegistry(echoTool("a"), tool.NewTerminateTool()), nil)

	out, err := a.Run(context.Background(), "say hello")
	require.NoError(t, err)
	assert.Equal(t, core.StateFinished, a.State())
	assert.Equal(t, 3, a.CurrentStep())
	assert.True(t, strings.HasSuffix(out, "[terminate]: Task completed: greeted"))

	msgs := a.Memory().Messages()

	directives := systemWithPrefix(msgs, "Current plan status:\n")
	require.Len(t, directives, 3)
	assert.Equal(t, "Current plan status:\nCurrent Plan: Greet\nProgress: 1/2\n\n"+
		"→ 1. first [in_progress]\n  2. second [pending]\n\n"+
		"Focus on completing the current step: first", directives[0])
	assert.Contains(t, directives[1], "Progress: 2/2")
	assert.Contains(t, directives[1], "✓ 1. first [completed]")

	assert.Len(t, systemWithPrefix(msgs, AllStepsDoneNotice), 1)

	final := systemWithPrefix(msgs, "Plan execution completed. Final status:\n")
	require.Len(t, final, 1)
	assert.Equal(t, msgs[len(msgs)-1].Content, final[0])

	p := a.Plan()
	assert.True(t, p.Completed())
}

func TestPlanningAgent_FinalNoteOnBudgetExhaustion(t *testing.T) {
	llm := model.NewScriptedModel(model.Text("no plan here"))
	llm.RepeatWhenExhausted(model.Text("hmm"))
	a := NewPlanningAgent(llm, nil, nil, func(o *Options) { o.MaxSteps = 2 })

	out, err := a.Run(context.Background(), "task")
	require.NoError(t, err)
	assert.Contains(t, out, "Terminated: Reached max steps (2)")

	msgs := a.Memory().Messages()
	assert.Len(t, systemWithPrefix(msgs, "Plan execution completed. Final status:\n"), 1)
	assert.Empty(t, systemWithPrefix(msgs, AllStepsDoneNotice))
	assert.Equal(t, 2, a.Plan().CurrentStepIndex)
}

func TestPlanningAgent_NoReplanning(t *testing.T) {
	llm := model.NewScriptedModel(model.Text(threeStepPlan))
	llm.RepeatWhenExhausted(model.Text("thinking"))
	a := NewPlanningAgent(llm, nil, nil, func(o *Options) { o.MaxSteps = 1 })

	_, err := a.Run(context.Background(), "first request")
	require.NoError(t, err)
	firstID := a.Plan().ID

	_, err = a.Run(context.Background(), "second request")
	require.NoError(t, err)
	assert.Equal(t, firstID, a.Plan().ID)
	assert.Len(t, systemWithPrefix(a.Memory().Messages(), "Create a detailed step-by-step plan"), 1)
}

func TestPlanningAgent_PlanNotRequired(t *testing.T) {
	llm := model.NewScriptedModel(model.Calls("", core.NewToolCall("c1", "terminate", `{"reason":"x"}`)))
	a := NewPlanningAgent(llm, tool.NewRegistry(tool.NewTerminateTool()), nil, func(o *Options) {
		o.PlanRequired = false
	})

	_, err := a.Run(context.Background(), "go")
	require.NoError(t, err)
	assert.Nil(t, a.Plan())
	assert.Empty(t, systemWithPrefix(a.Memory().Messages(), "Plan execution completed"))
}

func TestPlan_ReturnsCopy(t *testing.T) {
	llm := model.NewScriptedModel(model.Text(twoStepPlan))
	a := NewPlanningAgent(llm, nil, nil)
	a.planner.Derive(context.Background(), a, "x")

	cp := a.Plan()
	cp.Steps[0].Status = plan.StatusFailed
	assert.Equal(t, plan.StatusPending, a.Plan().Steps[0].Status)
}

type failingStrategy struct{ err error }

func (s failingStrategy) Think(context.Context, *Agent) (bool, error) { return false, s.err }
func (failingStrategy) Act(context.Context, *Agent) (string, error)    { return "", nil }

func TestPlanner_FatalStepMarksStepFailed(t *testing.T) {
	llm := model.NewScriptedModel(model.Text(twoStepPlan))
	a := NewPlanningAgent(llm, nil, nil)
	a.strategy = failingStrategy{err: errors.New("decoder broke")}

	_, err := a.Run(context.Background(), "say hello")
	require.Error(t, err)
	assert.Equal(t, core.StateIdle, a.State())

	p := a.Plan()
	require.NotNil(t, p)
	assert.Equal(t, plan.StatusFailed, p.Steps[0].Status)
	assert.Equal(t, "decoder broke", p.Steps[0].Result)
	assert.Equal(t, plan.StatusPending, p.Steps[1].Status)
	assert.Contains(t, p.Render(), "[failed]")
}
