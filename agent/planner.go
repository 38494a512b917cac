package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/model"
	"github.com/hupe1980/agentloop/plan"
)

// Planner derives a plan from the first request of a planning agent and keeps
// it in step with the loop. It never returns errors: derivation failures fall
// back to plan.Fallback.
type Planner struct {
	required bool
	plan     *plan.Plan
}

// NewPlanner creates a planner. With required false no plan is derived.
func NewPlanner(required bool) *Planner {
	return &Planner{required: required}
}

// Plan returns the live plan. Callers outside the agent should use Agent.Plan.
func (p *Planner) Plan() *plan.Plan { return p.plan }

// Derive creates the plan for request once per agent lifetime.
//
// The planning prompt is added to memory as a system message and the model is
// asked for a structured answer. The resulting summary is recorded as an
// assistant message; on failure a system note explains the fallback.
func (p *Planner) Derive(ctx context.Context, a *Agent, request string) {
	if !p.required || p.plan != nil {
		return
	}

	a.memory.Add(core.SystemMessage(PlanRequestPrompt(request)))

	pl, err := p.derive(ctx, a)
	if err != nil {
		a.logger.Warn("plan.fallback", "agent", a.name, "error", err.Error())
		pl = plan.Fallback(request)
		a.memory.Add(core.SystemMessage(
			fmt.Sprintf("Error creating detailed plan: %s. Using fallback plan instead.", err.Error())))
	} else {
		a.memory.Add(core.AssistantMessage(pl.Summary()))
	}

	a.logger.Info("plan.created", "agent", a.name, "title", pl.Title, "steps", len(pl.Steps))
	p.plan = pl
}

func (p *Planner) derive(ctx context.Context, a *Agent) (*plan.Plan, error) {
	answer, err := a.llm.Ask(ctx, model.Request{Messages: a.memory.Messages()})
	if err != nil {
		return nil, &core.PlanDerivationError{Err: err}
	}
	draft, err := plan.Extract(answer)
	if err != nil {
		return nil, &core.PlanDerivationError{Err: err}
	}
	return plan.New(draft), nil
}

// BeforeStep activates the current plan step and queues the plan status as
// the next directive.
func (p *Planner) BeforeStep(a *Agent) {
	if p.plan == nil {
		return
	}
	p.plan.Activate()

	focus := ""
	if cur := p.plan.Current(); cur != nil {
		focus = cur.Description
	}
	a.SetDirective(fmt.Sprintf("Current plan status:\n%s\n\nFocus on completing the current step: %s",
		p.plan.Render(), focus))
}

// AfterStep completes the active step with the step summary and, once the
// last step is done without the agent finishing, reminds the model to
// terminate.
func (p *Planner) AfterStep(a *Agent, result string) {
	if p.plan == nil {
		return
	}
	p.plan.Advance(result)
	a.logger.Debug("plan.progress", "agent", a.name,
		"completed", p.plan.CompletedCount(), "total", len(p.plan.Steps))

	if p.plan.Completed() && a.State() != core.StateFinished {
		a.memory.Add(core.SystemMessage(AllStepsDoneNotice))
	}
}

// StepFailed marks the active step failed when a step aborts the run.
func (p *Planner) StepFailed(a *Agent, err error) {
	if p.plan == nil {
		return
	}
	p.plan.Fail(err.Error())
	a.logger.Warn("plan.step.failed", "agent", a.name, "step", p.plan.CurrentStepIndex, "error", err.Error())
}

// Finish records the final plan status after the loop ends.
func (p *Planner) Finish(a *Agent) {
	if p.plan == nil {
		return
	}
	a.memory.Add(core.SystemMessage("Plan execution completed. Final status:\n" + p.plan.Render()))
}
