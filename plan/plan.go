package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/agentloop/core"
)

// Status is the lifecycle state of a single step.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// DefaultTitle names plans whose draft carried no title.
const DefaultTitle = "Untitled Plan"

// Step is one unit of work of a Plan.
type Step struct {
	ID          int
	Description string
	Status      Status
	Result      string
}

// Plan is an ordered decomposition of a task. At most the step at
// CurrentStepIndex is in progress.
type Plan struct {
	ID               string
	Title            string
	Description      string
	Steps            []Step
	CurrentStepIndex int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// now is swapped in tests.
var now = time.Now

// New builds a pending plan from a draft. Step IDs that are non-positive or
// already taken are replaced by their one-based position.
func New(d Draft) *Plan {
	title := d.Title
	if title == "" {
		title = DefaultTitle
	}

	steps := make([]Step, len(d.Steps))
	seen := make(map[int]bool, len(d.Steps))
	for i, s := range d.Steps {
		id := s.ID
		if id <= 0 || seen[id] {
			id = i + 1
		}
		seen[id] = true
		steps[i] = Step{ID: id, Description: s.Description, Status: StatusPending}
	}

	ts := now()
	return &Plan{
		ID:          uuid.NewString(),
		Title:       title,
		Description: d.Description,
		Steps:       steps,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

// Fallback is the fixed three step plan used when no structured plan could be
// derived for request.
func Fallback(request string) *Plan {
	return New(Draft{
		Title:       "Fallback Plan",
		Description: "Fallback plan for request: " + request,
		Steps: []DraftStep{
			{ID: 1, Description: "Analyze the request"},
			{ID: 2, Description: "Execute the task directly"},
			{ID: 3, Description: "Verify the result"},
		},
	})
}

// Current returns the active step, or nil for a plan without steps.
func (p *Plan) Current() *Step {
	if p == nil || p.CurrentStepIndex < 0 || p.CurrentStepIndex >= len(p.Steps) {
		return nil
	}
	return &p.Steps[p.CurrentStepIndex]
}

// Activate marks the active step in progress unless it already finished.
func (p *Plan) Activate() {
	cur := p.Current()
	if cur == nil || cur.Status != StatusPending {
		return
	}
	cur.Status = StatusInProgress
	p.touch()
}

// Advance completes the active step with result and moves on to the next one,
// marking it in progress. It reports whether the completed step was the last.
func (p *Plan) Advance(result string) (last bool) {
	cur := p.Current()
	if cur == nil {
		return true
	}
	cur.Status = StatusCompleted
	cur.Result = result

	if p.CurrentStepIndex < len(p.Steps)-1 {
		p.CurrentStepIndex++
		p.Steps[p.CurrentStepIndex].Status = StatusInProgress
	} else {
		last = true
	}
	p.touch()
	return last
}

// Fail marks the active step failed with the given reason.
func (p *Plan) Fail(reason string) {
	cur := p.Current()
	if cur == nil {
		return
	}
	cur.Status = StatusFailed
	cur.Result = reason
	p.touch()
}

// Completed reports whether every step is completed.
func (p *Plan) Completed() bool {
	if p == nil || len(p.Steps) == 0 {
		return false
	}
	for _, s := range p.Steps {
		if s.Status != StatusCompleted {
			return false
		}
	}
	return true
}

// CompletedCount returns the number of completed steps.
func (p *Plan) CompletedCount() int {
	n := 0
	for _, s := range p.Steps {
		if s.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// Render formats the plan status shown to the model before every step.
//
//	Current Plan: <title>
//	Progress: 2/3
//
//	✓ 1. ... [completed]
//	→ 2. ... [in_progress]
//	  3. ... [pending]
func (p *Plan) Render() string {
	if p == nil {
		return "No active plan"
	}
	if p.Current() == nil {
		return "Plan has no steps"
	}

	lines := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		lines[i] = fmt.Sprintf("%s %d. %s [%s]", p.marker(i), s.ID, s.Description, s.Status)
	}

	return fmt.Sprintf("Current Plan: %s\nProgress: %d/%d\n\n%s",
		p.Title, p.CurrentStepIndex+1, len(p.Steps), strings.Join(lines, "\n"))
}

func (p *Plan) marker(i int) string {
	switch {
	case i == p.CurrentStepIndex:
		return "→"
	case p.Steps[i].Status == StatusCompleted:
		return "✓"
	case p.Steps[i].Status == StatusFailed:
		return "✗"
	default:
		return " "
	}
}

// Summary is the human readable description recorded when the plan is created.
func (p *Plan) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generated plan: %s\n%s\n\nSteps:", p.Title, p.Description)
	for _, s := range p.Steps {
		fmt.Fprintf(&b, "\n%d. %s", s.ID, s.Description)
	}
	return b.String()
}

// Clone returns a deep copy.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Steps = append([]Step(nil), p.Steps...)
	return &cp
}

// ToStored converts the plan into its persisted form.
func (p *Plan) ToStored() core.StoredPlan {
	steps := make([]core.StoredPlanStep, len(p.Steps))
	for i, s := range p.Steps {
		steps[i] = core.StoredPlanStep{
			ID:          s.ID,
			Description: s.Description,
			Status:      string(s.Status),
			Result:      s.Result,
		}
	}
	return core.StoredPlan{
		ID:               p.ID,
		Title:            p.Title,
		Description:      p.Description,
		Steps:            steps,
		CurrentStepIndex: p.CurrentStepIndex,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// FromStored rebuilds a plan from its persisted form.
func FromStored(sp core.StoredPlan) *Plan {
	steps := make([]Step, len(sp.Steps))
	for i, s := range sp.Steps {
		steps[i] = Step{
			ID:          s.ID,
			Description: s.Description,
			Status:      Status(s.Status),
			Result:      s.Result,
		}
	}
	return &Plan{
		ID:               sp.ID,
		Title:            sp.Title,
		Description:      sp.Description,
		Steps:            steps,
		CurrentStepIndex: sp.CurrentStepIndex,
		CreatedAt:        sp.CreatedAt,
		UpdatedAt:        sp.UpdatedAt,
	}
}

func (p *Plan) touch() { p.UpdatedAt = now() }
