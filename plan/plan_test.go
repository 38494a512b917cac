package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeSteps() *Plan {
	return New(Draft{
		Title:       "Trip",
		Description: "Plan a trip",
		Steps: []DraftStep{
			{ID: 1, Description: "Pick destination"},
			{ID: 2, Description: "Book flight"},
			{ID: 3, Description: "Book hotel"},
		},
	})
}

func TestNew_NormalizesSteps(t *testing.T) {
	p := New(Draft{Steps: []DraftStep{
		{ID: 0, Description: "a"},
		{ID: 5, Description: "b"},
		{ID: 5, Description: "c"},
		{ID: -1, Description: "d"},
	}})

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, DefaultTitle, p.Title)
	assert.Equal(t, 0, p.CurrentStepIndex)
	ids := []int{}
	for _, s := range p.Steps {
		assert.Equal(t, StatusPending, s.Status)
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []int{1, 5, 3, 4}, ids)
}

func TestFallback(t *testing.T) {
	p := Fallback("book a table")
	assert.Equal(t, "Fallback Plan", p.Title)
	assert.Equal(t, "Fallback plan for request: book a table", p.Description)
	require.Len(t, p.Steps, 3)
	assert.Equal(t, "Analyze the request", p.Steps[0].Description)
	assert.Equal(t, "Execute the task directly", p.Steps[1].Description)
	assert.Equal(t, "Verify the result", p.Steps[2].Description)
	for _, s := range p.Steps {
		assert.Equal(t, StatusPending, s.Status)
	}
	assert.Equal(t, 0, p.CurrentStepIndex)
}

func TestAdvance(t *testing.T) {
	p := threeSteps()
	p.Activate()
	assert.Equal(t, StatusInProgress, p.Steps[0].Status)

	last := p.Advance("picked Lisbon")
	assert.False(t, last)
	assert.Equal(t, StatusCompleted, p.Steps[0].Status)
	assert.Equal(t, "picked Lisbon", p.Steps[0].Result)
	assert.Equal(t, 1, p.CurrentStepIndex)
	assert.Equal(t, StatusInProgress, p.Steps[1].Status)
	assert.Equal(t, StatusPending, p.Steps[2].Status)

	assert.False(t, p.Advance("flight booked"))
	assert.True(t, p.Advance("hotel booked"))
	assert.Equal(t, 2, p.CurrentStepIndex)
	assert.True(t, p.Completed())
	assert.Equal(t, 3, p.CompletedCount())

	// Further steps keep the index on the last step.
	assert.True(t, p.Advance("extra"))
	assert.Equal(t, 2, p.CurrentStepIndex)
	assert.Equal(t, "extra", p.Steps[2].Result)
}

func TestSingleInProgress(t *testing.T) {
	p := threeSteps()
	for i := 0; i < 4; i++ {
		p.Activate()
		inProgress := 0
		for j, s := range p.Steps {
			if s.Status == StatusInProgress {
				inProgress++
				assert.Equal(t, p.CurrentStepIndex, j)
			}
		}
		assert.LessOrEqual(t, inProgress, 1)
		p.Advance("done")
	}
}

func TestMutationsRefreshUpdatedAt(t *testing.T) {
	orig := now
	defer func() { now = orig }()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now = func() time.Time { return base }
	p := threeSteps()
	assert.Equal(t, base, p.CreatedAt)

	now = func() time.Time { return base.Add(time.Minute) }
	p.Activate()
	assert.Equal(t, base.Add(time.Minute), p.UpdatedAt)

	now = func() time.Time { return base.Add(2 * time.Minute) }
	p.Advance("r")
	assert.Equal(t, base.Add(2*time.Minute), p.UpdatedAt)

	now = func() time.Time { return base.Add(3 * time.Minute) }
	p.Fail("nope")
	assert.Equal(t, base.Add(3*time.Minute), p.UpdatedAt)
	assert.Equal(t, StatusFailed, p.Steps[1].Status)
	assert.Equal(t, base, p.CreatedAt)
}

func TestRender(t *testing.T) {
	p := threeSteps()
	p.Activate()
	p.Advance("ok")
	p.Steps[2].Status = StatusFailed

	want := "Current Plan: Trip\n" +
		"Progress: 2/3\n\n" +
		"✓ 1. Pick destination [completed]\n" +
		"→ 2. Book flight [in_progress]\n" +
		"✗ 3. Book hotel [failed]"
	assert.Equal(t, want, p.Render())

	var nilPlan *Plan
	assert.Equal(t, "No active plan", nilPlan.Render())
	assert.Equal(t, "Plan has no steps", New(Draft{}).Render())
}

func TestRender_PendingMarkerIsBlank(t *testing.T) {
	p := threeSteps()
	assert.Contains(t, p.Render(), "→ 1. Pick destination [pending]")
	assert.Contains(t, p.Render(), "  2. Book flight [pending]")
}

func TestSummary(t *testing.T) {
	want := "Generated plan: Trip\nPlan a trip\n\nSteps:\n1. Pick destination\n2. Book flight\n3. Book hotel"
	assert.Equal(t, want, threeSteps().Summary())
}

func TestClone(t *testing.T) {
	p := threeSteps()
	cp := p.Clone()
	cp.Steps[0].Status = StatusCompleted
	cp.Title = "other"
	assert.Equal(t, StatusPending, p.Steps[0].Status)
	assert.Equal(t, "Trip", p.Title)

	var nilPlan *Plan
	assert.Nil(t, nilPlan.Clone())
}

func TestStoredConversion(t *testing.T) {
	p := threeSteps()
	p.Activate()
	p.Advance("first")

	back := FromStored(p.ToStored())
	assert.Equal(t, p.ID, back.ID)
	assert.Equal(t, p.CurrentStepIndex, back.CurrentStepIndex)
	assert.Equal(t, p.Steps, back.Steps)
	assert.Equal(t, p.Render(), back.Render())
}
