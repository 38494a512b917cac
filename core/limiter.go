package core

// StepBudget tracks loop iterations against a hard maximum. It is owned by a
// single agent and is not safe for concurrent use.
type StepBudget struct {
	max   int
	count int
}

// NewStepBudget creates a budget allowing max iterations. Values below one are
// raised to one.
func NewStepBudget(max int) *StepBudget {
	if max < 1 {
		max = 1
	}
	return &StepBudget{max: max}
}

// Next consumes one iteration and reports whether it was within budget.
func (b *StepBudget) Next() bool {
	if b.count >= b.max {
		return false
	}
	b.count++
	return true
}

// Exhausted reports whether every iteration has been consumed.
func (b *StepBudget) Exhausted() bool { return b.count >= b.max }

// Count returns the number of iterations consumed so far.
func (b *StepBudget) Count() int { return b.count }

// Max returns the configured maximum.
func (b *StepBudget) Max() int { return b.max }

// Remaining returns how many iterations are left.
func (b *StepBudget) Remaining() int { return b.max - b.count }

// Reset clears the consumed count.
func (b *StepBudget) Reset() { b.count = 0 }
