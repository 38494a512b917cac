package core

import (
	"errors"
	"fmt"
)

var (
	// ErrToolNotFound is matched by ToolNotFoundError.
	ErrToolNotFound = errors.New("tool not found")
	// ErrPlanNotFound is returned by stores when a conversation has no plan.
	ErrPlanNotFound = errors.New("plan not found")
)

// BackendError reports a transport or provider failure of the language model.
type BackendError struct {
	Provider string // "openai", "anthropic", "scripted", ...
	Op       string // "ask" or "ask_with_tools"
	Err      error
}

func (e *BackendError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s backend %s: %v", e.Provider, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// NewBackendError wraps err as a BackendError. A nil err yields nil.
func NewBackendError(provider, op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Provider: provider, Op: op, Err: err}
}

// ToolNotFoundError is returned when dispatch targets an unregistered tool.
type ToolNotFoundError struct {
	Name string
}

func (e *ToolNotFoundError) Error() string { return fmt.Sprintf("tool not found: %s", e.Name) }

// Is makes errors.Is(err, ErrToolNotFound) hold.
func (e *ToolNotFoundError) Is(target error) bool { return target == ErrToolNotFound }

// ToolDispatchError is a per-call dispatch failure: argument parsing, lookup or
// execution. It never aborts the remaining calls of a turn.
type ToolDispatchError struct {
	Tool   string
	CallID string
	Err    error
}

func (e *ToolDispatchError) Error() string {
	return fmt.Sprintf("Error executing %s: %v", e.Tool, e.Err)
}

func (e *ToolDispatchError) Unwrap() error { return e.Err }

// PlanDerivationError explains why a structured plan could not be derived.
// It is recovered with a fallback plan and never reaches the caller of Run.
type PlanDerivationError struct {
	Err error
}

func (e *PlanDerivationError) Error() string { return e.Err.Error() }

func (e *PlanDerivationError) Unwrap() error { return e.Err }
