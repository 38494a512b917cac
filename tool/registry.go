package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/logging"
	"github.com/hupe1980/agentloop/model"
)

// Registry is a named collection of tools. It keeps registration order for
// schema export and is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	order  []string
	logger logging.Logger
}

// NewRegistry creates a registry holding the given tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{
		tools:  make(map[string]Tool),
		logger: logging.NoOpLogger{},
	}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// SetLogger replaces the registry logger. A nil logger disables logging.
func (r *Registry) SetLogger(l logging.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logging.OrNoOp(l)
}

// Register adds t, replacing any tool of the same name in place.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Name()
	if _, exists := r.tools[name]; exists {
		r.logger.Warn("tool.register.overwrite", "tool", name)
	} else {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Execute runs the named tool and renders its outcome as text.
//
// Only an unknown name is reported as an error (*core.ToolNotFoundError).
// Tool errors and panics become an "Error: ..." result, string results pass
// through and anything else is JSON encoded.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	t, ok := r.Get(name)
	if !ok {
		return "", &core.ToolNotFoundError{Name: name}
	}

	r.mu.RLock()
	logger := r.logger
	r.mu.RUnlock()

	start := time.Now()
	logger.Debug("tool.call.start", "tool", name)

	result, err := safeCall(ctx, t, args)
	logging.ToolCall(logger, name, time.Since(start), err)
	if err != nil {
		return "Error: " + err.Error(), nil
	}
	return render(result), nil
}

// Schemas exports the tool definitions in registration order.
func (r *Registry) Schemas() []model.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]model.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, model.NewToolDefinition(t.Name(), t.Description(), t.Parameters()))
	}
	return defs
}

// Describe renders a "- name: description" line per tool for prompts.
func (r *Registry) Describe() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder
	for i, name := range r.order {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s: %s", name, r.tools[name].Description())
	}
	return b.String()
}

type panicError struct{ v any }

func (p panicError) Error() string { return fmt.Sprintf("panic: %v", p.v) }

func safeCall(ctx context.Context, t Tool, args map[string]any) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result, err = nil, panicError{v: rec}
		}
	}()
	return t.Call(ctx, args)
}

func render(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(b)
}
