// Package agentloop provides a high-level façade over the agent loop, the tool
// registry and conversation persistence. Most applications interact with this
// package by:
//  1. Creating an AgentLoop via New() with a model backend
//  2. Registering the tools the agents may call
//  3. Running requests on conversations (Run) or building agents directly (NewAgent)
//
// Defaults are in-memory and safe for local development and testing; production
// deployments typically supply a durable store (see session/sqlite) and a
// structured logger.
package agentloop

import (
	"context"

	"github.com/hupe1980/agentloop/agent"
	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/logging"
	"github.com/hupe1980/agentloop/memory"
	"github.com/hupe1980/agentloop/model"
	"github.com/hupe1980/agentloop/plan"
	"github.com/hupe1980/agentloop/runner"
	"github.com/hupe1980/agentloop/session"
	"github.com/hupe1980/agentloop/tool"
)

// Options configures the AgentLoop instance.
type Options struct {
	// Tools are registered on construction. The terminate tool is always added.
	Tools []tool.Tool

	// Store persists conversations (defaults to an in-memory store).
	Store core.ConversationStore

	// MemoryCapacity bounds the memory rebuilt for every run.
	MemoryCapacity int

	// AgentOptions are applied to every agent built by this instance.
	AgentOptions []func(o *agent.Options)

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// AgentLoop is the high-level façade aggregating backend, tools and runner.
type AgentLoop struct {
	opts     Options
	llm      model.Model
	registry *tool.Registry
	runner   *runner.Runner
}

// New creates a new AgentLoop instance with optional overrides.
func New(llm model.Model, optFns ...func(o *Options)) *AgentLoop {
	opts := Options{
		Store:          session.NewInMemoryStore(),
		MemoryCapacity: memory.DefaultCapacity,
		Logger:         logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)

	registry := tool.NewRegistry()
	registry.SetLogger(opts.Logger)
	registry.Register(tool.NewTerminateTool())
	for _, t := range opts.Tools {
		registry.Register(t)
	}

	r := runner.New(llm, registry, func(o *runner.Options) {
		o.Store = opts.Store
		o.MemoryCapacity = opts.MemoryCapacity
		o.AgentOptions = opts.AgentOptions
		o.Logger = opts.Logger
	})

	return &AgentLoop{opts: opts, llm: llm, registry: registry, runner: r}
}

// RegisterTool adds a tool, replacing one with the same name.
func (l *AgentLoop) RegisterTool(t tool.Tool) { l.registry.Register(t) }

// Registry returns the shared tool registry.
func (l *AgentLoop) Registry() *tool.Registry { return l.registry }

// Runner returns the underlying runner.
func (l *AgentLoop) Runner() *runner.Runner { return l.runner }

// NewAgent builds a standalone agent of the given kind bound to mem (a fresh
// memory when nil). Per-call options are applied after the instance defaults.
func (l *AgentLoop) NewAgent(kind core.AgentKind, mem *memory.Memory, optFns ...func(o *agent.Options)) *agent.Agent {
	if mem == nil {
		mem = memory.New(l.opts.MemoryCapacity)
	}

	fns := make([]func(o *agent.Options), 0, len(l.opts.AgentOptions)+len(optFns)+1)
	fns = append(fns, func(o *agent.Options) { o.Logger = l.opts.Logger })
	fns = append(fns, l.opts.AgentOptions...)
	fns = append(fns, optFns...)

	switch kind {
	case core.KindReasoning:
		return agent.NewReasoningAgent(l.llm, mem, fns...)
	case core.KindToolCall:
		return agent.NewToolCallAgent(l.llm, l.registry, mem, fns...)
	default:
		return agent.NewPlanningAgent(l.llm, l.registry, mem, fns...)
	}
}

// Run handles one request on a conversation; see runner.Runner.Run.
func (l *AgentLoop) Run(ctx context.Context, conversationID string, kind core.AgentKind, text string) (runner.Result, error) {
	return l.runner.Run(ctx, conversationID, kind, text)
}

// History returns the stored messages of a conversation.
func (l *AgentLoop) History(ctx context.Context, conversationID string) ([]core.Message, error) {
	return l.runner.History(ctx, conversationID)
}

// LatestPlan returns the most recently saved plan of a conversation.
func (l *AgentLoop) LatestPlan(ctx context.Context, conversationID string) (*plan.Plan, error) {
	return l.runner.LatestPlan(ctx, conversationID)
}
