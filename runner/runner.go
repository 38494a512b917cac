package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/agentloop/agent"
	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/logging"
	"github.com/hupe1980/agentloop/memory"
	"github.com/hupe1980/agentloop/model"
	"github.com/hupe1980/agentloop/plan"
	"github.com/hupe1980/agentloop/session"
	"github.com/hupe1980/agentloop/tool"
)

// ErrConversationBusy is returned when a conversation already has an active run.
var ErrConversationBusy = errors.New("conversation already has an active run")

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// Store persists messages and plans. Defaults to an in-memory store.
	Store core.ConversationStore
	// MemoryCapacity bounds the agent memory rebuilt for each run.
	MemoryCapacity int
	// AgentOptions are applied to every agent the runner constructs.
	AgentOptions []func(o *agent.Options)
	// Logging services.
	Logger logging.Logger
}

// Result describes one completed run.
type Result struct {
	ConversationID string
	// Output is the newline-joined step summary returned by the agent.
	Output string
	State  core.AgentState
	Steps  int
	// Plan is a snapshot of the agent plan, nil for non-planning runs.
	Plan *plan.Plan
	// Persisted is the number of messages appended to the store by this run.
	Persisted int
}

// Runner rebuilds an agent from stored history for every request, runs it and
// persists what the run added. Public methods are safe for concurrent use; a
// conversation holds at most one active run.
type Runner struct {
	llm      model.Model
	registry *tool.Registry

	store          core.ConversationStore
	memoryCapacity int
	agentOptions   []func(o *agent.Options)
	logger         logging.Logger

	activeRuns map[string]context.CancelFunc
	mu         sync.RWMutex
}

// New constructs a Runner with optional overrides.
func New(llm model.Model, registry *tool.Registry, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Store:          session.NewInMemoryStore(),
		MemoryCapacity: memory.DefaultCapacity,
		Logger:         logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if registry == nil {
		registry = tool.NewRegistry()
	}

	return &Runner{
		llm:            llm,
		registry:       registry,
		store:          opts.Store,
		memoryCapacity: opts.MemoryCapacity,
		agentOptions:   opts.AgentOptions,
		logger:         logging.OrNoOp(opts.Logger),
		activeRuns:     make(map[string]context.CancelFunc),
	}
}

// Store returns the conversation store used by the runner.
func (r *Runner) Store() core.ConversationStore { return r.store }

// Run handles one request on a conversation.
//
// The user message is stored first. The agent is then built from the stored
// history and run; afterwards every memory entry whose (role, content) pair is
// not yet stored is appended, and the plan, if any, is saved. A run error is
// returned after the entries produced so far have been persisted.
func (r *Runner) Run(ctx context.Context, conversationID string, kind core.AgentKind, text string) (Result, error) {
	if conversationID == "" {
		return Result{}, errors.New("conversation id is required")
	}
	if text == "" {
		return Result{}, errors.New("message is required")
	}
	switch kind {
	case core.KindReasoning, core.KindToolCall, core.KindPlanning, "":
	default:
		return Result{}, fmt.Errorf("unknown agent kind %q", kind)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := r.begin(conversationID, cancel); err != nil {
		return Result{}, err
	}
	defer r.end(conversationID)

	history, err := r.store.Messages(ctx, conversationID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load messages: %w", err)
	}

	userMsg := core.UserMessage(text)
	if err := r.store.Append(ctx, conversationID, userMsg); err != nil {
		return Result{}, fmt.Errorf("failed to append user message: %w", err)
	}

	known := make(map[messageKey]bool, len(history)+1)
	for _, m := range history {
		known[keyOf(m)] = true
	}
	known[keyOf(userMsg)] = true

	a := r.newAgent(kind, memory.NewFromMessages(r.memoryCapacity, history))

	r.logger.Info("runner.run.start", "conversation", conversationID, "kind", string(kind), "history", len(history))

	output, runErr := a.Run(ctx, text)

	// Persist with a context that survives cancellation of the run.
	persistCtx := context.WithoutCancel(ctx)

	res := Result{
		ConversationID: conversationID,
		Output:         output,
		State:          a.State(),
		Steps:          a.CurrentStep(),
		Plan:           a.Plan(),
		Persisted:      1,
	}
	if runErr != nil {
		r.logger.Error("runner.run.error", "conversation", conversationID, "error", runErr.Error())
		runErr = fmt.Errorf("agent execution failed: %w", runErr)
	}

	persisted, err := r.persist(persistCtx, conversationID, a.Memory().Messages(), known)
	res.Persisted += persisted
	if err != nil {
		return res, errors.Join(runErr, err)
	}

	if res.Plan != nil {
		if err := r.store.SavePlan(persistCtx, conversationID, res.Plan.ToStored()); err != nil {
			return res, errors.Join(runErr, fmt.Errorf("failed to save plan: %w", err))
		}
	}

	if runErr != nil {
		return res, runErr
	}

	r.logger.Info("runner.run.finished", "conversation", conversationID, "steps", res.Steps, "persisted", res.Persisted)
	return res, nil
}

// Cancel aborts the active run of a conversation. It reports whether a run
// was found.
func (r *Runner) Cancel(conversationID string) bool {
	r.mu.RLock()
	cancel, ok := r.activeRuns[conversationID]
	r.mu.RUnlock()
	if ok {
		cancel()
	}
	return ok
}

// IsActive reports whether the conversation has an active run.
func (r *Runner) IsActive(conversationID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.activeRuns[conversationID]
	return ok
}

// History returns the stored messages of a conversation.
func (r *Runner) History(ctx context.Context, conversationID string) ([]core.Message, error) {
	return r.store.Messages(ctx, conversationID)
}

// LatestPlan returns the most recently saved plan of a conversation.
func (r *Runner) LatestPlan(ctx context.Context, conversationID string) (*plan.Plan, error) {
	sp, err := r.store.LatestPlan(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return plan.FromStored(sp), nil
}

func (r *Runner) begin(conversationID string, cancel context.CancelFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.activeRuns[conversationID]; busy {
		return ErrConversationBusy
	}
	r.activeRuns[conversationID] = cancel
	return nil
}

func (r *Runner) end(conversationID string) {
	r.mu.Lock()
	delete(r.activeRuns, conversationID)
	r.mu.Unlock()
}

func (r *Runner) newAgent(kind core.AgentKind, mem *memory.Memory) *agent.Agent {
	optFns := append([]func(o *agent.Options){func(o *agent.Options) {
		o.Logger = r.logger
	}}, r.agentOptions...)

	switch kind {
	case core.KindReasoning:
		return agent.NewReasoningAgent(r.llm, mem, optFns...)
	case core.KindToolCall:
		return agent.NewToolCallAgent(r.llm, r.registry, mem, optFns...)
	default:
		return agent.NewPlanningAgent(r.llm, r.registry, mem, optFns...)
	}
}

// persist appends every message whose (role, content) pair is not in known.
// Duplicates produced within the same run are kept.
func (r *Runner) persist(ctx context.Context, conversationID string, msgs []core.Message, known map[messageKey]bool) (int, error) {
	var fresh []core.Message
	for _, m := range msgs {
		if known[keyOf(m)] {
			continue
		}
		fresh = append(fresh, m)
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	if err := r.store.Append(ctx, conversationID, fresh...); err != nil {
		return 0, fmt.Errorf("failed to persist messages: %w", err)
	}
	return len(fresh), nil
}

type messageKey struct {
	role    core.Role
	content string
}

func keyOf(m core.Message) messageKey { return messageKey{role: m.Role, content: m.Content} }
