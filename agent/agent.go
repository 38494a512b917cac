package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/logging"
	"github.com/hupe1980/agentloop/memory"
	"github.com/hupe1980/agentloop/model"
	"github.com/hupe1980/agentloop/plan"
	"github.com/hupe1980/agentloop/tool"
)

// DefaultMaxSteps is the default step budget of a run.
const DefaultMaxSteps = 10

// ErrAgentRunning is returned when Run is re-entered on a running agent.
var ErrAgentRunning = errors.New("agent is already running")

// Options configures an Agent.
//
// Use functional options with the New*Agent constructors to override defaults.
type Options struct {
	Name        string
	Description string
	// SystemPrompt seeds memory on initialization and is sent as backend
	// system context on every reasoning call. The constructors preset the
	// default prompt of the agent kind; setting it empty disables it.
	SystemPrompt string
	// NextStepPrompt is an initial directive consumed by the first reasoning phase.
	NextStepPrompt string
	MaxSteps       int
	ToolChoice     core.ToolChoice
	// TerminalTools end the run when invoked, matched case-insensitively.
	TerminalTools []string
	// PlanRequired enables plan derivation for planning agents.
	PlanRequired bool
	Logger       logging.Logger
}

func defaultOptions(name string) Options {
	return Options{
		Name:          name,
		MaxSteps:      DefaultMaxSteps,
		ToolChoice:    core.ToolChoiceAuto,
		TerminalTools: []string{tool.TerminateName},
		PlanRequired:  true,
	}
}

// Agent is one instance of the control loop bound to a Memory, a tool Registry
// and a model. It is single-owner and not reentrant.
type Agent struct {
	name          string
	description   string
	systemPrompt  string
	llm           model.Model
	registry      *tool.Registry
	memory        *memory.Memory
	strategy      Strategy
	planner       *Planner
	budget        *core.StepBudget
	state         core.AgentState
	toolChoice    core.ToolChoice
	terminalTools map[string]bool
	logger        logging.Logger

	pendingDirective string
	toolCalls        []core.ToolCall
	lastThought      string
}

func newAgent(llm model.Model, registry *tool.Registry, mem *memory.Memory, strategy Strategy, opts Options) *Agent {
	if registry == nil {
		registry = tool.NewRegistry()
	}
	if mem == nil {
		mem = memory.New(memory.DefaultCapacity)
	}
	if opts.ToolChoice == "" {
		opts.ToolChoice = core.ToolChoiceAuto
	}

	terminal := make(map[string]bool, len(opts.TerminalTools))
	for _, name := range opts.TerminalTools {
		terminal[strings.ToLower(name)] = true
	}

	return &Agent{
		name:             opts.Name,
		description:      opts.Description,
		systemPrompt:     opts.SystemPrompt,
		llm:              llm,
		registry:         registry,
		memory:           mem,
		strategy:         strategy,
		budget:           core.NewStepBudget(opts.MaxSteps),
		state:            core.StateIdle,
		toolChoice:       opts.ToolChoice,
		terminalTools:    terminal,
		logger:           logging.OrNoOp(opts.Logger),
		pendingDirective: opts.NextStepPrompt,
	}
}

// NewReasoningAgent creates an agent whose steps only think: each step asks
// the model for a thought and returns it. Backend failures abort the run.
func NewReasoningAgent(llm model.Model, mem *memory.Memory, optFns ...func(o *Options)) *Agent {
	opts := defaultOptions("react")
	opts.SystemPrompt = DefaultReasoningPrompt()
	for _, fn := range optFns {
		fn(&opts)
	}
	return newAgent(llm, nil, mem, ReasoningStrategy{}, opts)
}

// NewToolCallAgent creates an agent that selects and dispatches tool calls.
func NewToolCallAgent(llm model.Model, registry *tool.Registry, mem *memory.Memory, optFns ...func(o *Options)) *Agent {
	if registry == nil {
		registry = tool.NewRegistry()
	}
	opts := defaultOptions("toolcall")
	opts.SystemPrompt = DefaultToolCallPrompt(registry)
	for _, fn := range optFns {
		fn(&opts)
	}
	return newAgent(llm, registry, mem, ToolCallStrategy{}, opts)
}

// NewPlanningAgent creates a tool-calling agent that derives a plan from its
// first request and works through it step by step.
func NewPlanningAgent(llm model.Model, registry *tool.Registry, mem *memory.Memory, optFns ...func(o *Options)) *Agent {
	if registry == nil {
		registry = tool.NewRegistry()
	}
	opts := defaultOptions("planning")
	opts.SystemPrompt = DefaultPlanningPrompt(registry)
	for _, fn := range optFns {
		fn(&opts)
	}
	a := newAgent(llm, registry, mem, ToolCallStrategy{}, opts)
	a.planner = NewPlanner(opts.PlanRequired)
	return a
}

// Name returns the agent name.
func (a *Agent) Name() string { return a.name }

// Description returns the agent description.
func (a *Agent) Description() string { return a.description }

// SystemPrompt returns the configured system prompt.
func (a *Agent) SystemPrompt() string { return a.systemPrompt }

// State returns the current lifecycle state.
func (a *Agent) State() core.AgentState { return a.state }

// CurrentStep returns the number of steps taken since the last Initialize.
func (a *Agent) CurrentStep() int { return a.budget.Count() }

// MaxSteps returns the step budget.
func (a *Agent) MaxSteps() int { return a.budget.Max() }

// Memory returns the agent's conversation memory.
func (a *Agent) Memory() *memory.Memory { return a.memory }

// Registry returns the agent's tool registry.
func (a *Agent) Registry() *tool.Registry { return a.registry }

// Model returns the backend the agent talks to.
func (a *Agent) Model() model.Model { return a.llm }

// ToolCalls returns a copy of the tool calls selected by the last reasoning phase.
func (a *Agent) ToolCalls() []core.ToolCall { return append([]core.ToolCall(nil), a.toolCalls...) }

// Plan returns a copy of the current plan, or nil.
func (a *Agent) Plan() *plan.Plan {
	if a.planner == nil {
		return nil
	}
	return a.planner.Plan().Clone()
}

// Finish moves the agent to FINISHED. Strategies call it when a terminal
// condition is reached.
func (a *Agent) Finish() { a.state = core.StateFinished }

// IsTerminal reports whether name is one of the configured terminal tools.
func (a *Agent) IsTerminal(name string) bool { return a.terminalTools[strings.ToLower(name)] }

// SetDirective queues a next-step directive for the following reasoning phase,
// replacing any directive that has not been consumed yet.
func (a *Agent) SetDirective(text string) { a.pendingDirective = text }

// Initialize resets the step counter and state and seeds the system prompt.
// Seeding is skipped when memory already holds the same system message, so
// repeated calls and restored conversations do not duplicate it.
func (a *Agent) Initialize() {
	a.budget.Reset()
	a.state = core.StateIdle
	if a.systemPrompt != "" && !a.memory.Contains(core.RoleSystem, a.systemPrompt) {
		a.memory.Add(core.SystemMessage(a.systemPrompt))
	}
}

// Run executes the loop and returns the newline-joined step summaries.
//
// A non-empty request is appended as a user message first. The loop ends when
// a terminal tool finishes the agent or the step budget is spent; in the latter
// case a budget trailer is appended to the summary. Any error reverts the agent
// to IDLE and is returned as is.
func (a *Agent) Run(ctx context.Context, request string) (result string, err error) {
	if a.state == core.StateRunning {
		return "", ErrAgentRunning
	}
	if a.state == core.StateIdle {
		a.Initialize()
	}

	if request != "" {
		a.memory.Add(core.UserMessage(request))
		if a.planner != nil {
			a.planner.Derive(ctx, a, request)
		}
	}

	a.state = core.StateRunning
	defer func() {
		if a.state == core.StateRunning {
			a.state = core.StateIdle
		}
	}()

	a.logger.Info("agent.run.start", "agent", a.name, "max_steps", a.budget.Max())

	var results []string
	for a.state != core.StateFinished && a.budget.Next() {
		step := a.budget.Count()
		start := time.Now()
		a.logger.Debug("agent.step.start", "agent", a.name, "step", step, "max_steps", a.budget.Max())

		if err := ctx.Err(); err != nil {
			a.state = core.StateIdle
			return "", err
		}

		if IsStuck(a.memory.Messages()) {
			a.logger.Warn("agent.stuck", "agent", a.name, "step", step)
			a.memory.Add(core.SystemMessage(StuckNudge))
		}

		if a.planner != nil {
			a.planner.BeforeStep(a)
		}

		out, stepErr := a.step(ctx)
		if stepErr != nil {
			if a.planner != nil {
				a.planner.StepFailed(a, stepErr)
			}
			a.state = core.StateIdle
			a.logger.Error("agent.run.error", "agent", a.name, "step", step, "error", stepErr.Error())
			return "", stepErr
		}
		results = append(results, out)

		if a.planner != nil {
			a.planner.AfterStep(a, out)
		}

		logging.Step(a.logger, step, a.budget.Max(), time.Since(start), "agent", a.name)
	}

	if a.state != core.StateFinished && a.budget.Exhausted() {
		a.state = core.StateFinished
		results = append(results, fmt.Sprintf(BudgetTrailerFormat, a.budget.Max()))
		a.logger.Info("agent.budget.exhausted", "agent", a.name, "max_steps", a.budget.Max())
	}

	if a.planner != nil {
		a.planner.Finish(a)
	}

	a.logger.Info("agent.run.finished", "agent", a.name, "steps", a.budget.Count())
	return strings.Join(results, "\n"), nil
}

// step runs one think/act pair.
func (a *Agent) step(ctx context.Context) (string, error) {
	act, err := a.strategy.Think(ctx, a)
	if err != nil {
		return "", err
	}
	if !act {
		return NoActionNotice, nil
	}
	return a.strategy.Act(ctx, a)
}

// consumeDirective appends the pending directive as a system message.
func (a *Agent) consumeDirective() {
	if a.pendingDirective == "" {
		return
	}
	a.memory.Add(core.SystemMessage(a.pendingDirective))
	a.pendingDirective = ""
}

func (a *Agent) systemContext() []core.Message {
	if a.systemPrompt == "" {
		return nil
	}
	return []core.Message{core.SystemMessage(a.systemPrompt)}
}

// IsStuck reports whether the last three assistant messages exist, are
// non-empty and identical.
func IsStuck(msgs []core.Message) bool {
	const window = 3

	var recent []string
	for i := len(msgs) - 1; i >= 0 && len(recent) < window; i-- {
		if msgs[i].Role == core.RoleAssistant {
			recent = append(recent, msgs[i].Content)
		}
	}
	if len(recent) < window || recent[0] == "" {
		return false
	}
	for _, c := range recent[1:] {
		if c != recent[0] {
			return false
		}
	}
	return true
}
