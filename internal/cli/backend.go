package cli

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/agentloop/agent"
	"github.com/hupe1980/agentloop/config"
	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/logging"
	"github.com/hupe1980/agentloop/model"
	anthropicmodel "github.com/hupe1980/agentloop/model/anthropic"
	"github.com/hupe1980/agentloop/model/openai"
	"github.com/hupe1980/agentloop/runner"
	"github.com/hupe1980/agentloop/session/sqlite"
	"github.com/hupe1980/agentloop/tool"
	"github.com/hupe1980/agentloop/tool/builtin"
)

// newModel builds the backend selected by c.Provider.
func newModel(c *config.Config) (model.Model, error) {
	if err := c.ValidateProvider(); err != nil {
		return nil, err
	}

	switch c.Provider {
	case config.ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) {
			o.APIKey = c.OpenAI.APIKey
			o.BaseURL = c.OpenAI.BaseURL
			if c.OpenAI.Model != "" {
				o.Model = c.OpenAI.Model
			}
		}), nil
	case config.ProviderAzureOpenAI:
		return openai.NewAzureModel(c.Azure.Endpoint, c.Azure.APIVersion, c.Azure.APIKey, c.Azure.Deployment), nil
	case config.ProviderAnthropic:
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			o.APIKey = c.Anthropic.APIKey
			if c.Anthropic.Model != "" {
				o.Model = anthropic.Model(c.Anthropic.Model)
			}
		}), nil
	}
	return nil, fmt.Errorf("unknown provider %q", c.Provider)
}

// agentOptions maps the agent section onto agent.Options.
func agentOptions(c config.AgentConfig) func(o *agent.Options) {
	return func(o *agent.Options) {
		o.MaxSteps = c.MaxSteps
		o.PlanRequired = c.PlanRequired
		if tc, err := core.ParseToolChoice(c.ToolChoice); err == nil {
			o.ToolChoice = tc
		}
		if len(c.TerminalTools) > 0 {
			o.TerminalTools = c.TerminalTools
		}
		if c.SystemPrompt != "" {
			o.SystemPrompt = c.SystemPrompt
		}
	}
}

func newLogger(c *config.Config) *logging.ContextLogger {
	return logging.NewLogger(c.LoggerConfig()).WithComponent("cli")
}

func openStore(ctx context.Context, c *config.Config, logger logging.Logger) (*sqlite.Store, error) {
	storeCfg := c.Storage
	store, err := sqlite.Open(ctx, storeCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	logger.Debug("store.opened", "path", storeCfg.Path, "in_memory", storeCfg.InMemory)
	return store, nil
}

// newRunner wires backend, builtin tools and store into a Runner.
func newRunner(c *config.Config, store *sqlite.Store, logger logging.Logger) (*runner.Runner, error) {
	llm, err := newModel(c)
	if err != nil {
		return nil, err
	}

	registry := tool.NewRegistry(builtin.Tools()...)
	registry.SetLogger(logger)

	return runner.New(llm, registry, func(o *runner.Options) {
		o.Store = store
		o.MemoryCapacity = c.Agent.MemoryCapacity
		o.Logger = logger
		o.AgentOptions = append(o.AgentOptions, agentOptions(c.Agent))
	}), nil
}
