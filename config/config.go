// Package config loads agentloop settings from a YAML file, AGENTLOOP_*
// environment variables and built-in defaults, in that order of precedence
// (environment first).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/logging"
	"github.com/hupe1980/agentloop/session/sqlite"
)

// Supported providers.
const (
	ProviderOpenAI      = "openai"
	ProviderAzureOpenAI = "azure_openai"
	ProviderAnthropic   = "anthropic"
)

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type AzureConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	APIVersion string `mapstructure:"api_version"`
	APIKey     string `mapstructure:"api_key"`
	Deployment string `mapstructure:"deployment"`
}

type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// AgentConfig holds the loop settings applied to every constructed agent.
type AgentConfig struct {
	MaxSteps       int      `mapstructure:"max_steps"`
	MemoryCapacity int      `mapstructure:"memory_capacity"`
	ToolChoice     string   `mapstructure:"tool_choice"`
	PlanRequired   bool     `mapstructure:"plan_required"`
	TerminalTools  []string `mapstructure:"terminal_tools"`
	// SystemPrompt replaces the default prompt of the agent kind when set.
	SystemPrompt string `mapstructure:"system_prompt"`
}

type Config struct {
	LogLevel  string          `mapstructure:"log_level"`
	LogFormat string          `mapstructure:"log_format"`
	Provider  string          `mapstructure:"provider"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Azure     AzureConfig     `mapstructure:"azure"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Agent     AgentConfig     `mapstructure:"agent"`
	Storage   sqlite.Config   `mapstructure:"storage"`
}

// Load reads the configuration. An empty cfgFile searches for config.yaml in
// the working directory and $HOME/.agentloop; a missing file is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.agentloop")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("AGENTLOOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so every key gets a default.
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Only a searched-for file may be absent.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings every command needs. Provider credentials are
// checked separately by ValidateProvider.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}

	if c.Agent.MaxSteps < 1 {
		return fmt.Errorf("agent.max_steps must be positive, got %d", c.Agent.MaxSteps)
	}
	if c.Agent.MemoryCapacity < 1 {
		return fmt.Errorf("agent.memory_capacity must be positive, got %d", c.Agent.MemoryCapacity)
	}
	if _, err := core.ParseToolChoice(c.Agent.ToolChoice); err != nil {
		return err
	}
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return errors.New("storage.path is required unless storage.in_memory is set")
	}
	return nil
}

// ValidateProvider checks the settings needed to build the selected backend.
func (c *Config) ValidateProvider() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return errors.New("openai.api_key is required (or set OPENAI_API_KEY env var)")
		}
	case ProviderAzureOpenAI:
		if c.Azure.Endpoint == "" || c.Azure.Deployment == "" {
			return errors.New("azure.endpoint and azure.deployment are required")
		}
		if c.Azure.APIKey == "" {
			return errors.New("azure.api_key is required (or set AZURE_OPENAI_API_KEY env var)")
		}
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return errors.New("anthropic.api_key is required (or set ANTHROPIC_API_KEY env var)")
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	return nil
}

// LoggerConfig translates the log settings for logging.NewLogger. Validate
// must have succeeded.
func (c *Config) LoggerConfig() *logging.LoggerConfig {
	level, _ := logging.ParseLevel(c.LogLevel)
	cfg := logging.DefaultLoggerConfig()
	cfg.Level = level
	cfg.Format = c.LogFormat
	return cfg
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("provider", d.Provider)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", d.OpenAI.Model)
	v.SetDefault("openai.base_url", "")
	_ = v.BindEnv("openai.api_key", "AGENTLOOP_OPENAI_API_KEY", "OPENAI_API_KEY")

	v.SetDefault("azure.endpoint", "")
	v.SetDefault("azure.api_version", d.Azure.APIVersion)
	v.SetDefault("azure.api_key", "")
	v.SetDefault("azure.deployment", "")
	_ = v.BindEnv("azure.api_key", "AGENTLOOP_AZURE_API_KEY", "AZURE_OPENAI_API_KEY")

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", d.Anthropic.Model)
	_ = v.BindEnv("anthropic.api_key", "AGENTLOOP_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")

	v.SetDefault("agent.max_steps", d.Agent.MaxSteps)
	v.SetDefault("agent.memory_capacity", d.Agent.MemoryCapacity)
	v.SetDefault("agent.tool_choice", d.Agent.ToolChoice)
	v.SetDefault("agent.plan_required", d.Agent.PlanRequired)
	v.SetDefault("agent.terminal_tools", d.Agent.TerminalTools)
	v.SetDefault("agent.system_prompt", "")

	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.in_memory", d.Storage.InMemory)
	v.SetDefault("storage.busy_timeout", d.Storage.BusyTimeout)
}

// DefaultConfig returns the built-in defaults. API keys are left empty.
func DefaultConfig() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Provider:  ProviderOpenAI,
		OpenAI: OpenAIConfig{
			Model: "gpt-4o",
		},
		Azure: AzureConfig{
			APIVersion: "2024-06-01",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-3-5-sonnet-20241022",
		},
		Agent: AgentConfig{
			MaxSteps:       10,
			MemoryCapacity: 100,
			ToolChoice:     string(core.ToolChoiceAuto),
			PlanRequired:   true,
			TerminalTools:  []string{"terminate"},
		},
		Storage: sqlite.Config{
			Path:        "agentloop.db",
			BusyTimeout: 5 * time.Second,
		},
	}
}
