package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloop/agent"
	"github.com/hupe1980/agentloop/config"
	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/internal/testutil"
)

func TestNewModel(t *testing.T) {
	c := config.DefaultConfig()
	c.OpenAI.APIKey = "k"

	m, err := newModel(&c)
	require.NoError(t, err)
	assert.Equal(t, "openai", m.Info().Provider)
	assert.Equal(t, "gpt-4o", m.Info().Name)

	c.Provider = config.ProviderAnthropic
	c.Anthropic.APIKey = "k"
	m, err = newModel(&c)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", m.Info().Provider)

	c.Provider = "gemini"
	_, err = newModel(&c)
	assert.Error(t, err)

	c.Provider = config.ProviderAnthropic
	c.Anthropic.APIKey = ""
	_, err = newModel(&c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.api_key")
}

func TestAgentOptions(t *testing.T) {
	ac := config.DefaultConfig().Agent
	ac.MaxSteps = 3
	ac.ToolChoice = "required"
	ac.PlanRequired = false
	ac.SystemPrompt = "custom"

	var o agent.Options
	agentOptions(ac)(&o)

	assert.Equal(t, 3, o.MaxSteps)
	assert.Equal(t, core.ToolChoiceRequired, o.ToolChoice)
	assert.False(t, o.PlanRequired)
	assert.Equal(t, []string{"terminate"}, o.TerminalTools)
	assert.Equal(t, "custom", o.SystemPrompt)
}

func TestPrintMessages(t *testing.T) {
	msgs := testutil.NewConversationBuilder().
		User("what is 6*7?").
		AssistantCalls("", core.NewToolCall("c1", "calculator", `{"operation":"multiply","a":6,"b":7}`)).
		Tool("c1", "calculator", "42").
		Assistant("The answer is 42, a number with a long history").
		Build()

	var buf bytes.Buffer
	printMessages(&buf, msgs, 20)

	out := buf.String()
	assert.Contains(t, out, "  1 [user] what is 6*7?\n")
	assert.Contains(t, out, "      -> calculator({\"operation\":\"multiply\",\"a\":6,\"b\":7})\n")
	assert.Contains(t, out, "  3 [tool calculator] 42\n")
	assert.Contains(t, out, "  4 [assistant] The answer is 42, a ...\n")
}
