package anthropic

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/model"
)

const toolUseMessage = `{
  "id": "msg_1",
  "type": "message",
  "role": "assistant",
  "model": "claude-3-5-sonnet-20241022",
  "content": [
    {"type": "text", "text": "checking"},
    {"type": "tool_use", "id": "toolu_1", "name": "add", "input": {"a": 1, "b": 2}}
  ],
  "stop_reason": "tool_use",
  "usage": {"input_tokens": 7, "output_tokens": 3}
}`

func newTestModel(t *testing.T, captured *map[string]any) *Model {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if captured != nil {
			require.NoError(t, json.Unmarshal(raw, captured))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(toolUseMessage))
	}))
	t.Cleanup(srv.Close)

	return NewModel(func(o *Options) {
		o.APIKey = "test"
		o.RequestOptions = []option.RequestOption{option.WithBaseURL(srv.URL + "/"), option.WithMaxRetries(0)}
	})
}

func TestAskWithTools(t *testing.T) {
	var captured map[string]any
	m := newTestModel(t, &captured)

	resp, err := m.AskWithTools(t.Context(), model.Request{
		System:     []core.Message{core.SystemMessage("be precise")},
		Messages:   []core.Message{core.UserMessage("add 1 and 2")},
		Tools:      []model.ToolDefinition{model.NewToolDefinition("add", "adds", map[string]any{"type": "object", "required": []string{"a"}})},
		ToolChoice: core.ToolChoiceRequired,
	})
	require.NoError(t, err)
	assert.Equal(t, "checking", resp.Content)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "toolu_1", resp.ToolCalls[0].ID)
	assert.JSONEq(t, `{"a":1,"b":2}`, resp.ToolCalls[0].Function.Arguments)
	assert.Equal(t, "tool_use", resp.FinishReason)
	assert.Equal(t, 10, resp.Usage.TotalTokens)

	choice, ok := captured["tool_choice"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "any", choice["type"])
	assert.NotEmpty(t, captured["system"])
}

func TestAskWithTools_NoneOmitsTools(t *testing.T) {
	var captured map[string]any
	m := newTestModel(t, &captured)

	resp, err := m.AskWithTools(t.Context(), model.Request{
		Messages:   []core.Message{core.UserMessage("hi")},
		Tools:      []model.ToolDefinition{model.NewToolDefinition("add", "adds", nil)},
		ToolChoice: core.ToolChoiceNone,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.ToolCalls)
	assert.NotContains(t, captured, "tools")
}

func TestAsk(t *testing.T) {
	m := newTestModel(t, nil)
	text, err := m.Ask(t.Context(), model.Request{Messages: []core.Message{core.UserMessage("hi")}})
	require.NoError(t, err)
	assert.Equal(t, "checking", text)
}

func TestBuildMessages_MergesToolResults(t *testing.T) {
	msgs := buildMessages([]core.Message{
		core.SystemMessage("sys"),
		core.UserMessage("hi"),
		core.AssistantToolCallMessage("", []core.ToolCall{
			core.NewToolCall("c1", "add", `{"a":1}`),
			core.NewToolCall("c2", "sub", `not json`),
		}),
		core.ToolMessage("c1", "add", "1"),
		core.ToolMessage("c2", "sub", "Error: bad"),
		core.SystemMessage("note"),
		core.UserMessage("next"),
	})

	require.Len(t, msgs, 3)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)
	assert.Len(t, msgs[1].Content, 2)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[2].Role)
	assert.Len(t, msgs[2].Content, 3)
}

func interruptedTurn() []core.Message {
	return []core.Message{
		core.UserMessage("finish"),
		core.AssistantToolCallMessage("", []core.ToolCall{
			core.NewToolCall("c1", "terminate", `{"reason":"done"}`),
			core.NewToolCall("c2", "add", `{}`),
		}),
		core.ToolMessage("c1", "terminate", "Task completed: done"),
		core.UserMessage("next"),
	}
}

func countBlocks(t *testing.T, captured map[string]any) map[string]int {
	t.Helper()
	counts := map[string]int{}
	msgs, ok := captured["messages"].([]any)
	require.True(t, ok)
	for _, m := range msgs {
		blocks, _ := m.(map[string]any)["content"].([]any)
		for _, b := range blocks {
			typ, _ := b.(map[string]any)["type"].(string)
			counts[typ]++
		}
	}
	return counts
}

func TestAskWithTools_ForwardsOnlyAnsweredCalls(t *testing.T) {
	var captured map[string]any
	m := newTestModel(t, &captured)

	_, err := m.AskWithTools(t.Context(), model.Request{
		Messages: interruptedTurn(),
		Tools:    []model.ToolDefinition{model.NewToolDefinition("add", "adds", nil)},
	})
	require.NoError(t, err)

	counts := countBlocks(t, captured)
	assert.Equal(t, 1, counts["tool_use"])
	assert.Equal(t, 1, counts["tool_result"])
}

func TestAsk_FlattensToolBlocks(t *testing.T) {
	var captured map[string]any
	m := newTestModel(t, &captured)

	_, err := m.Ask(t.Context(), model.Request{Messages: interruptedTurn()})
	require.NoError(t, err)

	assert.NotContains(t, captured, "tools")
	counts := countBlocks(t, captured)
	assert.Zero(t, counts["tool_use"])
	assert.Zero(t, counts["tool_result"])
	assert.Positive(t, counts["text"])
}
