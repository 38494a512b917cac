package model

import (
	"fmt"
	"strings"

	"github.com/hupe1980/agentloop/core"
)

// PairToolCalls returns msgs with every tool call matched to a result.
//
// Provider APIs reject an assistant turn whose tool calls are not all answered
// by the tool messages directly after it, and tool messages that answer no
// call. Unanswered calls are removed from their assistant message (which is
// dropped when nothing else remains) and orphaned tool messages are skipped.
// The input is not modified.
func PairToolCalls(msgs []core.Message) []core.Message {
	out := make([]core.Message, 0, len(msgs))

	for i := 0; i < len(msgs); i++ {
		msg := msgs[i]

		switch {
		case msg.Role == core.RoleTool:
			// Not preceded by an assistant turn with calls.
			continue
		case msg.Role != core.RoleAssistant || len(msg.ToolCalls) == 0:
			out = append(out, msg.Clone())
			continue
		}

		end := i + 1
		for end < len(msgs) && msgs[end].Role == core.RoleTool {
			end++
		}
		results := msgs[i+1 : end]

		answered := make(map[string]bool, len(results))
		for _, r := range results {
			answered[r.ToolCallID] = true
		}

		kept := make(map[string]bool, len(msg.ToolCalls))
		var calls []core.ToolCall
		for _, tc := range msg.ToolCalls {
			if answered[tc.ID] && !kept[tc.ID] {
				kept[tc.ID] = true
				calls = append(calls, tc)
			}
		}

		if len(calls) > 0 || msg.Content != "" {
			out = append(out, core.AssistantToolCallMessage(msg.Content, calls))
		}

		emitted := make(map[string]bool, len(kept))
		for _, r := range results {
			if kept[r.ToolCallID] && !emitted[r.ToolCallID] {
				emitted[r.ToolCallID] = true
				out = append(out, r.Clone())
			}
		}

		i = end - 1
	}

	return out
}

// FlattenToolCalls rewrites tool traffic as plain text for requests that
// carry no tool definitions. Assistant tool calls are appended to the
// assistant content and tool results become user messages.
func FlattenToolCalls(msgs []core.Message) []core.Message {
	out := make([]core.Message, 0, len(msgs))
	for _, msg := range msgs {
		switch {
		case msg.Role == core.RoleTool:
			out = append(out, core.UserMessage(fmt.Sprintf("Tool %s returned: %s", msg.Name, msg.Content)))
		case msg.Role == core.RoleAssistant && len(msg.ToolCalls) > 0:
			lines := make([]string, 0, len(msg.ToolCalls)+1)
			if msg.Content != "" {
				lines = append(lines, msg.Content)
			}
			for _, tc := range msg.ToolCalls {
				lines = append(lines, fmt.Sprintf("Called tool %s with arguments %s", tc.Function.Name, tc.Function.Arguments))
			}
			out = append(out, core.AssistantMessage(strings.Join(lines, "\n")))
		default:
			out = append(out, msg.Clone())
		}
	}
	return out
}
