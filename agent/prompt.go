package agent

import (
	"github.com/hupe1980/agentloop/internal/util"
	"github.com/hupe1980/agentloop/tool"
)

// Fixed texts written into memory by the loop.
const (
	StuckNudge = "I notice you seem to be repeating the same approach. " +
		"Consider trying a different strategy to make progress."
	NoActionNotice      = "Thinking complete - no action needed"
	NoToolsNotice       = "No tools to execute"
	AllStepsDoneNotice  = "All plan steps are now completed. Use the terminate tool to finish the task."
	BudgetTrailerFormat = "Terminated: Reached max steps (%d)"
)

const reasoningPrompt = `You are a problem-solving agent that uses a Reasoning and Acting approach. For each step:
1. Think about the current state of the problem
2. Reason about what to do next
3. Decide on an action to take
4. Report the outcome

Maintain clear thinking and explain your reasoning for each step.`

const toolCallPrompt = `You are a problem-solving agent with access to tools. For each step:
1. Think about the current state of the problem
2. Decide which tool(s) to use
3. Call the appropriate tool with the required parameters
4. Observe the results and plan your next step

Available tools:
{{.tools}}

Use the terminate tool when you've completed the task.`

const planningPrompt = `You are a problem-solving agent that creates and follows plans. Your process:
1. Understand the task and create a detailed step-by-step plan
2. Execute each step in the plan systematically
3. Update the plan as needed based on new information
4. Use available tools to complete each step

Available tools:
{{.tools}}

Use the terminate tool when you've completed all steps in your plan.`

const planRequestPrompt = `Create a detailed step-by-step plan to accomplish this task: "{{.request}}"

Your plan should:
1. Break down the task into logical steps
2. Be specific about what tools to use for each step
3. Include any necessary information gathering steps
4. End with a verification step to ensure the task is complete

Respond with a JSON object in this format:
{
  "title": "Short descriptive title for the plan",
  "description": "Brief overview of what the plan will accomplish",
  "steps": [
    {
      "id": 1,
      "description": "First step description",
      "status": "pending"
    },
    ...more steps...
  ]
}`

// DefaultReasoningPrompt is the system prompt of reasoning-only agents.
func DefaultReasoningPrompt() string { return reasoningPrompt }

// DefaultToolCallPrompt renders the tool-calling system prompt for registry.
func DefaultToolCallPrompt(registry *tool.Registry) string {
	return util.MustRenderTemplate(toolCallPrompt, map[string]any{"tools": registry.Describe()})
}

// DefaultPlanningPrompt renders the planning system prompt for registry.
func DefaultPlanningPrompt(registry *tool.Registry) string {
	return util.MustRenderTemplate(planningPrompt, map[string]any{"tools": registry.Describe()})
}

// PlanRequestPrompt renders the instruction asking the model for a plan.
func PlanRequestPrompt(request string) string {
	return util.MustRenderTemplate(planRequestPrompt, map[string]any{"request": request})
}
