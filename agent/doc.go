// Package agent implements the bounded agent control loop and its three
// specializations.
//
// An Agent owns a Memory, a tool Registry and a model. Run drives a state
// machine (IDLE -> RUNNING -> FINISHED) for at most MaxSteps iterations; each
// iteration runs a stuck check and then one step. A step is the composition of
// a Strategy's Think and Act phases:
//
//   - ReasoningStrategy asks the model for a thought and records it.
//   - ToolCallStrategy asks the model for tool calls and dispatches them
//     through the Registry in order.
//
// A Planner can be attached on top of ToolCallStrategy. It derives a Plan
// from the first request, steers every step towards the active plan step and
// records progress after it.
//
// An Agent is not safe for concurrent use; run one agent per conversation.
package agent
