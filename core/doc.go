// Package core provides the foundational domain types and contracts shared by
// every agentloop package:
//
//   - Messages (role-tagged conversation entries, tool calls and results)
//   - Agent lifecycle state and tool-choice policy
//   - The error taxonomy used by reasoning, dispatch and planning
//   - StepBudget, the per-run iteration cap
//   - ConversationStore, the persistence contract consumed by the runner
//
// Implementation concerns (providers, storage engines, concrete agents) live in
// their own packages so custom backends can be plugged in without dependency
// cycles.
package core
