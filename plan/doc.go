// Package plan models the ordered task decomposition followed by planning
// agents: parsing a model's structured answer into a Plan, the deterministic
// fallback plan, progress tracking and the text renderings fed back to the
// model.
//
// Everything here is pure and single-owner. A Plan belongs to exactly one
// agent and is mutated in place; callers that need a snapshot use Clone.
package plan
