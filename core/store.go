package core

import (
	"context"
	"time"
)

// StoredPlan is the persisted snapshot of an agent's plan. Steps are kept in
// their creation order.
type StoredPlan struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Steps            []StoredPlanStep `json:"steps"`
	CurrentStepIndex int              `json:"current_step_index"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// StoredPlanStep is one persisted plan step.
type StoredPlanStep struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Result      string `json:"result,omitempty"`
}

// ConversationStore persists conversation messages and plans. Short method
// names align with other *Store interfaces. Implementations must be safe for
// concurrent use across conversations.
type ConversationStore interface {
	// Messages returns the stored messages of a conversation in insertion order.
	// Unknown conversations yield an empty slice.
	Messages(ctx context.Context, conversationID string) ([]Message, error)
	// Append stores msgs after the existing messages.
	Append(ctx context.Context, conversationID string, msgs ...Message) error
	// SavePlan creates or replaces the plan with the same ID.
	SavePlan(ctx context.Context, conversationID string, plan StoredPlan) error
	// LatestPlan returns the most recently updated plan or ErrPlanNotFound.
	LatestPlan(ctx context.Context, conversationID string) (StoredPlan, error)
}
