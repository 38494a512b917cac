package session

import (
	"context"
	"sync"

	"github.com/hupe1980/agentloop/core"
)

var _ core.ConversationStore = (*InMemoryStore)(nil)

// InMemoryStore is a volatile ConversationStore keeping conversations in a
// process local map. It is safe for concurrent access. Returned messages and
// plans are copies, so callers cannot mutate internal state.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*conversation
}

type conversation struct {
	messages []core.Message
	plans    []core.StoredPlan
}

// NewInMemoryStore constructs an empty in-memory conversation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{conversations: make(map[string]*conversation)}
}

// Messages implements core.ConversationStore.
func (s *InMemoryStore) Messages(_ context.Context, conversationID string) ([]core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[conversationID]
	if !ok {
		return []core.Message{}, nil
	}
	return core.CloneMessages(conv.messages), nil
}

// Append implements core.ConversationStore.
func (s *InMemoryStore) Append(_ context.Context, conversationID string, msgs ...core.Message) error {
	for _, m := range msgs {
		if err := m.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	conv := s.getOrCreateLocked(conversationID)
	for _, m := range msgs {
		conv.messages = append(conv.messages, m.Clone())
	}
	return nil
}

// SavePlan implements core.ConversationStore.
func (s *InMemoryStore) SavePlan(_ context.Context, conversationID string, plan core.StoredPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv := s.getOrCreateLocked(conversationID)

	plan = clonePlan(plan)
	for i := range conv.plans {
		if conv.plans[i].ID == plan.ID {
			conv.plans[i] = plan
			return nil
		}
	}
	conv.plans = append(conv.plans, plan)
	return nil
}

// LatestPlan implements core.ConversationStore.
func (s *InMemoryStore) LatestPlan(_ context.Context, conversationID string) (core.StoredPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[conversationID]
	if !ok || len(conv.plans) == 0 {
		return core.StoredPlan{}, core.ErrPlanNotFound
	}

	latest := conv.plans[0]
	for _, p := range conv.plans[1:] {
		if !p.UpdatedAt.Before(latest.UpdatedAt) {
			latest = p
		}
	}
	return clonePlan(latest), nil
}

// getOrCreateLocked returns the conversation, allocating it on first use;
// caller must already hold the write lock.
func (s *InMemoryStore) getOrCreateLocked(conversationID string) *conversation {
	conv, ok := s.conversations[conversationID]
	if !ok {
		conv = &conversation{}
		s.conversations[conversationID] = conv
	}
	return conv
}

func clonePlan(p core.StoredPlan) core.StoredPlan {
	p.Steps = append([]core.StoredPlanStep(nil), p.Steps...)
	return p
}
