package memory

import (
	"sync"

	"github.com/hupe1980/agentloop/core"
)

// DefaultCapacity is the message limit used when New receives a non-positive value.
const DefaultCapacity = 100

// Memory is a bounded, ordered message log with system-message retention.
//
// Concurrency: protected by RWMutex so callers may inspect the log while the
// owning agent is idle. The owning agent is the only writer during a run.
type Memory struct {
	mu       sync.RWMutex
	messages []core.Message
	capacity int
}

// New creates an empty memory holding at most capacity messages.
func New(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{capacity: capacity}
}

// NewFromMessages creates a memory replaying msgs through Add, so eviction
// applies exactly as if they had been appended one by one.
func NewFromMessages(capacity int, msgs []core.Message) *Memory {
	m := New(capacity)
	m.AddAll(msgs...)
	return m
}

// Add appends msg and evicts if the log exceeds its capacity.
func (m *Memory) Add(msg core.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg.Clone())
	if len(m.messages) > m.capacity {
		m.messages = evict(m.messages, m.capacity)
	}
}

// AddAll appends each message in order.
func (m *Memory) AddAll(msgs ...core.Message) {
	for _, msg := range msgs {
		m.Add(msg)
	}
}

// Clear drops every message.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}

// Recent returns up to the last n messages. It never mutates the log; n <= 0
// yields an empty slice and a short log yields everything it holds.
func (m *Memory) Recent(n int) []core.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n <= 0 {
		return []core.Message{}
	}
	if n > len(m.messages) {
		n = len(m.messages)
	}
	return core.CloneMessages(m.messages[len(m.messages)-n:])
}

// Messages returns a copy of the whole log.
func (m *Memory) Messages() []core.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return core.CloneMessages(m.messages)
}

// LastByRole returns up to the last n messages with the given role, oldest first.
func (m *Memory) LastByRole(role core.Role, n int) []core.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.Message, 0, n)
	for i := len(m.messages) - 1; i >= 0 && len(out) < n; i-- {
		if m.messages[i].Role == role {
			out = append(out, m.messages[i].Clone())
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Contains reports whether a message with the given role and content is present.
func (m *Memory) Contains(role core.Role, content string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, msg := range m.messages {
		if msg.Role == role && msg.Content == content {
			return true
		}
	}
	return false
}

// Len returns the number of stored messages.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}

// Capacity returns the configured message limit.
func (m *Memory) Capacity() int { return m.capacity }

// evict keeps all system messages followed by the newest non-system messages
// that fit in the remaining capacity.
func evict(msgs []core.Message, capacity int) []core.Message {
	var system, other []core.Message
	for _, msg := range msgs {
		if msg.Role == core.RoleSystem {
			system = append(system, msg)
		} else {
			other = append(other, msg)
		}
	}
	keep := capacity - len(system)
	if keep < 0 {
		keep = 0
	}
	if len(other) > keep {
		other = other[len(other)-keep:]
	}
	out := make([]core.Message, 0, len(system)+len(other))
	out = append(out, system...)
	return append(out, other...)
}
