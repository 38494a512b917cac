package sqlite

import "time"

// messageRecord is one conversation entry. Rows of a conversation are ordered
// by their auto-increment ID.
type messageRecord struct {
	ID             uint64 `gorm:"primaryKey"`
	ConversationID string `gorm:"size:128;not null;index:idx_messages_conversation"`
	Role           string `gorm:"size:16;not null"`
	Content        string `gorm:"type:text"`
	// ToolCalls holds the JSON encoded tool calls of assistant messages.
	ToolCalls  string    `gorm:"type:text"`
	ToolCallID string    `gorm:"size:128"`
	Name       string    `gorm:"size:128"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime"`
}

func (messageRecord) TableName() string { return "messages" }

// planRecord is the latest snapshot of one plan.
type planRecord struct {
	ID             string `gorm:"primaryKey;size:64"`
	ConversationID string `gorm:"size:128;not null;index:idx_plans_conversation_updated,priority:1"`
	Title          string `gorm:"size:255"`
	Description    string `gorm:"type:text"`
	// Steps holds the JSON encoded step list.
	Steps            string    `gorm:"type:text"`
	CurrentStepIndex int       `gorm:"not null"`
	// Plan timestamps come from the caller; gorm must not stamp them.
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false;index:idx_plans_conversation_updated,priority:2"`
}

func (planRecord) TableName() string { return "plans" }
