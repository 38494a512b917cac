// Package sqlite persists conversations in SQLite through gorm, using the
// pure Go glebarez driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/hupe1980/agentloop/core"
)

// Config configures the SQLite store.
type Config struct {
	Path        string        `mapstructure:"path"`
	InMemory    bool          `mapstructure:"in_memory"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
	// Logger overrides the gorm logger; by default gorm is silent.
	Logger logger.Interface `mapstructure:"-"`
}

// Store is a core.ConversationStore backed by SQLite.
type Store struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

var _ core.ConversationStore = (*Store)(nil)

// Open connects to the database described by cfg and migrates the schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn, err := dsnFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if cfg.Logger != nil {
		gormCfg.Logger = cfg.Logger
	}

	db, err := gorm.Open(gormsqlite.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	s := &Store{db: db, sqlDB: sqlDB}

	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	if err := s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return errors.New("store not initialized")
	}
	return s.sqlDB.PingContext(ctx)
}

// Migrate creates or updates the messages and plans tables.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("store not initialized")
	}
	if err := s.db.WithContext(ctx).AutoMigrate(&messageRecord{}, &planRecord{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Messages implements core.ConversationStore.
func (s *Store) Messages(ctx context.Context, conversationID string) ([]core.Message, error) {
	var rows []messageRecord
	if err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}

	out := make([]core.Message, 0, len(rows))
	for _, r := range rows {
		m := core.Message{
			Role:       core.Role(r.Role),
			Content:    r.Content,
			ToolCallID: r.ToolCallID,
			Name:       r.Name,
		}
		if r.ToolCalls != "" {
			if err := json.Unmarshal([]byte(r.ToolCalls), &m.ToolCalls); err != nil {
				return nil, fmt.Errorf("decode tool calls of message %d: %w", r.ID, err)
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// Append implements core.ConversationStore. All messages are written in one
// transaction.
func (s *Store) Append(ctx context.Context, conversationID string, msgs ...core.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	rows := make([]messageRecord, 0, len(msgs))
	for _, m := range msgs {
		if err := m.Validate(); err != nil {
			return err
		}
		r := messageRecord{
			ConversationID: conversationID,
			Role:           string(m.Role),
			Content:        m.Content,
			ToolCallID:     m.ToolCallID,
			Name:           m.Name,
		}
		if len(m.ToolCalls) > 0 {
			b, err := json.Marshal(m.ToolCalls)
			if err != nil {
				return fmt.Errorf("encode tool calls: %w", err)
			}
			r.ToolCalls = string(b)
		}
		rows = append(rows, r)
	}

	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("insert messages: %w", err)
	}
	return nil
}

// SavePlan implements core.ConversationStore.
func (s *Store) SavePlan(ctx context.Context, conversationID string, plan core.StoredPlan) error {
	steps, err := json.Marshal(plan.Steps)
	if err != nil {
		return fmt.Errorf("encode plan steps: %w", err)
	}

	rec := planRecord{
		ID:               plan.ID,
		ConversationID:   conversationID,
		Title:            plan.Title,
		Description:      plan.Description,
		Steps:            string(steps),
		CurrentStepIndex: plan.CurrentStepIndex,
		CreatedAt:        plan.CreatedAt.UTC(),
		UpdatedAt:        plan.UpdatedAt.UTC(),
	}

	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"conversation_id", "title", "description", "steps", "current_step_index", "created_at", "updated_at",
			}),
		}).
		Create(&rec).Error; err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

// LatestPlan implements core.ConversationStore.
func (s *Store) LatestPlan(ctx context.Context, conversationID string) (core.StoredPlan, error) {
	var rec planRecord
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("updated_at DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.StoredPlan{}, core.ErrPlanNotFound
	}
	if err != nil {
		return core.StoredPlan{}, fmt.Errorf("query plan: %w", err)
	}

	plan := core.StoredPlan{
		ID:               rec.ID,
		Title:            rec.Title,
		Description:      rec.Description,
		CurrentStepIndex: rec.CurrentStepIndex,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(rec.Steps), &plan.Steps); err != nil {
		return core.StoredPlan{}, fmt.Errorf("decode plan steps: %w", err)
	}
	return plan, nil
}

func dsnFromConfig(cfg Config) (string, error) {
	timeoutMS := int(cfg.BusyTimeout / time.Millisecond)
	if timeoutMS <= 0 {
		timeoutMS = 5000
	}

	if cfg.InMemory {
		return fmt.Sprintf("file:agentloop?mode=memory&cache=shared&_busy_timeout=%d", timeoutMS), nil
	}

	if cfg.Path == "" {
		return "", errors.New("sqlite path is required when InMemory=false")
	}

	return fmt.Sprintf("file:%s?_busy_timeout=%d", cfg.Path, timeoutMS), nil
}
