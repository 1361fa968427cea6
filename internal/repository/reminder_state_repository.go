package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
)

const reminderStateKey = "cellbroadcast:reminder:state"

// ReminderStateRepository keeps the single outstanding reminder in redis as JSON.
// Without a redis client it falls back to process memory.
type ReminderStateRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger

	mu     sync.Mutex
	memory *models.ReminderState
}

// NewReminderStateRepository constructs the store. A nil client keeps state in memory.
func NewReminderStateRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ReminderStateRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ReminderStateRepository{client: client, ttl: ttl, logger: logger}
}

// Load returns the persisted state or appErrors.ErrCacheMiss when none exists.
func (r *ReminderStateRepository) Load(ctx context.Context) (*models.ReminderState, error) {
	if r.client == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.memory == nil {
			return nil, appErrors.ErrCacheMiss
		}
		state := *r.memory
		return &state, nil
	}

	raw, err := r.client.Get(ctx, reminderStateKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", reminderStateKey, err)
	}

	var state models.ReminderState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("unmarshal reminder state: %w", err)
	}
	return &state, nil
}

// Save replaces the persisted state.
func (r *ReminderStateRepository) Save(ctx context.Context, state models.ReminderState) error {
	if r.client == nil {
		r.mu.Lock()
		r.memory = &state
		r.mu.Unlock()
		return nil
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal reminder state: %w", err)
	}
	if err := r.client.Set(ctx, reminderStateKey, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", reminderStateKey, err)
	}
	return nil
}

// Clear removes any persisted state.
func (r *ReminderStateRepository) Clear(ctx context.Context) error {
	if r.client == nil {
		r.mu.Lock()
		r.memory = nil
		r.mu.Unlock()
		return nil
	}
	if err := r.client.Del(ctx, reminderStateKey).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", reminderStateKey, err)
	}
	return nil
}
