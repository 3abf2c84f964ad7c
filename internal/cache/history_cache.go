package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"gopherchat/internal/model"
)

// HistoryCache keeps a short-lived copy of each user's session list in
// front of the hosted store. A dirty marker suppresses repopulation for a
// few seconds after a write so a stale read never sticks.
type HistoryCache struct {
	client         *redisv9.Client
	historyTTL     time.Duration
	dirtyMarkerTTL time.Duration
}

func NewHistoryCache(client *redisv9.Client, historyTTL, dirtyMarkerTTL time.Duration) *HistoryCache {
	if historyTTL <= 0 {
		historyTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &HistoryCache{
		client:         client,
		historyTTL:     historyTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *HistoryCache) GetHistory(ctx context.Context, userID string) ([]model.SessionSummary, bool, error) {
	raw, err := c.client.Get(ctx, c.historyKey(userID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get history failed: %w", err)
	}

	var history []model.SessionSummary
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached history failed: %w", err)
	}
	return history, true, nil
}

func (c *HistoryCache) SetHistory(ctx context.Context, userID string, history []model.SessionSummary) error {
	payload, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal history cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.historyKey(userID), payload, c.historyTTL).Err(); err != nil {
		return fmt.Errorf("redis set history failed: %w", err)
	}
	return nil
}

func (c *HistoryCache) DeleteHistory(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, c.historyKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete history failed: %w", err)
	}
	return nil
}

func (c *HistoryCache) MarkDirty(ctx context.Context, userID string) error {
	if err := c.client.Set(ctx, c.dirtyKey(userID), "1", c.dirtyMarkerTTL).Err(); err != nil {
		return fmt.Errorf("redis set dirty marker failed: %w", err)
	}
	return nil
}

func (c *HistoryCache) IsDirty(ctx context.Context, userID string) (bool, error) {
	exists, err := c.client.Exists(ctx, c.dirtyKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}

func (c *HistoryCache) historyKey(userID string) string {
	return fmt.Sprintf("chat:history:%s", userID)
}

func (c *HistoryCache) dirtyKey(userID string) string {
	return fmt.Sprintf("chat:history:dirty:%s", userID)
}
