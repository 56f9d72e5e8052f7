package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"motionfm/model"

	"github.com/go-redis/redis/v8"
)

const (
	historyKey   = "motionfm:history"
	playCountKey = "motionfm:plays"
	lastPlayKey  = "motionfm:last"

	// DefaultHistoryLimit caps the recent-plays list.
	DefaultHistoryLimit = 100
)

// HistoryCache keeps a short play log and per-track counters in Redis.
type HistoryCache struct {
	client *redis.Client
	limit  int64
}

// NewHistoryCache uses client, or the global client when nil.
func NewHistoryCache(client *redis.Client) *HistoryCache {
	if client == nil {
		client = RedisClient
	}
	return &HistoryCache{client: client, limit: DefaultHistoryLimit}
}

// RecordPlay pushes the play to the history list, bumps the track's
// counter and replaces the "last play" entry, in one transaction.
func (h *HistoryCache) RecordPlay(ctx context.Context, play *model.Play) error {
	if h.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	data, err := json.Marshal(play)
	if err != nil {
		return fmt.Errorf("failed to marshal play: %w", err)
	}

	_, err = h.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, historyKey, data)
		pipe.LTrim(ctx, historyKey, 0, h.limit-1)
		pipe.HIncrBy(ctx, playCountKey, play.Path, 1)
		pipe.Set(ctx, lastPlayKey, data, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record play in Redis: %w", err)
	}
	return nil
}

// Recent returns up to n plays, newest first.
func (h *HistoryCache) Recent(ctx context.Context, n int64) ([]model.Play, error) {
	if h.client == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	items, err := h.client.LRange(ctx, historyKey, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read play history: %w", err)
	}

	plays := make([]model.Play, 0, len(items))
	for _, item := range items {
		var p model.Play
		if err := json.Unmarshal([]byte(item), &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal play: %w", err)
		}
		plays = append(plays, p)
	}
	return plays, nil
}

// PlayCount returns how often path was played.
func (h *HistoryCache) PlayCount(ctx context.Context, path string) (int64, error) {
	if h.client == nil {
		return 0, fmt.Errorf("Redis client not initialized")
	}

	n, err := h.client.HGet(ctx, playCountKey, path).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read play count: %w", err)
	}
	return n, nil
}
