package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"khidma/backend/internal/domain"
)

const DefaultTTL = 30 * time.Second

// SlotCache stores computed slot lists under availability:{provider}:{date}
// with a short TTL. It is strictly best-effort: a stale entry is bounded by
// the TTL and callers re-validate before submitting a booking anyway.
type SlotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *SlotCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SlotCache{rdb: rdb, ttl: ttl}
}

func (c *SlotCache) Get(ctx context.Context, providerID uuid.UUID, date domain.CalendarDate) ([]domain.Slot, bool, error) {
	payload, err := c.rdb.Get(ctx, slotKey(providerID, date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var slots []domain.Slot
	if err := json.Unmarshal(payload, &slots); err != nil {
		// Corrupt entry: drop it and report a miss.
		_ = c.rdb.Del(ctx, slotKey(providerID, date)).Err()
		return nil, false, err
	}
	return slots, true, nil
}

func (c *SlotCache) Set(ctx context.Context, providerID uuid.UUID, date domain.CalendarDate, slots []domain.Slot) error {
	payload, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, slotKey(providerID, date), payload, c.ttl).Err()
}

// InvalidateProvider removes every cached date for the provider, used after
// schedule writes so stale hours never outlive a management change.
func (c *SlotCache) InvalidateProvider(ctx context.Context, providerID uuid.UUID) error {
	pattern := fmt.Sprintf("availability:%s:*", providerID)
	iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func slotKey(providerID uuid.UUID, date domain.CalendarDate) string {
	return fmt.Sprintf("availability:%s:%s", providerID, date)
}
