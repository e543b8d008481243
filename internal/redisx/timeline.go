package redisx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Timeline keeps per-order event history and the consumer dedup markers.
type Timeline struct {
	rdb *redis.Client
}

func NewTimeline(rdb *redis.Client) *Timeline { return &Timeline{rdb: rdb} }

// MarkSeen records eventID for service and reports whether it was new.
func (t *Timeline) MarkSeen(ctx context.Context, service, eventID string) (bool, error) {
	return t.rdb.SetNX(ctx, fmt.Sprintf(KeyDedup, service, eventID), "1", TTLDedup).Result()
}

// Forget drops a dedup marker so a failed event can be retried.
func (t *Timeline) Forget(ctx context.Context, service, eventID string) error {
	return t.rdb.Del(ctx, fmt.Sprintf(KeyDedup, service, eventID)).Err()
}

func (t *Timeline) Append(ctx context.Context, orderID string, entry any) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode timeline entry: %w", err)
	}
	key := fmt.Sprintf(KeyOrderTimeline, orderID)
	pipe := t.rdb.TxPipeline()
	pipe.RPush(ctx, key, b)
	pipe.Expire(ctx, key, TTLTimeline)
	_, err = pipe.Exec(ctx)
	return err
}

func (t *Timeline) List(ctx context.Context, orderID string) ([]json.RawMessage, error) {
	vals, err := t.rdb.LRange(ctx, fmt.Sprintf(KeyOrderTimeline, orderID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, 0, len(vals))
	for _, v := range vals {
		out = append(out, json.RawMessage(v))
	}
	return out, nil
}
