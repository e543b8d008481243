package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-khana-orders/internal/orders"
)

// Orders is the order read cache and the idempotency index. Failures are
// logged and reported as misses; the store stays the source of truth.
type Orders struct {
	rdb *redis.Client
}

func NewOrders(rdb *redis.Client) *Orders { return &Orders{rdb: rdb} }

func (c *Orders) GetOrder(ctx context.Context, id string) (*orders.Order, bool) {
	b, err := c.rdb.Get(ctx, fmt.Sprintf(KeyOrder, id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("redis: get order %s: %v", id, err)
		}
		return nil, false
	}
	var o orders.Order
	if err := json.Unmarshal(b, &o); err != nil {
		log.Printf("redis: decode order %s: %v", id, err)
		return nil, false
	}
	return &o, true
}

func (c *Orders) PutOrder(ctx context.Context, o *orders.Order) {
	b, err := json.Marshal(o)
	if err != nil {
		log.Printf("redis: encode order %s: %v", o.ID, err)
		return
	}
	if err := c.rdb.Set(ctx, fmt.Sprintf(KeyOrder, o.ID), b, TTLOrderCache).Err(); err != nil {
		log.Printf("redis: put order %s: %v", o.ID, err)
	}
}

func (c *Orders) Lookup(ctx context.Context, key string) (string, bool) {
	id, err := c.rdb.Get(ctx, fmt.Sprintf(KeyIdemOrderCreate, key)).Result()
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}

func (c *Orders) Remember(ctx context.Context, key, orderID string) {
	if err := c.rdb.Set(ctx, fmt.Sprintf(KeyIdemOrderCreate, key), orderID, TTLIdempotency).Err(); err != nil {
		log.Printf("redis: remember idempotency key: %v", err)
	}
}
