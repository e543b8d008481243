package redisx

import "time"

const (
	// Cached order: order:{order_id} -> order JSON
	KeyOrder = "order:%s"

	// Idempotent create: idem:order:create:{key} -> order_id
	KeyIdemOrderCreate = "idem:order:create:%s"

	// Event dedup: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Order timeline: list order_timeline:{order_id}
	KeyOrderTimeline = "order_timeline:%s"
)

var (
	TTLOrderCache  = 5 * time.Minute
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
	TTLTimeline    = 30 * 24 * time.Hour
)
