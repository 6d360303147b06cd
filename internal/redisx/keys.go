package redisx

import "time"

const (
	// Order status cache: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Per-user notification feed (list, newest first): notify:user:{user_id}
	KeyUserFeed = "notify:user:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
	TTLFeed        = 7 * 24 * time.Hour
)

// FeedMax caps a user's notification feed length.
const FeedMax = 100
