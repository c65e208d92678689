package redisx

import "time"

const (
	// Checkout idempotency: idem:checkout:{caller}:{idempotency_key} -> order_id.
	// The caller segment keeps one client's retry key from replaying another
	// client's order.
	KeyIdemCheckout = "idem:checkout:%s:%s"

	// Order read-back cache: order:{order_id} -> full order JSON
	KeyOrderCache = "order:%s"

	// Event dedup on the notifier side: dedup:{consumer}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLOrderCache  = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
