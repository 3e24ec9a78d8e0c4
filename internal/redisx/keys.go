package redisx

import "time"

const (
	// cart:{session_id} -> JSON array of cart lines
	KeyCartSnapshot = "cart:%s"

	// idem:checkout:{idempotency_key} -> order_id
	KeyIdemCheckout = "idem:checkout:%s"

	// dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// catalog:products -> JSON array of products
	KeyCatalog = "catalog:products"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)
