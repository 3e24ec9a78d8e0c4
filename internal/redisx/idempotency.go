package redisx

import (
	"context"
	"fmt"
)

// Claims records first-seen ids with SetNX: checkout idempotency keys and consumed event ids.
type Claims struct {
	rdb Cmdable
}

func NewClaims(rdb Cmdable) *Claims { return &Claims{rdb: rdb} }

// ClaimCheckout stores orderID under the idempotency key unless one is already there.
// It returns the order id that owns the key and whether this call claimed it.
func (c *Claims) ClaimCheckout(ctx context.Context, idemKey, orderID string) (string, bool, error) {
	key := fmt.Sprintf(KeyIdemCheckout, idemKey)
	ok, err := c.rdb.SetNX(ctx, key, orderID, TTLIdempotency).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return orderID, true, nil
	}
	existing, found, err := GetString(ctx, c.rdb, key)
	if err != nil {
		return "", false, err
	}
	if !found {
		return "", false, fmt.Errorf("idempotency key %s vanished", idemKey)
	}
	return existing, false, nil
}

// ReleaseCheckout frees a key claimed by a submission that did not complete.
func (c *Claims) ReleaseCheckout(ctx context.Context, idemKey string) error {
	return c.rdb.Del(ctx, fmt.Sprintf(KeyIdemCheckout, idemKey)).Err()
}

// FirstSeen marks an event id as processed for the service. It returns false on redelivery.
func (c *Claims) FirstSeen(ctx context.Context, service, eventID string) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf(KeyDedup, service, eventID), "1", TTLDedup).Result()
}

// Forget undoes FirstSeen so a failed event can be retried.
func (c *Claims) Forget(ctx context.Context, service, eventID string) error {
	return c.rdb.Del(ctx, fmt.Sprintf(KeyDedup, service, eventID)).Err()
}
