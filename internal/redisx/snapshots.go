package redisx

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ariefcatur/go-sample-storefront/internal/cart"
)

// CartSnapshots stores cart lines as JSON under KeyCartSnapshot.
type CartSnapshots struct {
	rdb Cmdable
	ttl time.Duration
}

func NewCartSnapshots(rdb Cmdable, ttl time.Duration) *CartSnapshots {
	return &CartSnapshots{rdb: rdb, ttl: ttl}
}

func (c *CartSnapshots) Load(ctx context.Context, sessionID string) ([]cart.Line, bool, error) {
	raw, ok, err := GetString(ctx, c.rdb, fmt.Sprintf(KeyCartSnapshot, sessionID))
	if err != nil || !ok {
		return nil, false, err
	}
	var lines []cart.Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, false, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return lines, true, nil
}

// Save writes the lines; an empty cart deletes the key.
func (c *CartSnapshots) Save(ctx context.Context, sessionID string, lines []cart.Line) error {
	key := fmt.Sprintf(KeyCartSnapshot, sessionID)
	if len(lines) == 0 {
		return c.rdb.Del(ctx, key).Err()
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}

func (c *CartSnapshots) Delete(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, fmt.Sprintf(KeyCartSnapshot, sessionID)).Err()
}
