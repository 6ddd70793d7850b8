package captcha

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const replayKeyPrefix = "captcha:used:"

// ReplayGuard remembers CAPTCHA responses already presented so one solved challenge
// cannot be reused across requests.
type ReplayGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReplayGuard builds a guard. Entries expire after ttl.
func NewReplayGuard(client *redis.Client, ttl time.Duration) *ReplayGuard {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &ReplayGuard{client: client, ttl: ttl}
}

// FirstUse records response and reports whether it had not been seen before.
func (g *ReplayGuard) FirstUse(ctx context.Context, response string) (bool, error) {
	sum := sha256.Sum256([]byte(response))
	key := replayKeyPrefix + hex.EncodeToString(sum[:])

	fresh, err := g.client.SetNX(ctx, key, 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("record captcha response: %w", err)
	}
	return fresh, nil
}
