package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Store is the key-value backend. It may be lossy: callers must tolerate
// re-execution when a stored result disappears.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Cache deduplicates operations by key. A backend failure fails open:
// duplicate execution is preferable to refusing the operation.
type Cache struct {
	store   Store
	enabled bool
	log     *zap.Logger
}

func NewCache(store Store, enabled bool, log *zap.Logger) *Cache {
	return &Cache{
		store:   store,
		enabled: enabled,
		log:     log.Named("idempotency"),
	}
}

// DeriveKey builds a deterministic key from the operation name and its
// parameters. Callers that can supply an explicit key should prefer it.
func DeriveKey(op string, params ...string) string {
	sorted := make([]string, len(params))
	copy(sorted, params)
	sort.Strings(sorted)

	h := sha256.Sum256([]byte(op + "|" + strings.Join(sorted, "|")))
	return op + ":" + hex.EncodeToString(h[:])
}

// Check reports a previously stored result. Backend errors are logged and
// reported as a miss.
func (c *Cache) Check(ctx context.Context, key string, out any) (bool, error) {
	if !c.enabled || key == "" {
		return false, nil
	}
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn("check failed open", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		c.log.Warn("stored result unreadable", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	return true, nil
}

// Store saves a computed result. Failures are swallowed: losing an
// idempotency record only risks re-execution.
func (c *Cache) Store(ctx context.Context, key string, result any, ttl time.Duration) {
	if !c.enabled || key == "" {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		c.log.Warn("marshal result", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, string(raw), ttl); err != nil {
		c.log.Warn("store failed", zap.String("key", key), zap.Error(err))
	}
}

// ExecuteIdempotent returns the stored result for key when present and
// otherwise runs fn and stores its result.
func ExecuteIdempotent[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	if ok, _ := c.Check(ctx, key, &cached); ok {
		return cached, nil
	}
	res, err := fn(ctx)
	if err != nil {
		return res, err
	}
	c.Store(ctx, key, res, ttl)
	return res, nil
}
