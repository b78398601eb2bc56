package indexer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/allegro/bigcache/v3"
)

// pushCache remembers, in process memory, the last event pushed for each
// entity so that a job retried within the same process is not delivered twice
type pushCache struct {
	cache *bigcache.BigCache
}

func newPushCache(ctx context.Context, ttl time.Duration) (*pushCache, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 64
	cfg.CleanWindow = time.Minute
	cfg.HardMaxCacheSize = 64
	cfg.Verbose = false
	c, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create push cache: %w", err)
	}
	return &pushCache{cache: c}, nil
}

func eventMark(e PushEvent) []byte {
	return []byte(e.Name.String() + "|" + e.TxHash + "|" + strconv.FormatUint(e.TxIndex, 10))
}

// Seen reports whether payload repeats the last event pushed for its entity
func (p *pushCache) Seen(payload PushPayload) bool {
	v, err := p.cache.Get(payload.Data.Key())
	if err != nil {
		return false
	}
	return string(v) == string(eventMark(payload.Event))
}

// Remember records payload as the last event pushed for its entity
func (p *pushCache) Remember(payload PushPayload) error {
	return p.cache.Set(payload.Data.Key(), eventMark(payload.Event))
}

func (p *pushCache) Len() int { return p.cache.Len() }

func (p *pushCache) Close() error { return p.cache.Close() }
