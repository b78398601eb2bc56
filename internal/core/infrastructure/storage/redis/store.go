// Package redis implements the key/value store on Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/log"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/storage"
)

const pingTimeout = 5 * time.Second

// Store keeps values under keyPrefix+key
type Store struct {
	client    goredis.UniversalClient
	keyPrefix string
	logger    log.Logger
}

var _ storage.Store = (*Store)(nil)

// New connects to the redis URL and checks the connection
func New(ctx context.Context, url, keyPrefix string, logger log.Logger) (*Store, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	client := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}
	if logger != nil {
		logger.Infof("redis store at %s, prefix %q", opts.Addr, keyPrefix)
	}
	return NewWithClient(client, keyPrefix, logger), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client goredis.UniversalClient, keyPrefix string, logger log.Logger) *Store {
	return &Store{client: client, keyPrefix: keyPrefix, logger: logger}
}

func (s *Store) key(key string) string {
	return s.keyPrefix + key
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis: delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
