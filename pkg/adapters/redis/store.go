package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/ports"
)

var _ ports.FlowStore = (*Store)(nil)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "agentflow:"

// noExpiry is the index score of flows saved without a TTL (2100-01-01).
const noExpiry = 4102444800

// Store implements ports.FlowStore using Redis. Each flow is a JSON string;
// a sorted set indexes ids by expiry so List never scans the keyspace.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the expiration for flows. Zero means no expiration.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithClock overrides the clock used to score the index.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(id string) string {
	return s.prefix + "flow:" + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the flow and refreshes its index entry in one pipeline.
func (s *Store) Save(ctx context.Context, flow *domain.Flow) error {
	if flow == nil || flow.ID == "" {
		return fmt.Errorf("flow id cannot be empty")
	}
	data, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("failed to marshal flow: %w", err)
	}

	score := float64(noExpiry)
	if s.ttl > 0 {
		score = float64(s.now().Add(s.ttl).Unix())
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(flow.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: flow.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves a flow.
func (s *Store) Load(ctx context.Context, id string) (*domain.Flow, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %q", domain.ErrFlowNotFound, id)
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return domain.DecodeFlow(val)
}

// Delete removes the flow and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// List returns the ids of unexpired flows, pruning expired index entries first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := fmt.Sprintf("%d", s.now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", "("+now).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired flows: %w", err)
	}
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}
	return ids, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
