package rtdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	docPrefix   = "doc:"
	indexPrefix = "idx:"
	eventsTopic = "events"
)

// RedisStore persists documents as JSON values keyed by path. A sorted set per
// branch keeps child keys in lexical order so RangeByKey is a ZRANGEBYLEX, and
// every mutation is published on a pub/sub channel to feed subscriptions.
type RedisStore struct {
	client    *redis.Client
	namespace string
	log       *zap.Logger
}

// RedisOption customizes the store.
type RedisOption func(*RedisStore)

// WithNamespace prefixes every key the store touches.
func WithNamespace(ns string) RedisOption {
	return func(s *RedisStore) {
		if ns != "" {
			s.namespace = strings.TrimRight(ns, ":") + ":"
		}
	}
}

// WithLogger attaches a zap logger.
func WithLogger(log *zap.Logger) RedisOption {
	return func(s *RedisStore) {
		if log != nil {
			s.log = log
		}
	}
}

// NewRedisStore connects to the given redis URL and verifies the connection.
func NewRedisStore(url string, opts ...RedisOption) (*RedisStore, error) {
	parsed, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("rtdb: parse redis url: %w", err)
	}
	client := redis.NewClient(parsed)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("rtdb: connect to redis: %w", err)
	}
	return NewRedisStoreWithClient(client, opts...), nil
}

// NewRedisStoreWithClient wraps an existing client (tests use miniredis here).
func NewRedisStoreWithClient(client *redis.Client, opts ...RedisOption) *RedisStore {
	store := &RedisStore{
		client:    client,
		namespace: "rtdb:",
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, path string) (Snapshot, error) {
	segments, err := splitPath(path)
	if err != nil {
		return Snapshot{}, err
	}
	value, err := s.valueAt(ctx, segments)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{value: value}, nil
}

// RangeByKey implements Store.
func (s *RedisStore) RangeByKey(ctx context.Context, path, startKey, endKey string) (Snapshot, error) {
	segments, err := splitPath(path)
	if err != nil {
		return Snapshot{}, err
	}
	normalized := joinPath(segments)
	keys, err := s.client.ZRangeByLex(ctx, s.indexKey(normalized), &redis.ZRangeBy{
		Min: "[" + startKey,
		Max: "[" + endKey,
	}).Result()
	if err != nil && err != redis.Nil {
		return Snapshot{}, fmt.Errorf("rtdb: range %s: %w", normalized, err)
	}
	if len(keys) == 0 {
		// The branch may have been written as a single document; filter its
		// children in memory instead.
		branch, err := s.valueAt(ctx, segments)
		if err != nil {
			return Snapshot{}, err
		}
		tree, ok := branch.(map[string]any)
		if !ok {
			return Snapshot{}, nil
		}
		matched := map[string]any{}
		for key, child := range tree {
			if key >= startKey && key <= endKey {
				matched[key] = child
			}
		}
		if len(matched) == 0 {
			return Snapshot{}, nil
		}
		return Snapshot{value: matched}, nil
	}
	matched := map[string]any{}
	for _, key := range keys {
		child, err := s.valueAt(ctx, append(append([]string{}, segments...), key))
		if err != nil {
			return Snapshot{}, err
		}
		if child != nil {
			matched[key] = child
		}
	}
	if len(matched) == 0 {
		return Snapshot{}, nil
	}
	return Snapshot{value: matched}, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, path string, value any) error {
	segments, err := splitPath(path)
	if err != nil {
		return err
	}
	normalized := joinPath(segments)
	if value == nil {
		return s.Remove(ctx, path)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("rtdb: encode %s: %w", normalized, err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.docKey(normalized), data, 0)
	for i := len(segments) - 1; i > 0; i-- {
		parent := joinPath(segments[:i])
		pipe.ZAdd(ctx, s.indexKey(parent), redis.Z{Score: 0, Member: segments[i]})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rtdb: set %s: %w", normalized, err)
	}
	s.publish(ctx, normalized)
	return nil
}

// Update implements Store.
func (s *RedisStore) Update(ctx context.Context, path string, fields map[string]any) error {
	segments, err := splitPath(path)
	if err != nil {
		return err
	}
	current, err := s.valueAt(ctx, segments)
	if err != nil {
		return err
	}
	doc, ok := current.(map[string]any)
	if !ok {
		doc = map[string]any{}
	}
	normalized, err := normalizeValue(fields)
	if err != nil {
		return err
	}
	merged, _ := normalized.(map[string]any)
	for key, value := range merged {
		doc[key] = value
	}
	return s.Set(ctx, path, doc)
}

// Remove implements Store.
func (s *RedisStore) Remove(ctx context.Context, path string) error {
	segments, err := splitPath(path)
	if err != nil {
		return err
	}
	normalized := joinPath(segments)
	if err := s.removeTree(ctx, normalized); err != nil {
		return err
	}
	if len(segments) > 1 {
		parent := joinPath(segments[:len(segments)-1])
		if err := s.client.ZRem(ctx, s.indexKey(parent), segments[len(segments)-1]).Err(); err != nil && err != redis.Nil {
			return fmt.Errorf("rtdb: remove %s: %w", normalized, err)
		}
	}
	s.publish(ctx, normalized)
	return nil
}

// Push implements Store.
func (s *RedisStore) Push(ctx context.Context, path string, value any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, strings.TrimRight(path, "/")+"/"+id, value); err != nil {
		return "", err
	}
	return id, nil
}

// Subscribe implements Store. Change events ride a single pub/sub channel; the
// handler refetches the subscribed subtree on every overlapping event.
func (s *RedisStore) Subscribe(ctx context.Context, path string, fn func(Snapshot)) (*Subscription, error) {
	segments, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	normalized := joinPath(segments)
	if ctx == nil {
		ctx = context.Background()
	}

	pubsub := s.client.Subscribe(ctx, s.namespace+eventsTopic)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("rtdb: subscribe %s: %w", normalized, err)
	}

	initial, err := s.Get(ctx, path)
	if err != nil {
		_ = pubsub.Close()
		return nil, err
	}
	fn(initial)

	done := make(chan struct{})
	go func() {
		defer pubsub.Close()
		events := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-events:
				if !ok {
					return
				}
				if !pathsOverlap(msg.Payload, normalized) {
					continue
				}
				snap, err := s.Get(ctx, path)
				if err != nil {
					s.log.Warn("rtdb: refetch after change failed",
						zap.String("path", normalized), zap.Error(err))
					continue
				}
				fn(snap)
			}
		}
	}()

	return &Subscription{cancel: func() {
		select {
		case <-done:
		default:
			close(done)
		}
	}}, nil
}

func (s *RedisStore) valueAt(ctx context.Context, segments []string) (any, error) {
	normalized := joinPath(segments)
	data, err := s.client.Get(ctx, s.docKey(normalized)).Bytes()
	if err == nil {
		var value any
		if err := json.Unmarshal(data, &value); err != nil {
			return nil, fmt.Errorf("rtdb: decode %s: %w", normalized, err)
		}
		return value, nil
	}
	if err != redis.Nil {
		return nil, fmt.Errorf("rtdb: get %s: %w", normalized, err)
	}

	children, err := s.client.ZRange(ctx, s.indexKey(normalized), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("rtdb: get children %s: %w", normalized, err)
	}
	if len(children) > 0 {
		branch := map[string]any{}
		for _, key := range children {
			child, err := s.valueAt(ctx, append(append([]string{}, segments...), key))
			if err != nil {
				return nil, err
			}
			if child != nil {
				branch[key] = child
			}
		}
		if len(branch) == 0 {
			return nil, nil
		}
		return branch, nil
	}

	// The value may live inside a document stored at an ancestor path.
	for i := len(segments) - 1; i > 0; i-- {
		data, err := s.client.Get(ctx, s.docKey(joinPath(segments[:i]))).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("rtdb: get %s: %w", normalized, err)
		}
		var value any
		if err := json.Unmarshal(data, &value); err != nil {
			return nil, fmt.Errorf("rtdb: decode %s: %w", normalized, err)
		}
		for _, seg := range segments[i:] {
			branch, ok := value.(map[string]any)
			if !ok {
				return nil, nil
			}
			value = branch[seg]
		}
		return value, nil
	}
	return nil, nil
}

func (s *RedisStore) removeTree(ctx context.Context, path string) error {
	children, err := s.client.ZRange(ctx, s.indexKey(path), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("rtdb: remove %s: %w", path, err)
	}
	for _, key := range children {
		if err := s.removeTree(ctx, path+"/"+key); err != nil {
			return err
		}
	}
	if err := s.client.Del(ctx, s.docKey(path), s.indexKey(path)).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("rtdb: remove %s: %w", path, err)
	}
	return nil
}

func (s *RedisStore) publish(ctx context.Context, path string) {
	if err := s.client.Publish(ctx, s.namespace+eventsTopic, path).Err(); err != nil {
		s.log.Warn("rtdb: publish change event failed", zap.String("path", path), zap.Error(err))
	}
}

func (s *RedisStore) docKey(path string) string {
	return s.namespace + docPrefix + path
}

func (s *RedisStore) indexKey(path string) string {
	return s.namespace + indexPrefix + path
}
