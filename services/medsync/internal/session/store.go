package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session not found")

// Store persists session values. Implementations must make Save and Load
// atomic per key; no other locking is done on top.
type Store interface {
	Load(ctx context.Context, id string) (map[string]string, error)
	Save(ctx context.Context, id string, values map[string]string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	// Track records id as belonging to userID so DeleteByUser can find it.
	Track(ctx context.Context, userID, id string, ttl time.Duration) error
	// DeleteByUser removes every tracked session of userID.
	DeleteByUser(ctx context.Context, userID string) (int, error)
}

const (
	redisSessionPrefix = "medsync:session:"
	redisUserPrefix    = "medsync:user_sessions:"
)

// RedisStore keeps each session as a hash with a TTL, plus one set per
// user listing that user's session IDs.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Load(ctx context.Context, id string) (map[string]string, error) {
	values, err := r.client.HGetAll(ctx, redisSessionPrefix+id).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(values) == 0 {
		return nil, ErrNotFound
	}
	return values, nil
}

func (r *RedisStore) Save(ctx context.Context, id string, values map[string]string, ttl time.Duration) error {
	key := redisSessionPrefix + id
	fields := make(map[string]interface{}, len(values))
	for k, v := range values {
		fields[k] = v
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisSessionPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *RedisStore) Track(ctx context.Context, userID, id string, ttl time.Duration) error {
	key := redisUserPrefix + userID
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, key, id)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("track session: %w", err)
	}
	return nil
}

func (r *RedisStore) DeleteByUser(ctx context.Context, userID string) (int, error) {
	key := redisUserPrefix + userID
	ids, err := r.client.SMembers(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("list user sessions: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, redisSessionPrefix+id)
	}
	keys = append(keys, key)

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}
	return len(ids), nil
}

// MemoryStore is an in-process Store for tests and single-node development.
type MemoryStore struct {
	mu    sync.Mutex
	now   func() time.Time
	items map[string]memoryItem
	users map[string]map[string]struct{}
}

type memoryItem struct {
	values  map[string]string
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:   time.Now,
		items: map[string]memoryItem{},
		users: map[string]map[string]struct{}{},
	}
}

// WithClock replaces the clock used for expiry.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func (m *MemoryStore) Load(_ context.Context, id string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !item.expires.IsZero() && !m.now().Before(item.expires) {
		delete(m.items, id)
		return nil, ErrNotFound
	}
	return copyValues(item.values), nil
}

func (m *MemoryStore) Save(_ context.Context, id string, values map[string]string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := memoryItem{values: copyValues(values)}
	if ttl > 0 {
		item.expires = m.now().Add(ttl)
	}
	m.items[id] = item
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, id)
	return nil
}

func (m *MemoryStore) Track(_ context.Context, userID, id string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.users[userID]
	if !ok {
		set = map[string]struct{}{}
		m.users[userID] = set
	}
	set[id] = struct{}{}
	return nil
}

func (m *MemoryStore) DeleteByUser(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set := m.users[userID]
	for id := range set {
		delete(m.items, id)
	}
	delete(m.users, userID)
	return len(set), nil
}

// Len reports how many sessions are stored.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func copyValues(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
