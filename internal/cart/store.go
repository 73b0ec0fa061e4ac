package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "cart:"
	lockPrefix = "cart-lock:"
)

// ErrLocked is returned by Lock while another holder owns the key
var ErrLocked = errors.New("cart is locked")

// releaseScript deletes the lock only when it still carries the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

//go:generate mockgen -source=store.go -destination=../mocks/cart_mocks.go -package=mocks

// Store persists carts by key. Loading an unknown key yields an empty cart.
type Store interface {
	Load(ctx context.Context, key string) (*Cart, error)
	Save(ctx context.Context, key string, c *Cart) error
	Clear(ctx context.Context, key string) error
	// Lock claims key for at most ttl and returns the function that frees it.
	// It fails with ErrLocked while the key is held.
	Lock(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// RedisStore keeps carts as JSON values with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, key string) (*Cart, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return &c, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, c *Cart) error {
	if c.IsEmpty() {
		return s.Clear(ctx, key)
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return s.client.Set(ctx, keyPrefix+key, raw, s.ttl).Err()
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}

func (s *RedisStore) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lockKey := lockPrefix + key
	token := uuid.NewString()
	acquired, err := s.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("lock cart: %w", err)
	}
	if !acquired {
		return nil, ErrLocked
	}
	release := func() {
		_ = releaseScript.Run(context.WithoutCancel(ctx), s.client, []string{lockKey}, token).Err()
	}
	return release, nil
}

// MemoryStore is an in-process TTL store used when Redis is not configured.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memItem
	locks map[string]memLock
	seq   uint64
	now   func() time.Time
}

type memLock struct {
	token     uint64
	expiresAt time.Time
}

type memItem struct {
	cart      Cart
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory store
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, items: map[string]memItem{}, locks: map[string]memLock{}, now: time.Now}
}

func (m *MemoryStore) Load(ctx context.Context, key string) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanupLocked()
	item, ok := m.items[key]
	if !ok {
		return &Cart{}, nil
	}
	c := Cart{Items: append([]Item(nil), item.cart.Items...)}
	return &c, nil
}

func (m *MemoryStore) Save(ctx context.Context, key string, c *Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanupLocked()
	if c.IsEmpty() {
		delete(m.items, key)
		return nil
	}
	m.items[key] = memItem{
		cart:      Cart{Items: append([]Item(nil), c.Items...)},
		expiresAt: m.now().Add(m.ttl),
	}
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *MemoryStore) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if held, ok := m.locks[key]; ok && now.Before(held.expiresAt) {
		return nil, ErrLocked
	}
	m.seq++
	token := m.seq
	m.locks[key] = memLock{token: token, expiresAt: now.Add(ttl)}

	release := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if held, ok := m.locks[key]; ok && held.token == token {
			delete(m.locks, key)
		}
	}
	return release, nil
}

func (m *MemoryStore) cleanupLocked() {
	now := m.now()
	for k, v := range m.items {
		if now.After(v.expiresAt) {
			delete(m.items, k)
		}
	}
	for k, v := range m.locks {
		if now.After(v.expiresAt) {
			delete(m.locks, k)
		}
	}
}

// NewRedisClient parses a redis:// URL. An empty URL returns nil.
func NewRedisClient(url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// NewStore uses Redis when the client answers a ping and falls back to memory otherwise.
func NewStore(ctx context.Context, client *redis.Client, ttl time.Duration) Store {
	if client != nil {
		if err := client.Ping(ctx).Err(); err == nil {
			return NewRedisStore(client, ttl)
		}
	}
	return NewMemoryStore(ttl)
}
