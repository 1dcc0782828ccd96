package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DeliveryGuard помнит обработанные доставки в течение TTL
type DeliveryGuard interface {
	// Claim возвращает false, если ключ уже занят
	Claim(ctx context.Context, key string) (bool, error)
	// Release освобождает ключ, чтобы повтор отправителя мог пройти
	Release(ctx context.Context, key string) error
}

const deliveryPrefix = "webhook:delivery:"

type RedisDeliveryGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeliveryGuard(client *redis.Client, ttl time.Duration) *RedisDeliveryGuard {
	return &RedisDeliveryGuard{client: client, ttl: ttl}
}

func (g *RedisDeliveryGuard) Claim(ctx context.Context, key string) (bool, error) {
	return g.client.SetNX(ctx, deliveryPrefix+key, time.Now().Unix(), g.ttl).Result()
}

func (g *RedisDeliveryGuard) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, deliveryPrefix+key).Err()
}

// MemoryDeliveryGuard - вариант для одного процесса без Redis
type MemoryDeliveryGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

func NewMemoryDeliveryGuard(ttl time.Duration) *MemoryDeliveryGuard {
	return &MemoryDeliveryGuard{seen: make(map[string]time.Time), ttl: ttl, now: time.Now}
}

func (g *MemoryDeliveryGuard) Claim(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if exp, ok := g.seen[key]; ok && now.Before(exp) {
		return false, nil
	}
	g.seen[key] = now.Add(g.ttl)

	// чистим просроченные, чтобы карта не росла бесконечно
	if len(g.seen) > 10_000 {
		for k, exp := range g.seen {
			if !now.Before(exp) {
				delete(g.seen, k)
			}
		}
	}
	return true, nil
}

func (g *MemoryDeliveryGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, key)
	return nil
}
