package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"questboard/internal/domain"
	"questboard/internal/repository"

	lru "github.com/hashicorp/golang-lru"
)

// IdentityLookup находит внутреннего пользователя по логину GitHub
type IdentityLookup interface {
	FindByGithubUsername(ctx context.Context, login string) (*domain.User, error)
}

// StoreIdentity ищет пользователя в хранилище
type StoreIdentity struct {
	users repository.UserStore
}

func NewStoreIdentity(users repository.UserStore) *StoreIdentity {
	return &StoreIdentity{users: users}
}

func (s *StoreIdentity) FindByGithubUsername(ctx context.Context, login string) (*domain.User, error) {
	u, err := s.users.GetByGithubUsername(ctx, login)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, classify("find user by github username", err)
	}
	return u, nil
}

// в кэше только идентичность, счётчики опыта не кэшируются
type cachedIdentity struct {
	id        string
	username  string
	login     string
	timestamp time.Time
}

// CachedIdentity - LRU поверх другого IdentityLookup. Отрицательные
// ответы не кэшируются, чтобы привязка аккаунта действовала сразу
type CachedIdentity struct {
	next  IdentityLookup
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewCachedIdentity(next IdentityLookup, size int, ttl time.Duration) (*CachedIdentity, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &CachedIdentity{next: next, cache: cache, ttl: ttl, now: time.Now}, nil
}

func cacheKey(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}

func (c *CachedIdentity) FindByGithubUsername(ctx context.Context, login string) (*domain.User, error) {
	key := cacheKey(login)
	if cached, ok := c.cache.Get(key); ok {
		if e, ok := cached.(cachedIdentity); ok && c.now().Sub(e.timestamp) < c.ttl {
			return &domain.User{ID: e.id, Username: e.username, GithubUsername: e.login}, nil
		}
		c.cache.Remove(key)
	}

	u, err := c.next.FindByGithubUsername(ctx, login)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, cachedIdentity{id: u.ID, username: u.Username, login: u.GithubUsername, timestamp: c.now()})
	return u, nil
}

// Invalidate забывает логин после смены привязки
func (c *CachedIdentity) Invalidate(login string) {
	if login == "" {
		return
	}
	c.cache.Remove(cacheKey(login))
}
