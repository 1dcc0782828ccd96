package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questboard/internal/domain"
)

type countingLookup struct {
	calls int
	users map[string]*domain.User
}

func (c *countingLookup) FindByGithubUsername(_ context.Context, login string) (*domain.User, error) {
	c.calls++
	if u, ok := c.users[login]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func newCountingLookup() *countingLookup {
	return &countingLookup{users: map[string]*domain.User{
		"alice": {ID: "u-alice", Username: "alice", GithubUsername: "alice", TotalXP: 99},
	}}
}

func TestCachedIdentity_HitsAndTTL(t *testing.T) {
	next := newCountingLookup()
	c, err := NewCachedIdentity(next, 16, time.Minute)
	require.NoError(t, err)
	now := time.Now()
	c.now = func() time.Time { return now }

	ctx := context.Background()
	u, err := c.FindByGithubUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u-alice", u.ID)

	u, err = c.FindByGithubUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "u-alice", u.ID)
	assert.Equal(t, int64(0), u.TotalXP, "cache holds identity only")
	assert.Equal(t, 1, next.calls)

	now = now.Add(2 * time.Minute)
	_, err = c.FindByGithubUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedIdentity_MissNotCached(t *testing.T) {
	next := newCountingLookup()
	c, err := NewCachedIdentity(next, 16, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.FindByGithubUsername(ctx, "bob")
	assert.ErrorIs(t, err, ErrUserNotFound)

	next.users["bob"] = &domain.User{ID: "u-bob", GithubUsername: "bob"}
	u, err := c.FindByGithubUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "u-bob", u.ID)
}

func TestCachedIdentity_Invalidate(t *testing.T) {
	next := newCountingLookup()
	c, err := NewCachedIdentity(next, 16, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.FindByGithubUsername(ctx, "alice")
	require.NoError(t, err)

	delete(next.users, "alice")
	c.Invalidate("Alice")
	c.Invalidate("")

	_, err = c.FindByGithubUsername(ctx, "alice")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStoreIdentity(t *testing.T) {
	f := newFixture(t)
	id := NewStoreIdentity(f.repo.Stores().Users())

	u, err := id.FindByGithubUsername(context.Background(), "Bob-Reviews")
	require.NoError(t, err)
	assert.Equal(t, "u-bob", u.ID)

	_, err = id.FindByGithubUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
