package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questboard/internal/domain"
	"questboard/internal/repository"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	m := New([]domain.Level{
		{Level: 2, XPRequired: 10, CoinReward: 50},
		{Level: 1, XPRequired: 0},
	})
	_, err := m.Stores().Users().Ensure(context.Background(), "u1", "alice")
	require.NoError(t, err)
	return m
}

func TestWithTx_RollbackRestoresState(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := m.WithTx(ctx, func(ctx context.Context, s repository.Stores) error {
		if _, err := s.Users().IncrementStats(ctx, "u1", 10); err != nil {
			return err
		}
		if err := s.Quests().Append(ctx, &domain.Quest{UserID: "u1", Type: "commit", XP: 10}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	u, err := m.Stores().Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), u.TotalXP)

	qs, err := m.Stores().Quests().ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, qs)
}

func TestIncrementStats_Concurrent(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WithTx(ctx, func(ctx context.Context, s repository.Stores) error {
				_, err := s.Users().IncrementStats(ctx, "u1", 2)
				return err
			})
		}()
	}
	wg.Wait()

	u, err := m.Stores().Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), u.TotalXP)
	assert.Equal(t, 50, u.QuestCount)
}

func TestLevelUps_UniquePerLevelAndCAS(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	s := m.Stores().LevelUps()

	lu := &domain.LevelUp{UserID: "u1", Level: 2, XP: 12}
	created, err := s.Create(ctx, lu)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.Create(ctx, &domain.LevelUp{UserID: "u1", Level: 2, XP: 15})
	require.NoError(t, err)
	assert.False(t, created)

	_, err = s.GetUnclaimed(ctx, lu.ID, "someone-else")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	ok, err := s.MarkClaimed(ctx, lu.ID, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.MarkClaimed(ctx, lu.ID, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	list, err := s.ListUnclaimed(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUsers_GithubLookupAndLink(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	users := m.Stores().Users()

	_, err := users.Ensure(ctx, "u2", "bob")
	require.NoError(t, err)

	_, err = users.LinkGithub(ctx, "u1", "Alice-GH")
	require.NoError(t, err)

	u, err := users.GetByGithubUsername(ctx, "alice-gh")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = users.LinkGithub(ctx, "u2", "alice-gh")
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = users.GetByGithubUsername(ctx, "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLevels_SortedAscending(t *testing.T) {
	m := newManager(t)

	levels, err := m.Stores().Levels().All(context.Background())
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, 1, levels[0].Level)
}

func TestQuests_NewestFirst(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	q := m.Stores().Quests()

	for _, d := range []string{"first", "second", "third"} {
		require.NoError(t, q.Append(ctx, &domain.Quest{UserID: "u1", Type: "commit", XP: 1, Description: d}))
	}

	list, err := q.ListForUser(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "third", list[0].Description)
	assert.Equal(t, "second", list[1].Description)

	err = q.Append(ctx, &domain.Quest{UserID: "ghost", Type: "commit"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUsers_EnsureSharedUsername(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	u, err := m.Stores().Users().Ensure(ctx, "u2", "alice")
	require.NoError(t, err)
	assert.Equal(t, "u2", u.ID)

	first, err := m.Stores().Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", first.Username)
}

func TestAudit_ListForUser(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	a := m.Stores().Audit()

	uid, other := "u1", "u2"
	require.NoError(t, a.Create(ctx, &domain.AuditLog{UserID: &uid, Action: "quest_awarded"}))
	require.NoError(t, a.Create(ctx, &domain.AuditLog{Action: "webhook_ignored"}))
	require.NoError(t, a.Create(ctx, &domain.AuditLog{UserID: &other, Action: "quest_awarded"}))
	require.NoError(t, a.Create(ctx, &domain.AuditLog{UserID: &uid, Action: "level_up"}))

	logs, err := a.ListForUser(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "level_up", logs[0].Action)
	assert.Equal(t, "quest_awarded", logs[1].Action)

	logs, err = a.ListForUser(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}
