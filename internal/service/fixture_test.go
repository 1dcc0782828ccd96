package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"questboard/internal/domain"
	"questboard/internal/metrics"
	"questboard/internal/quest"
	"questboard/internal/repository/memory"
)

// таблица уровней из сценария: 1@0, 2@10 (+50), 3@25 (+100)
func scenarioLevels() []domain.Level {
	return []domain.Level{
		{Level: 1, XPRequired: 0, CoinReward: 0, Title: "Novice"},
		{Level: 2, XPRequired: 10, CoinReward: 50, Title: "Apprentice"},
		{Level: 3, XPRequired: 25, CoinReward: 100, Title: "Journeyman", SpecialReward: []byte(`{"type":"badge"}`)},
	}
}

type fixture struct {
	repo       *memory.Manager
	metrics    *metrics.Metrics
	normalizer *Normalizer
	quests     *QuestService
	leveling   *LevelingService
	rewards    *RewardService
	audit      *AuditService
}

func newFixture(t *testing.T, opts ...NormalizerOption) *fixture {
	t.Helper()
	repo := memory.New(scenarioLevels())
	m := metrics.Nop()

	ctx := context.Background()
	users := repo.Stores().Users()
	for _, u := range []struct{ id, name, gh string }{
		{"u-alice", "alice", "alice"},
		{"u-bob", "bob", "bob-reviews"},
		{"u-carol", "carol", ""},
	} {
		_, err := users.Ensure(ctx, u.id, u.name)
		require.NoError(t, err)
		if u.gh != "" {
			_, err = users.LinkGithub(ctx, u.id, u.gh)
			require.NoError(t, err)
		}
	}

	n := NewNormalizer(quest.DefaultTaxonomy(), NewStoreIdentity(users), opts...)
	return &fixture{
		repo:       repo,
		metrics:    m,
		normalizer: n,
		quests:     NewQuestService(repo, n, m),
		leveling:   NewLevelingService(repo),
		rewards:    NewRewardService(repo, m),
		audit:      NewAuditService(repo.Stores().Audit()),
	}
}

func (f *fixture) user(t *testing.T, id string) *domain.User {
	t.Helper()
	u, err := f.repo.Stores().Users().GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (f *fixture) award(t *testing.T, userID, questType string, xp int64) *domain.AwardResult {
	t.Helper()
	res, err := f.quests.Award(context.Background(), &domain.NormalizedEvent{
		UserID: userID, Username: userID, Source: domain.SourceManual, QuestType: questType, XP: xp,
	})
	require.NoError(t, err)
	return res
}
