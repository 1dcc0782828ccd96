package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questboard/internal/domain"
	"questboard/internal/quest"
)

func TestAward_CrossesOneThreshold(t *testing.T) {
	f := newFixture(t)

	res := f.award(t, "u-alice", quest.TypePRMerged, 14)

	assert.Equal(t, int64(14), res.TotalXP)
	assert.Equal(t, 2, res.Level)
	require.Len(t, res.LevelUps, 1)
	assert.Equal(t, 2, res.LevelUps[0].Level)
	assert.Equal(t, int64(14), res.LevelUps[0].XP)
	assert.False(t, res.LevelUps[0].Claimed)
	assert.NotEmpty(t, res.Quest.ID)

	u := f.user(t, "u-alice")
	assert.Equal(t, int64(14), u.TotalXP)
	assert.Equal(t, int64(14), u.MonthlyXP)
	assert.Equal(t, 1, u.QuestCount)
	assert.Equal(t, 2, u.Level)
	assert.Equal(t, int64(0), u.Coins, "coins wait for the claim")
}

func TestAward_CrossesSeveralThresholds(t *testing.T) {
	f := newFixture(t)

	res := f.award(t, "u-alice", quest.TypePRMerged, 30)

	assert.Equal(t, 3, res.Level)
	require.Len(t, res.LevelUps, 2)
	assert.Equal(t, 2, res.LevelUps[0].Level)
	assert.Equal(t, 3, res.LevelUps[1].Level)

	// оба повышения забираются независимо
	for _, lu := range res.LevelUps {
		_, err := f.rewards.Claim(context.Background(), "u-alice", lu.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(150), f.user(t, "u-alice").Coins)
}

func TestAward_NoThresholdNoLevelUp(t *testing.T) {
	f := newFixture(t)

	res := f.award(t, "u-alice", quest.TypeCommit, 3)
	assert.Equal(t, 1, res.Level)
	assert.Empty(t, res.LevelUps)

	res = f.award(t, "u-alice", quest.TypeCommit, 0)
	assert.Equal(t, int64(3), res.TotalXP)
	assert.Equal(t, 2, f.user(t, "u-alice").QuestCount, "zero xp still records the quest")
}

func TestAward_WritesAuditTrail(t *testing.T) {
	f := newFixture(t)

	f.award(t, "u-alice", quest.TypePRMerged, 14)

	actions := map[string]int{}
	for _, l := range f.repo.AuditLogs() {
		actions[l.Action]++
	}
	assert.Equal(t, 1, actions[domain.AuditActionQuestAwarded])
	assert.Equal(t, 1, actions[domain.AuditActionLevelUp])
}

func TestAward_UnknownUserRollsBack(t *testing.T) {
	f := newFixture(t)

	_, err := f.quests.Award(context.Background(), &domain.NormalizedEvent{
		UserID: "ghost", Source: domain.SourceGithub, QuestType: quest.TypeCommit, XP: 1,
	})
	require.ErrorIs(t, err, ErrUserNotFound)
	assert.False(t, IsRetryable(err))

	list, err := f.quests.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, f.repo.AuditLogs())
}

func TestAward_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.quests.Award(context.Background(), &domain.NormalizedEvent{UserID: "u-alice", XP: -1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.quests.Award(context.Background(), &domain.NormalizedEvent{XP: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAward_ConcurrentAwardsSum(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.quests.Award(context.Background(), &domain.NormalizedEvent{
				UserID: "u-alice", Source: domain.SourceGithub, QuestType: quest.TypeCommit, XP: 2,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	u := f.user(t, "u-alice")
	assert.Equal(t, int64(40), u.TotalXP)
	assert.Equal(t, 20, u.QuestCount)
	assert.Equal(t, 3, u.Level)

	status, err := f.leveling.GetLevelingStatus(context.Background(), "u-alice")
	require.NoError(t, err)
	assert.Len(t, status.UnclaimedLevelUps, 2, "each threshold recorded once")
}

func TestSubmitManual(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.quests.SubmitManual(ctx, "u-carol", "pr_opened", "bug", "fixed login")
	require.NoError(t, err)
	assert.Equal(t, int64(10), res.Quest.XP)
	assert.Equal(t, domain.SourceManual, res.Quest.Source)
	assert.Equal(t, "fixed login #bug", res.Quest.Description)
	assert.Equal(t, 2, res.Level)

	_, err = f.quests.SubmitManual(ctx, "u-carol", "issue_comment", "", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.quests.SubmitManual(ctx, "ghost", "commit", "", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListQuests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.award(t, "u-alice", quest.TypeCommit, 1)
	f.award(t, "u-bob", quest.TypePRReview, 3)
	f.award(t, "u-alice", quest.TypeIssue, 3)

	recent, err := f.quests.ListRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, quest.TypeIssue, recent[0].Type)

	mine, err := f.quests.ListForUser(ctx, "u-alice", 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, quest.TypeIssue, mine[0].Type)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, defaultListLimit, clampLimit(0))
	assert.Equal(t, defaultListLimit, clampLimit(-5))
	assert.Equal(t, 25, clampLimit(25))
	assert.Equal(t, maxListLimit, clampLimit(1000))
}
