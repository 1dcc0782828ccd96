package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questboard/internal/domain"
	"questboard/internal/quest"
)

func TestClaim_CreditsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lu := f.award(t, "u-alice", quest.TypePRMerged, 14).LevelUps[0]

	res, err := f.rewards.Claim(ctx, "u-alice", lu.ID)
	require.NoError(t, err)
	assert.Equal(t, lu.ID, res.LevelUpID)
	assert.Equal(t, 2, res.Level)
	assert.Equal(t, int64(50), res.CoinsAwarded)
	assert.Equal(t, int64(50), res.Coins)

	_, err = f.rewards.Claim(ctx, "u-alice", lu.ID)
	assert.ErrorIs(t, err, ErrAlreadyClaimedOrNotFound)
	assert.Equal(t, int64(50), f.user(t, "u-alice").Coins)
}

func TestClaim_ConcurrentDoubleClaim(t *testing.T) {
	f := newFixture(t)
	lu := f.award(t, "u-alice", quest.TypePRMerged, 14).LevelUps[0]

	var ok, conflict int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.rewards.Claim(context.Background(), "u-alice", lu.ID)
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case assert.ErrorIs(t, err, ErrAlreadyClaimedOrNotFound):
				atomic.AddInt32(&conflict, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), ok)
	assert.Equal(t, int32(1), conflict)
	assert.Equal(t, int64(50), f.user(t, "u-alice").Coins)
}

func TestClaim_OtherUsersLevelUp(t *testing.T) {
	f := newFixture(t)
	lu := f.award(t, "u-alice", quest.TypePRMerged, 14).LevelUps[0]

	_, err := f.rewards.Claim(context.Background(), "u-bob", lu.ID)
	assert.ErrorIs(t, err, ErrAlreadyClaimedOrNotFound)

	_, err = f.rewards.Claim(context.Background(), "u-alice", "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrAlreadyClaimedOrNotFound)
	assert.False(t, IsRetryable(err))
}

func TestClaim_SpecialRewardAndAudit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.award(t, "u-alice", quest.TypePRMerged, 25)
	require.Len(t, res.LevelUps, 2)

	claim, err := f.rewards.Claim(ctx, "u-alice", res.LevelUps[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 3, claim.Level)
	assert.JSONEq(t, `{"type":"badge"}`, string(claim.SpecialReward))

	var claimed int
	for _, l := range f.repo.AuditLogs() {
		if l.Action == domain.AuditActionLevelClaimed {
			claimed++
			assert.Equal(t, res.LevelUps[1].ID, l.Details["level_up_id"])
		}
	}
	assert.Equal(t, 1, claimed)

	status, err := f.leveling.GetLevelingStatus(ctx, "u-alice")
	require.NoError(t, err)
	require.Len(t, status.UnclaimedLevelUps, 1)
	assert.Equal(t, 2, status.UnclaimedLevelUps[0].Level)
}

func TestClaim_UndefinedLevelIsNotRetryable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lu := &domain.LevelUp{UserID: "u-alice", Level: 7, XP: 500}
	created, err := f.repo.Stores().LevelUps().Create(ctx, lu)
	require.NoError(t, err)
	require.True(t, created)

	_, err = f.rewards.Claim(ctx, "u-alice", lu.ID)
	assert.ErrorIs(t, err, ErrLevelNotDefined)
	assert.False(t, IsRetryable(err))

	// повышение осталось незабранным, монеты не начислены
	_, err = f.repo.Stores().LevelUps().GetUnclaimed(ctx, lu.ID, "u-alice")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), f.user(t, "u-alice").Coins)
}
