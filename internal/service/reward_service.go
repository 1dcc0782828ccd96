package service

import (
	"context"
	"errors"
	"fmt"

	"questboard/internal/domain"
	"questboard/internal/logger"
	"questboard/internal/metrics"
	"questboard/internal/repository"
)

// RewardService выдаёт награды за повышения уровня
type RewardService struct {
	repo    repository.Manager
	metrics *metrics.Metrics
}

func NewRewardService(repo repository.Manager, m *metrics.Metrics) *RewardService {
	return &RewardService{repo: repo, metrics: m}
}

// Claim отмечает повышение забранным и начисляет монеты ровно один раз.
// Отметка и начисление в одной транзакции: отметка без начисления невозможна
func (s *RewardService) Claim(ctx context.Context, userID, levelUpID string) (*domain.ClaimResult, error) {
	var result *domain.ClaimResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, st repository.Stores) error {
		lu, err := st.LevelUps().GetUnclaimed(ctx, levelUpID, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAlreadyClaimedOrNotFound
		}
		if err != nil {
			return err
		}

		levels, err := st.Levels().All(ctx)
		if err != nil {
			return err
		}
		var level *domain.Level
		for i := range levels {
			if levels[i].Level == lu.Level {
				level = &levels[i]
				break
			}
		}
		if level == nil {
			return fmt.Errorf("claim level %d: %w", lu.Level, ErrLevelNotDefined)
		}

		// CAS: из двух конкурирующих попыток пройдёт одна
		claimed, err := st.LevelUps().MarkClaimed(ctx, lu.ID, userID)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrAlreadyClaimedOrNotFound
		}

		var coins int64
		if level.CoinReward > 0 {
			if coins, err = st.Users().CreditCoins(ctx, userID, level.CoinReward); err != nil {
				return err
			}
		} else {
			user, err := st.Users().GetByID(ctx, userID)
			if err != nil {
				return err
			}
			coins = user.Coins
		}

		if err := recordAudit(ctx, st.Audit(), userID, domain.AuditActionLevelClaimed, domain.AuditCategoryLevel, map[string]interface{}{
			"level_up_id": lu.ID,
			"level":       lu.Level,
			"coins":       level.CoinReward,
		}); err != nil {
			return err
		}

		result = &domain.ClaimResult{
			LevelUpID:     lu.ID,
			Level:         lu.Level,
			CoinsAwarded:  level.CoinReward,
			SpecialReward: level.SpecialReward,
			Coins:         coins,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyClaimedOrNotFound) {
			s.metrics.Claim("conflict")
		} else {
			s.metrics.Claim("error")
		}
		return nil, classify("claim level up", err)
	}

	s.metrics.Claim("ok")
	if len(result.SpecialReward) > 0 {
		logger.WithContext(ctx).Info("special reward granted", "user_id", userID, "level", result.Level)
	}
	return result, nil
}
