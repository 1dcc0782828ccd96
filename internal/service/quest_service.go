package service

import (
	"context"
	"fmt"

	"questboard/internal/domain"
	"questboard/internal/leveling"
	"questboard/internal/logger"
	"questboard/internal/metrics"
	"questboard/internal/repository"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// QuestService ведёт журнал квестов и пересчитывает уровень
type QuestService struct {
	repo       repository.Manager
	normalizer *Normalizer
	metrics    *metrics.Metrics
}

func NewQuestService(repo repository.Manager, normalizer *Normalizer, m *metrics.Metrics) *QuestService {
	return &QuestService{repo: repo, normalizer: normalizer, metrics: m}
}

// Award записывает квест, увеличивает счётчики пользователя, поднимает
// уровень и создаёт по одному LevelUp на каждый пройденный порог.
// Всё в одной транзакции
func (s *QuestService) Award(ctx context.Context, ev *domain.NormalizedEvent) (*domain.AwardResult, error) {
	if ev.UserID == "" {
		return nil, domain.NewValidationError("user_id", "required")
	}
	if ev.XP < 0 {
		return nil, domain.NewValidationError("xp", "must not be negative")
	}

	var result *domain.AwardResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, st repository.Stores) error {
		levels, err := st.Levels().All(ctx)
		if err != nil {
			return err
		}
		table, err := leveling.NewTable(levels)
		if err != nil {
			return err
		}

		// строка пользователя блокируется до конца транзакции
		user, err := st.Users().IncrementStats(ctx, ev.UserID, ev.XP)
		if err != nil {
			return err
		}

		q := &domain.Quest{
			UserID:      ev.UserID,
			Username:    ev.Username,
			Source:      ev.Source,
			Type:        ev.QuestType,
			XP:          ev.XP,
			Description: ev.Description,
		}
		if err := st.Quests().Append(ctx, q); err != nil {
			return err
		}

		newLevel, crossed := table.Advance(user.Level, user.TotalXP)
		var levelUps []*domain.LevelUp
		for _, l := range crossed {
			lu := &domain.LevelUp{UserID: user.ID, Level: l.Level, XP: user.TotalXP}
			created, err := st.LevelUps().Create(ctx, lu)
			if err != nil {
				return err
			}
			if !created {
				continue
			}
			levelUps = append(levelUps, lu)
			if err := recordAudit(ctx, st.Audit(), user.ID, domain.AuditActionLevelUp, domain.AuditCategoryLevel, map[string]interface{}{
				"level":       l.Level,
				"level_up_id": lu.ID,
				"total_xp":    user.TotalXP,
			}); err != nil {
				return err
			}
		}
		if newLevel != user.Level {
			if err := st.Users().SetLevel(ctx, user.ID, newLevel); err != nil {
				return err
			}
		}

		if err := recordAudit(ctx, st.Audit(), user.ID, domain.AuditActionQuestAwarded, domain.AuditCategoryQuest, map[string]interface{}{
			"quest_id": q.ID,
			"type":     q.Type,
			"source":   string(q.Source),
			"xp":       q.XP,
		}); err != nil {
			return err
		}

		result = &domain.AwardResult{Quest: q, TotalXP: user.TotalXP, Level: newLevel, LevelUps: levelUps}
		return nil
	})
	if err != nil {
		return nil, classify("award quest", err)
	}

	s.metrics.QuestAwarded(string(ev.Source), ev.QuestType, ev.XP)
	if len(result.LevelUps) > 0 {
		s.metrics.LevelUp(len(result.LevelUps))
		logger.WithContext(ctx).Info("level up", "user_id", ev.UserID, "level", result.Level, "crossed", len(result.LevelUps))
	}
	return result, nil
}

// SubmitManual - ручная заявка от авторизованного пользователя
func (s *QuestService) SubmitManual(ctx context.Context, userID, questType, tag, description string) (*domain.AwardResult, error) {
	user, err := s.repo.Stores().Users().GetByID(ctx, userID)
	if err != nil {
		return nil, classify("get user", err)
	}

	ev, err := s.normalizer.FromManual(user, questType, tag, description)
	if err != nil {
		return nil, err
	}
	return s.Award(ctx, ev)
}

// ListRecent - последние квесты всех пользователей, новые первыми
func (s *QuestService) ListRecent(ctx context.Context, limit int) ([]*domain.Quest, error) {
	quests, err := s.repo.Stores().Quests().ListRecent(ctx, clampLimit(limit))
	if err != nil {
		return nil, classify("list recent quests", err)
	}
	return quests, nil
}

func (s *QuestService) ListForUser(ctx context.Context, userID string, limit int) ([]*domain.Quest, error) {
	quests, err := s.repo.Stores().Quests().ListForUser(ctx, userID, clampLimit(limit))
	if err != nil {
		return nil, classify(fmt.Sprintf("list quests of %s", userID), err)
	}
	return quests, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	}
	return limit
}
