package service

import (
	"context"

	"questboard/internal/domain"
	"questboard/internal/leveling"
	"questboard/internal/repository"
)

type LevelingService struct {
	repo repository.Manager
}

func NewLevelingService(repo repository.Manager) *LevelingService {
	return &LevelingService{repo: repo}
}

// GetLevelingStatus - уровень, прогресс и незабранные повышения пользователя
func (s *LevelingService) GetLevelingStatus(ctx context.Context, userID string) (*domain.LevelingStatus, error) {
	stores := s.repo.Stores()

	user, err := stores.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, classify("get user", err)
	}
	table, err := s.table(ctx, stores)
	if err != nil {
		return nil, err
	}

	level := table.LevelFor(user.TotalXP)
	status := &domain.LevelingStatus{
		Level:              level,
		TotalXP:            user.TotalXP,
		XPToNext:           table.XPToNext(user.TotalXP),
		ProgressPercentage: table.Progress(user.TotalXP),
		UnclaimedLevelUps:  []domain.LevelUpWithInfo{},
	}
	if cur, ok := table.Get(level); ok {
		status.Title = cur.Title
	}
	_, hasNext := table.Next(level)
	status.MaxLevel = !hasNext

	pending, err := stores.LevelUps().ListUnclaimed(ctx, userID)
	if err != nil {
		return nil, classify("list unclaimed level ups", err)
	}
	for _, lu := range pending {
		info, _ := table.Get(lu.Level)
		status.UnclaimedLevelUps = append(status.UnclaimedLevelUps, domain.LevelUpWithInfo{LevelUp: *lu, LevelInfo: info})
	}
	return status, nil
}

// Levels - таблица уровней по возрастанию
func (s *LevelingService) Levels(ctx context.Context) ([]domain.Level, error) {
	table, err := s.table(ctx, s.repo.Stores())
	if err != nil {
		return nil, err
	}
	return table.Levels(), nil
}

func (s *LevelingService) table(ctx context.Context, stores repository.Stores) (*leveling.Table, error) {
	levels, err := stores.Levels().All(ctx)
	if err != nil {
		return nil, classify("list levels", err)
	}
	table, err := leveling.NewTable(levels)
	if err != nil {
		return nil, err
	}
	return table, nil
}
