package repository

import (
	"context"

	"questboard/internal/dbx"
	"questboard/internal/domain"
)

// таблица уровней, только чтение
type LevelRepository struct {
	db dbx.DBTX
}

func NewLevelRepository(db dbx.DBTX) *LevelRepository {
	return &LevelRepository{db: db}
}

func (r *LevelRepository) All(ctx context.Context) ([]domain.Level, error) {
	rows, err := r.db.Query(ctx,
		`SELECT level, xp_required, coin_reward, title, special_reward
		 FROM levels
		 ORDER BY level`,
	)
	if err != nil {
		return nil, mapErr("list levels", err)
	}
	defer rows.Close()

	var levels []domain.Level
	for rows.Next() {
		var l domain.Level
		var special []byte
		if err := rows.Scan(&l.Level, &l.XPRequired, &l.CoinReward, &l.Title, &special); err != nil {
			return nil, mapErr("scan level", err)
		}
		if len(special) > 0 {
			l.SpecialReward = special
		}
		levels = append(levels, l)
	}
	return levels, mapErr("list levels", rows.Err())
}
