package repository

import (
	"context"
	"errors"

	"questboard/internal/dbx"
	"questboard/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LevelUpRepository struct {
	db dbx.DBTX
}

func NewLevelUpRepository(db dbx.DBTX) *LevelUpRepository {
	return &LevelUpRepository{db: db}
}

const levelUpColumns = `id::text, user_id::text, level, xp, claimed, created_at`

// одна запись на пару (user, level), повтор молча пропускается
func (r *LevelUpRepository) Create(ctx context.Context, lu *domain.LevelUp) (bool, error) {
	if lu.ID == "" {
		lu.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO level_ups (id, user_id, level, xp)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, level) DO NOTHING
		 RETURNING claimed, created_at`,
		lu.ID, lu.UserID, lu.Level, lu.XP,
	).Scan(&lu.Claimed, &lu.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, mapErr("create level up", err)
	}
	return true, nil
}

func (r *LevelUpRepository) GetUnclaimed(ctx context.Context, id, userID string) (*domain.LevelUp, error) {
	lu, err := scanLevelUp(r.db.QueryRow(ctx,
		`SELECT `+levelUpColumns+`
		 FROM level_ups
		 WHERE id = $1 AND user_id = $2 AND claimed = false`,
		id, userID))
	if err != nil {
		return nil, mapErr("get unclaimed level up", err)
	}
	return lu, nil
}

// незабранные повышения, младший уровень первым
func (r *LevelUpRepository) ListUnclaimed(ctx context.Context, userID string) ([]*domain.LevelUp, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+levelUpColumns+`
		 FROM level_ups
		 WHERE user_id = $1 AND claimed = false
		 ORDER BY level`,
		userID,
	)
	if err != nil {
		return nil, mapErr("list unclaimed level ups", err)
	}
	defer rows.Close()

	var result []*domain.LevelUp
	for rows.Next() {
		lu, err := scanLevelUp(rows)
		if err != nil {
			return nil, mapErr("scan level up", err)
		}
		result = append(result, lu)
	}
	return result, mapErr("list unclaimed level ups", rows.Err())
}

// CAS: только один из конкурирующих вызовов получит true
func (r *LevelUpRepository) MarkClaimed(ctx context.Context, id, userID string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE level_ups SET claimed = true
		 WHERE id = $1 AND user_id = $2 AND claimed = false`,
		id, userID,
	)
	if err != nil {
		return false, mapErr("mark level up claimed", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanLevelUp(row pgx.Row) (*domain.LevelUp, error) {
	var lu domain.LevelUp
	if err := row.Scan(&lu.ID, &lu.UserID, &lu.Level, &lu.XP, &lu.Claimed, &lu.CreatedAt); err != nil {
		return nil, err
	}
	return &lu, nil
}
