package repository

import (
	"context"
	"time"

	"questboard/internal/dbx"
	"questboard/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type QuestRepository struct {
	db dbx.DBTX
}

func NewQuestRepository(db dbx.DBTX) *QuestRepository {
	return &QuestRepository{db: db}
}

const questColumns = `id::text, user_id::text, username, source, type, xp, description, created_at`

// добавляет запись в журнал, заполняет ID и время создания
func (r *QuestRepository) Append(ctx context.Context, q *domain.Quest) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO quests (id, user_id, username, source, type, xp, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		q.ID, q.UserID, q.Username, string(q.Source), q.Type, q.XP, q.Description,
	).Scan(&q.CreatedAt)
	return mapErr("append quest", err)
}

// последние квесты всех пользователей, новые первыми
func (r *QuestRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Quest, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+questColumns+`
		 FROM quests
		 ORDER BY created_at DESC, id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, mapErr("list recent quests", err)
	}
	defer rows.Close()

	return scanQuests(rows)
}

// квесты пользователя, новые первыми
func (r *QuestRepository) ListForUser(ctx context.Context, userID string, limit int) ([]*domain.Quest, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+questColumns+`
		 FROM quests
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, mapErr("list user quests", err)
	}
	defer rows.Close()

	return scanQuests(rows)
}

func scanQuests(rows pgx.Rows) ([]*domain.Quest, error) {
	var result []*domain.Quest
	for rows.Next() {
		var q domain.Quest
		var source string
		var createdAt time.Time
		if err := rows.Scan(&q.ID, &q.UserID, &q.Username, &source, &q.Type, &q.XP, &q.Description, &createdAt); err != nil {
			return nil, mapErr("scan quest", err)
		}
		q.Source = domain.QuestSource(source)
		q.CreatedAt = createdAt
		result = append(result, &q)
	}
	return result, mapErr("scan quests", rows.Err())
}
