package repository

import (
	"context"
	"strings"

	"questboard/internal/dbx"
	"questboard/internal/domain"

	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	db dbx.DBTX
}

func NewUserRepository(db dbx.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id::text, username, COALESCE(github_username, ''), total_xp, monthly_xp,
		level, coins, quest_count, monthly_quest_count, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.GithubUsername, &u.TotalXP, &u.MonthlyXP,
		&u.Level, &u.Coins, &u.QuestCount, &u.MonthlyQuestCount, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// возвращает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get user", err)
	}
	return u, nil
}

// ищет пользователя по логину GitHub без учёта регистра
func (r *UserRepository) GetByGithubUsername(ctx context.Context, login string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(github_username) = lower($1)`, login))
	if err != nil {
		return nil, mapErr("get user by github username", err)
	}
	return u, nil
}

func (r *UserRepository) Ensure(ctx context.Context, id, username string) (*domain.User, error) {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, username, level) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO NOTHING`,
		id, username, domain.StartLevel,
	)
	if err != nil {
		return nil, mapErr("ensure user", err)
	}
	return r.GetByID(ctx, id)
}

// атомарный инкремент; строка остаётся заблокированной до конца транзакции
func (r *UserRepository) IncrementStats(ctx context.Context, id string, xp int64) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`UPDATE users
		 SET total_xp = total_xp + $1,
		     monthly_xp = monthly_xp + $1,
		     quest_count = quest_count + 1,
		     monthly_quest_count = monthly_quest_count + 1
		 WHERE id = $2
		 RETURNING `+userColumns,
		xp, id))
	if err != nil {
		return nil, mapErr("increment user stats", err)
	}
	return u, nil
}

func (r *UserRepository) SetLevel(ctx context.Context, id string, level int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET level = GREATEST(level, $1) WHERE id = $2`,
		level, id,
	)
	if err != nil {
		return mapErr("set level", err)
	}
	if tag.RowsAffected() == 0 {
		return mapErr("set level", pgx.ErrNoRows)
	}
	return nil
}

// начисляет монеты и возвращает новый баланс
func (r *UserRepository) CreditCoins(ctx context.Context, id string, amount int64) (int64, error) {
	var coins int64
	err := r.db.QueryRow(ctx,
		`UPDATE users SET coins = coins + $1 WHERE id = $2 RETURNING coins`,
		amount, id,
	).Scan(&coins)
	if err != nil {
		return 0, mapErr("credit coins", err)
	}
	return coins, nil
}

// привязывает логин GitHub; пустой логин отвязывает
func (r *UserRepository) LinkGithub(ctx context.Context, id, login string) (*domain.User, error) {
	var arg *string
	if login = strings.TrimSpace(login); login != "" {
		arg = &login
	}
	u, err := scanUser(r.db.QueryRow(ctx,
		`UPDATE users SET github_username = $1 WHERE id = $2 RETURNING `+userColumns,
		arg, id))
	if err != nil {
		return nil, mapErr("link github", err)
	}
	return u, nil
}

// лидеры месяца по monthly_xp
func (r *UserRepository) MonthlyTop(ctx context.Context, limit int) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 ORDER BY monthly_xp DESC, created_at ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, mapErr("monthly top", err)
	}
	defer rows.Close()

	var result []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapErr("monthly top", err)
		}
		result = append(result, u)
	}
	return result, mapErr("monthly top", rows.Err())
}
