// Package repository описывает хранилища домена и их реализацию на PostgreSQL.
// Хранилища привязываются к пулу или к транзакции через dbx.DBTX.
package repository

import (
	"context"
	"errors"

	"questboard/internal/domain"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

type UserStore interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByGithubUsername(ctx context.Context, login string) (*domain.User, error)
	// Ensure создаёт пользователя, если его ещё нет, и возвращает текущую запись
	Ensure(ctx context.Context, id, username string) (*domain.User, error)
	// IncrementStats атомарно прибавляет xp к total/monthly и единицу к счётчикам квестов
	IncrementStats(ctx context.Context, id string, xp int64) (*domain.User, error)
	// SetLevel не даёт уровню уменьшиться
	SetLevel(ctx context.Context, id string, level int) error
	CreditCoins(ctx context.Context, id string, amount int64) (int64, error)
	LinkGithub(ctx context.Context, id, login string) (*domain.User, error)
	MonthlyTop(ctx context.Context, limit int) ([]*domain.User, error)
}

// QuestStore - журнал квестов, только добавление
type QuestStore interface {
	Append(ctx context.Context, q *domain.Quest) error
	ListRecent(ctx context.Context, limit int) ([]*domain.Quest, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]*domain.Quest, error)
}

type LevelStore interface {
	All(ctx context.Context) ([]domain.Level, error)
}

type LevelUpStore interface {
	// Create возвращает false, если повышение на этот уровень уже есть
	Create(ctx context.Context, lu *domain.LevelUp) (bool, error)
	GetUnclaimed(ctx context.Context, id, userID string) (*domain.LevelUp, error)
	ListUnclaimed(ctx context.Context, userID string) ([]*domain.LevelUp, error)
	// MarkClaimed - условное обновление claimed=false -> true
	MarkClaimed(ctx context.Context, id, userID string) (bool, error)
}

type AuditStore interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	// ListForUser - записи пользователя, новые первыми
	ListForUser(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error)
}

// Stores - набор хранилищ, привязанных к одному соединению или транзакции
type Stores interface {
	Users() UserStore
	Quests() QuestStore
	Levels() LevelStore
	LevelUps() LevelUpStore
	Audit() AuditStore
}

// Manager выдаёт хранилища вне транзакции и внутри неё
type Manager interface {
	Stores() Stores
	WithTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
