package repository

import (
	"context"

	"questboard/internal/dbx"
)

// Pool - то, что нужно от *pgxpool.Pool
type Pool interface {
	dbx.DBTX
	dbx.Beginner
}

// PostgresManager выдаёт хранилища PostgreSQL
type PostgresManager struct {
	pool Pool
}

func NewPostgresManager(pool Pool) *PostgresManager {
	return &PostgresManager{pool: pool}
}

func (m *PostgresManager) Stores() Stores {
	return pgStores{db: m.pool}
}

func (m *PostgresManager) WithTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	return dbx.WithTx(ctx, m.pool, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, pgStores{db: tx})
	})
}

type pgStores struct {
	db dbx.DBTX
}

func (s pgStores) Users() UserStore       { return NewUserRepository(s.db) }
func (s pgStores) Quests() QuestStore     { return NewQuestRepository(s.db) }
func (s pgStores) Levels() LevelStore     { return NewLevelRepository(s.db) }
func (s pgStores) LevelUps() LevelUpStore { return NewLevelUpRepository(s.db) }
func (s pgStores) Audit() AuditStore      { return NewAuditRepository(s.db) }
