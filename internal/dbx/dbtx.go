// Package dbx содержит минимальные абстракции над pgx для репозиториев:
// DBTX реализуют и пул, и транзакция, WithTx выполняет функцию в транзакции.
package dbx

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX - подмножество pgx, которым пользуются репозитории.
// Ему удовлетворяют *pgxpool.Pool, pgx.Tx и pgxmock
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Beginner открывает транзакции
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WithTx открывает транзакцию, выполняет fn и делает commit при успехе,
// rollback при ошибке или панике. Паника пробрасывается дальше
func WithTx(ctx context.Context, db Beginner, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	err = fn(ctx, tx)
	return err
}
