package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questboard/internal/repository"
)

// уникальный индекс по lower(github_username) отвечает 23505 на "alice" при занятом "Alice"
func TestProfileLinkGithub_PostgresCaseInsensitiveConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"id", "username", "github_username", "total_xp", "monthly_xp",
		"level", "coins", "quest_count", "monthly_quest_count", "created_at"}

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("u2").
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("u2", "bob", "", int64(0), int64(0), 1, int64(0), 0, 0, time.Now()))
	mock.ExpectQuery(`UPDATE users SET github_username = \$1`).
		WithArgs(pgxmock.AnyArg(), "u2").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_github_username"})
	mock.ExpectRollback()

	inv := &recordingInvalidator{}
	svc := NewProfileService(repository.NewPostgresManager(mock), inv)

	_, err = svc.LinkGithub(context.Background(), "u2", "alice")
	assert.ErrorIs(t, err, ErrGithubTaken)
	assert.False(t, IsRetryable(err))
	assert.Empty(t, inv.logins)
	assert.NoError(t, mock.ExpectationsWereMet())
}
