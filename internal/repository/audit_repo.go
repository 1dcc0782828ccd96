package repository

import (
	"context"
	"encoding/json"

	"questboard/internal/dbx"
	"questboard/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// отвечает за операции с базой данных для логов аудита
type AuditRepository struct {
	db dbx.DBTX
}

// создает новый репозиторий для логов аудита
func NewAuditRepository(db dbx.DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

// создает новую запись в логе аудита
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	detailsJSON, err := json.Marshal(log.Details)
	if err != nil || log.Details == nil {
		detailsJSON = []byte("{}")
	}
	if log.ID == "" {
		log.ID = uuid.NewString()
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO audit_logs (id, user_id, action, category, details)
		VALUES ($1, $2, $3, $4, $5)
	`, log.ID, log.UserID, log.Action, log.Category, detailsJSON)
	return mapErr("create audit log", err)
}

// возвращает логи аудита для пользователя
func (r *AuditRepository) ListForUser(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, user_id, action, category, details, created_at
		FROM audit_logs
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, mapErr("audit by user", err)
	}
	defer rows.Close()

	return scanAuditLogs(rows)
}

// преобразует строки из БД в структуры AuditLog
func scanAuditLogs(rows pgx.Rows) ([]*domain.AuditLog, error) {
	var logs []*domain.AuditLog
	for rows.Next() {
		var log domain.AuditLog
		var userID pgtype.Text
		var detailsJSON []byte
		if err := rows.Scan(&log.ID, &userID, &log.Action, &log.Category, &detailsJSON, &log.CreatedAt); err != nil {
			return nil, mapErr("scan audit log", err)
		}
		if userID.Valid {
			uid := userID.String
			log.UserID = &uid
		}
		if err := json.Unmarshal(detailsJSON, &log.Details); err != nil {
			log.Details = make(map[string]interface{})
		}
		logs = append(logs, &log)
	}
	return logs, mapErr("scan audit logs", rows.Err())
}
