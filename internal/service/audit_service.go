package service

import (
	"context"

	"questboard/internal/domain"
	"questboard/internal/logger"
	"questboard/internal/repository"
)

// обрабатывает логирование аудита
type AuditService struct {
	repo repository.AuditStore
}

// создает новый сервис аудита
func NewAuditService(repo repository.AuditStore) *AuditService {
	return &AuditService{repo: repo}
}

// создает новую запись в журнале аудита; ошибка только логируется
func (s *AuditService) Log(ctx context.Context, userID string, action, category string, details map[string]interface{}) {
	var uid *string
	if userID != "" {
		uid = &userID
	}
	if err := s.repo.Create(ctx, newAuditLog(uid, action, category, details)); err != nil {
		logger.WithContext(ctx).Error("failed to write audit log", "error", err, "action", action, "user_id", userID)
	}
}

// логирует отброшенный вебхук
func (s *AuditService) LogWebhook(ctx context.Context, action, kind, reason string, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["kind"] = kind
	details["reason"] = reason
	s.Log(ctx, "", action, domain.AuditCategoryWebhook, details)
}

// ListForUser - история действий пользователя, новые первыми
func (s *AuditService) ListForUser(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	logs, err := s.repo.ListForUser(ctx, userID, clampLimit(limit))
	if err != nil {
		return nil, classify("list audit logs", err)
	}
	return logs, nil
}

// записи аудита внутри транзакции: ошибка откатывает всю операцию
func recordAudit(ctx context.Context, store repository.AuditStore, userID, action, category string, details map[string]interface{}) error {
	uid := userID
	return store.Create(ctx, newAuditLog(&uid, action, category, details))
}

func newAuditLog(userID *string, action, category string, details map[string]interface{}) *domain.AuditLog {
	if details == nil {
		details = make(map[string]interface{})
	}
	return &domain.AuditLog{
		UserID:   userID,
		Action:   action,
		Category: category,
		Details:  details,
	}
}
