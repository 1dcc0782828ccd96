package handlers

import (
	"context"
	"errors"
	"net/http"

	"questboard/internal/domain"
	"questboard/internal/http/middleware"
	"questboard/internal/logger"
	"questboard/internal/quest"
	"questboard/internal/service"
	"questboard/internal/webhook"

	"github.com/gin-gonic/gin"
)

type WebhookSubmitter interface {
	Submit(ctx context.Context, d service.Delivery) (*service.WebhookResult, error)
}

type QuestService interface {
	SubmitManual(ctx context.Context, userID, questType, tag, description string) (*domain.AwardResult, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Quest, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]*domain.Quest, error)
}

type LevelingService interface {
	GetLevelingStatus(ctx context.Context, userID string) (*domain.LevelingStatus, error)
	Levels(ctx context.Context) ([]domain.Level, error)
}

type RewardService interface {
	Claim(ctx context.Context, userID, levelUpID string) (*domain.ClaimResult, error)
}

type ProfileService interface {
	Me(ctx context.Context, userID, username string) (*domain.User, error)
	LinkGithub(ctx context.Context, userID, login string) (*domain.User, error)
	Leaderboard(ctx context.Context, limit int) ([]*domain.User, error)
}

type AuditReader interface {
	ListForUser(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error)
}

// Handler - HTTP обработчики поверх сервисов
type Handler struct {
	Webhooks WebhookSubmitter
	Quests   QuestService
	Leveling LevelingService
	Rewards  RewardService
	Profiles ProfileService
	Audit    AuditReader
	Taxonomy *quest.Taxonomy
}

func getUserID(c *gin.Context) (string, bool) {
	return middleware.UserID(c)
}

// respondError переводит ошибку сервиса в HTTP статус
func respondError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, webhook.ErrMissingSignature), errors.Is(err, webhook.ErrBadSignature):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
	case errors.Is(err, service.ErrAlreadyClaimedOrNotFound):
		c.JSON(http.StatusConflict, gin.H{"error": "level up already claimed or not found"})
	case errors.Is(err, service.ErrGithubTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "github username already linked"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case service.IsRetryable(err):
		logger.WithContext(c.Request.Context()).Error("storage failure", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable, retry later"})
	default:
		logger.WithContext(c.Request.Context()).Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
