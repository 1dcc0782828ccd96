package domain

import "time"

// Журнал важных действий
type AuditLog struct {
	ID        string                 `db:"id" json:"id"`
	UserID    *string                `db:"user_id" json:"user_id,omitempty"` // nil для отброшенных вебхуков
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Категории действий
const (
	AuditCategoryQuest   = "quest"
	AuditCategoryLevel   = "level"
	AuditCategoryWebhook = "webhook"
	AuditCategoryProfile = "profile"
)

const (
	// Квесты
	AuditActionQuestAwarded = "quest_awarded"

	// Уровни
	AuditActionLevelUp      = "level_up"
	AuditActionLevelClaimed = "level_up_claimed"

	// Вебхуки
	AuditActionWebhookIgnored   = "webhook_ignored"
	AuditActionWebhookDuplicate = "webhook_duplicate"

	// Профиль
	AuditActionGithubLinked = "github_linked"
)
