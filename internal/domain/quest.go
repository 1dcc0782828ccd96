package domain

import "time"

// Откуда пришёл квест
type QuestSource string

const (
	SourceGithub QuestSource = "github"
	SourceManual QuestSource = "manual"
)

// Запись в журнале квестов. Не изменяется и не удаляется
type Quest struct {
	ID          string      `db:"id" json:"id"`
	UserID      string      `db:"user_id" json:"user_id"`
	Username    string      `db:"username" json:"username"`
	Source      QuestSource `db:"source" json:"source"`
	Type        string      `db:"type" json:"type"` // тип из таксономии или старая строка
	XP          int64       `db:"xp" json:"xp"`     // уже с бонусом за тег
	Description string      `db:"description" json:"description"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// Нормализованное событие, готовое к записи в журнал
type NormalizedEvent struct {
	UserID      string      `json:"user_id"`
	Username    string      `json:"username"`
	Source      QuestSource `json:"source"`
	QuestType   string      `json:"quest_type"`
	XP          int64       `json:"xp"`
	Description string      `json:"description"`
}

// Результат начисления опыта
type AwardResult struct {
	Quest    *Quest     `json:"quest"`
	TotalXP  int64      `json:"total_xp"`
	Level    int        `json:"level"`
	LevelUps []*LevelUp `json:"level_ups,omitempty"`
}
