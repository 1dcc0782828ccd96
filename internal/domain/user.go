package domain

import "time"

type User struct {
	ID                string    `db:"id" json:"id"`
	Username          string    `db:"username" json:"username"`
	GithubUsername    string    `db:"github_username" json:"github_username,omitempty"` // ключ для вебхуков
	TotalXP           int64     `db:"total_xp" json:"total_xp"`                         // за всё время, только растёт
	MonthlyXP         int64     `db:"monthly_xp" json:"monthly_xp"`                     // обнуляется ежемесячно
	Level             int       `db:"level" json:"level"`                               // кэш, всегда согласован с total_xp
	Coins             int64     `db:"coins" json:"coins"`
	QuestCount        int       `db:"quest_count" json:"quest_count"`
	MonthlyQuestCount int       `db:"monthly_quest_count" json:"monthly_quest_count"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// стартовый уровень нового пользователя
const StartLevel = 1
