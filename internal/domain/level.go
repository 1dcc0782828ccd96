package domain

import (
	"encoding/json"
	"time"
)

// Строка таблицы уровней
type Level struct {
	Level         int             `db:"level" json:"level"`
	XPRequired    int64           `db:"xp_required" json:"xp_required"` // накопительный порог
	CoinReward    int64           `db:"coin_reward" json:"coin_reward"`
	Title         string          `db:"title" json:"title"`
	SpecialReward json.RawMessage `db:"special_reward" json:"special_reward,omitempty"` // не интерпретируется
}

// Повышение уровня, которое пользователь должен забрать
type LevelUp struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Level     int       `db:"level" json:"level"`
	XP        int64     `db:"xp" json:"xp"` // total_xp в момент пересечения порога
	Claimed   bool      `db:"claimed" json:"claimed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// повышение вместе с описанием уровня для клиента
type LevelUpWithInfo struct {
	LevelUp
	LevelInfo Level `json:"level_info"`
}

// Состояние прокачки пользователя
type LevelingStatus struct {
	Level              int               `json:"level"`
	Title              string            `json:"title"`
	TotalXP            int64             `json:"total_xp"`
	XPToNext           int64             `json:"xp_to_next"`
	ProgressPercentage float64           `json:"progress_percentage"`
	MaxLevel           bool              `json:"max_level"`
	UnclaimedLevelUps  []LevelUpWithInfo `json:"unclaimed_level_ups"`
}

// Что получил пользователь, забрав повышение
type ClaimResult struct {
	LevelUpID     string          `json:"level_up_id"`
	Level         int             `json:"level"`
	CoinsAwarded  int64           `json:"coins_awarded"`
	SpecialReward json.RawMessage `json:"special_reward,omitempty"`
	Coins         int64           `json:"coins"` // баланс после начисления
}
