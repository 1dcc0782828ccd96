package leveling

import "questboard/internal/domain"

// DefaultLevels - та же таблица, что засевается миграцией 00002
func DefaultLevels() []domain.Level {
	return []domain.Level{
		{Level: 1, XPRequired: 0, CoinReward: 0, Title: "Novice"},
		{Level: 2, XPRequired: 10, CoinReward: 50, Title: "Apprentice"},
		{Level: 3, XPRequired: 25, CoinReward: 100, Title: "Journeyman"},
		{Level: 4, XPRequired: 50, CoinReward: 150, Title: "Adept"},
		{Level: 5, XPRequired: 100, CoinReward: 250, Title: "Expert", SpecialReward: []byte(`{"type":"badge","id":"expert"}`)},
		{Level: 6, XPRequired: 175, CoinReward: 300, Title: "Veteran"},
		{Level: 7, XPRequired: 275, CoinReward: 400, Title: "Master"},
		{Level: 8, XPRequired: 400, CoinReward: 500, Title: "Grandmaster"},
		{Level: 9, XPRequired: 600, CoinReward: 750, Title: "Legend"},
		{Level: 10, XPRequired: 900, CoinReward: 1000, Title: "Mythic", SpecialReward: []byte(`{"type":"title_color","value":"gold"}`)},
	}
}
