package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// лидеры месяца по опыту
func (h *Handler) GetLeaderboard(c *gin.Context) {
	top, err := h.Profiles.Leaderboard(c.Request.Context(), queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	entries := make([]gin.H, 0, len(top))
	for i, u := range top {
		entries = append(entries, gin.H{
			"rank":        i + 1,
			"id":          u.ID,
			"username":    u.Username,
			"monthly_xp":  u.MonthlyXP,
			"total_xp":    u.TotalXP,
			"level":       u.Level,
			"quest_count": u.MonthlyQuestCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": entries,
		"period":      "monthly",
	})
}
