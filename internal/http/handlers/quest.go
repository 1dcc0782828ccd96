package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ручная заявка на квест; XP считает сервер
func (h *Handler) SubmitQuest(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		QuestType   string `json:"quest_type"`
		Tag         string `json:"tag"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	res, err := h.Quests.SubmitManual(c.Request.Context(), userID, req.QuestType, req.Tag, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"quest":     res.Quest,
		"total_xp":  res.TotalXP,
		"level":     res.Level,
		"level_ups": res.LevelUps,
	})
}

// последние квесты всех пользователей
func (h *Handler) RecentQuests(c *gin.Context) {
	quests, err := h.Quests.ListRecent(c.Request.Context(), queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quests": quests})
}

func (h *Handler) UserQuests(c *gin.Context) {
	quests, err := h.Quests.ListForUser(c.Request.Context(), c.Param("id"), queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quests": quests})
}

type questTypeView struct {
	Type string `json:"type"`
	Name string `json:"name"`
	XP   int64  `json:"xp"`
}

type tagView struct {
	Tag         string `json:"tag"`
	Name        string `json:"name"`
	Description string `json:"description"`
	BonusXP     int64  `json:"bonus_xp"`
}

// типы для ручной заявки и теги с бонусами
func (h *Handler) QuestTypes(c *gin.Context) {
	t := h.Taxonomy

	types := make([]questTypeView, 0)
	for _, name := range t.ManualTypes() {
		def, _ := t.Type(name)
		types = append(types, questTypeView{Type: name, Name: def.Name, XP: def.BaseXP})
	}
	tags := make([]tagView, 0)
	for _, name := range t.Tags() {
		def, _ := t.Tag(name)
		tags = append(tags, tagView{Tag: name, Name: def.Name, Description: def.Description, BonusXP: def.BonusXP})
	}

	c.JSON(http.StatusOK, gin.H{
		"version":     t.Version,
		"quest_types": types,
		"tags":        tags,
	})
}

// ?limit=N; мусор и пустое значение дают лимит по умолчанию
func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return n
}
