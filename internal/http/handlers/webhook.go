package handlers

import (
	"io"
	"net/http"

	"questboard/internal/service"

	"github.com/gin-gonic/gin"
)

// GitHub ограничивает тело 25 МБ, нам хватит меньшего
const maxWebhookBody = 5 << 20

// GithubWebhook принимает событие GitHub. Несовпадение правил отвечает 200
func (h *Handler) GithubWebhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
		return
	}

	res, err := h.Webhooks.Submit(c.Request.Context(), service.Delivery{
		Kind:      c.GetHeader("X-GitHub-Event"),
		ID:        c.GetHeader("X-GitHub-Delivery"),
		Signature: c.GetHeader("X-Hub-Signature-256"),
		Body:      body,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
