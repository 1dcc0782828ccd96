// Package http собирает gin роутер: общие middleware, публичные маршруты,
// маршруты под JWT и вебхук GitHub.
package http

import (
	"net/http"

	"questboard/internal/http/handlers"
	"questboard/internal/http/middleware"
	"questboard/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	Version   string
	JWTSecret string
	Limiter   middleware.Limiter // nil отключает лимит
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
}

// RegisterRoutes вешает все маршруты на r
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, cfg RouterConfig) {
	r.Use(middleware.RequestID(), middleware.CORS())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.Version})
	})
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	r.POST("/webhooks/github", h.GithubWebhook)

	api := r.Group("/api")

	// публичные, лимит по IP
	public := api.Group("")
	auth := api.Group("", middleware.Auth(cfg.JWTSecret))
	if cfg.Limiter != nil {
		public.Use(middleware.RateLimit(cfg.Limiter))
		// после Auth ключом становится пользователь
		auth.Use(middleware.RateLimit(cfg.Limiter))
	}

	public.GET("/quest-types", h.QuestTypes)
	public.GET("/levels", h.Levels)
	public.GET("/quests", h.RecentQuests)
	public.GET("/users/:id/quests", h.UserQuests)
	public.GET("/leaderboard", h.GetLeaderboard)

	auth.GET("/me", h.MyProfile)
	auth.PUT("/me/github", h.LinkGithub)
	auth.GET("/me/leveling", h.MyLeveling)
	auth.GET("/me/audit", h.MyAudit)
	auth.POST("/quests", h.SubmitQuest)
	auth.POST("/level-ups/:id/claim", h.ClaimLevelUp)
}
