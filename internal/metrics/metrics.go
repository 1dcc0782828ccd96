// Package metrics регистрирует счётчики Prometheus для квестов и вебхуков.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	QuestsAwarded   *prometheus.CounterVec
	XPAwarded       *prometheus.CounterVec
	WebhookOutcomes *prometheus.CounterVec
	LevelUps        prometheus.Counter
	Claims          *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// New создаёт и регистрирует метрики в reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QuestsAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "questboard",
			Name:      "quests_awarded_total",
			Help:      "Quests appended to the ledger.",
		}, []string{"source", "type"}),
		XPAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "questboard",
			Name:      "xp_awarded_total",
			Help:      "Experience points awarded.",
		}, []string{"source"}),
		WebhookOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "questboard",
			Name:      "webhook_events_total",
			Help:      "Webhook deliveries by outcome.",
		}, []string{"kind", "outcome"}),
		LevelUps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "questboard",
			Name:      "level_ups_total",
			Help:      "Level-up records created.",
		}),
		Claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "questboard",
			Name:      "level_up_claims_total",
			Help:      "Level-up claim attempts by result.",
		}, []string{"result"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "questboard",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(m.QuestsAwarded, m.XPAwarded, m.WebhookOutcomes, m.LevelUps, m.Claims, m.HTTPDuration)
	return m
}

// Nop - метрики без регистрации, для тестов
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) QuestAwarded(source, questType string, xp int64) {
	m.QuestsAwarded.WithLabelValues(source, questType).Inc()
	m.XPAwarded.WithLabelValues(source).Add(float64(xp))
}

func (m *Metrics) Webhook(kind, outcome string) {
	m.WebhookOutcomes.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) LevelUp(n int) {
	m.LevelUps.Add(float64(n))
}

func (m *Metrics) Claim(result string) {
	m.Claims.WithLabelValues(result).Inc()
}

// Middleware замеряет длительность запросов по шаблону маршрута
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
