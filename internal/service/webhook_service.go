package service

import (
	"context"
	"errors"

	"questboard/internal/cache"
	"questboard/internal/domain"
	"questboard/internal/logger"
	"questboard/internal/metrics"
	"questboard/internal/webhook"
)

// Delivery - входящий вебхук как он пришёл
type Delivery struct {
	Kind      string
	ID        string
	Signature string
	Body      []byte
}

// WebhookResult - ответ отправителю. Accepted=false с причиной не ошибка
type WebhookResult struct {
	Accepted  bool   `json:"accepted"`
	XPAwarded int64  `json:"xp_awarded"`
	QuestType string `json:"quest_type,omitempty"`
	QuestID   string `json:"quest_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
	LevelUps  int    `json:"level_ups,omitempty"`
}

type WebhookService struct {
	secret     string
	normalizer *Normalizer
	quests     *QuestService
	guard      cache.DeliveryGuard
	audit      *AuditService
	metrics    *metrics.Metrics
}

func NewWebhookService(secret string, normalizer *Normalizer, quests *QuestService, guard cache.DeliveryGuard, audit *AuditService, m *metrics.Metrics) *WebhookService {
	return &WebhookService{
		secret:     secret,
		normalizer: normalizer,
		quests:     quests,
		guard:      guard,
		audit:      audit,
		metrics:    m,
	}
}

// Submit: подпись -> разбор -> нормализация -> дедупликация -> начисление.
// Ошибка возвращается только при неверной подписи и сбоях хранилища
func (s *WebhookService) Submit(ctx context.Context, d Delivery) (*WebhookResult, error) {
	if d.ID != "" {
		ctx = logger.ContextWith(ctx, "delivery_id", d.ID)
	}
	log := logger.WithContext(ctx)

	if s.secret != "" {
		if err := webhook.VerifySignature(s.secret, d.Body, d.Signature); err != nil {
			s.metrics.Webhook(d.Kind, "rejected")
			log.Warn("webhook signature rejected", "kind", d.Kind, "error", err)
			return nil, err
		}
	}

	ev, err := webhook.Parse(d.Kind, d.Body)
	if err != nil {
		log.Info("webhook payload ignored", "kind", d.Kind, "error", err)
		return s.ignored(ctx, d.Kind, ReasonInvalidPayload), nil
	}

	ne, reason, err := s.normalizer.FromWebhook(ctx, ev)
	if err != nil {
		s.metrics.Webhook(d.Kind, "error")
		return nil, classify("normalize webhook", err)
	}
	if reason != "" {
		log.Info("webhook ignored", "kind", d.Kind, "reason", reason)
		if reason == ReasonUnknownActor {
			s.audit.LogWebhook(ctx, domain.AuditActionWebhookIgnored, d.Kind, reason, nil)
		}
		return s.ignored(ctx, d.Kind, reason), nil
	}

	key := webhook.DeliveryKey(d.ID, ev)
	claimed := false
	if s.guard != nil && key != "" {
		ok, err := s.guard.Claim(ctx, key)
		switch {
		case err != nil:
			// без Redis лучше рискнуть дублем, чем потерять событие
			log.Warn("delivery guard unavailable", "error", err)
		case !ok:
			log.Info("duplicate webhook delivery", "kind", d.Kind, "key", key)
			s.audit.LogWebhook(ctx, domain.AuditActionWebhookDuplicate, d.Kind, ReasonDuplicate, map[string]interface{}{"key": key})
			return s.ignored(ctx, d.Kind, ReasonDuplicate), nil
		default:
			claimed = true
		}
	}

	res, err := s.quests.Award(ctx, ne)
	if err != nil {
		if claimed {
			if rerr := s.guard.Release(ctx, key); rerr != nil {
				log.Warn("failed to release delivery key", "key", key, "error", rerr)
			}
		}
		s.metrics.Webhook(d.Kind, "error")
		if errors.Is(err, ErrUserNotFound) {
			// пользователь удалён между поиском и начислением
			return s.ignored(ctx, d.Kind, ReasonUnknownActor), nil
		}
		log.Error("webhook award failed", "kind", d.Kind, "user_id", ne.UserID, "error", err)
		return nil, err
	}

	s.metrics.Webhook(d.Kind, "accepted")
	log.Info("webhook quest awarded", "kind", d.Kind, "user_id", ne.UserID, "type", ne.QuestType, "xp", ne.XP)
	return &WebhookResult{
		Accepted:  true,
		XPAwarded: res.Quest.XP,
		QuestType: res.Quest.Type,
		QuestID:   res.Quest.ID,
		LevelUps:  len(res.LevelUps),
	}, nil
}

func (s *WebhookService) ignored(_ context.Context, kind, reason string) *WebhookResult {
	s.metrics.Webhook(kind, reason)
	return &WebhookResult{Accepted: false, Reason: reason}
}
