package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"questboard/internal/domain"
	"questboard/internal/logger"
	"questboard/internal/quest"
	"questboard/internal/webhook"
)

// Причины, по которым событие не начисляет опыт
const (
	ReasonUnsupportedEvent  = "unsupported_event"
	ReasonUnsupportedAction = "unsupported_action"
	ReasonEmptyPush         = "empty_push"
	ReasonUnknownActor      = "unknown_actor"
	ReasonPing              = "ping"
	ReasonInvalidPayload    = "invalid_payload"
	ReasonDuplicate         = "duplicate"
)

const maxDescriptionLen = 500

// Normalizer приводит вебхуки и ручные заявки к domain.NormalizedEvent
type Normalizer struct {
	taxonomy  *quest.Taxonomy
	resolver  *quest.Resolver
	identity  IdentityLookup
	perCommit bool
}

type NormalizerOption func(*Normalizer)

// WithPerCommitXP включает устаревшее умножение XP за push на число коммитов
func WithPerCommitXP(enabled bool) NormalizerOption {
	return func(n *Normalizer) { n.perCommit = enabled }
}

func NewNormalizer(t *quest.Taxonomy, identity IdentityLookup, opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{taxonomy: t, resolver: quest.NewResolver(t), identity: identity}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Normalizer) Taxonomy() *quest.Taxonomy {
	return n.taxonomy
}

// черновик события до поиска пользователя
type draft struct {
	actor       string
	questType   string
	xp          int64
	description string
}

// FromWebhook возвращает событие или непустую причину отказа.
// Ошибка только при сбое поиска пользователя или неизвестном типе
func (n *Normalizer) FromWebhook(ctx context.Context, ev webhook.Event) (*domain.NormalizedEvent, string, error) {
	d, reason, err := n.draftFor(ev)
	if err != nil || reason != "" {
		return nil, reason, err
	}

	user, err := n.identity.FindByGithubUsername(ctx, d.actor)
	if errors.Is(err, ErrUserNotFound) {
		logger.WithContext(ctx).Info("webhook actor not linked", "github_username", d.actor, "kind", ev.Kind())
		return nil, ReasonUnknownActor, nil
	}
	if err != nil {
		return nil, "", err
	}

	return &domain.NormalizedEvent{
		UserID:      user.ID,
		Username:    user.Username,
		Source:      domain.SourceGithub,
		QuestType:   d.questType,
		XP:          d.xp,
		Description: d.description,
	}, "", nil
}

func (n *Normalizer) draftFor(ev webhook.Event) (*draft, string, error) {
	switch e := ev.(type) {
	case webhook.PingEvent:
		return nil, ReasonPing, nil

	case webhook.PushEvent:
		if e.CommitCount == 0 {
			return nil, ReasonEmptyPush, nil
		}
		xp, err := n.resolver.Resolve(quest.TypeCommit, "")
		if err != nil {
			return nil, "", err
		}
		if n.perCommit {
			xp *= int64(e.CommitCount)
		}
		return &draft{
			actor:       e.Sender,
			questType:   quest.TypeCommit,
			xp:          xp,
			description: fmt.Sprintf("Pushed %d commit(s) to %s", e.CommitCount, e.Repo),
		}, "", nil

	case webhook.PullRequestEvent:
		var questType, verb string
		switch {
		case e.Action == "opened":
			questType, verb = quest.TypePROpened, "opened"
		case e.Action == "closed" && e.Merged:
			questType, verb = quest.TypePRMerged, "merged"
		default:
			return nil, ReasonUnsupportedAction, nil
		}
		tag := n.taxonomy.FirstTag(e.Title + " " + e.Body)
		xp, err := n.resolver.Resolve(questType, tag)
		if err != nil {
			return nil, "", err
		}
		return &draft{
			actor:       e.Author,
			questType:   questType,
			xp:          xp,
			description: withTag(fmt.Sprintf("%s PR #%d in %s", verb, e.Number, e.Repo), tag),
		}, "", nil

	case webhook.ReviewEvent:
		if e.Action != "" && e.Action != "submitted" {
			return nil, ReasonUnsupportedAction, nil
		}
		tag := n.taxonomy.FirstTag(e.PRTitle + " " + e.ReviewBody)
		var xp int64
		if e.State == "commented" {
			xp = n.taxonomy.ReviewCommentXP + n.taxonomy.TagBonus(tag)
		} else {
			var err error
			if xp, err = n.resolver.Resolve(quest.TypePRReview, tag); err != nil {
				return nil, "", err
			}
		}
		return &draft{
			actor:       e.Sender,
			questType:   quest.TypePRReview,
			xp:          xp,
			description: withTag(fmt.Sprintf("Reviewed PR #%d in %s (%s)", e.Number, e.Repo, e.State), tag),
		}, "", nil

	case webhook.IssuesEvent:
		if e.Action != "opened" {
			return nil, ReasonUnsupportedAction, nil
		}
		xp, err := n.resolver.Resolve(quest.TypeIssue, "")
		if err != nil {
			return nil, "", err
		}
		return &draft{
			actor:       e.Author,
			questType:   quest.TypeIssue,
			xp:          xp,
			description: fmt.Sprintf("opened issue #%d in %s", e.Number, e.Repo),
		}, "", nil

	case webhook.IssueCommentEvent:
		if e.Action != "created" {
			return nil, ReasonUnsupportedAction, nil
		}
		xp, err := n.resolver.Resolve(quest.TypeIssueComment, "")
		if err != nil {
			return nil, "", err
		}
		return &draft{
			actor:       e.Commenter,
			questType:   quest.TypeIssueComment,
			xp:          xp,
			description: fmt.Sprintf("commented on issue #%d in %s", e.Number, e.Repo),
		}, "", nil
	}

	return nil, ReasonUnsupportedEvent, nil
}

// FromManual проверяет ручную заявку; XP считается на сервере
func (n *Normalizer) FromManual(user *domain.User, questType, tag, description string) (*domain.NormalizedEvent, error) {
	if strings.TrimSpace(questType) == "" {
		return nil, domain.NewValidationError("quest_type", "required")
	}
	canonical, ok := n.taxonomy.Canonical(questType)
	if !ok {
		return nil, domain.NewValidationError("quest_type", "unknown quest type")
	}
	if !n.taxonomy.IsManual(canonical) {
		return nil, domain.NewValidationError("quest_type", "not available for manual submission")
	}

	tag = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
	if tag != "" && !n.taxonomy.HasTag(tag) {
		return nil, domain.NewValidationError("tag", "unknown tag")
	}

	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return nil, domain.NewValidationError("description", fmt.Sprintf("longer than %d characters", maxDescriptionLen))
	}

	xp, err := n.resolver.Resolve(canonical, tag)
	if err != nil {
		return nil, err
	}

	return &domain.NormalizedEvent{
		UserID:      user.ID,
		Username:    user.Username,
		Source:      domain.SourceManual,
		QuestType:   canonical,
		XP:          xp,
		Description: withTag(description, tag),
	}, nil
}

func withTag(description, tag string) string {
	if tag == "" {
		return description
	}
	return strings.TrimSpace(description + " #" + tag)
}
