package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"questboard/internal/domain"
	"questboard/internal/logger"
	"questboard/internal/repository"
)

// логин GitHub: буквы, цифры и одиночные дефисы, до 39 символов
var githubLoginRe = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,37}[A-Za-z0-9])?$`)

// IdentityInvalidator сбрасывает кэш поиска по логину
type IdentityInvalidator interface {
	Invalidate(login string)
}

type ProfileService struct {
	repo        repository.Manager
	invalidator IdentityInvalidator
}

func NewProfileService(repo repository.Manager, invalidator IdentityInvalidator) *ProfileService {
	return &ProfileService{repo: repo, invalidator: invalidator}
}

// Me возвращает профиль, создавая его при первом обращении
func (s *ProfileService) Me(ctx context.Context, userID, username string) (*domain.User, error) {
	if strings.TrimSpace(username) == "" {
		username = userID
	}
	// username только отображается; личность пользователя - его id
	u, err := s.repo.Stores().Users().Ensure(ctx, userID, username)
	if err != nil {
		return nil, classify("ensure user", err)
	}
	return u, nil
}

// LinkGithub привязывает логин GitHub; пустая строка отвязывает
func (s *ProfileService) LinkGithub(ctx context.Context, userID, login string) (*domain.User, error) {
	login = strings.TrimPrefix(strings.TrimSpace(login), "@")
	if login != "" && (!githubLoginRe.MatchString(login) || strings.Contains(login, "--")) {
		return nil, domain.NewValidationError("github_username", "invalid github username")
	}

	var prev string
	var user *domain.User
	err := s.repo.WithTx(ctx, func(ctx context.Context, st repository.Stores) error {
		cur, err := st.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}
		prev = cur.GithubUsername

		user, err = st.Users().LinkGithub(ctx, userID, login)
		if errors.Is(err, repository.ErrConflict) {
			return ErrGithubTaken
		}
		if err != nil {
			return err
		}
		return recordAudit(ctx, st.Audit(), userID, domain.AuditActionGithubLinked, domain.AuditCategoryProfile, map[string]interface{}{
			"previous": prev,
			"current":  login,
		})
	})
	if err != nil {
		return nil, classify("link github", err)
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(prev)
		s.invalidator.Invalidate(login)
	}
	logger.WithContext(ctx).Info("github account linked", "user_id", userID, "github_username", login)
	return user, nil
}

// Leaderboard - лидеры месяца
func (s *ProfileService) Leaderboard(ctx context.Context, limit int) ([]*domain.User, error) {
	users, err := s.repo.Stores().Users().MonthlyTop(ctx, clampLimit(limit))
	if err != nil {
		return nil, classify("monthly leaderboard", err)
	}
	return users, nil
}
