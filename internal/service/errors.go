package service

import (
	"errors"
	"fmt"

	"questboard/internal/domain"
	"questboard/internal/leveling"
	"questboard/internal/quest"
	"questboard/internal/repository"
)

var (
	ErrAlreadyClaimedOrNotFound = errors.New("level up already claimed or not found")
	ErrUserNotFound             = errors.New("user not found")
	ErrGithubTaken              = errors.New("github username already linked to another user")

	// повышение ссылается на уровень, которого нет в таблице; повтор не поможет
	ErrLevelNotDefined = errors.New("level is not defined")
)

// PersistenceError - сбой хранилища; повтор может помочь
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Retryable() bool { return true }

// IsRetryable отличает "повтор может помочь" от "повтор не поможет"
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	return errors.As(err, &r) && r.Retryable()
}

// classify оставляет доменные ошибки как есть, остальное считает сбоем хранилища
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, quest.ErrUnknownQuestType),
		errors.Is(err, leveling.ErrInvalidTable),
		errors.Is(err, ErrAlreadyClaimedOrNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrGithubTaken),
		errors.Is(err, ErrLevelNotDefined):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
