// Package memory - хранилище в памяти процесса. Транзакции сериализуются
// одним мьютексом, при ошибке состояние откатывается к снимку.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"questboard/internal/domain"
	"questboard/internal/repository"

	"github.com/google/uuid"
)

type state struct {
	users    map[string]*domain.User
	quests   []*domain.Quest
	levels   []domain.Level
	levelUps map[string]*domain.LevelUp
	audit    []*domain.AuditLog
}

func (s *state) clone() *state {
	c := &state{
		users:    make(map[string]*domain.User, len(s.users)),
		quests:   make([]*domain.Quest, len(s.quests)),
		levels:   s.levels,
		levelUps: make(map[string]*domain.LevelUp, len(s.levelUps)),
		audit:    make([]*domain.AuditLog, len(s.audit)),
	}
	for k, u := range s.users {
		cp := *u
		c.users[k] = &cp
	}
	copy(c.quests, s.quests)
	for k, lu := range s.levelUps {
		cp := *lu
		c.levelUps[k] = &cp
	}
	copy(c.audit, s.audit)
	return c
}

type Manager struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

// New создаёт хранилище с заданной таблицей уровней
func New(levels []domain.Level) *Manager {
	lv := make([]domain.Level, len(levels))
	copy(lv, levels)
	sort.Slice(lv, func(i, j int) bool { return lv[i].Level < lv[j].Level })

	return &Manager{
		st: &state{
			users:    make(map[string]*domain.User),
			levels:   lv,
			levelUps: make(map[string]*domain.LevelUp),
		},
		now: time.Now,
	}
}

// Stores - каждая операция атомарна сама по себе
func (m *Manager) Stores() repository.Stores {
	return stores{m: m}
}

func (m *Manager) WithTx(ctx context.Context, fn func(ctx context.Context, s repository.Stores) error) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.st.clone()
	defer func() {
		if p := recover(); p != nil {
			m.st = snapshot
			panic(p)
		}
		if err != nil {
			m.st = snapshot
		}
	}()

	return fn(ctx, stores{m: m, inTx: true})
}

// AuditLogs - копия журнала аудита
func (m *Manager) AuditLogs() []*domain.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.AuditLog, len(m.st.audit))
	copy(out, m.st.audit)
	return out
}

type stores struct {
	m    *Manager
	inTx bool
}

// do выполняет f под мьютексом, если он ещё не захвачен транзакцией
func (s stores) do(f func(st *state) error) error {
	if !s.inTx {
		s.m.mu.Lock()
		defer s.m.mu.Unlock()
	}
	return f(s.m.st)
}

func (s stores) Users() repository.UserStore       { return users{s} }
func (s stores) Quests() repository.QuestStore     { return quests{s} }
func (s stores) Levels() repository.LevelStore     { return levels{s} }
func (s stores) LevelUps() repository.LevelUpStore { return levelUps{s} }
func (s stores) Audit() repository.AuditStore      { return audit{s} }

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
}

type users struct{ stores }

func (r users) GetByID(_ context.Context, id string) (*domain.User, error) {
	var out *domain.User
	err := r.do(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return notFound("get user")
		}
		cp := *u
		out = &cp
		return nil
	})
	return out, err
}

func (r users) GetByGithubUsername(_ context.Context, login string) (*domain.User, error) {
	var out *domain.User
	err := r.do(func(st *state) error {
		for _, u := range st.users {
			if u.GithubUsername != "" && strings.EqualFold(u.GithubUsername, login) {
				cp := *u
				out = &cp
				return nil
			}
		}
		return notFound("get user by github username")
	})
	return out, err
}

func (r users) Ensure(_ context.Context, id, username string) (*domain.User, error) {
	var out *domain.User
	err := r.do(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			u = &domain.User{ID: id, Username: username, Level: domain.StartLevel, CreatedAt: r.m.now()}
			st.users[id] = u
		}
		cp := *u
		out = &cp
		return nil
	})
	return out, err
}

func (r users) IncrementStats(_ context.Context, id string, xp int64) (*domain.User, error) {
	var out *domain.User
	err := r.do(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return notFound("increment user stats")
		}
		u.TotalXP += xp
		u.MonthlyXP += xp
		u.QuestCount++
		u.MonthlyQuestCount++
		cp := *u
		out = &cp
		return nil
	})
	return out, err
}

func (r users) SetLevel(_ context.Context, id string, level int) error {
	return r.do(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return notFound("set level")
		}
		if level > u.Level {
			u.Level = level
		}
		return nil
	})
}

func (r users) CreditCoins(_ context.Context, id string, amount int64) (int64, error) {
	var coins int64
	err := r.do(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return notFound("credit coins")
		}
		u.Coins += amount
		coins = u.Coins
		return nil
	})
	return coins, err
}

func (r users) LinkGithub(_ context.Context, id, login string) (*domain.User, error) {
	login = strings.TrimSpace(login)
	var out *domain.User
	err := r.do(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return notFound("link github")
		}
		if login != "" {
			for _, other := range st.users {
				if other.ID != id && strings.EqualFold(other.GithubUsername, login) {
					return fmt.Errorf("link github: %w", repository.ErrConflict)
				}
			}
		}
		u.GithubUsername = login
		cp := *u
		out = &cp
		return nil
	})
	return out, err
}

func (r users) MonthlyTop(_ context.Context, limit int) ([]*domain.User, error) {
	var out []*domain.User
	err := r.do(func(st *state) error {
		for _, u := range st.users {
			cp := *u
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].MonthlyXP != out[j].MonthlyXP {
			return out[i].MonthlyXP > out[j].MonthlyXP
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

type quests struct{ stores }

func (r quests) Append(_ context.Context, q *domain.Quest) error {
	return r.do(func(st *state) error {
		if _, ok := st.users[q.UserID]; !ok {
			return notFound("append quest")
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		q.CreatedAt = r.m.now()
		cp := *q
		st.quests = append(st.quests, &cp)
		return nil
	})
}

func (r quests) ListRecent(_ context.Context, limit int) ([]*domain.Quest, error) {
	return r.list(limit, func(*domain.Quest) bool { return true })
}

func (r quests) ListForUser(_ context.Context, userID string, limit int) ([]*domain.Quest, error) {
	return r.list(limit, func(q *domain.Quest) bool { return q.UserID == userID })
}

// журнал хранится в порядке добавления, читаем с конца
func (r quests) list(limit int, match func(*domain.Quest) bool) ([]*domain.Quest, error) {
	var out []*domain.Quest
	err := r.do(func(st *state) error {
		for i := len(st.quests) - 1; i >= 0; i-- {
			if limit > 0 && len(out) == limit {
				break
			}
			if match(st.quests[i]) {
				cp := *st.quests[i]
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

type levels struct{ stores }

func (r levels) All(_ context.Context) ([]domain.Level, error) {
	var out []domain.Level
	err := r.do(func(st *state) error {
		out = make([]domain.Level, len(st.levels))
		copy(out, st.levels)
		return nil
	})
	return out, err
}

type levelUps struct{ stores }

func (r levelUps) Create(_ context.Context, lu *domain.LevelUp) (bool, error) {
	created := false
	err := r.do(func(st *state) error {
		for _, existing := range st.levelUps {
			if existing.UserID == lu.UserID && existing.Level == lu.Level {
				return nil
			}
		}
		if lu.ID == "" {
			lu.ID = uuid.NewString()
		}
		lu.Claimed = false
		lu.CreatedAt = r.m.now()
		cp := *lu
		st.levelUps[lu.ID] = &cp
		created = true
		return nil
	})
	return created, err
}

func (r levelUps) GetUnclaimed(_ context.Context, id, userID string) (*domain.LevelUp, error) {
	var out *domain.LevelUp
	err := r.do(func(st *state) error {
		lu, ok := st.levelUps[id]
		if !ok || lu.UserID != userID || lu.Claimed {
			return notFound("get unclaimed level up")
		}
		cp := *lu
		out = &cp
		return nil
	})
	return out, err
}

func (r levelUps) ListUnclaimed(_ context.Context, userID string) ([]*domain.LevelUp, error) {
	var out []*domain.LevelUp
	err := r.do(func(st *state) error {
		for _, lu := range st.levelUps {
			if lu.UserID == userID && !lu.Claimed {
				cp := *lu
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, err
}

func (r levelUps) MarkClaimed(_ context.Context, id, userID string) (bool, error) {
	ok := false
	err := r.do(func(st *state) error {
		lu, found := st.levelUps[id]
		if found && lu.UserID == userID && !lu.Claimed {
			lu.Claimed = true
			ok = true
		}
		return nil
	})
	return ok, err
}

type audit struct{ stores }

func (r audit) Create(_ context.Context, log *domain.AuditLog) error {
	return r.do(func(st *state) error {
		if log.ID == "" {
			log.ID = uuid.NewString()
		}
		log.CreatedAt = r.m.now()
		cp := *log
		st.audit = append(st.audit, &cp)
		return nil
	})
}

func (r audit) ListForUser(_ context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	var out []*domain.AuditLog
	err := r.do(func(st *state) error {
		for i := len(st.audit) - 1; i >= 0; i-- {
			if limit > 0 && len(out) == limit {
				break
			}
			if l := st.audit[i]; l.UserID != nil && *l.UserID == userID {
				cp := *l
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}
