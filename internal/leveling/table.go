// Package leveling определяет уровень по накопленному опыту.
// Таблица уровней неизменяема после создания, все функции чистые.
package leveling

import (
	"errors"
	"fmt"
	"sort"

	"questboard/internal/domain"
)

var ErrInvalidTable = errors.New("invalid level table")

// Table - упорядоченная по возрастанию таблица уровней
type Table struct {
	levels []domain.Level
}

// NewTable проверяет монотонность порогов: номера уровней уникальны,
// xp_required строго растёт вместе с номером
func NewTable(levels []domain.Level) (*Table, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidTable)
	}

	sorted := make([]domain.Level, len(levels))
	copy(sorted, levels)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Level < sorted[j].Level })

	for i, l := range sorted {
		if l.XPRequired < 0 {
			return nil, fmt.Errorf("%w: level %d has negative threshold", ErrInvalidTable, l.Level)
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if prev.Level == l.Level {
			return nil, fmt.Errorf("%w: duplicate level %d", ErrInvalidTable, l.Level)
		}
		if prev.XPRequired >= l.XPRequired {
			return nil, fmt.Errorf("%w: threshold of level %d must exceed level %d", ErrInvalidTable, l.Level, prev.Level)
		}
	}

	return &Table{levels: sorted}, nil
}

// Levels возвращает копию таблицы
func (t *Table) Levels() []domain.Level {
	out := make([]domain.Level, len(t.levels))
	copy(out, t.levels)
	return out
}

func (t *Table) Max() domain.Level {
	return t.levels[len(t.levels)-1]
}

// LevelFor - наибольший уровень, порог которого не превышает totalXP.
// 0, если не достигнут даже первый порог
func (t *Table) LevelFor(totalXP int64) int {
	// первый индекс, чей порог больше totalXP
	i := sort.Search(len(t.levels), func(i int) bool { return t.levels[i].XPRequired > totalXP })
	if i == 0 {
		return 0
	}
	return t.levels[i-1].Level
}

func (t *Table) Get(level int) (domain.Level, bool) {
	i := t.index(level)
	if i < 0 {
		return domain.Level{}, false
	}
	return t.levels[i], true
}

// Next - следующий уровень после level; false на максимальном
func (t *Table) Next(level int) (domain.Level, bool) {
	i := sort.Search(len(t.levels), func(i int) bool { return t.levels[i].Level > level })
	if i == len(t.levels) {
		return domain.Level{}, false
	}
	return t.levels[i], true
}

// XPToNext - сколько не хватает до следующего уровня, 0 на максимальном
func (t *Table) XPToNext(totalXP int64) int64 {
	next, ok := t.Next(t.LevelFor(totalXP))
	if !ok {
		return 0
	}
	if d := next.XPRequired - totalXP; d > 0 {
		return d
	}
	return 0
}

// Progress - процент пути от текущего уровня к следующему, в [0, 100].
// На максимальном уровне 100
func (t *Table) Progress(totalXP int64) float64 {
	level := t.LevelFor(totalXP)
	next, ok := t.Next(level)
	if !ok {
		return 100
	}

	var floor int64
	if cur, ok := t.Get(level); ok {
		floor = cur.XPRequired
	}

	span := next.XPRequired - floor
	if span <= 0 {
		return 100
	}
	p := float64(totalXP-floor) / float64(span) * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// Crossed - уровни в (from, to], для каждого создаётся свой LevelUp
func (t *Table) Crossed(from, to int) []domain.Level {
	if to <= from {
		return nil
	}
	var out []domain.Level
	for _, l := range t.levels {
		if l.Level > from && l.Level <= to {
			out = append(out, l)
		}
	}
	return out
}

// Advance пересчитывает уровень после начисления. Уровень никогда не
// понижается: если кэшированный уровень выше вычисленного, он сохраняется
func (t *Table) Advance(currentLevel int, totalXP int64) (int, []domain.Level) {
	target := t.LevelFor(totalXP)
	if target <= currentLevel {
		return currentLevel, nil
	}
	return target, t.Crossed(currentLevel, target)
}

func (t *Table) index(level int) int {
	i := sort.Search(len(t.levels), func(i int) bool { return t.levels[i].Level >= level })
	if i < len(t.levels) && t.levels[i].Level == level {
		return i
	}
	return -1
}
