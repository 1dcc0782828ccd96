// Package quest содержит экономику опыта: типы квестов с базовым XP,
// теги с бонусным XP, извлечение тегов из текста и расчёт итогового XP.
// Таксономия передаётся явно, глобальных таблиц нет.
package quest

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var (
	ErrUnknownQuestType = errors.New("unknown quest type")
	ErrInvalidTaxonomy  = errors.New("invalid quest taxonomy")
)

// Канонические типы квестов
const (
	TypeCommit       = "commit"
	TypePROpened     = "pr_opened"
	TypePRMerged     = "pr_merged"
	TypePRReview     = "pr_review"
	TypeIssue        = "issue"
	TypeIssueComment = "issue_comment"
)

// Описание типа квеста
type TypeDef struct {
	Name    string
	BaseXP  int64
	Manual  bool // доступен для ручной отправки
	Order   int
	Aliases []string
}

// Описание тега
type TagDef struct {
	Name        string
	Description string
	BonusXP     int64
}

// Taxonomy - единственный источник правды для экономики опыта
type Taxonomy struct {
	Version         string
	ReviewCommentXP int64 // фиксированный XP за ревью без решения (state=commented)

	types   map[string]TypeDef
	tags    map[string]TagDef
	aliases map[string]string
}

// формат файла таксономии
type taxonomyFile struct {
	Version         string                  `toml:"version"`
	ReviewCommentXP int64                   `toml:"review_comment_xp"`
	Types           map[string]typeFileItem `toml:"types"`
	Tags            map[string]tagFileItem  `toml:"tags"`
}

type typeFileItem struct {
	Name    string   `toml:"name"`
	XP      int64    `toml:"xp"`
	Manual  bool     `toml:"manual"`
	Order   int      `toml:"order"`
	Aliases []string `toml:"aliases"`
}

type tagFileItem struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	XP          int64  `toml:"xp"`
}

// NewTaxonomy проверяет и собирает таксономию
func NewTaxonomy(version string, reviewCommentXP int64, types map[string]TypeDef, tags map[string]TagDef) (*Taxonomy, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("%w: no quest types", ErrInvalidTaxonomy)
	}
	if reviewCommentXP < 0 {
		return nil, fmt.Errorf("%w: negative review_comment_xp", ErrInvalidTaxonomy)
	}

	t := &Taxonomy{
		Version:         version,
		ReviewCommentXP: reviewCommentXP,
		types:           make(map[string]TypeDef, len(types)),
		tags:            make(map[string]TagDef, len(tags)),
		aliases:         make(map[string]string),
	}

	for name, def := range types {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return nil, fmt.Errorf("%w: empty quest type name", ErrInvalidTaxonomy)
		}
		if def.BaseXP < 0 {
			return nil, fmt.Errorf("%w: negative xp for %q", ErrInvalidTaxonomy, key)
		}
		t.types[key] = def
	}

	for name, def := range t.types {
		for _, alias := range def.Aliases {
			a := strings.ToLower(strings.TrimSpace(alias))
			if _, clash := t.types[a]; clash {
				return nil, fmt.Errorf("%w: alias %q shadows a quest type", ErrInvalidTaxonomy, a)
			}
			t.aliases[a] = name
		}
	}

	for name, def := range tags {
		key := strings.ToLower(strings.TrimSpace(name))
		if !tagNameRe.MatchString(key) {
			return nil, fmt.Errorf("%w: bad tag name %q", ErrInvalidTaxonomy, name)
		}
		if def.BonusXP < 0 {
			return nil, fmt.Errorf("%w: negative bonus for tag %q", ErrInvalidTaxonomy, key)
		}
		t.tags[key] = def
	}

	return t, nil
}

// DefaultTaxonomy - текущая экономика
func DefaultTaxonomy() *Taxonomy {
	t, err := NewTaxonomy("2024-06", 1,
		map[string]TypeDef{
			TypeCommit:       {Name: "Commit", BaseXP: 1, Manual: true, Order: 1, Aliases: []string{"github_commit"}},
			TypePROpened:     {Name: "PR Opened", BaseXP: 5, Manual: true, Order: 2, Aliases: []string{"github_pr_opened"}},
			TypePRMerged:     {Name: "PR Merged", BaseXP: 8, Manual: true, Order: 3, Aliases: []string{"github_pr_merged"}},
			TypePRReview:     {Name: "PR Review", BaseXP: 3, Manual: true, Order: 4, Aliases: []string{"github_pr_review"}},
			TypeIssue:        {Name: "Issue", BaseXP: 3, Order: 5, Aliases: []string{"github_issue"}},
			TypeIssueComment: {Name: "Comment", BaseXP: 2, Order: 6, Aliases: []string{"github_issue_comment"}},
		},
		map[string]TagDef{
			"bug":      {Name: "Bug Fix", Description: "Fixing a bug or defect", BonusXP: 5},
			"feature":  {Name: "Feature", Description: "Adding new functionality", BonusXP: 6},
			"hotfix":   {Name: "Hotfix", Description: "Critical production fix", BonusXP: 6},
			"refactor": {Name: "Refactor", Description: "Code improvement without new features", BonusXP: 4},
		},
	)
	if err != nil {
		panic(err)
	}
	return t
}

// LoadTaxonomy читает таксономию из TOML файла
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy: %w", err)
	}
	return ParseTaxonomy(data)
}

// ParseTaxonomy разбирает TOML
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var f taxonomyFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTaxonomy, err)
	}

	types := make(map[string]TypeDef, len(f.Types))
	for name, it := range f.Types {
		types[name] = TypeDef{Name: it.Name, BaseXP: it.XP, Manual: it.Manual, Order: it.Order, Aliases: it.Aliases}
	}
	tags := make(map[string]TagDef, len(f.Tags))
	for name, it := range f.Tags {
		tags[name] = TagDef{Name: it.Name, Description: it.Description, BonusXP: it.XP}
	}

	return NewTaxonomy(f.Version, f.ReviewCommentXP, types, tags)
}

// Canonical приводит тип (в том числе устаревший) к каноническому имени
func (t *Taxonomy) Canonical(questType string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(questType))
	if _, ok := t.types[key]; ok {
		return key, true
	}
	if name, ok := t.aliases[key]; ok {
		return name, true
	}
	return "", false
}

// BaseXP возвращает базовый XP типа
func (t *Taxonomy) BaseXP(questType string) (int64, error) {
	name, ok := t.Canonical(questType)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownQuestType, questType)
	}
	return t.types[name].BaseXP, nil
}

// TagBonus возвращает бонус тега; пустой или неизвестный тег даёт 0
func (t *Taxonomy) TagBonus(tag string) int64 {
	def, ok := t.tags[normalizeTag(tag)]
	if !ok {
		return 0
	}
	return def.BonusXP
}

func (t *Taxonomy) HasTag(tag string) bool {
	_, ok := t.tags[normalizeTag(tag)]
	return ok
}

// IsManual - можно ли отправить тип вручную
func (t *Taxonomy) IsManual(questType string) bool {
	name, ok := t.Canonical(questType)
	if !ok {
		return false
	}
	return t.types[name].Manual
}

// ManualTypes - типы для ручной отправки в порядке отображения
func (t *Taxonomy) ManualTypes() []string {
	var out []string
	for name, def := range t.types {
		if def.Manual {
			out = append(out, name)
		}
	}
	t.sortTypes(out)
	return out
}

// Types - все канонические типы
func (t *Taxonomy) Types() []string {
	out := make([]string, 0, len(t.types))
	for name := range t.types {
		out = append(out, name)
	}
	t.sortTypes(out)
	return out
}

func (t *Taxonomy) Type(questType string) (TypeDef, bool) {
	name, ok := t.Canonical(questType)
	if !ok {
		return TypeDef{}, false
	}
	return t.types[name], true
}

// Tags - словарь тегов по алфавиту
func (t *Taxonomy) Tags() []string {
	out := make([]string, 0, len(t.tags))
	for name := range t.tags {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (t *Taxonomy) Tag(tag string) (TagDef, bool) {
	def, ok := t.tags[normalizeTag(tag)]
	return def, ok
}

func (t *Taxonomy) sortTypes(names []string) {
	sort.Slice(names, func(i, j int) bool {
		a, b := t.types[names[i]], t.types[names[j]]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return names[i] < names[j]
	})
}

var tagNameRe = regexp.MustCompile(`^\w+$`)

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
}
