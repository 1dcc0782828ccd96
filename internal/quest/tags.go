package quest

import (
	"regexp"
	"strings"
)

// #слово до границы слова: "#bug-fix" даёт bug, "#bugfix" не даёт ничего
var tagTokenRe = regexp.MustCompile(`#(\w+)`)

// ExtractTags возвращает теги словаря в порядке появления в тексте.
// Регистр не важен, неизвестные теги пропускаются
func (t *Taxonomy) ExtractTags(text string) []string {
	matches := tagTokenRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if _, ok := t.tags[tag]; ok {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// FirstTag - единственный тег, который учитывается при начислении.
// Пустая строка, если тегов нет
func (t *Taxonomy) FirstTag(text string) string {
	tags := t.ExtractTags(text)
	if len(tags) == 0 {
		return ""
	}
	return tags[0]
}
