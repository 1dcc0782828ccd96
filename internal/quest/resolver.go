package quest

// Resolver считает итоговый XP: база типа плюс бонус тега
type Resolver struct {
	taxonomy *Taxonomy
}

func NewResolver(t *Taxonomy) *Resolver {
	return &Resolver{taxonomy: t}
}

func (r *Resolver) Taxonomy() *Taxonomy {
	return r.taxonomy
}

// Resolve не имеет побочных эффектов. Ошибка только ErrUnknownQuestType,
// неизвестный тег просто не даёт бонуса
func (r *Resolver) Resolve(questType, tag string) (int64, error) {
	base, err := r.taxonomy.BaseXP(questType)
	if err != nil {
		return 0, err
	}
	return base + r.taxonomy.TagBonus(tag), nil
}
