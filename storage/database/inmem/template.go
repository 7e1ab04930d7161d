package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/chapa-studio/chapa/core"
	"github.com/chapa-studio/chapa/core/template"
)

type templateRepository struct {
	db *templateTable
}

var _ template.Repository = (*templateRepository)(nil) // interface compliance check

func NewTemplateRepository(db *DB) *templateRepository {
	return &templateRepository{db: db.template}
}

func (repo *templateRepository) query() []template.Template {
	tpls := make([]template.Template, 0, len(repo.db.table))
	for _, tpl := range repo.db.table {
		cp := *tpl
		cp.Document = tpl.Document.Clone()
		tpls = append(tpls, cp)
	}
	return tpls
}

func (repo *templateRepository) CreateTemplate(_ context.Context, tpl template.Template) (template.Template, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if tpl.ID == "" {
		tpl.ID = uuid.New().String()
	}
	stored := tpl
	stored.Document = tpl.Document.Clone()
	repo.db.table[tpl.ID] = &stored
	return tpl, nil
}

func (repo *templateRepository) GetTemplateByID(_ context.Context, id string) (template.Template, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if tpl, ok := repo.db.table[id]; ok {
		cp := *tpl
		cp.Document = tpl.Document.Clone()
		return cp, nil
	}
	return template.Template{}, template.ErrNotFound
}

func (repo *templateRepository) FilterTemplates(_ context.Context, filter *template.QueryFilter, ordering []core.DBOrdering) ([]template.Template, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tpls := repo.query()
	if filter != nil && !filter.IsEmpty() {
		matched := tpls[:0]
		for _, tpl := range tpls {
			if matchTemplate(tpl, filter) {
				matched = append(matched, tpl)
			}
		}
		tpls = matched
	}
	orderTemplates(tpls, ordering)
	return tpls, nil
}

func matchTemplate(tpl template.Template, filter *template.QueryFilter) bool {
	if filter.Search != "" && !strings.Contains(strings.ToLower(tpl.Name), strings.ToLower(filter.Search)) {
		return false
	}
	if filter.Kind != "" && tpl.Kind != filter.Kind {
		return false
	}
	if filter.OwnerID != "" && tpl.OwnerID != filter.OwnerID {
		return false
	}
	if !filter.CreatedFrom.IsZero() && tpl.CreatedAt.Before(filter.CreatedFrom) {
		return false
	}
	if !filter.CreatedTo.IsZero() && tpl.CreatedAt.After(filter.CreatedTo) {
		return false
	}
	return true
}

func orderTemplates(tpls []template.Template, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		return
	}
	ord := ordering[0]
	sort.SliceStable(tpls, func(i, j int) bool {
		var less bool
		switch ord.Field {
		case "created_at":
			less = tpls[i].CreatedAt.Before(tpls[j].CreatedAt)
		case "updated_at":
			less = tpls[i].UpdatedAt.Before(tpls[j].UpdatedAt)
		default:
			less = strings.ToLower(tpls[i].Name) < strings.ToLower(tpls[j].Name)
		}
		if !ord.Ascending {
			return !less
		}
		return less
	})
}

func (repo *templateRepository) UpdateTemplate(_ context.Context, tpl template.Template) (template.Template, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[tpl.ID]; !ok {
		return template.Template{}, template.ErrNotFound
	}
	stored := tpl
	stored.Document = tpl.Document.Clone()
	repo.db.table[tpl.ID] = &stored
	return tpl, nil
}

func (repo *templateRepository) DeleteTemplatesByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
