package pgrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/chapa-studio/chapa/core"
	"github.com/chapa-studio/chapa/core/template"
)

type dbTemplate struct {
	ID        string      `db:"id"`
	OwnerID   string      `db:"owner_id"`
	Name      string      `db:"name"`
	Kind      string      `db:"kind"`
	SourceURL null.String `db:"source_url"`
	Document  []byte      `db:"document"` // JSONB, unified shape
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (t dbTemplate) template() (template.Template, error) {
	doc, err := template.DecodeDocument(t.Document)
	if err != nil {
		return template.Template{}, errors.Wrapf(err, "decoding document of template %s", t.ID)
	}
	return template.Template{
		ID:        t.ID,
		OwnerID:   t.OwnerID,
		Name:      t.Name,
		Kind:      t.Kind,
		SourceURL: t.SourceURL.String,
		Document:  doc,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}, nil
}

func rowTemplate(tpl template.Template) (dbTemplate, error) {
	doc, err := template.EncodeUnified(tpl.Document)
	if err != nil {
		return dbTemplate{}, err
	}
	return dbTemplate{
		ID:        tpl.ID,
		OwnerID:   tpl.OwnerID,
		Name:      tpl.Name,
		Kind:      tpl.Kind,
		SourceURL: null.NewString(tpl.SourceURL, tpl.SourceURL != ""),
		Document:  doc,
		CreatedAt: tpl.CreatedAt.UTC(),
		UpdatedAt: tpl.UpdatedAt.UTC(),
	}, nil
}

type templateRepository struct {
	db *sqlx.DB
}

var _ template.Repository = (*templateRepository)(nil) // interface compliance check

func NewTemplateRepository(db *sqlx.DB) *templateRepository {
	return &templateRepository{db: db}
}

func trapTemplateNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return template.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *templateRepository) CreateTemplate(ctx context.Context, tpl template.Template) (template.Template, error) {
	tpl.ID = uuid.New().String()
	row, err := rowTemplate(tpl)
	if err != nil {
		return template.Template{}, err
	}
	_, err = repo.db.NamedExecContext(ctx, `
		INSERT INTO template (id, owner_id, name, kind, source_url, document, created_at, updated_at)
		VALUES (:id, :owner_id, :name, :kind, :source_url, :document, :created_at, :updated_at)`,
		row)
	if err != nil {
		return template.Template{}, errors.Wrap(err, "inserting template")
	}
	return tpl, nil
}

func (repo *templateRepository) GetTemplateByID(ctx context.Context, id string) (template.Template, error) {
	var row dbTemplate
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM template WHERE id = $1`, id); err != nil {
		return template.Template{}, trapTemplateNoRowsErr(err, "getting template")
	}
	return row.template()
}

func (repo *templateRepository) FilterTemplates(ctx context.Context, filter *template.QueryFilter, ordering []core.DBOrdering) ([]template.Template, error) {
	query := `SELECT * FROM template`
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Search != "" {
			conds = append(conds, "name ILIKE "+arg("%"+filter.Search+"%"))
		}
		if filter.Kind != "" {
			conds = append(conds, "kind = "+arg(filter.Kind))
		}
		if filter.OwnerID != "" {
			conds = append(conds, "owner_id = "+arg(filter.OwnerID))
		}
		if !filter.CreatedFrom.IsZero() {
			conds = append(conds, "created_at >= "+arg(filter.CreatedFrom.UTC()))
		}
		if !filter.CreatedTo.IsZero() {
			conds = append(conds, "created_at <= "+arg(filter.CreatedTo.UTC()))
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderClause(ordering, map[string]bool{"name": true, "kind": true, "created_at": true, "updated_at": true}, "updated_at DESC")

	var rows []dbTemplate
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering templates")
	}
	tpls := make([]template.Template, 0, len(rows))
	for _, row := range rows {
		tpl, err := row.template()
		if err != nil {
			return nil, err
		}
		tpls = append(tpls, tpl)
	}
	return tpls, nil
}

func (repo *templateRepository) UpdateTemplate(ctx context.Context, tpl template.Template) (template.Template, error) {
	row, err := rowTemplate(tpl)
	if err != nil {
		return template.Template{}, err
	}
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE template
		SET name = :name, source_url = :source_url, document = :document, updated_at = :updated_at
		WHERE id = :id`,
		row)
	if err != nil {
		return template.Template{}, errors.Wrap(err, "updating template")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return template.Template{}, template.ErrNotFound
	}
	return tpl, nil
}

func (repo *templateRepository) DeleteTemplatesByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM template WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting templates")
	}
	_, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	return errors.Wrap(err, "deleting templates")
}
