package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/yamdb/internal/model"
)

// slugTable implements the shared queries for the `categories` and
// `genres` tables, which have the same id/name/slug shape. Rows are
// returned as model.Category; genre callers convert them.
type slugTable struct {
	db       *sql.DB
	table    string
	notFound error
}

func (t slugTable) writeErr(err error) error {
	switch duplicateKey(err) {
	case "":
		return err
	case "uq_" + t.table + "_slug":
		return ErrSlugExists
	default:
		return ErrNameExists
	}
}

func (t slugTable) list(ctx context.Context, search string, p model.Page) ([]model.Category, int, error) {
	where := ""
	var args []any
	if search != "" {
		where = " WHERE name LIKE ?"
		args = append(args, containsPattern(search))
	}

	var total int
	if err := t.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.table+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := t.db.QueryContext(ctx,
		"SELECT id, name, slug FROM "+t.table+where+" ORDER BY slug LIMIT ? OFFSET ?",
		pageArgs(args, p)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Category, 0, p.Limit)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (t slugTable) create(ctx context.Context, name, slug string) (uint64, error) {
	res, err := t.db.ExecContext(ctx, "INSERT INTO "+t.table+" (name, slug) VALUES (?, ?)", name, slug)
	if err != nil {
		return 0, t.writeErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (t slugTable) getBySlug(ctx context.Context, slug string) (model.Category, error) {
	var c model.Category
	err := t.db.QueryRowContext(ctx, "SELECT id, name, slug FROM "+t.table+" WHERE slug = ?", slug).
		Scan(&c.ID, &c.Name, &c.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		return c, t.notFound
	}
	return c, err
}

func (t slugTable) getBySlugs(ctx context.Context, slugs []string) ([]model.Category, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	args := make([]any, len(slugs))
	for i, s := range slugs {
		args[i] = s
	}
	rows, err := t.db.QueryContext(ctx,
		"SELECT id, name, slug FROM "+t.table+" WHERE slug IN ("+placeholders(len(slugs))+") ORDER BY slug",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (t slugTable) deleteBySlug(ctx context.Context, slug string) error {
	res, err := t.db.ExecContext(ctx, "DELETE FROM "+t.table+" WHERE slug = ?", slug)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return t.notFound
	}
	return nil
}
