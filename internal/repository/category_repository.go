package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/yamdb/internal/model"
)

// CategoryRepo encapsulates all database queries related to categories.
// Deleting a category leaves its titles in place with a NULL
// category_id (ON DELETE SET NULL).
type CategoryRepo struct {
	t slugTable
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{t: slugTable{db: db, table: "categories", notFound: ErrCategoryNotFound}}
}

// List returns categories ordered by slug and the total match count.
func (r *CategoryRepo) List(ctx context.Context, search string, p model.Page) ([]model.Category, int, error) {
	return r.t.list(ctx, search, p)
}

// Create inserts c and fills its ID.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	id, err := r.t.create(ctx, c.Name, c.Slug)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// GetBySlug returns ErrCategoryNotFound for unknown slugs.
func (r *CategoryRepo) GetBySlug(ctx context.Context, slug string) (model.Category, error) {
	return r.t.getBySlug(ctx, slug)
}

func (r *CategoryRepo) DeleteBySlug(ctx context.Context, slug string) error {
	return r.t.deleteBySlug(ctx, slug)
}
