package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/yamdb/internal/model"
)

// GenreRepo encapsulates all database queries related to genres.
type GenreRepo struct {
	t slugTable
}

func NewGenreRepo(db *sql.DB) *GenreRepo {
	return &GenreRepo{t: slugTable{db: db, table: "genres", notFound: ErrGenreNotFound}}
}

func toGenres(cs []model.Category) []model.Genre {
	out := make([]model.Genre, len(cs))
	for i, c := range cs {
		out[i] = model.Genre(c)
	}
	return out
}

// List returns genres ordered by slug and the total match count.
func (r *GenreRepo) List(ctx context.Context, search string, p model.Page) ([]model.Genre, int, error) {
	cs, total, err := r.t.list(ctx, search, p)
	if err != nil {
		return nil, 0, err
	}
	return toGenres(cs), total, nil
}

// Create inserts g and fills its ID.
func (r *GenreRepo) Create(ctx context.Context, g *model.Genre) error {
	id, err := r.t.create(ctx, g.Name, g.Slug)
	if err != nil {
		return err
	}
	g.ID = id
	return nil
}

// GetBySlugs returns the genres matching slugs. Unknown slugs are simply
// absent from the result; callers compare lengths to detect them.
func (r *GenreRepo) GetBySlugs(ctx context.Context, slugs []string) ([]model.Genre, error) {
	cs, err := r.t.getBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	return toGenres(cs), nil
}

func (r *GenreRepo) DeleteBySlug(ctx context.Context, slug string) error {
	return r.t.deleteBySlug(ctx, slug)
}
