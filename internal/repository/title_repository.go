package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/yamdb/internal/model"
)

// titleSelect reads titles with their category and the average review
// score. The rating is aggregated on every read; nothing is cached or
// stored, so it always reflects the current reviews.
const titleSelect = `SELECT t.id, t.name, t.year, t.description,
	c.id, c.name, c.slug, AVG(r.score)
	FROM titles t
	LEFT JOIN categories c ON c.id = t.category_id
	LEFT JOIN reviews r ON r.title_id = t.id`

const titleGroupBy = ` GROUP BY t.id, t.name, t.year, t.description, c.id, c.name, c.slug`

// TitleRepo encapsulates all database queries related to titles and
// their genre links.
type TitleRepo struct {
	db *sql.DB
}

func NewTitleRepo(db *sql.DB) *TitleRepo {
	return &TitleRepo{db: db}
}

func scanTitle(s scanner) (*model.Title, error) {
	var (
		t       model.Title
		year    sql.NullInt64
		desc    sql.NullString
		catID   sql.NullInt64
		catName sql.NullString
		catSlug sql.NullString
		rating  sql.NullFloat64
	)
	if err := s.Scan(&t.ID, &t.Name, &year, &desc, &catID, &catName, &catSlug, &rating); err != nil {
		return nil, err
	}
	if year.Valid {
		y := int(year.Int64)
		t.Year = &y
	}
	if desc.Valid {
		t.Description = &desc.String
	}
	if catID.Valid {
		t.Category = &model.Category{ID: uint64(catID.Int64), Name: catName.String, Slug: catSlug.String}
	}
	if rating.Valid {
		t.Rating = &rating.Float64
	}
	t.Genres = []model.Genre{}
	return &t, nil
}

// List returns one page of titles matching f, ordered by id, with
// genres and rating filled in, plus the total number of matches.
func (r *TitleRepo) List(ctx context.Context, f model.TitleFilter, p model.Page) ([]*model.Title, int, error) {
	where, args := titleWhere(f)

	var total int
	countQ := "SELECT COUNT(*) FROM titles t LEFT JOIN categories c ON c.id = t.category_id" + where
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		titleSelect+where+titleGroupBy+" ORDER BY t.id LIMIT ? OFFSET ?",
		pageArgs(args, p)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*model.Title, 0, p.Limit)
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadGenres(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetByID returns ErrTitleNotFound when no title has the id.
func (r *TitleRepo) GetByID(ctx context.Context, id uint64) (*model.Title, error) {
	t, err := scanTitle(r.db.QueryRowContext(ctx, titleSelect+" WHERE t.id = ?"+titleGroupBy, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}
	if err := r.loadGenres(ctx, []*model.Title{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// Exists reports whether a title with the id exists.
func (r *TitleRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM titles WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// loadGenres attaches genres to titles with a single IN query.
func (r *TitleRepo) loadGenres(ctx context.Context, titles []*model.Title) error {
	if len(titles) == 0 {
		return nil
	}
	byID := make(map[uint64]*model.Title, len(titles))
	args := make([]any, 0, len(titles))
	for _, t := range titles {
		byID[t.ID] = t
		args = append(args, t.ID)
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT tg.title_id, g.id, g.name, g.slug
		 FROM title_genres tg JOIN genres g ON g.id = tg.genre_id
		 WHERE tg.title_id IN (`+placeholders(len(args))+`)
		 ORDER BY g.slug`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			titleID uint64
			g       model.Genre
		)
		if err := rows.Scan(&titleID, &g.ID, &g.Name, &g.Slug); err != nil {
			return err
		}
		if t, ok := byID[titleID]; ok {
			t.Genres = append(t.Genres, g)
		}
	}
	return rows.Err()
}

func categoryID(t *model.Title) any {
	if t.Category == nil {
		return nil
	}
	return t.Category.ID
}

func genreIDs(t *model.Title) []uint64 {
	ids := make([]uint64, len(t.Genres))
	for i, g := range t.Genres {
		ids[i] = g.ID
	}
	return ids
}

// Create inserts t and its genre links in one transaction and fills t.ID.
func (r *TitleRepo) Create(ctx context.Context, t *model.Title) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO titles (name, year, description, category_id) VALUES (?, ?, ?, ?)",
		t.Name, t.Year, t.Description, categoryID(t))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return insertTitleGenres(ctx, tx, t.ID, genreIDs(t))
}

// Update writes every column of t. When replaceGenres is set the genre
// links are replaced by t.Genres; otherwise they are left untouched.
func (r *TitleRepo) Update(ctx context.Context, t *model.Title, replaceGenres bool) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		"UPDATE titles SET name = ?, year = ?, description = ?, category_id = ? WHERE id = ?",
		t.Name, t.Year, t.Description, categoryID(t), t.ID); err != nil {
		return err
	}
	if !replaceGenres {
		return nil
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM title_genres WHERE title_id = ?", t.ID); err != nil {
		return err
	}
	return insertTitleGenres(ctx, tx, t.ID, genreIDs(t))
}

func insertTitleGenres(ctx context.Context, tx *sql.Tx, titleID uint64, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, 0, 2*len(ids))
	values := ""
	for i, gid := range ids {
		if i > 0 {
			values += ", "
		}
		values += "(?, ?)"
		args = append(args, titleID, gid)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT IGNORE INTO title_genres (title_id, genre_id) VALUES "+values, args...); err != nil {
		return fmt.Errorf("link genres: %w", err)
	}
	return nil
}

// Delete removes a title; reviews, comments and genre links cascade.
func (r *TitleRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM titles WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTitleNotFound
	}
	return nil
}
