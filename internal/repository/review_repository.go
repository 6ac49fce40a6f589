package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/yamdb/internal/model"
)

const reviewSelect = `SELECT r.id, r.title_id, r.author_id, u.username, r.text, r.score, r.pub_date
	FROM reviews r JOIN users u ON u.id = r.author_id`

// mysqlNoReferencedRow is ER_NO_REFERENCED_ROW_2: the parent row vanished
// between the existence check and the insert.
const mysqlNoReferencedRow = 1452

func isMissingParent(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlNoReferencedRow
}

// ReviewRepo encapsulates all database queries related to reviews.
type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

func scanReview(s scanner) (*model.Review, error) {
	var rv model.Review
	if err := s.Scan(&rv.ID, &rv.TitleID, &rv.AuthorID, &rv.AuthorUsername, &rv.Text, &rv.Score, &rv.PubDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &rv, nil
}

// ListByTitle returns one page of a title's reviews, newest first.
func (r *ReviewRepo) ListByTitle(ctx context.Context, titleID uint64, p model.Page) ([]*model.Review, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reviews WHERE title_id = ?", titleID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		reviewSelect+" WHERE r.title_id = ? ORDER BY r.pub_date DESC, r.id DESC LIMIT ? OFFSET ?",
		titleID, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*model.Review, 0, p.Limit)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetInTitle fetches a review only if it belongs to titleID, so a valid
// review id under the wrong title reads as not found.
func (r *ReviewRepo) GetInTitle(ctx context.Context, titleID, id uint64) (*model.Review, error) {
	return scanReview(r.db.QueryRowContext(ctx,
		reviewSelect+" WHERE r.id = ? AND r.title_id = ?", id, titleID))
}

// ExistsForAuthor reports whether authorID already reviewed titleID.
func (r *ReviewRepo) ExistsForAuthor(ctx context.Context, titleID, authorID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM reviews WHERE title_id = ? AND author_id = ? LIMIT 1", titleID, authorID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Create inserts rv and fills ID and PubDate. A concurrent review by the
// same author on the same title fails on uq_reviews_author_title and is
// reported as ErrReviewExists.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO reviews (title_id, author_id, text, score) VALUES (?, ?, ?, ?)",
		rv.TitleID, rv.AuthorID, rv.Text, rv.Score)
	if err != nil {
		switch {
		case duplicateKey(err) != "":
			return ErrReviewExists
		case isMissingParent(err):
			return ErrTitleNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	return r.db.QueryRowContext(ctx, "SELECT pub_date FROM reviews WHERE id = ?", rv.ID).Scan(&rv.PubDate)
}

// Update writes text and score. Title, author and pub_date never change.
func (r *ReviewRepo) Update(ctx context.Context, rv *model.Review) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE reviews SET text = ?, score = ? WHERE id = ?", rv.Text, rv.Score, rv.ID)
	return err
}

// Delete removes a review and, through ON DELETE CASCADE, its comments.
func (r *ReviewRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReviewNotFound
	}
	return nil
}
