package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/yamdb/internal/model"
)

const commentSelect = `SELECT cm.id, cm.review_id, cm.author_id, u.username, cm.text, cm.pub_date
	FROM comments cm JOIN users u ON u.id = cm.author_id`

// CommentRepo encapsulates all database queries related to comments.
type CommentRepo struct {
	db *sql.DB
}

func NewCommentRepo(db *sql.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

func scanComment(s scanner) (*model.Comment, error) {
	var c model.Comment
	if err := s.Scan(&c.ID, &c.ReviewID, &c.AuthorID, &c.AuthorUsername, &c.Text, &c.PubDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListByReview returns one page of a review's comments, newest first.
func (r *CommentRepo) ListByReview(ctx context.Context, reviewID uint64, p model.Page) ([]*model.Comment, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM comments WHERE review_id = ?", reviewID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		commentSelect+" WHERE cm.review_id = ? ORDER BY cm.pub_date DESC, cm.id DESC LIMIT ? OFFSET ?",
		reviewID, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*model.Comment, 0, p.Limit)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetInReview fetches a comment only if it belongs to reviewID.
func (r *CommentRepo) GetInReview(ctx context.Context, reviewID, id uint64) (*model.Comment, error) {
	return scanComment(r.db.QueryRowContext(ctx,
		commentSelect+" WHERE cm.id = ? AND cm.review_id = ?", id, reviewID))
}

// Create inserts c and fills ID and PubDate.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO comments (review_id, author_id, text) VALUES (?, ?, ?)",
		c.ReviewID, c.AuthorID, c.Text)
	if err != nil {
		if isMissingParent(err) {
			return ErrReviewNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return r.db.QueryRowContext(ctx, "SELECT pub_date FROM comments WHERE id = ?", c.ID).Scan(&c.PubDate)
}

// Update writes the comment text.
func (r *CommentRepo) Update(ctx context.Context, c *model.Comment) error {
	_, err := r.db.ExecContext(ctx, "UPDATE comments SET text = ? WHERE id = ?", c.Text, c.ID)
	return err
}

func (r *CommentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCommentNotFound
	}
	return nil
}
