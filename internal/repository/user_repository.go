package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/yamdb/internal/model"
)

const userColumns = `id, username, email, first_name, last_name, bio, role,
	is_staff, is_superuser, confirmation_code, created_at, updated_at`

// UserRepo persists accounts in the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.Bio, &u.Role,
		&u.IsStaff, &u.IsSuperuser, &u.ConfirmationCode, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// userWriteErr maps unique-key violations on users to domain errors.
func userWriteErr(err error) error {
	switch duplicateKey(err) {
	case "":
		return err
	case "uq_users_email":
		return ErrEmailExists
	default:
		return ErrUsernameExists
	}
}

// Create inserts u and fills its ID. Email is normalised to lower case.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (username, email, first_name, last_name, bio, role, confirmation_code)
		 VALUES (?,?,?,?,?,?,?)`,
		u.Username, u.Email, u.FirstName, u.LastName, u.Bio, u.Role, u.ConfirmationCode)
	if err != nil {
		return userWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
}

// List returns one page of users ordered by username together with the
// total number of matches. search filters by username substring.
func (r *UserRepo) List(ctx context.Context, search string, p model.Page) ([]*model.User, int, error) {
	where := ""
	var args []any
	if search != "" {
		where = " WHERE username LIKE ?"
		args = append(args, containsPattern(search))
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users"+where+" ORDER BY username LIMIT ? OFFSET ?",
		pageArgs(args, p)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*model.User, 0, p.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update writes the profile fields and role of u. The confirmation code
// is managed separately by SetConfirmationCode.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users
		 SET username=?, email=?, first_name=?, last_name=?, bio=?, role=?, updated_at=CURRENT_TIMESTAMP
		 WHERE id=?`,
		u.Username, u.Email, u.FirstName, u.LastName, u.Bio, u.Role, u.ID)
	return userWriteErr(err)
}

// SetConfirmationCode replaces the stored code hash. An empty hash
// leaves the user without a redeemable code.
func (r *UserRepo) SetConfirmationCode(ctx context.Context, id uint64, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET confirmation_code=? WHERE id=?", hash, id)
	return err
}

// DeleteByUsername removes a user; their reviews and comments go with
// them through ON DELETE CASCADE.
func (r *UserRepo) DeleteByUsername(ctx context.Context, username string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE username=?", username)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
