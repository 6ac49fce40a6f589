package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"other error", errors.New("boom"), ""},
		{"other mysql error", &mysql.MySQLError{Number: 1452, Message: "fk"}, ""},
		{
			"mysql 8 format",
			&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.c' for key 'users.uq_users_email'"},
			"uq_users_email",
		},
		{
			"mysql 5.7 format",
			&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-2' for key 'uq_reviews_author_title'"},
			"uq_reviews_author_title",
		},
		{
			"wrapped",
			fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key 'genres.uq_genres_slug'"}),
			"uq_genres_slug",
		},
		{"no key in message", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, "?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, duplicateKey(tt.err))
		})
	}
}

func TestNotFoundErrorsWrapSentinel(t *testing.T) {
	for _, err := range []error{ErrUserNotFound, ErrCategoryNotFound, ErrGenreNotFound, ErrTitleNotFound, ErrReviewNotFound, ErrCommentNotFound} {
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, "title not found", ErrTitleNotFound.Error())
	assert.ErrorIs(t, ErrReviewExists, ErrConflict)
}
