//go:build integration

package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/iliyamo/yamdb/internal/model"
	"github.com/iliyamo/yamdb/internal/repository"
)

// setupMySQL starts a MySQL 8 container loaded with the reference schema.
// It skips when no container runtime is reachable.
func setupMySQL(t *testing.T) *sql.DB {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	ctr, err := tcmysql.Run(ctx, "mysql:8.0.36",
		tcmysql.WithDatabase("yamdb"),
		tcmysql.WithUsername("yamdb"),
		tcmysql.WithPassword("yamdb"),
		tcmysql.WithScripts("../database/schema.sql"),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start mysql container")

	dsn, err := ctr.ConnectionString(ctx, "parseTime=true")
	require.NoError(t, err)
	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	require.NoError(t, db.PingContext(pingCtx))
	return db
}

func TestMySQLRepositories(t *testing.T) {
	db := setupMySQL(t)
	ctx := context.Background()

	users := repository.NewUserRepo(db)
	categories := repository.NewCategoryRepo(db)
	titles := repository.NewTitleRepo(db)
	reviews := repository.NewReviewRepo(db)
	comments := repository.NewCommentRepo(db)

	alice := &model.User{Username: "alice", Email: "alice@example.com"}
	bob := &model.User{Username: "bob", Email: "bob@example.com"}
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))

	movie := &model.Category{Name: "Movie", Slug: "movie"}
	require.NoError(t, categories.Create(ctx, movie))
	dune := &model.Title{Name: "Dune", Category: movie}
	require.NoError(t, titles.Create(ctx, dune))

	t.Run("duplicate user", func(t *testing.T) {
		err := users.Create(ctx, &model.User{Username: "alice", Email: "other@example.com"})
		assert.ErrorIs(t, err, repository.ErrUsernameExists)
		err = users.Create(ctx, &model.User{Username: "other", Email: "ALICE@example.com"})
		assert.ErrorIs(t, err, repository.ErrEmailExists)
	})

	t.Run("duplicate category slug", func(t *testing.T) {
		err := categories.Create(ctx, &model.Category{Name: "Film", Slug: "movie"})
		assert.ErrorIs(t, err, repository.ErrSlugExists)
	})

	t.Run("rating is the average score", func(t *testing.T) {
		got, err := titles.GetByID(ctx, dune.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Rating)

		require.NoError(t, reviews.Create(ctx, &model.Review{TitleID: dune.ID, AuthorID: alice.ID, Text: "great", Score: 8}))
		require.NoError(t, reviews.Create(ctx, &model.Review{TitleID: dune.ID, AuthorID: bob.ID, Text: "fine", Score: 6}))

		got, err = titles.GetByID(ctx, dune.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Rating)
		assert.InDelta(t, 7.0, *got.Rating, 1e-9)

		list, total, err := titles.List(ctx, model.TitleFilter{Category: "movie"}, model.Page{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, list, 1)
		require.NotNil(t, list[0].Rating)
		assert.InDelta(t, 7.0, *list[0].Rating, 1e-9)
	})

	t.Run("second review by the same author conflicts", func(t *testing.T) {
		err := reviews.Create(ctx, &model.Review{TitleID: dune.ID, AuthorID: alice.ID, Text: "again", Score: 2})
		assert.ErrorIs(t, err, repository.ErrReviewExists)
		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("missing parents are not found", func(t *testing.T) {
		err := reviews.Create(ctx, &model.Review{TitleID: 999999, AuthorID: alice.ID, Text: "ghost", Score: 5})
		assert.ErrorIs(t, err, repository.ErrTitleNotFound)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		err = comments.Create(ctx, &model.Comment{ReviewID: 999999, AuthorID: alice.ID, Text: "ghost"})
		assert.ErrorIs(t, err, repository.ErrReviewNotFound)
	})

	t.Run("deleting a category keeps its titles", func(t *testing.T) {
		require.NoError(t, categories.DeleteBySlug(ctx, "movie"))

		got, err := titles.GetByID(ctx, dune.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Category)
		assert.NotNil(t, got.Rating)

		_, err = categories.GetBySlug(ctx, "movie")
		assert.ErrorIs(t, err, repository.ErrCategoryNotFound)
	})
}
