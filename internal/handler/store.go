package handler

import (
	"context"

	"github.com/iliyamo/yamdb/internal/model"
	"github.com/iliyamo/yamdb/internal/queue"
)

// The handlers depend on these narrow views of the repositories so tests
// can run them against in-memory fakes.

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context, search string, p model.Page) ([]*model.User, int, error)
	Update(ctx context.Context, u *model.User) error
	SetConfirmationCode(ctx context.Context, id uint64, hash string) error
	DeleteByUsername(ctx context.Context, username string) error
}

type CategoryStore interface {
	List(ctx context.Context, search string, p model.Page) ([]model.Category, int, error)
	Create(ctx context.Context, c *model.Category) error
	GetBySlug(ctx context.Context, slug string) (model.Category, error)
	DeleteBySlug(ctx context.Context, slug string) error
}

type GenreStore interface {
	List(ctx context.Context, search string, p model.Page) ([]model.Genre, int, error)
	Create(ctx context.Context, g *model.Genre) error
	GetBySlugs(ctx context.Context, slugs []string) ([]model.Genre, error)
	DeleteBySlug(ctx context.Context, slug string) error
}

type TitleStore interface {
	List(ctx context.Context, f model.TitleFilter, p model.Page) ([]*model.Title, int, error)
	GetByID(ctx context.Context, id uint64) (*model.Title, error)
	Exists(ctx context.Context, id uint64) (bool, error)
	Create(ctx context.Context, t *model.Title) error
	Update(ctx context.Context, t *model.Title, replaceGenres bool) error
	Delete(ctx context.Context, id uint64) error
}

type ReviewStore interface {
	ListByTitle(ctx context.Context, titleID uint64, p model.Page) ([]*model.Review, int, error)
	GetInTitle(ctx context.Context, titleID, id uint64) (*model.Review, error)
	ExistsForAuthor(ctx context.Context, titleID, authorID uint64) (bool, error)
	Create(ctx context.Context, rv *model.Review) error
	Update(ctx context.Context, rv *model.Review) error
	Delete(ctx context.Context, id uint64) error
}

type CommentStore interface {
	ListByReview(ctx context.Context, reviewID uint64, p model.Page) ([]*model.Comment, int, error)
	GetInReview(ctx context.Context, reviewID, id uint64) (*model.Comment, error)
	Create(ctx context.Context, c *model.Comment) error
	Update(ctx context.Context, c *model.Comment) error
	Delete(ctx context.Context, id uint64) error
}

// CodePublisher hands a freshly issued confirmation code to the mail
// pipeline.
type CodePublisher interface {
	PublishConfirmationCode(ctx context.Context, ev queue.ConfirmationCodeEvent) error
}
