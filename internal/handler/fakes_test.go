package handler_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/yamdb/internal/model"
	"github.com/iliyamo/yamdb/internal/queue"
	"github.com/iliyamo/yamdb/internal/repository"
)

// memDB is an in-memory stand-in for the MySQL schema.
type memDB struct {
	mu         sync.Mutex
	seq        uint64
	users      []*model.User
	categories []model.Category
	genres     []model.Genre
	titles     []*model.Title
	reviews    []*model.Review
	comments   []*model.Comment
}

func (m *memDB) nextID() uint64 {
	m.seq++
	return m.seq
}

func window[T any](items []T, p model.Page) []T {
	if p.Offset >= len(items) {
		return nil
	}
	end := len(items)
	if p.Limit > 0 && p.Offset+p.Limit < end {
		end = p.Offset + p.Limit
	}
	return items[p.Offset:end]
}

// ----- users -----

type fakeUsers struct{ db *memDB }

func (f fakeUsers) Create(_ context.Context, u *model.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, x := range f.db.users {
		if x.Email == u.Email {
			return repository.ErrEmailExists
		}
		if x.Username == u.Username {
			return repository.ErrUsernameExists
		}
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	u.ID = f.db.nextID()
	cp := *u
	f.db.users = append(f.db.users, &cp)
	return nil
}

func (f fakeUsers) find(match func(*model.User) bool) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f fakeUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.ID == id })
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Email == email })
}

func (f fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Username == username })
}

func (f fakeUsers) List(_ context.Context, search string, p model.Page) ([]*model.User, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*model.User
	for _, u := range f.db.users {
		if strings.Contains(u.Username, search) {
			cp := *u
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *model.User) int { return strings.Compare(a.Username, b.Username) })
	return window(out, p), len(out), nil
}

func (f fakeUsers) Update(_ context.Context, u *model.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for i, x := range f.db.users {
		if x.ID == u.ID {
			cp := *u
			cp.ConfirmationCode = x.ConfirmationCode
			f.db.users[i] = &cp
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (f fakeUsers) SetConfirmationCode(_ context.Context, id uint64, hash string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, x := range f.db.users {
		if x.ID == id {
			x.ConfirmationCode = hash
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (f fakeUsers) DeleteByUsername(_ context.Context, username string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for i, x := range f.db.users {
		if x.Username == username {
			f.db.users = slices.Delete(f.db.users, i, i+1)
			return nil
		}
	}
	return repository.ErrUserNotFound
}

// ----- categories and genres -----

type fakeCategories struct{ db *memDB }

func (f fakeCategories) List(_ context.Context, search string, p model.Page) ([]model.Category, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Category
	for _, c := range f.db.categories {
		if strings.Contains(c.Name, search) {
			out = append(out, c)
		}
	}
	return window(out, p), len(out), nil
}

func (f fakeCategories) Create(_ context.Context, c *model.Category) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, x := range f.db.categories {
		if x.Slug == c.Slug {
			return repository.ErrSlugExists
		}
	}
	c.ID = f.db.nextID()
	f.db.categories = append(f.db.categories, *c)
	return nil
}

func (f fakeCategories) GetBySlug(_ context.Context, slug string) (model.Category, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, x := range f.db.categories {
		if x.Slug == slug {
			return x, nil
		}
	}
	return model.Category{}, repository.ErrCategoryNotFound
}

func (f fakeCategories) DeleteBySlug(_ context.Context, slug string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for i, x := range f.db.categories {
		if x.Slug == slug {
			f.db.categories = slices.Delete(f.db.categories, i, i+1)
			for _, t := range f.db.titles {
				if t.Category != nil && t.Category.ID == x.ID {
					t.Category = nil
				}
			}
			return nil
		}
	}
	return repository.ErrCategoryNotFound
}

type fakeGenres struct{ db *memDB }

func (f fakeGenres) List(_ context.Context, search string, p model.Page) ([]model.Genre, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Genre
	for _, g := range f.db.genres {
		if strings.Contains(g.Name, search) {
			out = append(out, g)
		}
	}
	return window(out, p), len(out), nil
}

func (f fakeGenres) Create(_ context.Context, g *model.Genre) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, x := range f.db.genres {
		if x.Slug == g.Slug {
			return repository.ErrSlugExists
		}
	}
	g.ID = f.db.nextID()
	f.db.genres = append(f.db.genres, *g)
	return nil
}

func (f fakeGenres) GetBySlugs(_ context.Context, slugs []string) ([]model.Genre, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Genre
	for _, x := range f.db.genres {
		if slices.Contains(slugs, x.Slug) {
			out = append(out, x)
		}
	}
	return out, nil
}

func (f fakeGenres) DeleteBySlug(_ context.Context, slug string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for i, x := range f.db.genres {
		if x.Slug == slug {
			f.db.genres = slices.Delete(f.db.genres, i, i+1)
			return nil
		}
	}
	return repository.ErrGenreNotFound
}

// ----- titles -----

type fakeTitles struct{ db *memDB }

// withRating copies t and fills the average score of its reviews.
func (f fakeTitles) withRating(t *model.Title) *model.Title {
	cp := *t
	cp.Genres = slices.Clone(t.Genres)
	sum, n := 0, 0
	for _, r := range f.db.reviews {
		if r.TitleID == t.ID {
			sum += r.Score
			n++
		}
	}
	if n > 0 {
		avg := float64(sum) / float64(n)
		cp.Rating = &avg
	}
	return &cp
}

func (f fakeTitles) List(_ context.Context, flt model.TitleFilter, p model.Page) ([]*model.Title, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*model.Title
	for _, t := range f.db.titles {
		if flt.Name != "" && !strings.Contains(t.Name, flt.Name) {
			continue
		}
		if flt.Year != nil && (t.Year == nil || *t.Year != *flt.Year) {
			continue
		}
		if flt.Category != "" && (t.Category == nil || t.Category.Slug != flt.Category) {
			continue
		}
		if flt.Genre != "" && !slices.ContainsFunc(t.Genres, func(g model.Genre) bool { return g.Slug == flt.Genre }) {
			continue
		}
		out = append(out, f.withRating(t))
	}
	return window(out, p), len(out), nil
}

func (f fakeTitles) GetByID(_ context.Context, id uint64) (*model.Title, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, t := range f.db.titles {
		if t.ID == id {
			return f.withRating(t), nil
		}
	}
	return nil, repository.ErrTitleNotFound
}

func (f fakeTitles) Exists(ctx context.Context, id uint64) (bool, error) {
	_, err := f.GetByID(ctx, id)
	if errors.Is(err, repository.ErrTitleNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (f fakeTitles) Create(_ context.Context, t *model.Title) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t.ID = f.db.nextID()
	cp := *t
	f.db.titles = append(f.db.titles, &cp)
	return nil
}

func (f fakeTitles) Update(_ context.Context, t *model.Title, replaceGenres bool) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for i, x := range f.db.titles {
		if x.ID == t.ID {
			cp := *t
			cp.Rating = nil
			if !replaceGenres {
				cp.Genres = x.Genres
			}
			f.db.titles[i] = &cp
			return nil
		}
	}
	return repository.ErrTitleNotFound
}

func (f fakeTitles) Delete(_ context.Context, id uint64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for i, x := range f.db.titles {
		if x.ID == id {
			f.db.titles = slices.Delete(f.db.titles, i, i+1)
			f.db.reviews = slices.DeleteFunc(f.db.reviews, func(r *model.Review) bool { return r.TitleID == id })
			return nil
		}
	}
	return repository.ErrTitleNotFound
}

// ----- reviews and comments -----

type fakeReviews struct{ db *memDB }

func (f fakeReviews) ListByTitle(_ context.Context, titleID uint64, p model.Page) ([]*model.Review, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*model.Review
	for _, r := range f.db.reviews {
		if r.TitleID == titleID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return window(out, p), len(out), nil
}

func (f fakeReviews) GetInTitle(_ context.Context, titleID, id uint64) (*model.Review, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, r := range f.db.reviews {
		if r.ID == id && r.TitleID == titleID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrReviewNotFound
}

func (f fakeReviews) ExistsForAuthor(_ context.Context, titleID, authorID uint64) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, r := range f.db.reviews {
		if r.TitleID == titleID && r.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeReviews) Create(_ context.Context, rv *model.Review) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, r := range f.db.reviews {
		if r.TitleID == rv.TitleID && r.AuthorID == rv.AuthorID {
			return repository.ErrReviewExists
		}
	}
	rv.ID = f.db.nextID()
	rv.PubDate = time.Now().UTC()
	cp := *rv
	f.db.reviews = append(f.db.reviews, &cp)
	return nil
}

func (f fakeReviews) Update(_ context.Context, rv *model.Review) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, r := range f.db.reviews {
		if r.ID == rv.ID {
			r.Text, r.Score = rv.Text, rv.Score
			return nil
		}
	}
	return repository.ErrReviewNotFound
}

func (f fakeReviews) Delete(_ context.Context, id uint64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	n := len(f.db.reviews)
	f.db.reviews = slices.DeleteFunc(f.db.reviews, func(r *model.Review) bool { return r.ID == id })
	if len(f.db.reviews) == n {
		return repository.ErrReviewNotFound
	}
	f.db.comments = slices.DeleteFunc(f.db.comments, func(c *model.Comment) bool { return c.ReviewID == id })
	return nil
}

type fakeComments struct{ db *memDB }

func (f fakeComments) ListByReview(_ context.Context, reviewID uint64, p model.Page) ([]*model.Comment, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*model.Comment
	for _, c := range f.db.comments {
		if c.ReviewID == reviewID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return window(out, p), len(out), nil
}

func (f fakeComments) GetInReview(_ context.Context, reviewID, id uint64) (*model.Comment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, c := range f.db.comments {
		if c.ID == id && c.ReviewID == reviewID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrCommentNotFound
}

func (f fakeComments) Create(_ context.Context, c *model.Comment) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c.ID = f.db.nextID()
	c.PubDate = time.Now().UTC()
	cp := *c
	f.db.comments = append(f.db.comments, &cp)
	return nil
}

func (f fakeComments) Update(_ context.Context, c *model.Comment) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, x := range f.db.comments {
		if x.ID == c.ID {
			x.Text = c.Text
			return nil
		}
	}
	return repository.ErrCommentNotFound
}

func (f fakeComments) Delete(_ context.Context, id uint64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	n := len(f.db.comments)
	f.db.comments = slices.DeleteFunc(f.db.comments, func(c *model.Comment) bool { return c.ID == id })
	if len(f.db.comments) == n {
		return repository.ErrCommentNotFound
	}
	return nil
}

// ----- code publisher -----

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.ConfirmationCodeEvent
	err    error
}

func (p *fakePublisher) PublishConfirmationCode(_ context.Context, ev queue.ConfirmationCodeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) last() queue.ConfirmationCodeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}
