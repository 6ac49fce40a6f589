package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/yamdb/internal/model"
	"github.com/iliyamo/yamdb/internal/policy"
	"github.com/iliyamo/yamdb/internal/repository"
)

// TitleHandler serves /titles. Ratings come back from the store already
// averaged.
type TitleHandler struct {
	Titles     TitleStore
	Categories CategoryStore
	Genres     GenreStore
	Paging     Paging
}

func NewTitleHandler(titles TitleStore, categories CategoryStore, genres GenreStore, paging Paging) *TitleHandler {
	return &TitleHandler{Titles: titles, Categories: categories, Genres: genres, Paging: paging}
}

// titleReq carries a create or a partial update. Category and genres are
// referenced by slug. An explicit null clears year, description or
// category, as does an empty category slug.
type titleReq struct {
	Name        *string          `json:"name"`
	Year        nullable[int]    `json:"year"`
	Description nullable[string] `json:"description"`
	Category    nullable[string] `json:"category"`
	Genre       *[]string        `json:"genre"`
}

func validateTitle(t *model.Title) error {
	return validation.Errors{
		"name": validation.Validate(t.Name, validation.Required, validation.Length(1, 256)),
		"year": validation.Validate(t.Year,
			validation.Min(0),
			validation.Max(time.Now().Year()).Error("cannot be in the future")),
	}.Filter()
}

// apply copies the scalar fields of req onto t.
func (r titleReq) apply(t *model.Title) {
	if r.Name != nil {
		t.Name = strings.TrimSpace(*r.Name)
	}
	if r.Year.Set {
		t.Year = r.Year.Value
	}
	if r.Description.Set {
		t.Description = r.Description.Value
	}
}

// resolve turns the category and genre slugs of req into rows on t.
func (h *TitleHandler) resolve(ctx context.Context, req titleReq, t *model.Title) error {
	if req.Category.Set {
		var slug string
		if req.Category.Value != nil {
			slug = strings.TrimSpace(*req.Category.Value)
		}
		if slug == "" {
			t.Category = nil
		} else {
			cat, err := h.Categories.GetBySlug(ctx, slug)
			if err != nil {
				if errors.Is(err, repository.ErrCategoryNotFound) {
					return fieldError("category", fmt.Sprintf("unknown category %q", slug))
				}
				return err
			}
			t.Category = &cat
		}
	}
	if req.Genre != nil {
		slugs := make([]string, 0, len(*req.Genre))
		for _, s := range *req.Genre {
			if s = strings.TrimSpace(s); s != "" && !slices.Contains(slugs, s) {
				slugs = append(slugs, s)
			}
		}
		genres, err := h.Genres.GetBySlugs(ctx, slugs)
		if err != nil {
			return err
		}
		if len(genres) != len(slugs) {
			return fieldError("genre", "unknown genre: "+strings.Join(missingSlugs(slugs, genres), ", "))
		}
		t.Genres = genres
	}
	return nil
}

func missingSlugs(want []string, got []model.Genre) []string {
	var out []string
	for _, s := range want {
		if !slices.ContainsFunc(got, func(g model.Genre) bool { return g.Slug == s }) {
			out = append(out, s)
		}
	}
	return out
}

// List accepts the name (substring), year, category and genre (slug)
// filters.
func (h *TitleHandler) List(c echo.Context) error {
	p, err := h.Paging.page(c)
	if err != nil {
		return respondError(c, err)
	}
	f := model.TitleFilter{
		Name:     strings.TrimSpace(c.QueryParam("name")),
		Category: strings.TrimSpace(c.QueryParam("category")),
		Genre:    strings.TrimSpace(c.QueryParam("genre")),
	}
	if v := c.QueryParam("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return respondError(c, fieldError("year", "must be an integer"))
		}
		f.Year = &y
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	titles, total, err := h.Titles.List(ctx, f, p)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, p, total, mapViews(titles, titleView))
}

func (h *TitleHandler) Get(c echo.Context) error {
	id, err := pathID(c, "title_id", repository.ErrTitleNotFound)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	t, err := h.Titles.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, titleView(t))
}

func (h *TitleHandler) Create(c echo.Context) error {
	if err := authorizeCatalog(c, policy.ActionCreate); err != nil {
		return respondError(c, err)
	}
	var req titleReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	t := &model.Title{}
	req.apply(t)
	if err := validateTitle(t); err != nil {
		return respondError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.resolve(ctx, req, t); err != nil {
		return respondError(c, err)
	}
	if err := h.Titles.Create(ctx, t); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, titleView(t))
}

// Patch updates only the fields present in the body. Genres are replaced
// as a whole when "genre" is given.
func (h *TitleHandler) Patch(c echo.Context) error {
	if err := authorizeCatalog(c, policy.ActionUpdate); err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "title_id", repository.ErrTitleNotFound)
	if err != nil {
		return respondError(c, err)
	}
	var req titleReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	t, err := h.Titles.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	req.apply(t)
	if err := validateTitle(t); err != nil {
		return respondError(c, err)
	}
	if err := h.resolve(ctx, req, t); err != nil {
		return respondError(c, err)
	}
	if err := h.Titles.Update(ctx, t, req.Genre != nil); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, titleView(t))
}

// Delete removes a title together with its reviews and comments.
func (h *TitleHandler) Delete(c echo.Context) error {
	if err := authorizeCatalog(c, policy.ActionDelete); err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "title_id", repository.ErrTitleNotFound)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Titles.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
