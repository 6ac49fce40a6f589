package handler

import (
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/yamdb/internal/middleware"
	"github.com/iliyamo/yamdb/internal/model"
	"github.com/iliyamo/yamdb/internal/policy"
)

type slugReq struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (r slugReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 256)),
		validation.Field(&r.Slug, slugRules()...),
	)
}

func readSlugReq(c echo.Context) (slugReq, error) {
	var req slugReq
	if err := bind(c, &req); err != nil {
		return req, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.TrimSpace(req.Slug)
	return req, req.Validate()
}

// authorizeCatalog checks a catalog action for the request's actor.
func authorizeCatalog(c echo.Context, act policy.Action) error {
	a := middleware.ActorFrom(c)
	return policy.Authorize(a, policy.CanManageCatalog(a, act))
}

// CategoryHandler serves /categories.
type CategoryHandler struct {
	Categories CategoryStore
	Paging     Paging
}

func NewCategoryHandler(categories CategoryStore, paging Paging) *CategoryHandler {
	return &CategoryHandler{Categories: categories, Paging: paging}
}

// List supports ?search on the category name.
func (h *CategoryHandler) List(c echo.Context) error {
	p, err := h.Paging.page(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	items, total, err := h.Categories.List(ctx, strings.TrimSpace(c.QueryParam("search")), p)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, p, total, mapViews(items, categoryView))
}

func (h *CategoryHandler) Create(c echo.Context) error {
	if err := authorizeCatalog(c, policy.ActionCreate); err != nil {
		return respondError(c, err)
	}
	req, err := readSlugReq(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	cat := model.Category{Name: req.Name, Slug: req.Slug}
	if err := h.Categories.Create(ctx, &cat); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, categoryView(cat))
}

// Delete removes a category by slug. Its titles become uncategorised.
func (h *CategoryHandler) Delete(c echo.Context) error {
	if err := authorizeCatalog(c, policy.ActionDelete); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Categories.DeleteBySlug(ctx, c.Param("slug")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GenreHandler serves /genres.
type GenreHandler struct {
	Genres GenreStore
	Paging Paging
}

func NewGenreHandler(genres GenreStore, paging Paging) *GenreHandler {
	return &GenreHandler{Genres: genres, Paging: paging}
}

func (h *GenreHandler) List(c echo.Context) error {
	p, err := h.Paging.page(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	items, total, err := h.Genres.List(ctx, strings.TrimSpace(c.QueryParam("search")), p)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, p, total, mapViews(items, genreView))
}

func (h *GenreHandler) Create(c echo.Context) error {
	if err := authorizeCatalog(c, policy.ActionCreate); err != nil {
		return respondError(c, err)
	}
	req, err := readSlugReq(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	g := model.Genre{Name: req.Name, Slug: req.Slug}
	if err := h.Genres.Create(ctx, &g); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, genreView(g))
}

// Delete removes a genre by slug and its links to titles.
func (h *GenreHandler) Delete(c echo.Context) error {
	if err := authorizeCatalog(c, policy.ActionDelete); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Genres.DeleteBySlug(ctx, c.Param("slug")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
