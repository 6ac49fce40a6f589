package handler

import (
	"context"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/yamdb/internal/middleware"
	"github.com/iliyamo/yamdb/internal/model"
	"github.com/iliyamo/yamdb/internal/policy"
	"github.com/iliyamo/yamdb/internal/repository"
)

// ReviewHandler serves /titles/:title_id/reviews.
type ReviewHandler struct {
	Titles  TitleStore
	Reviews ReviewStore
	Paging  Paging
}

func NewReviewHandler(titles TitleStore, reviews ReviewStore, paging Paging) *ReviewHandler {
	return &ReviewHandler{Titles: titles, Reviews: reviews, Paging: paging}
}

type reviewReq struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

func validateReview(rv *model.Review) error {
	return validation.Errors{
		"text":  validation.Validate(rv.Text, validation.Required),
		"score": validation.Validate(rv.Score, validation.Required, validation.Min(1), validation.Max(10)),
	}.Filter()
}

func (r reviewReq) apply(rv *model.Review) {
	if r.Text != nil {
		rv.Text = strings.TrimSpace(*r.Text)
	}
	if r.Score != nil {
		rv.Score = *r.Score
	}
}

// requireTitle resolves :title_id and checks that the title exists.
func requireTitle(ctx context.Context, c echo.Context, titles TitleStore) (uint64, error) {
	id, err := pathID(c, "title_id", repository.ErrTitleNotFound)
	if err != nil {
		return 0, err
	}
	ok, err := titles.Exists(ctx, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, repository.ErrTitleNotFound
	}
	return id, nil
}

// findReview loads :review_id scoped to :title_id. A review of another
// title is reported as not found.
func findReview(ctx context.Context, c echo.Context, reviews ReviewStore) (*model.Review, error) {
	titleID, err := pathID(c, "title_id", repository.ErrTitleNotFound)
	if err != nil {
		return nil, err
	}
	id, err := pathID(c, "review_id", repository.ErrReviewNotFound)
	if err != nil {
		return nil, err
	}
	return reviews.GetInTitle(ctx, titleID, id)
}

func (h *ReviewHandler) List(c echo.Context) error {
	p, err := h.Paging.page(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	titleID, err := requireTitle(ctx, c, h.Titles)
	if err != nil {
		return respondError(c, err)
	}
	items, total, err := h.Reviews.ListByTitle(ctx, titleID, p)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, p, total, mapViews(items, reviewView))
}

func (h *ReviewHandler) Get(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	rv, err := findReview(ctx, c, h.Reviews)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, reviewView(rv))
}

// Create stores the caller's review of the title. A second review by the
// same author is a validation error; losing a concurrent insert to the
// unique key is reported as a conflict.
func (h *ReviewHandler) Create(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	if err := policy.Authorize(actor, policy.CanWriteAuthored(actor, policy.ActionCreate, 0)); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	titleID, err := requireTitle(ctx, c, h.Titles)
	if err != nil {
		return respondError(c, err)
	}

	var req reviewReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	rv := &model.Review{TitleID: titleID, AuthorID: actor.UserID, AuthorUsername: actor.Username}
	req.apply(rv)
	if err := validateReview(rv); err != nil {
		return respondError(c, err)
	}

	exists, err := h.Reviews.ExistsForAuthor(ctx, titleID, actor.UserID)
	if err != nil {
		return respondError(c, err)
	}
	if exists {
		return respondError(c, fieldError("title", "you have already reviewed this title"))
	}
	if err := h.Reviews.Create(ctx, rv); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, reviewView(rv))
}

// Patch changes text and score only.
func (h *ReviewHandler) Patch(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	rv, err := findReview(ctx, c, h.Reviews)
	if err != nil {
		return respondError(c, err)
	}
	if err := policy.Authorize(actor, policy.CanWriteAuthored(actor, policy.ActionUpdate, rv.AuthorID)); err != nil {
		return respondError(c, err)
	}
	var req reviewReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	req.apply(rv)
	if err := validateReview(rv); err != nil {
		return respondError(c, err)
	}
	if err := h.Reviews.Update(ctx, rv); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, reviewView(rv))
}

// Delete removes a review and its comments.
func (h *ReviewHandler) Delete(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	rv, err := findReview(ctx, c, h.Reviews)
	if err != nil {
		return respondError(c, err)
	}
	if err := policy.Authorize(actor, policy.CanWriteAuthored(actor, policy.ActionDelete, rv.AuthorID)); err != nil {
		return respondError(c, err)
	}
	if err := h.Reviews.Delete(ctx, rv.ID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
