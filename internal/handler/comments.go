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

// CommentHandler serves /titles/:title_id/reviews/:review_id/comments.
// Every lookup goes through the review scoped to the title, so a review
// addressed under the wrong title is not found.
type CommentHandler struct {
	Reviews  ReviewStore
	Comments CommentStore
	Paging   Paging
}

func NewCommentHandler(reviews ReviewStore, comments CommentStore, paging Paging) *CommentHandler {
	return &CommentHandler{Reviews: reviews, Comments: comments, Paging: paging}
}

type commentReq struct {
	Text string `json:"text"`
}

func (r commentReq) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.Text, validation.Required))
}

func readCommentReq(c echo.Context) (commentReq, error) {
	var req commentReq
	if err := bind(c, &req); err != nil {
		return req, err
	}
	req.Text = strings.TrimSpace(req.Text)
	return req, req.Validate()
}

func (h *CommentHandler) findComment(ctx context.Context, c echo.Context) (*model.Comment, error) {
	rv, err := findReview(ctx, c, h.Reviews)
	if err != nil {
		return nil, err
	}
	id, err := pathID(c, "comment_id", repository.ErrCommentNotFound)
	if err != nil {
		return nil, err
	}
	return h.Comments.GetInReview(ctx, rv.ID, id)
}

func (h *CommentHandler) List(c echo.Context) error {
	p, err := h.Paging.page(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	rv, err := findReview(ctx, c, h.Reviews)
	if err != nil {
		return respondError(c, err)
	}
	items, total, err := h.Comments.ListByReview(ctx, rv.ID, p)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, p, total, mapViews(items, commentView))
}

func (h *CommentHandler) Get(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	cm, err := h.findComment(ctx, c)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, commentView(cm))
}

func (h *CommentHandler) Create(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	if err := policy.Authorize(actor, policy.CanWriteAuthored(actor, policy.ActionCreate, 0)); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	rv, err := findReview(ctx, c, h.Reviews)
	if err != nil {
		return respondError(c, err)
	}
	req, err := readCommentReq(c)
	if err != nil {
		return respondError(c, err)
	}
	cm := &model.Comment{ReviewID: rv.ID, AuthorID: actor.UserID, AuthorUsername: actor.Username, Text: req.Text}
	if err := h.Comments.Create(ctx, cm); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, commentView(cm))
}

func (h *CommentHandler) Patch(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	cm, err := h.findComment(ctx, c)
	if err != nil {
		return respondError(c, err)
	}
	if err := policy.Authorize(actor, policy.CanWriteAuthored(actor, policy.ActionUpdate, cm.AuthorID)); err != nil {
		return respondError(c, err)
	}
	req, err := readCommentReq(c)
	if err != nil {
		return respondError(c, err)
	}
	cm.Text = req.Text
	if err := h.Comments.Update(ctx, cm); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, commentView(cm))
}

func (h *CommentHandler) Delete(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	cm, err := h.findComment(ctx, c)
	if err != nil {
		return respondError(c, err)
	}
	if err := policy.Authorize(actor, policy.CanWriteAuthored(actor, policy.ActionDelete, cm.AuthorID)); err != nil {
		return respondError(c, err)
	}
	if err := h.Comments.Delete(ctx, cm.ID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
