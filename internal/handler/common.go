package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/yamdb/internal/middleware"
	"github.com/iliyamo/yamdb/internal/model"
	"github.com/iliyamo/yamdb/internal/policy"
)

// requestTimeout bounds every storage call made while serving a request.
const requestTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// requireActor rejects anonymous callers before any lookup, so they get a
// 401 rather than learning whether the resource exists.
func requireActor(c echo.Context) (*policy.Actor, error) {
	actor := middleware.ActorFrom(c)
	return actor, policy.Authorize(actor, policy.IsAuthenticated(actor))
}

// Paging holds the list window defaults.
type Paging struct {
	Default int // used when ?limit is absent or zero
	Max     int // upper bound for ?limit
}

// page reads ?limit and ?offset.
func (p Paging) page(c echo.Context) (model.Page, error) {
	out := model.Page{Limit: p.Default}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return out, fieldError("limit", "must be a non-negative integer")
		}
		if n > 0 {
			out.Limit = n
		}
	}
	if p.Max > 0 && out.Limit > p.Max {
		out.Limit = p.Max
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return out, fieldError("offset", "must be a non-negative integer")
		}
		out.Offset = n
	}
	return out, nil
}

type listResp[T any] struct {
	Count  int `json:"count"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Items  []T `json:"items"`
}

func respondList[T any](c echo.Context, p model.Page, total int, items []T) error {
	if items == nil {
		items = []T{}
	}
	return c.JSON(http.StatusOK, listResp[T]{Count: total, Limit: p.Limit, Offset: p.Offset, Items: items})
}

// pathID parses a numeric path parameter. Anything unparsable cannot name
// an existing row, so it is reported as notFound.
func pathID(c echo.Context, name string, notFound error) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, notFound
	}
	return id, nil
}

// bind decodes the JSON body into dst.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return errInvalidBody
	}
	return nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
