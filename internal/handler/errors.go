package handler

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/yamdb/internal/policy"
	"github.com/iliyamo/yamdb/internal/repository"
)

var (
	// errUnavailable marks a dependency outage the client may retry.
	errUnavailable = errors.New("service temporarily unavailable, try again later")
	errInvalidBody = errors.New("invalid body")
)

// fieldError builds a single-field validation error.
func fieldError(field, msg string) error {
	return validation.Errors{field: errors.New(msg)}
}

// respondError maps err to a status code and a JSON body. Unexpected
// errors are logged and reported without details.
func respondError(c echo.Context, err error) error {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": verrs})
	case errors.Is(err, errInvalidBody):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrEmailExists):
		return respondError(c, fieldError("email", err.Error()))
	case errors.Is(err, repository.ErrUsernameExists):
		return respondError(c, fieldError("username", err.Error()))
	case errors.Is(err, repository.ErrSlugExists):
		return respondError(c, fieldError("slug", err.Error()))
	case errors.Is(err, repository.ErrNameExists):
		return respondError(c, fieldError("name", err.Error()))
	case errors.Is(err, policy.ErrAuthenticationRequired):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, policy.ErrPermissionDenied):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, errUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": err.Error()})
	}
	zerolog.Ctx(c.Request().Context()).Error().Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}
