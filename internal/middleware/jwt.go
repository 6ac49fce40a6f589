package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/yamdb/internal/model"
	"github.com/iliyamo/yamdb/internal/policy"
	"github.com/iliyamo/yamdb/internal/repository"
	"github.com/iliyamo/yamdb/internal/utils"
)

// UserLookup loads the account a token was issued for.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// Authenticate returns an Echo middleware that resolves the actor of a
// request.  Requests without an Authorization header continue as
// anonymous; a header that is present but does not carry a valid Bearer
// token is rejected with 401.  The user is reloaded from storage so role
// changes and deletions take effect immediately rather than when the
// token expires.
func Authenticate(secret string, users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if auth == "" {
				return next(c)
			}
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			id, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			u, err := users.GetByID(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "user not found"})
				}
				log.Error().Err(err).Uint64("user_id", id).Msg("load actor failed")
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
			}
			SetActor(c, policy.ActorFor(u))
			return next(c)
		}
	}
}
