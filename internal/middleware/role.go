package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/yamdb/internal/policy"
)

// RequireAuth rejects anonymous requests with 401.  It must run after
// Authenticate.
func RequireAuth() echo.MiddlewareFunc {
	return require(policy.IsAuthenticated)
}

// RequireTier rejects requests whose actor is below min: 401 for
// anonymous callers and 403 for authenticated ones.
func RequireTier(min policy.Tier) echo.MiddlewareFunc {
	return require(func(a *policy.Actor) bool { return policy.HasTier(a, min) })
}

func require(allowed func(*policy.Actor) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			a := ActorFrom(c)
			if err := policy.Authorize(a, allowed(a)); err != nil {
				status := http.StatusForbidden
				if errors.Is(err, policy.ErrAuthenticationRequired) {
					status = http.StatusUnauthorized
				}
				return c.JSON(status, echo.Map{"error": err.Error()})
			}
			return next(c)
		}
	}
}
