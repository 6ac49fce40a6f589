package middleware

// identity.go keeps the request's actor in the Echo context. Handlers
// read it once with ActorFrom and pass it explicitly to policy checks.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/yamdb/internal/policy"
)

const actorKey = "actor"

// ActorFrom returns the authenticated actor, or nil for anonymous
// requests.
func ActorFrom(c echo.Context) *policy.Actor {
	if a, ok := c.Get(actorKey).(*policy.Actor); ok {
		return a
	}
	return nil
}

// SetActor stores the actor for downstream middleware and handlers.
func SetActor(c echo.Context, a *policy.Actor) {
	c.Set(actorKey, a)
}

// userID renders the actor id for rate-limit keys and logs. It returns
// "anon" when nobody is authenticated.
func userID(c echo.Context) string {
	if a := ActorFrom(c); policy.IsAuthenticated(a) {
		return strconv.FormatUint(a.UserID, 10)
	}
	return "anon"
}
