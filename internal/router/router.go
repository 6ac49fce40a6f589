// Package router wires handlers and middleware into an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/yamdb/internal/config"
	"github.com/iliyamo/yamdb/internal/handler"
	"github.com/iliyamo/yamdb/internal/middleware"
	"github.com/iliyamo/yamdb/internal/policy"
)

// Handlers groups the endpoint implementations.
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Categories *handler.CategoryHandler
	Genres     *handler.GenreHandler
	Titles     *handler.TitleHandler
	Reviews    *handler.ReviewHandler
	Comments   *handler.CommentHandler
}

// Options carries what the middleware chain needs. A nil Redis client
// disables rate limiting; a nil DB makes /healthz a plain liveness probe.
type Options struct {
	JWTSecret     string
	Users         middleware.UserLookup
	Redis         *redis.Client
	RateLimit     config.RateLimitConfig
	AuthRateLimit config.RateLimitConfig
	DB            handler.Pinger
}

// New builds the API. Every /api/v1 request is authenticated when it
// carries a bearer token and anonymous otherwise; endpoints decide what
// anonymous callers may do.
func New(h Handlers, o Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())

	e.GET("/healthz", handler.Health(o.DB))

	api := e.Group("/api/v1")
	api.Use(middleware.Authenticate(o.JWTSecret, o.Users))

	auth := api.Group("/auth", middleware.NewTokenBucket(o.AuthRateLimit, o.Redis))
	auth.POST("/email", h.Auth.Email)
	auth.POST("/token", h.Auth.Token)

	v := api.Group("", middleware.NewTokenBucket(o.RateLimit, o.Redis))
	registerUsers(v, h.Users)
	registerCatalog(v, h)
	registerReviews(v, h.Reviews, h.Comments)
	return e
}

func registerUsers(g *echo.Group, u *handler.UserHandler) {
	// /users/me is registered first for readability; Echo prefers static
	// segments over :username anyway.
	me := g.Group("/users/me", middleware.RequireAuth())
	me.GET("", u.Me)
	me.PATCH("", u.PatchMe)

	admin := g.Group("/users", middleware.RequireTier(policy.TierAdmin))
	admin.GET("", u.List)
	admin.POST("", u.Create)
	admin.GET("/:username", u.Get)
	admin.PATCH("/:username", u.Patch)
	admin.DELETE("/:username", u.Delete)
}

func registerCatalog(g *echo.Group, h Handlers) {
	g.GET("/categories", h.Categories.List)
	g.POST("/categories", h.Categories.Create)
	g.DELETE("/categories/:slug", h.Categories.Delete)

	g.GET("/genres", h.Genres.List)
	g.POST("/genres", h.Genres.Create)
	g.DELETE("/genres/:slug", h.Genres.Delete)

	g.GET("/titles", h.Titles.List)
	g.POST("/titles", h.Titles.Create)
	g.GET("/titles/:title_id", h.Titles.Get)
	g.PATCH("/titles/:title_id", h.Titles.Patch)
	g.DELETE("/titles/:title_id", h.Titles.Delete)
}

func registerReviews(g *echo.Group, r *handler.ReviewHandler, c *handler.CommentHandler) {
	const reviews = "/titles/:title_id/reviews"
	g.GET(reviews, r.List)
	g.POST(reviews, r.Create)
	g.GET(reviews+"/:review_id", r.Get)
	g.PATCH(reviews+"/:review_id", r.Patch)
	g.DELETE(reviews+"/:review_id", r.Delete)

	const comments = reviews + "/:review_id/comments"
	g.GET(comments, c.List)
	g.POST(comments, c.Create)
	g.GET(comments+"/:comment_id", c.Get)
	g.PATCH(comments+"/:comment_id", c.Patch)
	g.DELETE(comments+"/:comment_id", c.Delete)
}
