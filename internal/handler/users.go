package handler

import (
	"context"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/yamdb/internal/middleware"
	"github.com/iliyamo/yamdb/internal/model"
	"github.com/iliyamo/yamdb/internal/policy"
)

// UserHandler serves account administration and the own-profile
// endpoints. Access is enforced by the route middleware.
type UserHandler struct {
	Users  UserStore
	Paging Paging
}

func NewUserHandler(users UserStore, paging Paging) *UserHandler {
	return &UserHandler{Users: users, Paging: paging}
}

// userReq is used for create and for partial updates; nil fields are left
// unchanged on PATCH.
type userReq struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
}

func (r userReq) apply(u *model.User) {
	if r.Username != nil {
		u.Username = strings.TrimSpace(*r.Username)
	}
	if r.Email != nil {
		u.Email = normalizeEmail(*r.Email)
	}
	if r.FirstName != nil {
		u.FirstName = *r.FirstName
	}
	if r.LastName != nil {
		u.LastName = *r.LastName
	}
	if r.Bio != nil {
		u.Bio = *r.Bio
	}
	if r.Role != nil {
		u.Role = strings.TrimSpace(*r.Role)
	}
}

func validateUser(u *model.User) error {
	roles := make([]any, len(model.Roles))
	for i, r := range model.Roles {
		roles[i] = r
	}
	return validation.Errors{
		"username":   validation.Validate(u.Username, append([]validation.Rule{validation.Required}, usernameRules()...)...),
		"email":      validation.Validate(u.Email, validation.Required, validation.Length(3, 254), is.Email),
		"first_name": validation.Validate(u.FirstName, validation.Length(0, 150)),
		"last_name":  validation.Validate(u.LastName, validation.Length(0, 150)),
		"role":       validation.Validate(u.Role, validation.Required, validation.In(roles...)),
	}.Filter()
}

// List returns users ordered by username; ?search filters by username.
func (h *UserHandler) List(c echo.Context) error {
	p, err := h.Paging.page(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	users, total, err := h.Users.List(ctx, strings.TrimSpace(c.QueryParam("search")), p)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, p, total, mapViews(users, userView))
}

// Create adds an account. The role defaults to user.
func (h *UserHandler) Create(c echo.Context) error {
	var req userReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	u := &model.User{Role: model.RoleUser}
	req.apply(u)
	if err := validateUser(u); err != nil {
		return respondError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Users.Create(ctx, u); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, userView(u))
}

func (h *UserHandler) Get(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	u, err := h.Users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, userView(u))
}

// Patch partially updates any account, role included.
func (h *UserHandler) Patch(c echo.Context) error {
	var req userReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		return respondError(c, err)
	}
	return h.save(ctx, c, u, req)
}

func (h *UserHandler) Delete(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Users.DeleteByUsername(ctx, c.Param("username")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's own profile.
func (h *UserHandler) Me(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	ctx, cancel := requestContext(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, actor.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, userView(u))
}

// PatchMe updates the caller's own profile. A role in the body is
// ignored; nobody can promote themselves.
func (h *UserHandler) PatchMe(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	var req userReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	role := policy.PreservedRole(actor)
	req.Role = &role

	ctx, cancel := requestContext(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, actor.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return h.save(ctx, c, u, req)
}

func (h *UserHandler) save(ctx context.Context, c echo.Context, u *model.User, req userReq) error {
	req.apply(u)
	if err := validateUser(u); err != nil {
		return respondError(c, err)
	}
	if err := h.Users.Update(ctx, u); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, userView(u))
}
