package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/yamdb/internal/model"
	"github.com/iliyamo/yamdb/internal/queue"
	"github.com/iliyamo/yamdb/internal/repository"
	"github.com/iliyamo/yamdb/internal/utils"
)

// AuthHandler implements the passwordless sign-up flow: a confirmation
// code is mailed to the user and later exchanged for an access token.
type AuthHandler struct {
	Users        UserStore
	Codes        CodePublisher
	JWTSecret    string
	AccessTTLMin int
	BcryptCost   int
}

func NewAuthHandler(users UserStore, codes CodePublisher, jwtSecret string, accessTTLMin, bcryptCost int) *AuthHandler {
	return &AuthHandler{Users: users, Codes: codes, JWTSecret: jwtSecret, AccessTTLMin: accessTTLMin, BcryptCost: bcryptCost}
}

// ----- DTOs -----

type emailReq struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

func (r emailReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Username, usernameRules()...),
	)
}

type emailResp struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

type tokenReq struct {
	Email            string `json:"email"`
	Username         string `json:"username"`
	ConfirmationCode string `json:"confirmation_code"`
}

func (r tokenReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.When(r.Username == "", validation.Required), is.Email),
		validation.Field(&r.Username, validation.When(r.Email == "", validation.Required)),
		validation.Field(&r.ConfirmationCode, validation.Required),
	)
}

type tokenResp struct {
	Token string `json:"token"`
}

// Email issues a confirmation code. Existing accounts are found by email;
// otherwise the account is created, with a blank username defaulting to
// the local part of the email. Each call replaces the stored code, so only
// the latest code can be redeemed.
func (h *AuthHandler) Email(c echo.Context) error {
	var req emailReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	req.Email = normalizeEmail(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		if u, err = h.register(ctx, req); err != nil {
			return respondError(c, err)
		}
	case err != nil:
		return respondError(c, err)
	case req.Username != "" && u.Username != req.Username:
		return respondError(c, fieldError("username", "does not match the account registered with this email"))
	}

	code, err := utils.NewConfirmationCode()
	if err != nil {
		return respondError(c, err)
	}
	hash, err := utils.HashCode(code, h.BcryptCost)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Users.SetConfirmationCode(ctx, u.ID, hash); err != nil {
		return respondError(c, err)
	}

	ev := queue.ConfirmationCodeEvent{
		UserID:      u.ID,
		Email:       u.Email,
		Username:    u.Username,
		Code:        code,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Codes.PublishConfirmationCode(ctx, ev); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Uint64("user_id", u.ID).Msg("publish confirmation code failed")
		return respondError(c, errUnavailable)
	}
	return c.JSON(http.StatusOK, emailResp{Email: u.Email, Username: u.Username})
}

// register creates the account for a first code request. A username
// derived from the email is reported against the email field, since the
// client never sent one.
func (h *AuthHandler) register(ctx context.Context, req emailReq) (*model.User, error) {
	u := &model.User{Username: req.Username, Email: req.Email, Role: model.RoleUser}
	if req.Username != "" {
		return u, h.Users.Create(ctx, u)
	}
	u.Username = usernameFromEmail(req.Email)
	if validation.Validate(u.Username, usernameRules()...) != nil {
		return nil, fieldError("email", "no username can be derived from this email, send one explicitly")
	}
	err := h.Users.Create(ctx, u)
	if errors.Is(err, repository.ErrUsernameExists) {
		return nil, fieldError("email", fmt.Sprintf("username %q derived from this email is taken, send one explicitly", u.Username))
	}
	return u, err
}

// Token exchanges a confirmation code for an access token. A redeemed
// code is cleared and cannot be used again.
func (h *AuthHandler) Token(c echo.Context) error {
	var req tokenReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	req.Email = normalizeEmail(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	req.ConfirmationCode = strings.TrimSpace(req.ConfirmationCode)
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	var (
		u   *model.User
		err error
	)
	if req.Email != "" {
		u, err = h.Users.GetByEmail(ctx, req.Email)
	} else {
		u, err = h.Users.GetByUsername(ctx, req.Username)
	}
	if err != nil {
		return respondError(c, err)
	}
	if !utils.VerifyCode(u.ConfirmationCode, req.ConfirmationCode) {
		return respondError(c, fieldError("confirmation_code", "invalid confirmation code"))
	}
	if err := h.Users.SetConfirmationCode(ctx, u.ID, ""); err != nil {
		return respondError(c, err)
	}

	access, err := utils.NewAccessToken(h.JWTSecret, u.ID, u.Role, h.AccessTTLMin)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tokenResp{Token: access.Token})
}
