package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/identity"
	"github.com/darasahq/darasa/core/profile"
)

type authApi struct {
	conf     *core.Config
	svc      identity.ServiceInterface
	profiles profile.Repository
	validate *validator.Validate
}

func registerAuthAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	conf *core.Config,
	svc identity.ServiceInterface,
	profiles profile.Repository,
	validate *validator.Validate,
) {
	api := authApi{
		conf:     conf,
		svc:      svc,
		profiles: profiles,
		validate: validate,
	}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/login", api.login)
	ag.POST("/set-password", api.setPassword)

	// authed endpoints
	ag.POST("/token-refresh", api.refreshToken, jwt)
	g.GET("/roles", api.queryRoles, jwt, adminMiddleware())
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := authenticate(ctx.Request().Context(), api.conf, data.Email, data.Password, api.svc, api.profiles)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(api.conf, claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

// setPassword completes an emailed invitation: it verifies the UID/token
// pair and activates the identity with the chosen password.
func (api *authApi) setPassword(ctx echo.Context) error {
	var data identity.AcceptInvite
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AcceptInvite")
	}

	idn, err := api.svc.AcceptInvitation(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "accepting invitation")
	}

	p := getProfile(ctx.Request().Context(), api.profiles, idn.ID)
	token, err := GenerateToken(api.conf, GetIdentityClaims(api.conf, idn, p))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.conf, api.svc, api.profiles)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *authApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, profile.Roles)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}
