package echoapi

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/identity"
	"github.com/darasahq/darasa/core/profile"
)

const (
	jwtSigningMethod = middleware.AlgorithmHS256
	jwtContextKey    = "identityToken"
)

func newJWTMiddleware(conf *core.Config) echo.MiddlewareFunc {
	return middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:    conf.SecretKey,
		SigningMethod: jwtSigningMethod,
		ContextKey:    jwtContextKey,
		Claims:        new(Claims),
	})
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role,omitempty"`
	IsAdmin      bool   `json:"is_admin,omitempty"` // -> ADMIN PORTAL
}

func GetIdentityClaims(conf *core.Config, idn identity.Identity, p profile.Profile, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   idn.ID,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Email:        idn.Email,
		Role:         p.Role,
		IsAdmin:      p.IsAdmin(),
	}
}

func authenticate(
	ctx context.Context,
	conf *core.Config,
	email, pwd string,
	svc identity.ServiceInterface,
	profiles profile.Repository,
) (*Claims, error) {
	idn, err := svc.Authenticate(ctx, email, pwd)
	if err != nil {
		if errors.Cause(err) == identity.ErrNotFound {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "authenticating identity")
	}
	if !idn.IsActive {
		return nil, errAccountDeactivated
	}
	return GetIdentityClaims(conf, idn, getProfile(ctx, profiles, idn.ID)), nil
}

// getProfile falls back to a bare learner profile when none has been
// written yet; the identity can log in but holds no privileges.
func getProfile(ctx context.Context, profiles profile.Repository, id string) profile.Profile {
	p, err := profiles.GetProfileByID(ctx, id)
	if err != nil {
		return profile.Profile{ID: id, Role: profile.DefaultRole}
	}
	return p
}

// GenerateToken generates a signed JWT token string representing the identity Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(jwtSigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(conf.SecretKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(jwtContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func refreshToken(
	ctx echo.Context,
	conf *core.Config,
	svc identity.ServiceInterface,
	profiles profile.Repository,
) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	idn, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return "", errors.Wrap(err, "finding identity by ID")
	}

	// check if identity is still active
	if !idn.IsActive {
		return "", errAccountDeactivated
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	p := getProfile(ctx.Request().Context(), profiles, idn.ID)
	newClaims := GetIdentityClaims(conf, idn, p, claims.OrigIssuedAt)
	token, err := GenerateToken(conf, newClaims)
	return token, errors.Wrap(err, "generating token")
}
