package auth

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_order/internal/service"
	"github.com/Skotchmaster/food_order/internal/tokens"
)

const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRoles  = "roles"
)

type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*service.LoginResult, error)
}

// RoleSource returns the roles a user holds right now.
type RoleSource interface {
	CurrentRoles(ctx context.Context, userID string) ([]string, error)
}

// Middleware authenticates requests from the access token cookie. An expired
// access token is renewed from the refresh token cookie when a Refresher is
// set. With Roles set, RequireRole checks stored roles instead of the token
// claims, so a revoked role stops working before the token expires.
type Middleware struct {
	JWTSecret []byte
	Refresher Refresher
	Roles     RoleSource
}

func New(secret []byte, refresher Refresher) *Middleware {
	return &Middleware{JWTSecret: secret, Refresher: refresher}
}

func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		accessCookie, err := c.Cookie(tokens.AccessCookie)
		if err != nil || accessCookie.Value == "" {
			return m.refresh(c, next, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(accessCookie.Value, m.JWTSecret)
		if err == nil {
			setUserContext(c, claims)
			return next(c)
		}
		if !errors.Is(err, jwt.ErrTokenExpired) {
			ClearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}
		return m.refresh(c, next, "access token expired")
	}
}

func (m *Middleware) refresh(c echo.Context, next echo.HandlerFunc, reason string) error {
	refreshCookie, err := c.Cookie(tokens.RefreshCookie)
	if m.Refresher == nil || err != nil || refreshCookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, reason)
	}

	res, err := m.Refresher.Refresh(c.Request().Context(), refreshCookie.Value)
	if err != nil {
		ClearAuthCookies(c)
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh failed")
	}
	SetAuthCookies(c, res)

	claims, err := tokens.AccessClaimsFromToken(res.AccessToken, m.JWTSecret)
	if err != nil {
		ClearAuthCookies(c)
		return echo.NewHTTPError(http.StatusUnauthorized, "new access token invalid")
	}
	setUserContext(c, claims)
	return next(c)
}

// RequireRole lets the request through when the caller holds any of roles.
// It must run after RequireAuth.
func (m *Middleware) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			have, err := m.rolesOf(c)
			if err != nil {
				return err
			}
			if len(have) == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing role")
			}
			for _, r := range roles {
				if slices.Contains(have, r) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights to see this page")
		}
	}
}

func (m *Middleware) rolesOf(c echo.Context) ([]string, error) {
	if m.Roles == nil {
		have, _ := c.Get(CtxRoles).([]string)
		return have, nil
	}

	userID, _ := c.Get(CtxUserID).(string)
	if userID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing user")
	}
	have, err := m.Roles.CurrentRoles(c.Request().Context(), userID)
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrUnauthorized):
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	case err != nil:
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "role lookup failed").SetInternal(err)
	}
	c.Set(CtxRoles, have)
	return have, nil
}

func SetAuthCookies(c echo.Context, res *service.LoginResult) {
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, res.AccessToken, "/", res.AccessExp))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, res.RefreshToken, "/", res.RefreshExp))
}

func ClearAuthCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(CtxUserID, claims.Subject)
	c.Set(CtxEmail, claims.Email)
	c.Set(CtxRoles, claims.Roles)
}
