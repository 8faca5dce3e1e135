package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_order/internal/logging"
	"github.com/Skotchmaster/food_order/internal/middleware/auth"
	"github.com/Skotchmaster/food_order/internal/models"
	"github.com/Skotchmaster/food_order/internal/service"
	"github.com/Skotchmaster/food_order/internal/tokens"
	"github.com/Skotchmaster/food_order/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func sessionOf(u *models.User) transport.SessionResponse {
	return transport.SessionResponse{
		ID:      u.ID.String(),
		Email:   u.Email,
		Roles:   u.RoleList(),
		IsAdmin: u.HasRole(models.RoleAdmin),
	}
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Register(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "register_error", err)
	}

	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, sessionOf(user))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_failed", err)
	}
	auth.SetAuthCookies(c, res)

	l.Info("login_successful", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, sessionOf(res.User))
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	cookie, err := c.Cookie(tokens.RefreshCookie)
	if err != nil || cookie.Value == "" {
		l.Warn("refresh_error", "status", 401, "reason", "refresh token missing")
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}

	res, err := h.Svc.Refresh(ctx, cookie.Value)
	if err != nil {
		auth.ClearAuthCookies(c)
		return fail(l, "refresh_error", err)
	}
	auth.SetAuthCookies(c, res)
	return c.JSON(http.StatusOK, sessionOf(res.User))
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if cookie, err := c.Cookie(tokens.RefreshCookie); err == nil {
		if err := h.Svc.Logout(ctx, cookie.Value); err != nil {
			auth.ClearAuthCookies(c)
			l.Error("logout_failed", "status", 500, "reason", "cannot revoke refreshToken", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}
	auth.ClearAuthCookies(c)

	l.Info("successful_logout")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	id, err := userID(c)
	if err != nil {
		return err
	}
	user, err := h.Svc.Me(ctx, id)
	if err != nil {
		return fail(l, "me_error", err)
	}
	return c.JSON(http.StatusOK, sessionOf(user))
}
