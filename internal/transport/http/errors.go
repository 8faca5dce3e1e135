package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_order/internal/middleware/auth"
	"github.com/Skotchmaster/food_order/internal/models"
	"github.com/Skotchmaster/food_order/internal/service"
)

// fail logs err under event and turns it into the matching HTTP error.
func fail(l *slog.Logger, event string, err error) error {
	code, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, service.ErrValidation):
		code, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotFound):
		code, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrConflict):
		code, msg = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrUnauthorized):
		code, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrForbidden):
		code, msg = http.StatusForbidden, err.Error()
	}

	if code >= 500 {
		l.Error(event, "status", code, "error", err)
	} else {
		l.Warn(event, "status", code, "error", err)
	}
	return echo.NewHTTPError(code, msg)
}

func userID(c echo.Context) (uuid.UUID, error) {
	s, _ := c.Get(auth.CtxUserID).(string)
	if s == "" {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

func caller(c echo.Context) (service.Caller, error) {
	id, err := userID(c)
	if err != nil {
		return service.Caller{}, err
	}
	roles, _ := c.Get(auth.CtxRoles).([]string)
	admin := false
	for _, r := range roles {
		if r == models.RoleAdmin {
			admin = true
		}
	}
	return service.Caller{UserID: id, Admin: admin}, nil
}

func intParam(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return v, nil
}
