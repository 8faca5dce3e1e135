package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_order/internal/logging"
	"github.com/Skotchmaster/food_order/internal/models"
	"github.com/Skotchmaster/food_order/internal/service"
	"github.com/Skotchmaster/food_order/internal/transport"
	"github.com/Skotchmaster/food_order/internal/util"
)

type AdminHTTP struct {
	Auth   *service.AuthService
	Menu   *service.MenuService
	Orders *service.OrderService
}

func (h *AdminHTTP) Stock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.stock")

	items, err := h.Menu.Stock(ctx)
	if err != nil {
		return fail(l, "stock_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *AdminHTTP) PatchMenu(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.patch_menu")

	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	var req transport.PatchMenuRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_menu_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Menu.Patch(ctx, id, req)
	if err != nil {
		return fail(l, "patch_menu_error", err)
	}
	l.Info("patch_menu_success", "menu_item", id)
	return c.JSON(http.StatusOK, item)
}

func (h *AdminHTTP) AllOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.orders")

	page, offset, limit := pageOf(c)
	total, orders, err := h.Orders.ListAll(ctx, offset, limit)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, transport.PageResponse[models.Order]{
		Items: orders,
		Total: total,
		Meta:  util.Meta(page, limit, total),
	})
}

func (h *AdminHTTP) Users(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.users")

	users, err := h.Auth.ListUsers(ctx)
	if err != nil {
		return fail(l, "list_users_error", err)
	}
	out := make([]transport.SessionResponse, len(users))
	for i := range users {
		out[i] = sessionOf(&users[i])
	}
	return c.JSON(http.StatusOK, out)
}

func targetUser(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return id, nil
}

func (h *AdminHTTP) SetAdmin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.set_admin")

	id, err := targetUser(c)
	if err != nil {
		return err
	}
	var req transport.SetAdminRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("set_admin_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Auth.SetAdmin(ctx, id, req.IsAdmin)
	if err != nil {
		return fail(l, "set_admin_error", err)
	}
	l.Info("set_admin_success", "user_id", id, "is_admin", req.IsAdmin)
	return c.JSON(http.StatusOK, sessionOf(user))
}

func (h *AdminHTTP) SetRoles(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.set_roles")

	id, err := targetUser(c)
	if err != nil {
		return err
	}
	var req transport.SetRolesRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("set_roles_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Auth.SetRoles(ctx, id, req.Roles)
	if err != nil {
		return fail(l, "set_roles_error", err)
	}
	return c.JSON(http.StatusOK, sessionOf(user))
}
