package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_order/internal/logging"
	"github.com/Skotchmaster/food_order/internal/service"
	"github.com/Skotchmaster/food_order/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	id, err := userID(c)
	if err != nil {
		return err
	}
	cart, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) Menu(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.menu")

	id, err := userID(c)
	if err != nil {
		return err
	}
	menu, err := h.Svc.Menu(ctx, id)
	if err != nil {
		return fail(l, "cart_menu_error", err)
	}
	return c.JSON(http.StatusOK, menu)
}

func (h *CartHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	id, err := userID(c)
	if err != nil {
		return err
	}

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ID < 1 {
		l.Warn("add_to_cart_error", "status", 400, "reason", "invalid id")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	cart, err := h.Svc.Add(ctx, id, req.ID, req.Quantity.Value())
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}

	l.Info("add_to_cart_success", "item_id", req.ID)
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	id, err := userID(c)
	if err != nil {
		return err
	}
	itemID, err := intParam(c, "id")
	if err != nil {
		return err
	}

	cart, err := h.Svc.Remove(ctx, id, itemID)
	if err != nil {
		return fail(l, "remove_from_cart_error", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.checkout")

	id, err := userID(c)
	if err != nil {
		return err
	}
	order, err := h.Svc.Checkout(ctx, id)
	if err != nil {
		return fail(l, "checkout_error", err)
	}

	l.Info("checkout_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}
