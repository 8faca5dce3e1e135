package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_order/internal/feed"
	"github.com/Skotchmaster/food_order/internal/logging"
	"github.com/Skotchmaster/food_order/internal/models"
	"github.com/Skotchmaster/food_order/internal/service"
	"github.com/Skotchmaster/food_order/internal/transport"
	"github.com/Skotchmaster/food_order/internal/util"
)

const keepAlive = 25 * time.Second

type OrderHTTP struct {
	Svc *service.OrderService
	Hub *feed.Hub
}

func orderID(c echo.Context) (uint, error) {
	v, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || v == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(v), nil
}

func (h *OrderHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	id, err := userID(c)
	if err != nil {
		return err
	}
	page, offset, limit := pageOf(c)
	total, orders, err := h.Svc.List(ctx, id, offset, limit)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}

	return c.JSON(http.StatusOK, transport.PageResponse[models.Order]{
		Items: orders,
		Total: total,
		Meta:  util.Meta(page, limit, total),
	})
}

func (h *OrderHTTP) Pay(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.pay")

	who, err := caller(c)
	if err != nil {
		return err
	}
	id, err := orderID(c)
	if err != nil {
		return err
	}

	order, err := h.Svc.Pay(ctx, who, id)
	if err != nil {
		return fail(l, "pay_order_error", err)
	}
	l.Info("pay_order_success", "order_id", id)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete")

	who, err := caller(c)
	if err != nil {
		return err
	}
	id, err := orderID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, who, id); err != nil {
		return fail(l, "delete_order_error", err)
	}
	l.Info("delete_order_success", "order_id", id)
	return c.NoContent(http.StatusNoContent)
}

// Stream pushes the caller's order list as server sent events: once on
// connect and again whenever the orders change.
func (h *OrderHTTP) Stream(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.stream")

	id, err := userID(c)
	if err != nil {
		return err
	}

	changes, cancel := h.Hub.Subscribe(id.String())
	defer cancel()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func() error {
		_, orders, err := h.Svc.List(ctx, id, 0, util.MaxPageSize)
		if err != nil {
			return err
		}
		data, err := json.Marshal(orders)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: orders\ndata: %s\n\n", data); err != nil {
			return err
		}
		w.Flush()
		return nil
	}

	if err := send(); err != nil {
		l.Warn("order_stream_closed", "error", err)
		return nil
	}

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if err := send(); err != nil {
				l.Warn("order_stream_closed", "error", err)
				return nil
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
