package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_order/internal/logging"
	"github.com/Skotchmaster/food_order/internal/models"
	"github.com/Skotchmaster/food_order/internal/service"
	"github.com/Skotchmaster/food_order/internal/transport"
	"github.com/Skotchmaster/food_order/internal/util"
)

type MenuHTTP struct {
	Svc *service.MenuService
}

func pageOf(c echo.Context) (page, offset, limit int) {
	page = util.ParseIntDefault(c.QueryParam("page"), 1)
	if page < 1 {
		page = 1
	}
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit = util.Calculate(page, size)
	return page, offset, limit
}

func (h *MenuHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.list")

	page, offset, limit := pageOf(c)
	total, items, err := h.Svc.List(ctx, offset, limit)
	if err != nil {
		return fail(l, "list_menu_error", err)
	}

	return c.JSON(http.StatusOK, transport.PageResponse[models.MenuItem]{
		Items: items,
		Total: total,
		Meta:  util.Meta(page, limit, total),
	})
}

func (h *MenuHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.get")

	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	item, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(l, "get_menu_item_error", err)
	}
	return c.JSON(http.StatusOK, item)
}

// Quote prices ?quantity= units of the item. A missing or unparsable
// quantity is clamped like any other bad input.
func (h *MenuHTTP) Quote(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.quote")

	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	q, err := strconv.ParseFloat(c.QueryParam("quantity"), 64)
	if err != nil {
		q = 1
	}

	quote, err := h.Svc.Quote(ctx, id, q)
	if err != nil {
		return fail(l, "quote_error", err)
	}
	return c.JSON(http.StatusOK, quote)
}

func (h *MenuHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.search")

	page, offset, limit := pageOf(c)
	total, items, err := h.Svc.SearchMenu(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		return fail(l, "search_error", err)
	}

	return c.JSON(http.StatusOK, transport.PageResponse[models.MenuItem]{
		Items: items,
		Total: total,
		Meta:  util.Meta(page, limit, total),
	})
}
