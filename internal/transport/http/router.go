package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_order/internal/middleware/auth"
	"github.com/Skotchmaster/food_order/internal/middleware/csrf"
	"github.com/Skotchmaster/food_order/internal/models"
)

type Deps struct {
	AuthHandler  *AuthHTTP
	MenuHandler  *MenuHTTP
	CartHandler  *CartHTTP
	OrderHandler *OrderHTTP
	AdminHandler *AdminHTTP

	JWTSecret []byte
	Refresher auth.Refresher
	Roles     auth.RoleSource
	CSRF      bool
	Ready     func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	api := e.Group("/api/v1")
	if d.CSRF {
		api.Use(csrf.Middleware(csrf.Config{SkipPaths: []string{
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		}}))
	}

	authMW := auth.New(d.JWTSecret, d.Refresher)
	authMW.Roles = d.Roles

	a := api.Group("/auth")
	a.POST("/register", d.AuthHandler.Register)
	a.POST("/login", d.AuthHandler.Login)
	a.POST("/refresh", d.AuthHandler.Refresh)
	a.POST("/logout", d.AuthHandler.Logout)
	a.GET("/me", d.AuthHandler.Me, authMW.RequireAuth)

	menu := api.Group("/menu")
	menu.GET("", d.MenuHandler.List)
	menu.GET("/search", d.MenuHandler.Search)
	menu.GET("/:id", d.MenuHandler.Get)
	menu.GET("/:id/quote", d.MenuHandler.Quote)

	cart := api.Group("/cart", authMW.RequireAuth)
	cart.GET("", d.CartHandler.Get)
	cart.POST("", d.CartHandler.Add)
	cart.GET("/menu", d.CartHandler.Menu)
	cart.DELETE("/:id", d.CartHandler.Remove)
	cart.POST("/checkout", d.CartHandler.Checkout)

	orders := api.Group("/orders", authMW.RequireAuth)
	orders.GET("", d.OrderHandler.List)
	orders.GET("/stream", d.OrderHandler.Stream)
	orders.POST("/:id/pay", d.OrderHandler.Pay)
	orders.DELETE("/:id", d.OrderHandler.Delete)

	admin := api.Group("/admin", authMW.RequireAuth, authMW.RequireRole(models.RoleAdmin))
	admin.GET("/stock", d.AdminHandler.Stock)
	admin.PATCH("/menu/:id", d.AdminHandler.PatchMenu)
	admin.GET("/orders", d.AdminHandler.AllOrders)
	admin.GET("/users", d.AdminHandler.Users)
	admin.PATCH("/users/:id/admin", d.AdminHandler.SetAdmin)
	admin.PUT("/users/:id/roles", d.AdminHandler.SetRoles)
}
