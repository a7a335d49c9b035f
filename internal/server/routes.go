package server

import (
	"net/http"

	"storefront/internal/handler"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ルート登録に使うハンドラ一式
type Handlers struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	AdminUser    *handler.AdminUserHandler
	Cart         *handler.CartHandler
	Wishlist     *handler.WishlistHandler
	Activity     *handler.ActivityHandler
	Analytics    *handler.AnalyticsHandler
	UserData     *handler.UserDataHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers, deps handler.AuthDeps, authLimiter echo.MiddlewareFunc) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if authLimiter != nil {
		h.Auth.RegisterRoutes(e, deps, authLimiter)
	} else {
		h.Auth.RegisterRoutes(e, deps)
	}
	h.Product.RegisterRoutes(e)
	h.AdminProduct.RegisterRoutes(e, deps)
	h.AdminUser.RegisterRoutes(e, deps)
	h.Cart.RegisterRoutes(e, deps)
	h.Wishlist.RegisterRoutes(e, deps)
	h.Activity.RegisterRoutes(e, deps)
	h.Analytics.RegisterRoutes(e, deps)
	h.UserData.RegisterRoutes(e, deps)
}
