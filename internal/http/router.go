package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"kittisap.shop/app/internal/http/handlers"
	adminhandlers "kittisap.shop/app/internal/http/handlers/admin"
	"kittisap.shop/app/internal/http/middleware"
)

type RouterDeps struct {
	Log  *slog.Logger
	Auth middleware.Authenticator

	Products    *handlers.ProductsHandler
	Orders      *handlers.OrdersHandler
	Coupons     *handlers.CouponsHandler
	Subscribers *handlers.SubscribersHandler

	AdminOrders    *adminhandlers.OrdersHandler
	AdminBroadcast *adminhandlers.BroadcastHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Log))
	r.Use(middleware.Recovery(d.Log))
	r.Use(middleware.ErrorHandler(d.Log))
	r.Use(middleware.Auth(d.Auth))

	r.MaxMultipartMemory = 12 << 20

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := r.Group("/api")
	{
		api.GET("/products", d.Products.List)
		api.GET("/products/:slug", d.Products.Detail)

		api.POST("/coupons/validate", d.Coupons.Validate)

		api.POST("/subscribers", d.Subscribers.Subscribe)
		api.DELETE("/subscribers", d.Subscribers.Unsubscribe)

		authed := api.Group("", middleware.RequireAuth())
		{
			authed.POST("/orders", d.Orders.Create)
			authed.GET("/orders", d.Orders.List)
			authed.GET("/orders/:number", d.Orders.Detail)
			authed.POST("/orders/:number/cancel", d.Orders.Cancel)
			authed.POST("/orders/:number/slip", d.Orders.UploadSlip)
		}

		admin := api.Group("/admin", middleware.RequireAdmin())
		{
			admin.GET("/orders", d.AdminOrders.List)
			admin.GET("/orders/:number", d.AdminOrders.Detail)
			admin.POST("/orders/:number/slips/:slipID/review", d.AdminOrders.ReviewSlip)
			admin.POST("/orders/:number/transition", d.AdminOrders.Transition)

			admin.POST("/broadcasts", d.AdminBroadcast.Send)
			admin.GET("/broadcasts", d.AdminBroadcast.List)
			admin.GET("/broadcasts/:id/recipients", d.AdminBroadcast.Recipients)
		}
	}

	return r
}
