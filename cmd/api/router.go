package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shop-backend/internal/shared/middleware"
	"shop-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
		middleware.ClientIPMiddleware(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupCatalogRoutes(v1, c)
		setupCartRoutes(v1, c)
		setupCouponRoutes(v1, c)
		setupOrderRoutes(v1, c)
		setupPaymentRoutes(v1, c)
		setupWebhookRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	return router
}

// ========================================
// CATALOG ROUTES (public read surface)
// ========================================
func setupCatalogRoutes(v1 *gin.RouterGroup, c *container.Container) {
	products := v1.Group("/products")
	{
		products.GET("", c.CatalogHandler.ListProducts)
		products.GET("/:id", c.CatalogHandler.GetProduct)
		products.GET("/:id/stock", c.CatalogHandler.GetVariantStock)
	}
}

// ========================================
// CART ROUTES
// ========================================
func setupCartRoutes(v1 *gin.RouterGroup, c *container.Container) {
	cart := v1.Group("/cart")
	cart.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		cart.GET("", c.CartHandler.GetCart)
		cart.POST("/items", c.CartHandler.AddItem)
		cart.PUT("/items/:item_id", c.CartHandler.UpdateItemQuantity)
		cart.DELETE("/items/:item_id", c.CartHandler.RemoveItem)
		cart.DELETE("", c.CartHandler.ClearCart)
		cart.POST("/checkout", c.CartHandler.Checkout)
	}
}

// ========================================
// COUPON ROUTES
// ========================================
func setupCouponRoutes(v1 *gin.RouterGroup, c *container.Container) {
	coupons := v1.Group("/coupons")
	{
		coupons.GET("", c.CouponPublic.ListActiveCoupons)
		coupons.POST("/validate", middleware.AuthMiddleware(c.JWTManager), c.CouponPublic.ValidateCoupon)
	}
}

// ========================================
// ORDER ROUTES
// ========================================
func setupOrderRoutes(v1 *gin.RouterGroup, c *container.Container) {
	orders := v1.Group("/orders")
	orders.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		orders.POST("", c.OrderHandler.CreateOrder)
		orders.GET("", c.OrderHandler.ListOrders)
		orders.GET("/:id", c.OrderHandler.GetOrder)
		orders.POST("/:id/cancel", c.OrderHandler.CancelOrder)
		orders.GET("/:id/payments", c.PaymentHTTPHandler.ListOrderPayments)
	}
}

// ========================================
// PAYMENT ROUTES
// ========================================
func setupPaymentRoutes(v1 *gin.RouterGroup, c *container.Container) {
	payments := v1.Group("/payments")
	{
		// Return URLs are hit by the customer's browser coming back
		// from the gateway; they carry their own signature instead of
		// a JWT.
		payments.GET("/vnpay/return", c.PaymentHTTPHandler.VNPayReturn)
		payments.GET("/momo/return", c.PaymentHTTPHandler.MomoReturn)

		authed := payments.Group("")
		authed.Use(middleware.AuthMiddleware(c.JWTManager))
		{
			authed.POST("/vnpay/:order_id", c.PaymentHTTPHandler.CreateVNPayPayment)
			authed.POST("/momo/:order_id", c.PaymentHTTPHandler.CreateMomoPayment)
		}
	}
}

// ========================================
// WEBHOOK ROUTES (gateway server-to-server)
// ========================================
func setupWebhookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	webhooks := v1.Group("/webhooks")
	{
		webhooks.GET("/vnpay", c.PaymentHTTPHandler.VNPayIPN)
		webhooks.POST("/vnpay", c.PaymentHTTPHandler.VNPayIPN)
		webhooks.POST("/momo", c.PaymentHTTPHandler.MomoIPN)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin")
	admin.Use(
		middleware.AuthMiddleware(c.JWTManager),
		middleware.AdminMiddleware(),
	)
	{
		coupons := admin.Group("/coupons")
		{
			coupons.POST("", c.CouponAdmin.CreateCoupon)
			coupons.GET("", c.CouponAdmin.ListCoupons)
			coupons.GET("/:id", c.CouponAdmin.GetCoupon)
			coupons.PUT("/:id", c.CouponAdmin.UpdateCoupon)
			coupons.POST("/:id/deactivate", c.CouponAdmin.DeactivateCoupon)
			coupons.DELETE("/:id", c.CouponAdmin.DeleteCoupon)
			coupons.GET("/:id/usage", c.CouponAdmin.ListCouponUsage)
		}

		orders := admin.Group("/orders")
		{
			orders.GET("", c.OrderHandler.ListAllOrders)
			orders.GET("/:id", c.OrderHandler.GetOrderAdmin)
			orders.GET("/:id/history", c.OrderHandler.GetStatusHistory)
			orders.PATCH("/:id/status", c.OrderHandler.UpdateStatus)
			orders.PATCH("/:id/payment", c.OrderHandler.UpdatePaymentStatus)
		}

		payments := admin.Group("/payments")
		{
			payments.GET("/:id", c.PaymentHTTPHandler.GetPayment)
			payments.POST("/:id/refund", c.PaymentHTTPHandler.RefundPayment)
		}
	}
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		dbStatus := "ok"
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := appCtx.DB.HealthCheck(ctx); err != nil {
			dbStatus = "error"
			health["status"] = "degraded"
		}

		redisStatus := "ok"
		if err := appCtx.Cache.Ping(ctx); err != nil {
			// Degraded but serviceable: reads fall back to postgres.
			redisStatus = "error"
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
