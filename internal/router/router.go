package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rhinoeg/rhino-backend/config"
	"github.com/rhinoeg/rhino-backend/internal/app/controller"
	"github.com/rhinoeg/rhino-backend/internal/metrics"
	"github.com/rhinoeg/rhino-backend/internal/middleware"
)

type Router struct {
	authController      *controller.AuthController
	productController   *controller.ProductController
	reviewController    *controller.ReviewController
	cartController      *controller.CartController
	wishlistController  *controller.WishlistController
	designController    *controller.DesignController
	orderController     *controller.OrderController
	promoCodeController *controller.PromoCodeController
	wsController        *controller.WebSocketController
	authMiddleware      *middleware.AuthMiddleware
	config              *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	reviewController *controller.ReviewController,
	cartController *controller.CartController,
	wishlistController *controller.WishlistController,
	designController *controller.DesignController,
	orderController *controller.OrderController,
	promoCodeController *controller.PromoCodeController,
	wsController *controller.WebSocketController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:      authController,
		productController:   productController,
		reviewController:    reviewController,
		cartController:      cartController,
		wishlistController:  wishlistController,
		designController:    designController,
		orderController:     orderController,
		promoCodeController: promoCodeController,
		wsController:        wsController,
		authMiddleware:      authMiddleware,
		config:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(metrics.Middleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "RHINO.EG API is running",
		})
	})
	router.GET("/metrics", metrics.Handler())

	authenticated := r.authMiddleware.Authenticate()

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", authenticated, r.authController.Logout)
			auth.GET("/me", authenticated, r.authController.GetMe)
		}

		v1.GET("/categories", r.productController.ListCategories)

		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/slug/:slug", r.productController.GetProductBySlug)
			products.GET("/:id", r.productController.GetProduct)
			products.GET("/:id/reviews", r.reviewController.ListProductReviews)
			products.POST("/:id/reviews", authenticated, r.reviewController.CreateReview)
		}

		cart := v1.Group("/cart")
		cart.Use(authenticated)
		{
			cart.GET("", r.cartController.GetCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.POST("/items", r.cartController.AddItem)
			cart.PUT("/items/:id", r.cartController.UpdateItem)
			cart.DELETE("/items/:id", r.cartController.RemoveItem)
			cart.POST("/promo", r.cartController.ApplyPromo)
			cart.DELETE("/promo", r.cartController.RemovePromo)
		}

		wishlist := v1.Group("/wishlist")
		wishlist.Use(authenticated)
		{
			wishlist.GET("", r.wishlistController.GetWishlist)
			wishlist.POST("", r.wishlistController.AddToWishlist)
			wishlist.DELETE("/:product_id", r.wishlistController.RemoveFromWishlist)
		}

		designs := v1.Group("/designs")
		designs.Use(authenticated)
		{
			designs.POST("/upload-url", r.designController.RequestUploadURL)
			designs.POST("", r.designController.CreateDesign)
			designs.GET("", r.designController.ListDesigns)
			designs.GET("/:id", r.designController.GetDesign)
		}

		orders := v1.Group("/orders")
		orders.Use(authenticated)
		{
			orders.POST("/checkout", r.orderController.Checkout)
			orders.GET("", r.orderController.ListOrders)
			orders.GET("/:id", r.orderController.GetOrder)
			orders.POST("/:id/cancel", r.orderController.CancelOrder)
		}

		v1.GET("/ws/orders", authenticated, r.wsController.OrderEvents)

		admin := v1.Group("/admin")
		admin.Use(authenticated, r.authMiddleware.RequireAdmin())
		{
			admin.GET("/promo-codes", r.promoCodeController.ListPromoCodes)
			admin.POST("/promo-codes", r.promoCodeController.CreatePromoCode)
			admin.PUT("/promo-codes/:id/active", r.promoCodeController.SetActive)
			admin.DELETE("/promo-codes/:id", r.promoCodeController.DeletePromoCode)

			admin.PUT("/orders/:id/status", r.orderController.UpdateStatus)
			admin.GET("/orders/export", r.orderController.ExportOrders)

			admin.PUT("/reviews/:id/approve", r.reviewController.ApproveReview)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
