package routes

import (
	"fmt"
	"net/http"

	"marketplace-backend/internal/api/handlers"
	"marketplace-backend/internal/api/middleware"
	"marketplace-backend/internal/auth"
	"marketplace-backend/internal/cart"
	"marketplace-backend/internal/config"
	"marketplace-backend/internal/database/models"
	"marketplace-backend/internal/repository"
	"marketplace-backend/internal/service"
	"marketplace-backend/internal/tenant"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRoutes configures all the routes for the application. redisClient may be
// nil when carts live in memory.
func SetupRoutes(db *gorm.DB, cfg *config.Config, carts cart.Store, translator service.Translator, redisClient *redis.Client) (*gin.Engine, error) {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(cfg))

	validator := service.NewValidator()

	// Initialize repositories
	organizationRepo := repository.NewOrganizationRepository(db)
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	txManager := repository.NewTxManager(db)

	// Initialize services
	organizationService := service.NewOrganizationService(organizationRepo, validator)
	userService := service.NewUserService(userRepo, organizationRepo, validator)
	productService := service.NewProductService(productRepo, organizationRepo, validator)
	searchService := service.NewSearchService(productRepo, translator, cfg.AITimeout(), cfg.SearchMessagePolicy)
	cartService := service.NewCartService(carts, productRepo, validator)
	checkoutService := service.NewCheckoutService(carts, productRepo, orderRepo, txManager)
	orderService := service.NewOrderService(orderRepo)

	authService, err := auth.NewAuthService(auth.NewAuthConfig(cfg.JWTSecret, cfg.JWTTTL()), userRepo)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}
	authHandler := auth.NewAuthHandler(authService)
	authMiddleware := auth.NewAuthMiddleware(authService)

	// Initialize handlers
	checks := map[string]handlers.HealthCheck{"database": handlers.DatabaseCheck(db)}
	if redisClient != nil {
		checks["cart_store"] = handlers.RedisCheck(redisClient)
	}
	healthHandler := handlers.NewHealthHandler(checks)
	organizationHandler := handlers.NewOrganizationHandler(organizationService)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService, searchService)
	cartHandler := handlers.NewCartHandler(cartService, checkoutService)
	orderHandler := handlers.NewOrderHandler(orderService)

	// Health check routes
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/health/live", healthHandler.Live)

	// Swagger documentation route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Everything under /api resolves the caller and runs inside a tenant scope
	api := router.Group("/api")
	api.Use(authMiddleware.OptionalAuth(), tenant.Guard())

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/register", userHandler.Register)
		authRoutes.GET("/me", auth.RequireAuthenticated(), authHandler.Me)
	}

	adminOnly := auth.RequireRole(models.RoleAdmin)
	catalogManagers := auth.RequireRole(models.RoleAdmin, models.RoleManager)

	v1 := api.Group("/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", productHandler.ListProducts)
			products.GET("/search", productHandler.SearchProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.POST("", catalogManagers, productHandler.CreateProduct)
			products.PUT("/:id", catalogManagers, productHandler.UpdateProduct)
			products.DELETE("/:id", catalogManagers, productHandler.DeleteProduct)
		}

		organizations := v1.Group("/organizations")
		{
			organizations.GET("", organizationHandler.ListOrganizations)
			organizations.GET("/:id", organizationHandler.GetOrganization)
			organizations.POST("", adminOnly, organizationHandler.CreateOrganization)
			organizations.PUT("/:id", adminOnly, organizationHandler.UpdateOrganization)
		}

		users := v1.Group("/users")
		{
			users.GET("", catalogManagers, userHandler.ListUsers)
			users.GET("/:id", catalogManagers, userHandler.GetUser)
			users.POST("", adminOnly, userHandler.CreateUser)
			users.DELETE("/:id", adminOnly, userHandler.DeleteUser)
		}

		authenticated := v1.Group("")
		authenticated.Use(auth.RequireAuthenticated())
		{
			authenticated.GET("/cart", cartHandler.GetCart)
			authenticated.DELETE("/cart", cartHandler.ClearCart)
			authenticated.POST("/cart/items", cartHandler.AddItem)
			authenticated.DELETE("/cart/items/:productId", cartHandler.RemoveItem)
			authenticated.POST("/checkout", cartHandler.Checkout)
			authenticated.GET("/orders", orderHandler.ListOrders)
			authenticated.GET("/orders/:id", orderHandler.GetOrder)
		}
	}

	// Catch-all route for undefined endpoints
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":      "Endpoint not found",
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": middleware.GetRequestID(c),
		})
	})

	return router, nil
}
