package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Adham-ELshahed/Memar/internal/api/handlers"
	"github.com/Adham-ELshahed/Memar/internal/api/middleware"
	"github.com/Adham-ELshahed/Memar/internal/config"
	"github.com/Adham-ELshahed/Memar/internal/payments"
	"github.com/Adham-ELshahed/Memar/internal/services"
	"github.com/Adham-ELshahed/Memar/internal/storage"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, scheduler services.ITaskScheduler) *gin.Engine {
	// Initialize services needed by API handlers here.
	userService := services.NewUserService(db)
	orgService := services.NewOrganizationService(db, userService)
	categoryService := services.NewCategoryService(db)
	productService := services.NewProductService(db, categoryService, cfg.DefaultCurrency)
	rfqService := services.NewRfqService(db, cfg.DefaultCurrency)
	orderService := services.NewOrderService(db, productService, rfqService, cfg.DefaultCurrency)
	messageService := services.NewMessageService(db, scheduler)
	reviewService := services.NewReviewService(db, orgService, productService, orderService, scheduler)
	settingsService := services.NewSettingsService(db, rdb)
	statsService := services.NewStatsService(db, rdb, cfg.StatsCacheTTL)
	aclService := services.NewObjectACLService(db)

	s3StorageService, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatalf("CRITICAL: Failed to initialize S3 storage for API: %v", err)
	}
	paymentClient := payments.NewClient(cfg.PaymentApiURL, cfg.PaymentSecretKey)

	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, userService)
	orgHandler := handlers.NewOrganizationHandler(cfg, orgService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	productHandler := handlers.NewProductHandler(cfg, productService, orgService)
	rfqHandler := handlers.NewRfqHandler(cfg, rfqService, orgService)
	orderHandler := handlers.NewOrderHandler(cfg, orderService, orgService)
	messageHandler := handlers.NewMessageHandler(cfg, messageService, userService)
	reviewHandler := handlers.NewReviewHandler(cfg, reviewService)
	objectHandler := handlers.NewObjectHandler(cfg, s3StorageService, aclService, orgService, scheduler)
	paymentHandler := handlers.NewPaymentHandler(cfg, paymentClient, orderService)
	adminHandler := handlers.NewAdminHandler(statsService, orgService)
	configHandler := handlers.NewConfigHandler(cfg, settingsService)

	apiGroup := r.Group("/api")
	{
		// Public routes
		apiGroup.GET("/config", configHandler.GetConfig)
		apiGroup.GET("/login", authHandler.Login)
		apiGroup.GET("/logout", authHandler.Logout)
		apiGroup.GET("/organizations", orgHandler.ListOrganizations)
		apiGroup.GET("/categories", categoryHandler.ListCategories)
		apiGroup.GET("/products", productHandler.ListProducts)
		apiGroup.GET("/products/:id", productHandler.GetProduct)
		apiGroup.GET("/reviews", reviewHandler.ListReviews)

		apiGroup.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Public RFQ browsing. Identity is resolved when a token is sent so
		// owners and admins can see drafts and full quote lists.
		publicRfqs := apiGroup.Group("/")
		publicRfqs.Use(middleware.OptionalAuthMiddleware(cfg.JwtSecret))
		{
			publicRfqs.GET("/rfqs", rfqHandler.ListRfqs)
			publicRfqs.GET("/rfqs/:id", rfqHandler.GetRfq)
			publicRfqs.GET("/rfqs/:id/responses", rfqHandler.ListRfqResponses)
		}

		// Authenticated routes
		authRequired := apiGroup.Group("/")
		authRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			authRequired.GET("/auth/user", authHandler.GetCurrentUser)
			authRequired.PUT("/auth/user", authHandler.UpdateProfile)

			authRequired.GET("/organizations/me", orgHandler.GetMyOrganization)
			authRequired.POST("/organizations", orgHandler.CreateOrganization)
			authRequired.PUT("/organizations/:id", orgHandler.UpdateOrganization)

			authRequired.POST("/products", productHandler.CreateProduct)
			authRequired.PUT("/products/:id", productHandler.UpdateProduct)

			authRequired.POST("/rfqs", rfqHandler.CreateRfq)
			authRequired.POST("/rfqs/:id/publish", rfqHandler.PublishRfq)
			authRequired.POST("/rfqs/:id/cancel", rfqHandler.CancelRfq)
			authRequired.POST("/rfqs/:id/responses", rfqHandler.CreateRfqResponse)
			authRequired.POST("/rfq-responses/:id/accept", rfqHandler.AcceptRfqResponse)

			authRequired.GET("/orders", orderHandler.ListOrders)
			authRequired.GET("/orders/:id", orderHandler.GetOrder)
			authRequired.POST("/orders", orderHandler.CreateOrder)
			authRequired.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)
			authRequired.GET("/orders/:id/items", orderHandler.ListOrderItems)
			authRequired.POST("/orders/:id/items", orderHandler.CreateOrderItem)

			authRequired.GET("/messages", messageHandler.ListMessages)
			authRequired.POST("/messages", messageHandler.CreateMessage)
			authRequired.PUT("/messages/:id/read", messageHandler.MarkMessageRead)

			authRequired.POST("/reviews", reviewHandler.CreateReview)

			authRequired.POST("/objects/upload", objectHandler.CreateUploadURL)
			authRequired.PUT("/upload/logo", objectHandler.SetLogo)

			authRequired.POST("/create-payment-intent", paymentHandler.CreatePaymentIntent)
		}

		// Organization detail stays public but must not shadow /organizations/me,
		// so it is registered after the authenticated group.
		apiGroup.GET("/organizations/:id", orgHandler.GetOrganization)

		// Admin routes
		adminRequired := apiGroup.Group("/")
		adminRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret), middleware.AdminMiddleware())
		{
			adminRequired.GET("/admin/stats", adminHandler.GetStats)
			adminRequired.PUT("/organizations/:id/status", adminHandler.UpdateOrganizationStatus)
			adminRequired.POST("/categories", categoryHandler.CreateCategory)
		}
	}

	// Object downloads sit outside /api; public objects need no login.
	objects := r.Group("/objects")
	objects.Use(middleware.OptionalAuthMiddleware(cfg.JwtSecret))
	{
		objects.GET("/*objectPath", objectHandler.DownloadObject)
	}

	return r
}

// SetupServiceRouter configures and returns the service Gin engine used for
// operational commands.
func SetupServiceRouter(cfg *config.Config, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			fmt.Println("Received shutdown command via Service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
				fmt.Println("Shutdown signal sent successfully.")
			default:
				fmt.Println("Shutdown channel already signaled or blocked.")
			}
		case "ping":
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "pong"})
		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}
