package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/talentotech/storefront/internal/api/handlers"
	"github.com/talentotech/storefront/internal/api/middleware"
	"github.com/talentotech/storefront/internal/cart"
	"github.com/talentotech/storefront/internal/catalog"
	"github.com/talentotech/storefront/internal/checkout"
	"github.com/talentotech/storefront/internal/config"
	"github.com/talentotech/storefront/internal/inventory"
	"github.com/talentotech/storefront/internal/session"
	"github.com/talentotech/storefront/internal/stats"
)

// Deps bundles the engine components the handlers work against.
type Deps struct {
	Session   *session.Session
	Cart      *cart.Store
	Checkout  *checkout.Coordinator
	Catalog   *catalog.Service
	Inventory *inventory.Client
	Stats     *stats.Recorder
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, deps *Deps, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Session lifecycle
	router.POST("/session/login", handlers.HandleLogin(deps.Session, logger))
	router.POST("/session/register", handlers.HandleRegister(deps.Session, logger))
	router.POST("/session/logout", handlers.HandleLogout(deps.Session))
	router.GET("/session", handlers.HandleGetSession(deps.Session))

	// Catalog browsing
	router.GET("/products", handlers.HandleListProducts(deps.Catalog, deps.Stats, cfg.Catalog.PageSize, logger))
	router.GET("/categories", handlers.HandleListCategories(deps.Catalog, logger))

	// Cart and checkout (require a logged-in session)
	authRoutes := router.Group("")
	authRoutes.Use(middleware.RequireAuth(deps.Session, logger))
	{
		authRoutes.GET("/cart", handlers.HandleGetCart(deps.Cart))
		authRoutes.POST("/cart/items", handlers.HandleAddItem(deps.Cart))
		authRoutes.PUT("/cart/items/:id", handlers.HandleUpdateItem(deps.Cart))
		authRoutes.DELETE("/cart/items/:id", handlers.HandleRemoveItem(deps.Cart))
		authRoutes.DELETE("/cart", handlers.HandleClearCart(deps.Cart))
		authRoutes.POST("/checkout", handlers.HandleCheckout(deps.Checkout, logger))
	}

	// Staff routes
	adminRoutes := router.Group("/admin")
	adminRoutes.Use(middleware.RequireAuth(deps.Session, logger))
	adminRoutes.Use(middleware.RequireStaff(deps.Session, logger))
	{
		adminRoutes.POST("/products", handlers.HandleCreateProduct(deps.Inventory, deps.Catalog, logger))
		adminRoutes.PUT("/products/:id", handlers.HandleUpdateProduct(deps.Inventory, deps.Catalog, logger))
		adminRoutes.DELETE("/products/:id", handlers.HandleDeleteProduct(deps.Inventory, deps.Catalog, logger))
		adminRoutes.POST("/categories", handlers.HandleCreateCategory(deps.Inventory, deps.Catalog, logger))
		adminRoutes.GET("/stats", handlers.HandleGetStats(deps.Stats))
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
