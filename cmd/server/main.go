package main

import (
	"log"

	"github.com/collectiones/api/internal/analytics"
	"github.com/collectiones/api/internal/cache"
	"github.com/collectiones/api/internal/config"
	"github.com/collectiones/api/internal/csvio"
	"github.com/collectiones/api/internal/database"
	"github.com/collectiones/api/internal/handler"
	"github.com/collectiones/api/internal/middleware"
	"github.com/collectiones/api/internal/store"
	"github.com/collectiones/api/internal/txn"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize Redis cache
	var redisCache *cache.RedisCache
	redisCache, err = cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		// Continue without Redis cache (fail-open)
	}

	policy := txn.New(db, cfg.DemoMode)
	if policy.Demo() {
		log.Println("DEMO_MODE enabled: writes report success but roll back")
	}

	recordStore := store.New(db, policy)
	engine := analytics.New(db)
	importer := csvio.NewImporter(recordStore)
	exporter := csvio.NewExporter(recordStore)

	// Initialize handlers
	entryHandler := handler.NewEntryHandler(recordStore, redisCache)
	analyticsHandler := handler.NewAnalyticsHandler(engine, redisCache)
	transferHandler := handler.NewTransferHandler(importer, exporter, redisCache)
	authorHandler := handler.NewAuthorHandler(recordStore)
	ingredientHandler := handler.NewIngredientHandler(recordStore)
	themeHandler := handler.NewThemeHandler(recordStore)

	// Setup router
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.Use(middleware.MetricsMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "demo_mode": policy.Demo()})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// URN resolution lives outside /api so URNs stay short and citable.
	r.GET("/urn/*urn", entryHandler.ResolveURN)

	// API routes
	api := r.Group("/api")
	{
		// Entries
		api.GET("/entries", entryHandler.List)
		api.POST("/entries", entryHandler.Create)
		api.GET("/entries/:id", entryHandler.Get)
		api.PUT("/entries/:id", entryHandler.Update)
		api.DELETE("/entries/:id", entryHandler.Delete)
		api.GET("/entries/:id/history", entryHandler.History)
		api.POST("/entries/:id/urn", entryHandler.GenerateURN)
		api.POST("/entries/:id/ingredients", ingredientHandler.AddToEntry)
		api.DELETE("/entries/:id/ingredients/:ingredientId", ingredientHandler.RemoveFromEntry)

		// Facets
		api.GET("/filters", entryHandler.Filters)

		// Analytics
		api.GET("/analytics", analyticsHandler.Overview)
		api.GET("/analytics/frequency", analyticsHandler.Frequency)
		api.GET("/analytics/compare", analyticsHandler.Compare)

		// CSV transfer
		api.POST("/import", transferHandler.Import)
		api.GET("/export", transferHandler.Export)

		// Source authors
		api.GET("/authors", authorHandler.List)
		api.POST("/authors", authorHandler.Create)
		api.GET("/authors/:id", authorHandler.Get)
		api.PUT("/authors/:id", authorHandler.Update)
		api.DELETE("/authors/:id", authorHandler.Delete)

		// Ingredients
		api.GET("/ingredients", ingredientHandler.List)
		api.POST("/ingredients", ingredientHandler.Create)
		api.GET("/ingredients/:id", ingredientHandler.Get)
		api.PUT("/ingredients/:id", ingredientHandler.Update)
		api.DELETE("/ingredients/:id", ingredientHandler.Delete)

		// Themes
		api.GET("/themes", themeHandler.List)
		api.POST("/themes", themeHandler.Create)
	}

	log.Printf("API server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
