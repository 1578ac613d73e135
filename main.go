package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/muraqib/backend/config"
	"github.com/muraqib/backend/database"
	"github.com/muraqib/backend/handlers"
	"github.com/muraqib/backend/natsserver"
	"github.com/muraqib/backend/services"
	"github.com/muraqib/backend/store"
	"github.com/muraqib/backend/tools"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Connect to database
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
	defer database.Close()

	// Start embedded NATS server for the live violation feed
	natsServer, err := natsserver.New(natsserver.Config{Port: cfg.NATSPort})
	if err != nil {
		log.Fatalf("❌ Failed to start NATS server: %v", err)
	}
	defer natsServer.Shutdown()

	// Initialize live feed for WebSocket streaming
	liveFeed, err := services.NewLiveFeed(natsServer.Conn())
	if err != nil {
		log.Fatalf("❌ Failed to start live feed: %v", err)
	}
	go liveFeed.Run()
	handlers.SetLiveFeed(liveFeed)

	// Wire the store and the stats service
	violationStore := store.New(database.DB)
	statsService := services.NewStatsService(violationStore, cfg.Production())
	handlers.SetViolationStore(violationStore)
	handlers.SetStatsService(statsService)
	handlers.SetToolRegistry(tools.NewRegistry(statsService, violationStore))

	// Setup Gin router
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// WebSocket route for the live violation feed (outside /api group)
	router.GET("/ws/violations", handlers.HandleFeedWebSocket)

	// API Routes
	api := router.Group("/api")
	{
		// Live feed stats
		api.GET("/feeds/stats", handlers.GetFeedStats)

		// Tool registry for an external chat orchestrator
		api.GET("/tools", handlers.ListTools)
		api.POST("/tools/:name", handlers.InvokeTool)

		// Violations routes
		violations := api.Group("/violations")
		{
			violations.POST("", handlers.PostViolation)
			violations.GET("", handlers.GetViolations)
			violations.GET("/stats", handlers.GetViolationStats)
			violations.GET("/comparison", handlers.GetViolationComparison)
			violations.GET("/summary", handlers.GetViolationSummary)
			violations.GET("/histogram", handlers.GetViolationHistogram)
			violations.GET("/search", handlers.SearchViolations)
		}
	}

	// Start server
	log.Printf("🚀 Server running on http://localhost:%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
