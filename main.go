package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/config"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/metrics"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/models"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/routes"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/scheduler"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/storage"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/treatment"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database connection
	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	// Wire the treatment engine to its collaborators
	engine := treatment.NewEngine(
		storage.NewSchemeCatalog(db),
		storage.NewInstanceStore(db),
		storage.NewAnimalStatus(db),
	)

	// Start the periodic missed-step sweep
	sweeper := scheduler.NewSweeper(engine, time.Duration(cfg.MissedSweepMinutes)*time.Minute)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Error starting missed-step sweeper: %v", err)
	}
	defer sweeper.Stop()

	// Initialize Gin router
	router := gin.Default()
	router.Use(metrics.Middleware())

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Set up routes
	routes.SetupRoutes(router, db, engine, cfg)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Server running on port %s", cfg.Port)
	if err := router.Run(serverAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
