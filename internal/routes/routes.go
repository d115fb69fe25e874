package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/config"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/handlers"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/middleware"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/models"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/treatment"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, engine *treatment.Engine, cfg *config.Config) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	animalHandler := handlers.NewAnimalHandler(db)
	medicationHandler := handlers.NewMedicationHandler(db)
	schemeHandler := handlers.NewSchemeHandler(db)
	treatmentHandler := handlers.NewTreatmentHandler(engine)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
		}

		// User management routes
		userRoutes := private.Group("/users")
		{
			// Veterinarian list is needed by treatment forms, all roles may read it
			userRoutes.GET("/veterinarians", userHandler.GetVeterinarians)

			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.GET("/:id", userHandler.GetUserByID)
			}
		}

		// Herd registry routes
		animalRoutes := private.Group("/animals")
		{
			animalRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleVeterinarian, models.RoleWorker), animalHandler.CreateAnimal)
			animalRoutes.GET("", animalHandler.GetAnimals)
			animalRoutes.GET("/:id", animalHandler.GetAnimalByID)
			// Disposal archival is explicit; the engine never flips this itself
			animalRoutes.PATCH("/:id/dispose", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleVeterinarian), animalHandler.DisposeAnimal)
		}

		// Medication catalog routes
		medicationRoutes := private.Group("/medications")
		{
			medicationRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin), medicationHandler.CreateMedication)
			medicationRoutes.GET("", medicationHandler.GetMedications)
			medicationRoutes.GET("/:id", medicationHandler.GetMedicationByID)
		}

		// Treatment scheme catalog routes
		schemeRoutes := private.Group("/schemes")
		{
			schemeRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleVeterinarian), schemeHandler.CreateScheme)
			schemeRoutes.GET("", schemeHandler.GetSchemes)
			schemeRoutes.GET("/:id", schemeHandler.GetSchemeByID)
			schemeRoutes.PATCH("/:id/deactivate", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleVeterinarian), schemeHandler.DeactivateScheme)
		}

		// Treatment execution routes
		treatmentRoutes := private.Group("/treatments")
		{
			treatmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleVeterinarian, models.RoleWorker), treatmentHandler.StartTreatment)
			treatmentRoutes.POST("/:id/steps", middleware.RoleAuthMiddleware(models.RoleVeterinarian, models.RoleWorker), treatmentHandler.CompleteStep)
			treatmentRoutes.POST("/:id/complete", middleware.RoleAuthMiddleware(models.RoleVeterinarian), treatmentHandler.CompleteTreatment)
			treatmentRoutes.GET("/active", treatmentHandler.GetActiveTreatments)
			treatmentRoutes.GET("/completed", treatmentHandler.GetCompletedTreatments)
			treatmentRoutes.GET("/missed", treatmentHandler.GetMissedSteps)
			treatmentRoutes.GET("/history", treatmentHandler.GetTreatmentHistory)
			treatmentRoutes.GET("/:id", treatmentHandler.GetTreatmentByID)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
