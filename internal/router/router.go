// internal/router/router.go
package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/opencustoms/trade-portal/internal/client"
	"github.com/opencustoms/trade-portal/internal/config"
	"github.com/opencustoms/trade-portal/internal/handlers"
	"github.com/opencustoms/trade-portal/internal/middleware"
	"github.com/opencustoms/trade-portal/internal/services"
	"github.com/opencustoms/trade-portal/internal/upload"
	"github.com/opencustoms/trade-portal/internal/utils"
)

func Initialize(cfg *config.Config) *gin.Engine {
	// Initialize upstream client and services
	apiClient := client.New(cfg.Upstream)
	referenceService := services.NewReferenceService(apiClient)
	sessionService := services.NewSessionService(apiClient, referenceService, cfg.Upload.MaxSizeBytes)
	applicationService := services.NewApplicationService(apiClient)

	if cfg.Upload.Transport == "s3" {
		base, err := upload.NewS3Transport(cfg.AWS, nil)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to initialize S3 transport")
		}
		sessionService.SetTransportFactory(func(sc client.SessionContext) upload.Transport {
			return base.WithIssuer(upload.RecordIssuerFunc(func(ctx context.Context, relativePath string) (int, error) {
				return apiClient.RegisterAttachment(ctx, sc, relativePath)
			}))
		})
	}

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(sessionService, applicationService)
	referenceHandler := handlers.NewReferenceHandler(referenceService)
	agentHandler := handlers.NewAgentHandler(apiClient)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Wizard session routes
		sessions := v1.Group("/sessions")
		sessions.Use(middleware.AuthRequired())
		{
			sessions.POST("", sessionHandler.Open)
			sessions.GET("/:id", sessionHandler.Get)
			sessions.DELETE("/:id", sessionHandler.Close)

			sessions.PUT("/:id/details", sessionHandler.UpdateDetails)
			sessions.PUT("/:id/singletons/:name", sessionHandler.SetSingleton)

			sessions.POST("/:id/records/:list", sessionHandler.AddRecord)
			sessions.PUT("/:id/records/:list/:localId", sessionHandler.UpdateField)
			sessions.DELETE("/:id/records/:list/:localId", sessionHandler.RemoveRecord)

			sessions.POST("/:id/next", sessionHandler.Next)
			sessions.POST("/:id/back", sessionHandler.Back)

			sessions.POST("/:id/attachments/:localId/upload", middleware.UploadRateLimit(), sessionHandler.UploadAttachment)
			sessions.GET("/:id/uploads", sessionHandler.Uploads)
			sessions.DELETE("/:id/uploads/:name", sessionHandler.DismissUpload)

			sessions.POST("/:id/submit", middleware.SubmitRateLimit(), sessionHandler.Submit)
			sessions.POST("/:id/submit-review", middleware.SubmitRateLimit(), sessionHandler.SubmitForReview)
		}

		// Reference data routes
		reference := v1.Group("/reference")
		reference.Use(middleware.AuthRequired())
		{
			reference.GET("/application-types", referenceHandler.ApplicationTypes)
			reference.GET("/districts", referenceHandler.Districts)
			reference.GET("/districts/names", referenceHandler.DistrictNames)
			reference.GET("/units-of-measure", referenceHandler.UnitsOfMeasure)
			reference.GET("/attachment-types", referenceHandler.AttachmentTypes)
		}

		// Customs agent routes
		agents := v1.Group("/agents")
		agents.Use(middleware.AuthRequired())
		{
			agents.POST("/lookup", agentHandler.Lookup)
		}
	}

	return r
}
