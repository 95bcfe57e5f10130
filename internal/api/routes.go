package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lexops/causelist/internal/cache"
	"github.com/lexops/causelist/internal/config"
	"github.com/lexops/causelist/internal/job"
	"github.com/lexops/causelist/internal/mediation"
	"github.com/lexops/causelist/pkg/logger"
)

// SetupRoutes configures all application routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, cache cache.Cache, daily *job.Daily, mediation *mediation.Service, logger *logger.Logger, cfg *config.Config) {
	h := NewHandlers(db, cache, daily, mediation, logger, cfg)

	api := router.Group("/api")
	{
		// Health check
		api.GET("/health", h.HealthCheck)

		// Job trigger and results
		api.POST("/jobs/daily", h.RunDailyJob)
		api.GET("/results", h.GetResult)

		// Mediation list
		api.POST("/mediation/enrich", h.EnrichMediation)
		api.GET("/mediation/cases", h.ListMediationCases)
		api.GET("/mediation/listings", h.MediationListings)

		// Cache stats
		api.GET("/cache/stats", h.CacheStats)
	}
}
