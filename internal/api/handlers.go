package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lexops/causelist/internal/cache"
	"github.com/lexops/causelist/internal/causelist"
	"github.com/lexops/causelist/internal/config"
	"github.com/lexops/causelist/internal/database"
	"github.com/lexops/causelist/internal/job"
	"github.com/lexops/causelist/internal/mediation"
	"github.com/lexops/causelist/pkg/logger"
)

// Handlers holds all HTTP handlers
type Handlers struct {
	db        *gorm.DB
	cache     cache.Cache
	daily     *job.Daily
	mediation *mediation.Service
	logger    *logger.Logger
	cfg       *config.Config
}

// NewHandlers creates a new handlers instance
func NewHandlers(db *gorm.DB, cache cache.Cache, daily *job.Daily, mediation *mediation.Service, logger *logger.Logger, cfg *config.Config) *Handlers {
	return &Handlers{
		db:        db,
		cache:     cache,
		daily:     daily,
		mediation: mediation,
		logger:    logger,
		cfg:       cfg,
	}
}

// HealthCheck reports service liveness
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// RunDailyJob triggers the daily pipeline for a date (default today)
func (h *Handlers) RunDailyJob(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	summary, err := h.daily.Run(c.Request.Context(), date)
	if err != nil {
		h.logger.Error("Daily job failed", "date", date, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetResult returns the stored parse result for one advocate and date
func (h *Handlers) GetResult(c *gin.Context) {
	advocateID := c.Query("advocate_id")
	date := c.Query("date")
	if advocateID == "" || date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "advocate_id and date are required"})
		return
	}

	var row database.ListingResult
	if err := h.db.Where("advocate_id = ? AND date = ?", advocateID, date).First(&row).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
		return
	}

	c.JSON(http.StatusOK, row)
}

// EnrichMediation triggers one bounded mediation enrichment batch
func (h *Handlers) EnrichMediation(c *gin.Context) {
	maxCases := h.cfg.MediationBatchSize
	if raw := c.Query("max"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max"})
			return
		}
		maxCases = parsed
	}

	summary, err := h.mediation.EnrichPending(c.Request.Context(), maxCases)
	if err != nil {
		h.logger.Error("Mediation enrichment failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ListMediationCases lists stored mediation cases for a date
func (h *Handlers) ListMediationCases(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return
	}

	var rows []database.MediationCase
	if err := h.db.Where("listing_date = ?", date).Order("id").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(rows), "cases": rows})
}

// MediationListings resolves enriched mediation cases for one advocate
func (h *Handlers) MediationListings(c *gin.Context) {
	advocateID := c.Query("advocate_id")
	date := c.Query("date")
	if advocateID == "" || date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "advocate_id and date are required"})
		return
	}

	var adv database.Advocate
	if err := h.db.Where("advocate_id = ?", advocateID).First(&adv).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "advocate not found"})
		return
	}

	listings, err := h.mediation.ListingsForAdvocate(c.Request.Context(), causelist.Advocate{
		ID:   adv.AdvocateID,
		Name: adv.Name,
	}, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(listings), "listings": listings})
}

// CacheStats returns cache hit/miss statistics
func (h *Handlers) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.cache.Stats())
}
