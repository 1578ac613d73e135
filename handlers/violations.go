package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/muraqib/backend/models"
	"github.com/muraqib/backend/services"
	"github.com/muraqib/backend/stats"
	"github.com/muraqib/backend/store"
)

var (
	violations   *store.ViolationStore
	statsService *services.StatsService
)

// SetViolationStore sets the store used by the handlers.
func SetViolationStore(s *store.ViolationStore) {
	violations = s
}

// SetStatsService sets the stats service used by the handlers.
func SetStatsService(s *services.StatsService) {
	statsService = s
}

// respondError maps engine errors onto HTTP statuses: validation errors get a
// field-specific 400, everything else an opaque 500.
func respondError(c *gin.Context, err error) {
	var ve stats.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// PostViolation handles POST /api/violations - Ingest a violation from the detector
func PostViolation(c *gin.Context) {
	var req struct {
		Date               string               `json:"date" binding:"required"`
		Time               string               `json:"time" binding:"required"`
		LicensePlateNumber string               `json:"licensePlateNumber" binding:"required"`
		ViolationType      models.ViolationType `json:"violationType" binding:"required"`
		VehicleType        models.VehicleType   `json:"vehicleType" binding:"required"`
		StreetName         string               `json:"streetName" binding:"required"`
		Latitude           float64              `json:"latitude"`
		Longitude          float64              `json:"longitude"`
		ZipCode            *string              `json:"zipCode"`
		Metadata           models.JSONB         `json:"metadata"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if _, err := time.Parse(stats.DateLayout, req.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD", "field": "date"})
		return
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "time must be HH:MM", "field": "time"})
		return
	}
	if !req.ViolationType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported violation type", "field": "violationType"})
		return
	}

	violation := models.Violation{
		Date:               req.Date,
		Time:               req.Time,
		LicensePlateNumber: req.LicensePlateNumber,
		ViolationType:      req.ViolationType,
		VehicleType:        req.VehicleType,
		StreetName:         req.StreetName,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		ZipCode:            req.ZipCode,
		Metadata:           req.Metadata,
	}

	if err := violations.Create(c.Request.Context(), &violation); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create violation"})
		return
	}

	if liveFeed != nil {
		liveFeed.Publish(&violation)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "id": strconv.FormatInt(violation.ID, 10)})
}

// GetViolations handles GET /api/violations - All violations, or a range
// when from/to are given. countOnly and summary collapse the result; a
// clientDates flag marks the range as browser-originated.
func GetViolations(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")

	if from == "" && to == "" {
		all, err := violations.FindAll(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"violations": all, "total": len(all)})
		return
	}

	w, err := stats.NewWindow(from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	action := services.RangeAction{
		CountOnly: c.Query("countOnly") == "true",
		Summary:   c.Query("summary") == "true",
	}
	clientDates := c.Query("clientDates") == "true"

	result, err := statsService.GetAllInRange(c.Request.Context(), w, clientDates, action)
	if err != nil {
		respondError(c, err)
		return
	}

	switch {
	case result.Count != nil:
		c.JSON(http.StatusOK, gin.H{"count": *result.Count})
	case result.Summary != nil:
		c.JSON(http.StatusOK, gin.H{"summary": result.Summary})
	default:
		c.JSON(http.StatusOK, gin.H{"violations": result.Violations, "total": len(result.Violations)})
	}
}

// SearchViolations handles GET /api/violations/search - Exact-filter lookups
// by street name, violation type, or coordinates, with an optional range.
func SearchViolations(c *gin.Context) {
	var window *stats.Window
	if from, to := c.Query("from"), c.Query("to"); from != "" && to != "" {
		w, err := stats.NewWindow(from, to)
		if err != nil {
			respondError(c, err)
			return
		}
		window = &w
	}

	if streetName := c.Query("streetName"); streetName != "" {
		matches, err := violations.FindByStreetName(c.Request.Context(), streetName, window)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"violations": matches, "total": len(matches)})
		return
	}

	if violationType := c.Query("violationType"); violationType != "" {
		t := models.ViolationType(violationType)
		if !t.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "We currently have only two types of violations: overtaking-from-left and overtaking-from-right",
				"field": "violationType",
			})
			return
		}
		matches, err := violations.FindByViolationType(c.Request.Context(), t, window)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"violations": matches, "total": len(matches)})
		return
	}

	latStr, lngStr := c.Query("lat"), c.Query("long")
	if latStr != "" && lngStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lat must be a number", "field": "lat"})
			return
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "long must be a number", "field": "long"})
			return
		}
		matches, err := violations.FindByLocation(c.Request.Context(), lat, lng)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"violations": matches, "total": len(matches)})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "Provide streetName, violationType, or lat and long"})
}
