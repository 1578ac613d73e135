package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/muraqib/backend/services"
	"github.com/muraqib/backend/stats"
)

// GetViolationStats handles GET /api/violations/stats - Grouped maxima
// (street, vehicle type, violation type) for the rolling window of a period.
func GetViolationStats(c *gin.Context) {
	period, err := stats.ParsePeriod(c.DefaultQuery("period", "daily"))
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := statsService.GetStatsForPeriod(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// GetViolationComparison handles GET /api/violations/comparison - Current vs
// previous period counts plus the nullable percentage diff.
func GetViolationComparison(c *gin.Context) {
	period, err := stats.ParsePeriod(c.DefaultQuery("period", "daily"))
	if err != nil {
		respondError(c, err)
		return
	}

	comparison, err := statsService.GetComparison(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"current":  comparison.Current,
		"previous": comparison.Previous,
		"diff":     comparison.Diff(),
	})
}

// GetViolationSummary handles GET /api/violations/summary - The headline
// aggregate for an explicit date (year/month/day in any of the supported
// combinations) or a symbolic period.
func GetViolationSummary(c *gin.Context) {
	var q services.SummaryQuery

	for _, part := range []struct {
		name string
		dst  **int
	}{
		{"year", &q.Year},
		{"month", &q.Month},
		{"day", &q.Day},
	} {
		raw := c.Query(part.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": part.name + " must be an integer", "field": part.name})
			return
		}
		*part.dst = &n
	}

	if raw := c.Query("period"); raw != "" {
		period, err := stats.ParsePeriod(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		q.Period = &period
	}
	q.ClientDates = c.Query("clientDates") == "true"

	summary, err := statsService.GetSummary(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// GetViolationHistogram handles GET /api/violations/histogram - Bucketed
// counts over a range at hourly/daily/monthly/yearly granularity.
func GetViolationHistogram(c *gin.Context) {
	w, err := stats.NewWindow(c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}

	granularity, err := stats.ParseGranularity(c.DefaultQuery("granularity", "hourly"))
	if err != nil {
		respondError(c, err)
		return
	}

	buckets, err := statsService.GetHistogram(c.Request.Context(), w, granularity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        buckets,
		"granularity": granularity,
		"from":        w.FromString(),
		"to":          w.ToString(),
	})
}
