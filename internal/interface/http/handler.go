package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/aqi-health/internal/domain/airquality"
	"github.com/yanqian/aqi-health/internal/domain/healthrisk"
)

// RankingPublisher exposes the most recent scheduled ranking.
type RankingPublisher interface {
	Latest(ctx context.Context, limit int) (airquality.Ranking, bool, error)
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	airSvc    airquality.Service
	healthSvc healthrisk.Service
	rankings  RankingPublisher
	logger    *slog.Logger
}

// NewHandler constructs the root HTTP handler. rankings may be nil.
func NewHandler(airSvc airquality.Service, healthSvc healthrisk.Service, rankings RankingPublisher, logger *slog.Logger) *Handler {
	return &Handler{
		airSvc:    airSvc,
		healthSvc: healthSvc,
		rankings:  rankings,
		logger:    logger.With("component", "http.handler"),
	}
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type convertQuery struct {
	PM25 *float64 `form:"pm25" binding:"required"`
	PM10 *float64 `form:"pm10"`
}

// Convert turns raw concentrations into index values.
func (h *Handler) Convert(c *gin.Context) {
	var q convertQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.airSvc.Convert(*q.PM25, q.PM10)
	if err != nil {
		abortWithError(c, domainError(err, "convert_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Forecast returns current conditions and daily summaries for a coordinate.
func (h *Handler) Forecast(c *gin.Context) {
	if _, ok := c.GetQuery("lat"); !ok {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "lat is required", nil))
		return
	}
	if _, ok := c.GetQuery("lon"); !ok {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "lon is required", nil))
		return
	}
	var req airquality.ForecastRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.airSvc.Forecast(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "forecast_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Rankings serves the last scheduled ranking, or computes one when none is
// published yet or fresh=true is requested.
func (h *Handler) Rankings(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be an integer", err))
		return
	}
	fresh, _ := strconv.ParseBool(c.DefaultQuery("fresh", "false"))
	if h.rankings != nil && !fresh {
		ranking, ok, err := h.rankings.Latest(c.Request.Context(), limit)
		if err != nil {
			h.logger.Warn("published ranking unavailable", "error", err)
		} else if ok {
			c.JSON(http.StatusOK, ranking)
			return
		}
	}
	h.rank(c, airquality.RankRequest{Limit: limit})
}

// RankLocations ranks caller supplied locations.
func (h *Handler) RankLocations(c *gin.Context) {
	var req airquality.RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	h.rank(c, req)
}

func (h *Handler) rank(c *gin.Context, req airquality.RankRequest) {
	ranking, err := h.airSvc.Rank(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "ranking_failed"))
		return
	}
	c.JSON(http.StatusOK, ranking)
}

// Assess scores a health risk assessment.
func (h *Handler) Assess(c *gin.Context) {
	var req healthrisk.AssessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.healthSvc.Assess(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "assessment_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"assessment": resp})
}

// LatestAssessment returns the newest assessment of a subject.
func (h *Handler) LatestAssessment(c *gin.Context) {
	resp, err := h.healthSvc.Latest(c.Request.Context(), c.Query("subject"))
	if err != nil {
		abortWithError(c, domainError(err, "assessment_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"assessment": resp})
}

// GetAssessment returns one assessment by id.
func (h *Handler) GetAssessment(c *gin.Context) {
	resp, err := h.healthSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, domainError(err, "assessment_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"assessment": resp})
}

// AssessmentHistory lists assessments of a subject, newest first.
func (h *Handler) AssessmentHistory(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be an integer", err))
		return
	}
	items, err := h.healthSvc.History(c.Request.Context(), c.Query("subject"), limit)
	if err != nil {
		abortWithError(c, domainError(err, "assessment_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"assessments": items})
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
