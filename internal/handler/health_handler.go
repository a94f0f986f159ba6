package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/polly-backend/internal/response"
	"github.com/stemsi/polly-backend/internal/service"
)

const (
	appName    = "Polly Survey API"
	appVersion = "1.0.0"

	pingTimeout = 2 * time.Second
)

// HealthHandler serves the service banner and health check.
type HealthHandler struct {
	surveyService *service.SurveyService
	rdb           *redis.Client // nil when running with the in-process broker
	startTime     time.Time
}

// NewHealthHandler creates a new HealthHandler. rdb may be nil.
func NewHealthHandler(surveyService *service.SurveyService, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{
		surveyService: surveyService,
		rdb:           rdb,
		startTime:     time.Now(),
	}
}

// Info godoc
// GET /
func (h *HealthHandler) Info(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"name":    appName,
		"version": appVersion,
		"api":     "/api/v1",
		"health":  "/health",
	})
}

// Health godoc
// GET /health
// Reports store totals and, when configured, whether Redis answers.
func (h *HealthHandler) Health(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	broker := "memory"

	data := gin.H{
		"database": h.surveyService.Summary(c.Request.Context()),
		"uptime":   time.Since(h.startTime).Round(time.Second).String(),
	}

	if h.rdb != nil {
		broker = "redis"
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
			data["redis_error"] = err.Error()
		}
	}

	data["status"] = status
	data["broker"] = broker
	response.Success(c, code, data)
}
