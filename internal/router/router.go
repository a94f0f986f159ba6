package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/polly-backend/internal/config"
	"github.com/stemsi/polly-backend/internal/handler"
	"github.com/stemsi/polly-backend/internal/middleware"
	"github.com/stemsi/polly-backend/internal/response"
)

// surveyMaxAge is how long clients may cache a survey definition.
const surveyMaxAge = time.Hour

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Survey *handler.SurveyHandler
	Health *handler.HealthHandler
	WS     *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Location", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	router.GET("/", handlers.Health.Info)
	router.GET("/health", middleware.NoStore(), handlers.Health.Health)

	// Submissions are limited per client IP.
	submitLimiter := middleware.NewRateLimiter(cfg.SubmitRateLimit, cfg.SubmitRateWindow)

	// ─── Surveys ───────────────────────────────────────────────────────
	surveys := router.Group("/api/v1/surveys")
	{
		surveys.POST("", handlers.Survey.CreateSurvey)
		surveys.GET("", middleware.NoStore(), handlers.Survey.ListSurveys)
		surveys.GET("/:id", middleware.CacheControl(surveyMaxAge), handlers.Survey.GetSurvey)
		surveys.POST("/:id/responses", submitLimiter.Middleware(), handlers.Survey.SubmitResponse)
		surveys.GET("/:id/stats", middleware.NoStore(), handlers.Survey.GetStatistics)
	}

	// ─── WebSocket ─────────────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/surveys/:id/stats", handlers.WS.SurveyStatsStream)
	}

	return router
}
