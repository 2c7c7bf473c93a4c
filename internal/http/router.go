package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/skillsprint-backend/internal/http/handlers"
	httpMW "github.com/yungbote/skillsprint-backend/internal/http/middleware"
	"github.com/yungbote/skillsprint-backend/internal/observability"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

const metricsRoute = "/metrics"

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	CORSOrigins    []string
	AuthMiddleware *httpMW.AuthMiddleware
	TriggerLimiter *httpMW.RateLimiter

	FunctionsHandler  *httpH.FunctionsHandler
	GenerationHandler *httpH.GenerationHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics, metricsRoute))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET(metricsRoute, gin.WrapH(cfg.Metrics.Handler()))
	}

	// Function endpoints accept user tokens and service-role tokens.
	functions := r.Group("/functions/v1")
	{
		if cfg.AuthMiddleware != nil {
			functions.Use(cfg.AuthMiddleware.RequireFunctionAuth())
		}
		if cfg.FunctionsHandler != nil {
			functions.POST("/generate-course-content", cfg.TriggerLimiter.Middleware(), cfg.FunctionsHandler.GenerateCourseContent)
			functions.POST("/generate-personalized-path", cfg.TriggerLimiter.Middleware(), cfg.FunctionsHandler.GeneratePersonalizedPath)
		}
	}

	protected := r.Group("/api")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth(false))
		}

		// Generation requests
		if cfg.GenerationHandler != nil {
			protected.POST("/generation-requests", cfg.GenerationHandler.Create)
			protected.GET("/generation-requests/:id", cfg.GenerationHandler.Get)
			protected.POST("/generation-requests/:id/cancel", cfg.GenerationHandler.Cancel)
			protected.GET("/generation-requests/:id/events", cfg.GenerationHandler.Events)
		}
	}

	return r
}
