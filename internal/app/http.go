package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/skillsprint-backend/internal/http"
	httpH "github.com/yungbote/skillsprint-backend/internal/http/handlers"
	httpMW "github.com/yungbote/skillsprint-backend/internal/http/middleware"
	"github.com/yungbote/skillsprint-backend/internal/observability"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
	"github.com/yungbote/skillsprint-backend/internal/realtime"
)

const serviceName = "skillsprint-backend"

type Middleware struct {
	Auth           *httpMW.AuthMiddleware
	TriggerLimiter *httpMW.RateLimiter
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Functions  *httpH.FunctionsHandler
	Generation *httpH.GenerationHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services, hub *realtime.SSEHub) (Handlers, error) {
	log.Info("Wiring handlers...")
	sqlDB, err := db.DB()
	if err != nil {
		return Handlers{}, fmt.Errorf("sql handle: %w", err)
	}
	return Handlers{
		Health:     httpH.NewHealthHandler(sqlDB),
		Functions:  httpH.NewFunctionsHandler(log, services.Generation, services.PersonalizedPath),
		Generation: httpH.NewGenerationHandler(log, services.Generation, hub),
	}, nil
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	var limiter *httpMW.RateLimiter
	if cfg.TriggerRatePerMinute > 0 {
		limiter = httpMW.NewRateLimiter(cfg.TriggerRatePerMinute, cfg.TriggerBurst)
	}
	return Middleware{
		Auth:           httpMW.NewAuthMiddleware(log, cfg.SupabaseJWTSecret),
		TriggerLimiter: limiter,
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, mw Middleware) *http.Server {
	return http.NewServer(":"+cfg.Port, http.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		ServiceName:       serviceName,
		CORSOrigins:       cfg.CORSOrigins,
		AuthMiddleware:    mw.Auth,
		TriggerLimiter:    mw.TriggerLimiter,
		FunctionsHandler:  handlers.Functions,
		GenerationHandler: handlers.Generation,
		HealthHandler:     handlers.Health,
	})
}
