package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/skillsprint-backend/internal/http/handlers"
	httpMW "github.com/yungbote/skillsprint-backend/internal/http/middleware"
	"github.com/yungbote/skillsprint-backend/internal/observability"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

func TestRouterPublicAndProtectedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	r := NewRouter(RouterConfig{
		Log:               log,
		Metrics:           observability.New(),
		AuthMiddleware:    httpMW.NewAuthMiddleware(log, "secret-secret-secret-secret-secret"),
		HealthHandler:     httpH.NewHealthHandler(nil),
		FunctionsHandler:  httpH.NewFunctionsHandler(log, nil, nil),
		GenerationHandler: httpH.NewGenerationHandler(log, nil, nil),
	})

	cases := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/healthcheck", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodPost, "/functions/v1/generate-course-content", http.StatusUnauthorized},
		{http.MethodPost, "/functions/v1/generate-personalized-path", http.StatusUnauthorized},
		{http.MethodGet, "/api/generation-requests/abc", http.StatusUnauthorized},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, strings.NewReader("{}")))
			if rec.Code != tc.status {
				t.Fatalf("status: got=%d want=%d body=%s", rec.Code, tc.status, rec.Body.String())
			}
			if strings.HasPrefix(tc.path, "/functions/") && !strings.HasPrefix(rec.Body.String(), `{"error":"`) {
				t.Fatalf("function routes use the flat error body, got %s", rec.Body.String())
			}
			if rec.Header().Get("X-Request-Id") == "" {
				t.Fatalf("missing X-Request-Id header")
			}
		})
	}
}

func TestRouterMetricsExposeHTTPCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.New()
	r := NewRouter(RouterConfig{Log: logger.Nop(), Metrics: m, HealthHandler: httpH.NewHealthHandler(nil)})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `route="/healthcheck"`) {
		t.Fatalf("expected healthcheck series in metrics output:\n%s", rec.Body.String())
	}
}
