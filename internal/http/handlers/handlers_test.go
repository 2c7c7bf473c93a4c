package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
	"github.com/yungbote/skillsprint-backend/internal/jobs/pipeline/personalized_path"
	"github.com/yungbote/skillsprint-backend/internal/platform/apierr"
	"github.com/yungbote/skillsprint-backend/internal/platform/dbctx"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
	"github.com/yungbote/skillsprint-backend/internal/realtime"
	"github.com/yungbote/skillsprint-backend/internal/services"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

type stubGeneration struct {
	triggerErr error
	triggered  []uuid.UUID
	course     generation.CourseRequest
	row        *generation.GenerationRequest
	getErr     error
	afterGet   func()
}

func (s *stubGeneration) CreateForRequestUser(_ dbctx.Context, req generation.CourseRequest) (*generation.GenerationRequest, error) {
	s.course = req
	return s.row, s.getErr
}

func (s *stubGeneration) GetForRequestUser(dbctx.Context, uuid.UUID) (*generation.GenerationRequest, error) {
	if s.afterGet != nil {
		defer s.afterGet()
	}
	return s.row, s.getErr
}

func (s *stubGeneration) Trigger(_ dbctx.Context, id uuid.UUID, req generation.CourseRequest) error {
	s.triggered = append(s.triggered, id)
	s.course = req
	return s.triggerErr
}

func (s *stubGeneration) CancelForRequestUser(dbctx.Context, uuid.UUID) (*generation.GenerationRequest, error) {
	return s.row, s.getErr
}

type stubPaths struct {
	res *personalized_path.Result
	err error
}

func (s stubPaths) Generate(context.Context, uuid.UUID, uuid.UUID) (*personalized_path.Result, error) {
	return s.res, s.err
}

var _ services.GenerationService = (*stubGeneration)(nil)
var _ services.PersonalizedPathService = stubPaths{}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func functionsRouter(t *testing.T, gen services.GenerationService, paths services.PersonalizedPathService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewFunctionsHandler(newTestLogger(t), gen, paths)
	r := gin.New()
	r.POST("/functions/v1/generate-course-content", h.GenerateCourseContent)
	r.POST("/functions/v1/generate-personalized-path", h.GeneratePersonalizedPath)
	return r
}

const courseBody = `{"topic":"Photosynthesis","audience":"teens","level":"beginner","duration":"1 week","goals":""}`

func TestGenerateCourseContent(t *testing.T) {
	id := uuid.New()

	t.Run("accepted", func(t *testing.T) {
		gen := &stubGeneration{}
		rec := postJSON(functionsRouter(t, gen, stubPaths{}), "/functions/v1/generate-course-content",
			`{"requestId":"`+id.String()+`","courseRequest":`+courseBody+`}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"success":true,"requestId":"`+id.String()+`"}`, rec.Body.String())
		assert.Equal(t, []uuid.UUID{id}, gen.triggered)
		assert.Equal(t, "Photosynthesis", gen.course.Topic)
	})

	cases := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"bad json", `{`, nil, http.StatusBadRequest},
		{"bad id", `{"requestId":"nope","courseRequest":` + courseBody + `}`, nil, http.StatusBadRequest},
		{"missing course", `{"requestId":"` + id.String() + `"}`, nil, http.StatusBadRequest},
		{"unknown row", `{"requestId":"` + id.String() + `","courseRequest":` + courseBody + `}`, apierr.NotFound("not_found", services.ErrRequestNotFound), http.StatusNotFound},
		{"not pending", `{"requestId":"` + id.String() + `","courseRequest":` + courseBody + `}`, apierr.Conflict("not_pending", services.ErrNotPending), http.StatusConflict},
		{"internal", `{"requestId":"` + id.String() + `","courseRequest":` + courseBody + `}`, errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(functionsRouter(t, &stubGeneration{triggerErr: tc.err}, stubPaths{}), "/functions/v1/generate-course-content", tc.body)
			assert.Equal(t, tc.status, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.IsType(t, "", body["error"])
		})
	}
}

func TestGeneratePersonalizedPath(t *testing.T) {
	userID, baseID := uuid.New(), uuid.New()
	body := `{"userId":"` + userID.String() + `","basePathId":"` + baseID.String() + `"}`

	res := &personalized_path.Result{PerformanceAnalysis: personalized_path.PerformanceAnalysis{CompletedSprints: 3, AverageScore: 81}}
	rec := postJSON(functionsRouter(t, &stubGeneration{}, stubPaths{res: res}), "/functions/v1/generate-personalized-path", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got struct {
		Success             bool                                   `json:"success"`
		PerformanceAnalysis personalized_path.PerformanceAnalysis `json:"performanceAnalysis"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Success)
	assert.Equal(t, 3, got.PerformanceAnalysis.CompletedSprints)

	rec = postJSON(functionsRouter(t, &stubGeneration{}, stubPaths{err: apierr.NotFound("not_found", personalized_path.ErrBasePathNotFound)}), "/functions/v1/generate-personalized-path", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "base learning path not found")

	rec = postJSON(functionsRouter(t, &stubGeneration{}, stubPaths{}), "/functions/v1/generate-personalized-path", `{"userId":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func generationRouter(t *testing.T, gen services.GenerationService, hub *realtime.SSEHub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewGenerationHandler(newTestLogger(t), gen, hub)
	r := gin.New()
	r.POST("/api/generation-requests", h.Create)
	r.GET("/api/generation-requests/:id", h.Get)
	r.POST("/api/generation-requests/:id/cancel", h.Cancel)
	r.GET("/api/generation-requests/:id/events", h.Events)
	return r
}

func TestGenerationHandlerCRUD(t *testing.T) {
	row := &generation.GenerationRequest{ID: uuid.New(), UserID: uuid.New(), Status: generation.StatusPending}
	r := generationRouter(t, &stubGeneration{row: row}, realtime.NewSSEHub(newTestLogger(t)))

	rec := postJSON(r, "/api/generation-requests", courseBody)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), row.ID.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/generation-requests/"+row.ID.String(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/generation-requests/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(r, "/api/generation-requests/"+row.ID.String()+"/cancel", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	missing := generationRouter(t, &stubGeneration{getErr: apierr.NotFound("not_found", services.ErrRequestNotFound)}, realtime.NewSSEHub(newTestLogger(t)))
	rec = httptest.NewRecorder()
	missing.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/generation-requests/"+row.ID.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":{"message":"generation request not found","code":"not_found"}}`, rec.Body.String())

	broken := generationRouter(t, &stubGeneration{getErr: errors.New("pq: connection refused")}, realtime.NewSSEHub(newTestLogger(t)))
	rec = httptest.NewRecorder()
	broken.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/generation-requests/"+row.ID.String(), nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestGenerationEventsEndsOnTerminalSnapshot(t *testing.T) {
	msg := "boom"
	row := &generation.GenerationRequest{ID: uuid.New(), UserID: uuid.New(), Status: generation.StatusFailed, ErrorMessage: &msg}
	hub := realtime.NewSSEHub(newTestLogger(t))
	r := generationRouter(t, &stubGeneration{row: row}, hub)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/generation-requests/"+row.ID.String()+"/events", nil))

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	out := rec.Body.String()
	assert.True(t, strings.Contains(out, "event: GenerationDone"), out)
	assert.Contains(t, out, `"status":"failed"`)
	assert.Zero(t, hub.Subscribers(realtime.ChannelFor(row.ID)))
}

func TestGenerationEventsDeliversChangeCommittedAfterRead(t *testing.T) {
	row := &generation.GenerationRequest{ID: uuid.New(), UserID: uuid.New(), Status: generation.StatusProcessing}
	hub := realtime.NewSSEHub(newTestLogger(t))
	stub := &stubGeneration{row: row}
	stub.afterGet = func() {
		done := *row
		done.Status = generation.StatusCompleted
		hub.Broadcast(realtime.MessageFor(done.Snapshot()))
	}
	r := generationRouter(t, stub, hub)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/generation-requests/"+row.ID.String()+"/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.NoError(t, ctx.Err(), "stream should end on the terminal event, not the deadline")
	out := rec.Body.String()
	assert.Contains(t, out, "event: GenerationDone", out)
	assert.Contains(t, out, `"status":"completed"`)
	assert.Zero(t, hub.Subscribers(realtime.ChannelFor(row.ID)))
}

func TestGenerationEventsUnsubscribesOnReadError(t *testing.T) {
	id := uuid.New()
	hub := realtime.NewSSEHub(newTestLogger(t))
	stub := &stubGeneration{getErr: apierr.NotFound("not_found", services.ErrRequestNotFound)}
	stub.afterGet = func() {
		assert.Equal(t, 1, hub.Subscribers(realtime.ChannelFor(id)), "must be subscribed before the read")
	}
	r := generationRouter(t, stub, hub)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/generation-requests/"+id.String()+"/events", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, hub.Subscribers(realtime.ChannelFor(id)))
}
