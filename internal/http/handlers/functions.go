package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
	"github.com/yungbote/skillsprint-backend/internal/http/response"
	"github.com/yungbote/skillsprint-backend/internal/platform/apierr"
	"github.com/yungbote/skillsprint-backend/internal/platform/dbctx"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
	"github.com/yungbote/skillsprint-backend/internal/services"
)

// FunctionsHandler serves the two function endpoints the web client invokes directly.
// Errors use the flat {"error": "..."} body.
type FunctionsHandler struct {
	log   *logger.Logger
	gen   services.GenerationService
	paths services.PersonalizedPathService
}

func NewFunctionsHandler(log *logger.Logger, gen services.GenerationService, paths services.PersonalizedPathService) *FunctionsHandler {
	return &FunctionsHandler{
		log:   log.With("handler", "FunctionsHandler"),
		gen:   gen,
		paths: paths,
	}
}

type generateCourseContentBody struct {
	RequestID     string                    `json:"requestId"`
	CourseRequest *generation.CourseRequest `json:"courseRequest"`
}

// POST /functions/v1/generate-course-content
func (h *FunctionsHandler) GenerateCourseContent(c *gin.Context) {
	var body generateCourseContentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondFunctionError(c, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	requestID, err := uuid.Parse(body.RequestID)
	if err != nil {
		response.RespondFunctionError(c, http.StatusBadRequest, errors.New("requestId must be a UUID"))
		return
	}
	if body.CourseRequest == nil {
		response.RespondFunctionError(c, http.StatusBadRequest, errors.New("courseRequest is required"))
		return
	}

	if err := h.gen.Trigger(dbctx.Context{Ctx: c.Request.Context()}, requestID, *body.CourseRequest); err != nil {
		status, _ := apierr.StatusOf(err)
		response.RespondFunctionError(c, status, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "requestId": requestID})
}

type generatePersonalizedPathBody struct {
	UserID     string `json:"userId"`
	BasePathID string `json:"basePathId"`
}

// POST /functions/v1/generate-personalized-path
func (h *FunctionsHandler) GeneratePersonalizedPath(c *gin.Context) {
	var body generatePersonalizedPathBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondFunctionError(c, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	userID, err := uuid.Parse(body.UserID)
	if err != nil {
		response.RespondFunctionError(c, http.StatusBadRequest, errors.New("userId must be a UUID"))
		return
	}
	basePathID, err := uuid.Parse(body.BasePathID)
	if err != nil {
		response.RespondFunctionError(c, http.StatusBadRequest, errors.New("basePathId must be a UUID"))
		return
	}

	res, err := h.paths.Generate(c.Request.Context(), userID, basePathID)
	if err != nil {
		status, _ := apierr.StatusOf(err)
		h.log.Warn("Personalized path request failed", "user_id", userID, "base_path_id", basePathID, "error", err)
		response.RespondFunctionError(c, status, err)
		return
	}
	response.RespondOK(c, gin.H{
		"success":             true,
		"personalizedPath":    res.PersonalizedPath,
		"performanceAnalysis": res.PerformanceAnalysis,
	})
}
