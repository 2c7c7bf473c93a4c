package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
	"github.com/yungbote/skillsprint-backend/internal/http/response"
	"github.com/yungbote/skillsprint-backend/internal/platform/ctxutil"
	"github.com/yungbote/skillsprint-backend/internal/platform/dbctx"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
	"github.com/yungbote/skillsprint-backend/internal/realtime"
	"github.com/yungbote/skillsprint-backend/internal/services"
)

type GenerationHandler struct {
	log *logger.Logger
	gen services.GenerationService
	hub *realtime.SSEHub
}

func NewGenerationHandler(log *logger.Logger, gen services.GenerationService, hub *realtime.SSEHub) *GenerationHandler {
	return &GenerationHandler{
		log: log.With("handler", "GenerationHandler"),
		gen: gen,
		hub: hub,
	}
}

// POST /api/generation-requests
func (h *GenerationHandler) Create(c *gin.Context) {
	var body generation.CourseRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	row, err := h.gen.CreateForRequestUser(dbctx.Context{Ctx: c.Request.Context()}, body)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"request": row})
}

// GET /api/generation-requests/:id
func (h *GenerationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_id", err)
		return
	}
	row, err := h.gen.GetForRequestUser(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"request": row})
}

// POST /api/generation-requests/:id/cancel
func (h *GenerationHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_id", err)
		return
	}
	row, err := h.gen.CancelForRequestUser(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"request": row})
}

// GET /api/generation-requests/:id/events
// Streams the current snapshot, then every change, and ends after the terminal one.
func (h *GenerationHandler) Events(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_id", err)
		return
	}
	userID := uuid.Nil
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		userID = rd.UserID
	}
	// subscribe before reading so a change committed after the read is still delivered
	client := h.hub.NewSSEClient(userID)
	defer h.hub.CloseClient(client)
	h.hub.AddChannel(client, realtime.ChannelFor(id))

	row, err := h.gen.GetForRequestUser(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		h.hub.RemoveChannel(client, realtime.ChannelFor(id))
		response.RespondServiceError(c, err)
		return
	}

	select {
	case client.Outbound <- realtime.MessageFor(row.Snapshot()):
	default:
	}

	h.log.Debug("SSE stream open", "request_id", id, "client_id", client.ID)
	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
