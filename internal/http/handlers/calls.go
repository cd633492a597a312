package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/voicewatch-backend/internal/data/repos"
	types "github.com/yungbote/voicewatch-backend/internal/domain/calls"
	"github.com/yungbote/voicewatch-backend/internal/http/response"
	"github.com/yungbote/voicewatch-backend/internal/pkg/dbctx"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
	callsvc "github.com/yungbote/voicewatch-backend/internal/services/calls"
)

type CallHandler struct {
	log   *logger.Logger
	calls callsvc.Service
}

func NewCallHandler(log *logger.Logger, calls callsvc.Service) *CallHandler {
	return &CallHandler{log: log.With("handler", "CallHandler"), calls: calls}
}

func (h *CallHandler) dbc(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

// GET /api/calls
func (h *CallHandler) ListCalls(c *gin.Context) {
	if callID := strings.TrimSpace(c.Query("callId")); callID != "" {
		call, err := h.calls.GetCall(h.dbc(c), callID)
		if err != nil {
			response.RespondServiceError(c, h.log, "Failed to fetch calls", err)
			return
		}
		response.RespondOK(c, call)
		return
	}

	q := repos.CallListQuery{
		Search:      strings.TrimSpace(c.Query("search")),
		FailureMode: strings.TrimSpace(c.Query("failureMode")),
	}
	_, hasPage := c.GetQuery("page")
	_, hasPageSize := c.GetQuery("pageSize")
	if q.FailureMode == "" && (hasPage || hasPageSize) {
		q.Page = positiveOr(c.Query("page"), 1)
		q.PageSize = positiveOr(c.Query("pageSize"), callsvc.DefaultPageSize)
		page, err := h.calls.PageCalls(h.dbc(c), q)
		if err != nil {
			response.RespondServiceError(c, h.log, "Failed to fetch calls", err)
			return
		}
		response.RespondOK(c, page)
		return
	}

	out, err := h.calls.ListCalls(h.dbc(c), q)
	if err != nil {
		response.RespondServiceError(c, h.log, "Failed to fetch calls", err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/calls
func (h *CallHandler) SaveCall(c *gin.Context) {
	var call types.Call
	if err := c.ShouldBindJSON(&call); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid call payload", err)
		return
	}
	if err := h.calls.SaveCall(h.dbc(c), &call); err != nil {
		response.RespondServiceError(c, h.log, "Failed to save call", err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "callId": call.CallID})
}

// DELETE /api/calls/:id
func (h *CallHandler) DeleteCall(c *gin.Context) {
	if err := h.calls.DeleteCall(h.dbc(c), c.Param("id")); err != nil {
		response.RespondServiceError(c, h.log, "Failed to delete call", err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}

// POST /api/annotations
func (h *CallHandler) SaveAnnotation(c *gin.Context) {
	var body struct {
		CallID     string            `json:"callId"`
		Annotation *types.Annotation `json:"annotation"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid annotation payload", err)
		return
	}
	if err := h.calls.SaveAnnotation(h.dbc(c), body.CallID, body.Annotation); err != nil {
		response.RespondServiceError(c, h.log, "Failed to save annotation", err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}

// GET /api/annotations?type=failure-modes|error-distribution or ?errorType=
func (h *CallHandler) Annotations(c *gin.Context) {
	const fallback = "Failed to fetch annotations"
	if errorType := strings.TrimSpace(c.Query("errorType")); errorType != "" {
		out, err := h.calls.ListCalls(h.dbc(c), repos.CallListQuery{ErrorType: errorType})
		if err != nil {
			response.RespondServiceError(c, h.log, fallback, err)
			return
		}
		response.RespondOK(c, out)
		return
	}

	switch c.Query("type") {
	case "failure-modes":
		out, err := h.calls.FailureModes(h.dbc(c))
		if err != nil {
			response.RespondServiceError(c, h.log, fallback, err)
			return
		}
		response.RespondOK(c, out)
	case "error-distribution":
		out, err := h.calls.ErrorTypeDistribution(h.dbc(c))
		if err != nil {
			response.RespondServiceError(c, h.log, fallback, err)
			return
		}
		response.RespondOK(c, out)
	default:
		response.RespondError(c, http.StatusBadRequest, "Invalid type parameter", nil)
	}
}

func positiveOr(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}
