package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/voicewatch-backend/internal/domain/calls"
	"github.com/yungbote/voicewatch-backend/internal/http/response"
	"github.com/yungbote/voicewatch-backend/internal/pkg/dbctx"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
	callsvc "github.com/yungbote/voicewatch-backend/internal/services/calls"
)

// ReviewHandler serves the artifacts a reviewer derives from failure modes: test cases and tickets.
type ReviewHandler struct {
	log   *logger.Logger
	calls callsvc.Service
}

func NewReviewHandler(log *logger.Logger, calls callsvc.Service) *ReviewHandler {
	return &ReviewHandler{log: log.With("handler", "ReviewHandler"), calls: calls}
}

// POST /api/test-cases
func (h *ReviewHandler) SaveTestCase(c *gin.Context) {
	var tc types.TestCase
	if err := c.ShouldBindJSON(&tc); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid test case payload", err)
		return
	}
	if err := h.calls.SaveTestCase(dbctx.Context{Ctx: c.Request.Context()}, &tc); err != nil {
		response.RespondServiceError(c, h.log, "Failed to save test case", err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "testCase": tc})
}

// GET /api/test-cases?failureMode=
func (h *ReviewHandler) ListTestCases(c *gin.Context) {
	out, err := h.calls.TestCasesByFailureMode(dbctx.Context{Ctx: c.Request.Context()}, c.Query("failureMode"))
	if err != nil {
		response.RespondServiceError(c, h.log, "Failed to fetch test cases", err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/tickets
func (h *ReviewHandler) SaveTicket(c *gin.Context) {
	var ticket types.Ticket
	if err := c.ShouldBindJSON(&ticket); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid ticket payload", err)
		return
	}
	if err := h.calls.SaveTicket(dbctx.Context{Ctx: c.Request.Context()}, &ticket); err != nil {
		response.RespondServiceError(c, h.log, "Failed to save ticket", err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "ticket": ticket})
}

// GET /api/tickets?failureMode=
func (h *ReviewHandler) ListTickets(c *gin.Context) {
	out, err := h.calls.TicketsByFailureMode(dbctx.Context{Ctx: c.Request.Context()}, c.Query("failureMode"))
	if err != nil {
		response.RespondServiceError(c, h.log, "Failed to fetch tickets", err)
		return
	}
	response.RespondOK(c, out)
}
