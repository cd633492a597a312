package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/voicewatch-backend/internal/http/response"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
	"github.com/yungbote/voicewatch-backend/internal/services/analysis"
)

// AIHandler exposes the completion-backed review helpers.
type AIHandler struct {
	log      *logger.Logger
	analysis analysis.Service
}

func NewAIHandler(log *logger.Logger, svc analysis.Service) *AIHandler {
	return &AIHandler{log: log.With("handler", "AIHandler"), analysis: svc}
}

// POST /api/ai/chat
func (h *AIHandler) Chat(c *gin.Context) {
	var req analysis.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Message is required", nil)
		return
	}
	reply, err := h.analysis.Chat(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, h.log, "Failed to process chat message", err)
		return
	}
	response.RespondOK(c, reply)
}

// POST /api/ai/categorize
func (h *AIHandler) Categorize(c *gin.Context) {
	var body struct {
		Observations json.RawMessage `json:"observations"`
	}
	var observations []string
	if err := c.ShouldBindJSON(&body); err != nil || !isJSONArray(body.Observations) ||
		json.Unmarshal(body.Observations, &observations) != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid observations", nil)
		return
	}
	out, err := h.analysis.Categorize(c.Request.Context(), observations)
	if err != nil {
		response.RespondServiceError(c, h.log, "Failed to categorize observations", err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/ai/suggest-fix
func (h *AIHandler) SuggestFix(c *gin.Context) {
	var req analysis.SuggestFixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Missing required fields", nil)
		return
	}
	out, err := h.analysis.SuggestFix(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, h.log, "Failed to suggest fix", err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/ai/generate-test-case
func (h *AIHandler) GenerateTestCase(c *gin.Context) {
	var req analysis.GenerateTestCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Missing failureMode", nil)
		return
	}
	out, err := h.analysis.GenerateTestCase(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, h.log, "Failed to generate test case", err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/ai/create-ticket
func (h *AIHandler) CreateTicket(c *gin.Context) {
	var req analysis.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Missing required fields", nil)
		return
	}
	out, err := h.analysis.CreateTicket(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, h.log, "Failed to create ticket", err)
		return
	}
	response.RespondOK(c, out)
}
