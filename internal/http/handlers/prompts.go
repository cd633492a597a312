package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/voicewatch-backend/internal/domain/calls"
	"github.com/yungbote/voicewatch-backend/internal/http/response"
	"github.com/yungbote/voicewatch-backend/internal/pkg/dbctx"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
	callsvc "github.com/yungbote/voicewatch-backend/internal/services/calls"
)

type PromptHandler struct {
	log   *logger.Logger
	calls callsvc.Service
}

func NewPromptHandler(log *logger.Logger, calls callsvc.Service) *PromptHandler {
	return &PromptHandler{log: log.With("handler", "PromptHandler"), calls: calls}
}

// GET /api/prompts[?id=]
func (h *PromptHandler) GetPrompts(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	if id := strings.TrimSpace(c.Query("id")); id != "" {
		p, err := h.calls.GetPrompt(dbc, id)
		if err != nil {
			response.RespondServiceError(c, h.log, "Failed to fetch prompts", err)
			return
		}
		response.RespondOK(c, p)
		return
	}
	out, err := h.calls.ListPrompts(dbc)
	if err != nil {
		response.RespondServiceError(c, h.log, "Failed to fetch prompts", err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/prompts
func (h *PromptHandler) SavePrompt(c *gin.Context) {
	var p types.Prompt
	if err := c.ShouldBindJSON(&p); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid prompt payload", err)
		return
	}
	if err := h.calls.SavePrompt(dbctx.Context{Ctx: c.Request.Context()}, &p); err != nil {
		response.RespondServiceError(c, h.log, "Failed to save prompt", err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "prompt": p})
}

// DELETE /api/prompts?id=
func (h *PromptHandler) DeletePrompt(c *gin.Context) {
	if err := h.calls.DeletePrompt(dbctx.Context{Ctx: c.Request.Context()}, c.Query("id")); err != nil {
		response.RespondServiceError(c, h.log, "Failed to delete prompt", err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}
