package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/voicewatch-backend/internal/domain/knowledge"
	"github.com/yungbote/voicewatch-backend/internal/http/response"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
	knowledgesvc "github.com/yungbote/voicewatch-backend/internal/services/knowledge"
)

const (
	msgDocumentsRequired = "Invalid request: documents array required"
	msgDocumentFields    = "Each document must have content, documentId, and source"
	msgQueryRequired     = "Invalid request: query string required"
	msgQParamRequired    = "Query parameter 'q' is required"

	// MaxSearchLimit caps caller-supplied limits; larger values are clamped, not rejected.
	MaxSearchLimit = 100
)

type KnowledgeHandler struct {
	log          *logger.Logger
	knowledge    knowledgesvc.Service
	defaultLimit int
}

func NewKnowledgeHandler(log *logger.Logger, knowledge knowledgesvc.Service, defaultLimit int) *KnowledgeHandler {
	if defaultLimit <= 0 {
		defaultLimit = knowledgesvc.DefaultSearchLimit
	}
	return &KnowledgeHandler{
		log:          log.With("handler", "KnowledgeHandler"),
		knowledge:    knowledge,
		defaultLimit: defaultLimit,
	}
}

// POST /ingest
func (h *KnowledgeHandler) Ingest(c *gin.Context) {
	var body struct {
		Documents json.RawMessage `json:"documents"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || !isJSONArray(body.Documents) {
		response.RespondError(c, http.StatusBadRequest, msgDocumentsRequired, nil)
		return
	}
	var docs []knowledge.Document
	if err := json.Unmarshal(body.Documents, &docs); err != nil {
		response.RespondError(c, http.StatusBadRequest, msgDocumentFields, nil)
		return
	}
	if err := knowledgesvc.ValidateDocuments(docs); err != nil {
		response.RespondError(c, http.StatusBadRequest, msgDocumentFields, nil)
		return
	}

	res, err := h.knowledge.IngestDocuments(c.Request.Context(), docs)
	if err != nil {
		if knowledgesvc.IsValidationError(err) {
			response.RespondError(c, http.StatusBadRequest, msgDocumentFields, nil)
			return
		}
		response.RespondServiceError(c, h.log, "Failed to ingest documents", err)
		return
	}
	response.RespondOK(c, gin.H{
		"success": true,
		"message": fmt.Sprintf("Successfully ingested %d documents", len(docs)),
		"chunks":  res.Chunks,
	})
}

// POST /search
func (h *KnowledgeHandler) Search(c *gin.Context) {
	var body struct {
		Query any `json:"query"`
		Limit any `json:"limit"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, msgQueryRequired, nil)
		return
	}
	query, ok := body.Query.(string)
	if !ok || strings.TrimSpace(query) == "" {
		response.RespondError(c, http.StatusBadRequest, msgQueryRequired, nil)
		return
	}
	limit := h.defaultLimit
	if f, ok := body.Limit.(float64); ok && f >= 1 {
		limit = int(math.Min(f, MaxSearchLimit))
	}
	h.search(c, query, limit)
}

// GET /search?q=&limit=
func (h *KnowledgeHandler) SearchQuery(c *gin.Context) {
	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		response.RespondError(c, http.StatusBadRequest, msgQParamRequired, nil)
		return
	}
	limit := h.defaultLimit
	raw := strings.TrimSpace(c.Query("limit"))
	n, err := strconv.Atoi(raw)
	switch {
	case err == nil && n > MaxSearchLimit:
		limit = MaxSearchLimit
	case err == nil && n > 0:
		limit = n
	case errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-"):
		limit = MaxSearchLimit
	}
	h.search(c, query, limit)
}

func (h *KnowledgeHandler) search(c *gin.Context, query string, limit int) {
	results, err := h.knowledge.SearchKnowledgeBase(c.Request.Context(), query, limit)
	if err != nil {
		var verr *knowledgesvc.ValidationError
		if errors.As(err, &verr) {
			response.RespondError(c, http.StatusBadRequest, msgQueryRequired, nil)
			return
		}
		response.RespondServiceError(c, h.log, "Failed to search knowledge base", err)
		return
	}
	response.RespondOK(c, gin.H{
		"success": true,
		"results": results,
		"count":   len(results),
	})
}

// GET /stats
func (h *KnowledgeHandler) Stats(c *gin.Context) {
	stats, err := h.knowledge.Stats(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, h.log, "Failed to get RAG stats", err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "stats": stats})
}

// DELETE /documents/:documentId
func (h *KnowledgeHandler) DeleteDocument(c *gin.Context) {
	id := strings.TrimSpace(c.Param("documentId"))
	if err := h.knowledge.DeleteDocument(c.Request.Context(), id); err != nil {
		if knowledgesvc.IsValidationError(err) {
			response.RespondError(c, http.StatusBadRequest, "documentId is required", nil)
			return
		}
		response.RespondServiceError(c, h.log, "Failed to delete document", err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "documentId": id})
}

func isJSONArray(raw json.RawMessage) bool {
	return bytes.HasPrefix(bytes.TrimSpace(raw), []byte("["))
}
