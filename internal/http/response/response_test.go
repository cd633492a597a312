package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/voicewatch-backend/internal/platform/apierr"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

func run(t *testing.T, fn func(c *gin.Context)) (int, ErrorBody) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v (%s)", err, rec.Body.String())
	}
	return rec.Code, body
}

func TestRespondServiceErrorClientError(t *testing.T) {
	code, body := run(t, func(c *gin.Context) {
		RespondServiceError(c, logger.Nop(), "Failed to fetch calls", apierr.NotFound("Call not found"))
	})
	if code != http.StatusNotFound || body.Error != "Call not found" || body.Details != "" {
		t.Fatalf("got code=%d body=%+v", code, body)
	}
}

func TestRespondServiceErrorInternal(t *testing.T) {
	code, body := run(t, func(c *gin.Context) {
		RespondServiceError(c, logger.Nop(), "Failed to fetch calls", errors.New("db down"))
	})
	if code != http.StatusInternalServerError || body.Error != "Failed to fetch calls" || body.Details != "db down" {
		t.Fatalf("got code=%d body=%+v", code, body)
	}
}
