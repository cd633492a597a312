package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/voicewatch-backend/internal/platform/apierr"
	"github.com/yungbote/voicewatch-backend/internal/platform/ctxutil"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

// ErrorBody is the error shape every endpoint returns.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RespondError writes {error, details}. details is omitted when err is nil.
func RespondError(c *gin.Context, status int, message string, err error) {
	body := ErrorBody{Error: message}
	if err != nil {
		body.Details = err.Error()
	}
	c.JSON(status, body)
}

// RespondServiceError maps a service error to a response. Client errors carried as
// *apierr.Error surface their own message; anything else is logged and reported as fallback.
func RespondServiceError(c *gin.Context, log *logger.Logger, fallback string, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) && ae.Status >= 400 && ae.Status < 500 {
		msg := ae.Message
		if msg == "" {
			msg = ae.Error()
		}
		RespondError(c, ae.Status, msg, nil)
		return
	}
	if log != nil {
		fields := append([]interface{}{"error", err}, ctxutil.LogFields(c.Request.Context())...)
		log.Error(fallback, fields...)
	}
	RespondError(c, http.StatusInternalServerError, fallback, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
