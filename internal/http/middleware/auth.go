package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

const ContextSubject = "auth_subject"

// AuthMiddleware guards mutating routes with an HS256 bearer token.
// With no secret configured it lets every request through.
type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
}

func NewAuthMiddleware(log *logger.Logger, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		log:    log.With("Middleware", "AuthMiddleware"),
		secret: []byte(strings.TrimSpace(secret)),
	}
}

func (am *AuthMiddleware) Enabled() bool { return am != nil && len(am.secret) > 0 }

// RequireWriteAuth checks the token on everything except GET, HEAD and OPTIONS.
func (am *AuthMiddleware) RequireWriteAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !am.Enabled() {
			c.Next()
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		tokenString := extractBearer(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		sub, err := am.verify(tokenString)
		if err != nil {
			am.log.Debug("token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		c.Set(ContextSubject, sub)
		c.Next()
	}
}

func (am *AuthMiddleware) verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return am.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}

func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
