package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medhelper/medhelper/internal/common"
)

const userIDKey = "user_id"

// NewRouter wires the handlers with logging, recovery and bearer
// authentication for the account endpoints.
func NewRouter(logger *zap.Logger, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	auth := r.Group("/api/auth")
	auth.POST("/login/", h.Login)
	auth.POST("/register/", h.Register)
	auth.POST("/verify-email/", h.VerifyEmail)
	auth.POST("/resend-otp/", h.ResendOTP)
	auth.POST("/request-password-reset/", h.RequestPasswordReset)
	auth.PATCH("/set-new-password/", h.SetNewPassword)

	api := r.Group("/api", bearerAuth(h.tokens))
	api.GET("/cart/", h.Cart)
	api.POST("/cart/add/", h.AddToCart)
	api.GET("/notifications/", h.Notifications)
	api.PATCH("/notifications/:id/mark-read/", h.MarkRead)

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetHeader(common.RequestIDHeader)),
		)
	}
}

// bearerAuth accepts "Authorization: Bearer <jwt>" and stores the user id
// in the context.
func bearerAuth(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader(common.AuthorizationHeader))
		if len(header) < len(common.BearerPrefix) || !strings.EqualFold(header[:len(common.BearerPrefix)], common.BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, detail("Authentication credentials were not provided."))
			return
		}
		id, err := tokens.Parse(strings.TrimSpace(header[len(common.BearerPrefix):]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, detail("Given token not valid for any token type"))
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

func userID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}
