package middleware

import (
	"github.com/gin-gonic/gin"

	"fable/internal/pkg/id"
)

// RequestIDHeader 请求ID透传的 Header
const RequestIDHeader = "X-Request-ID"

// RequestID 请求ID中间件
// 优先复用调用方传入的请求ID，否则生成一个新的
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = id.New()
		}

		c.Set("request_id", requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)

		c.Next()
	}
}
