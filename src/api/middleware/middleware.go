package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapExchange/src/common/errcode"
	"github.com/ProjectsTask/EasySwapExchange/src/common/xhttp"
	"github.com/ProjectsTask/EasySwapExchange/src/common/xzap"
)

const traceIDHeader = "X-Trace-ID"

// RecoverMiddleware turns a handler panic into a masked 500 response.
func RecoverMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				xzap.WithContext(c.Request.Context()).Error("handler panic",
					zap.Any("recover", r),
					zap.String("path", c.Request.URL.Path),
				)
				xhttp.Error(c, errcode.ErrUnexpected)
				c.Abort()
			}
		}()
		c.Next()
	}
}

// RLog tags every request with a trace id and logs the access line.
func RLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(traceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Header(traceIDHeader, traceID)

		ctx := xzap.NewContext(c.Request.Context(), zap.String("trace_id", traceID))
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		xzap.WithContext(ctx).Info("access",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("cost", time.Since(start)),
		)
	}
}
