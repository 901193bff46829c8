package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"signal-agent/internal/logger"
	"signal-agent/internal/trace"
)

const requestIDHeader = "X-Request-ID"

// requestContext tags each request with an id, a span and a deadline, and
// writes one access log line when it completes.
func requestContext(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Header(requestIDHeader, id)

		ctx, span := trace.StartSpan(c.Request.Context(), "http "+c.Request.Method+" "+c.FullPath())
		defer span.End()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		logger.Info(ctx, "HTTP request",
			"request_id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

func recoverJSON(c *gin.Context, recovered any) {
	logger.Error(c.Request.Context(), "Panic recovered", "panic", recovered, "path", c.Request.URL.Path)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": fmt.Sprint(recovered)})
}
