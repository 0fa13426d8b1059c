package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"libportal/internal/logging"
	"libportal/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// ErrorLogger logs failed requests and recovers from panics. The request
// logger is also put on the request context for handlers.
func ErrorLogger(base *slog.Logger) gin.HandlerFunc {
	if base == nil {
		base = logging.Discard()
	}
	return func(c *gin.Context) {
		start := time.Now()
		logger := base.With("method", c.Request.Method, "path", c.Request.URL.Path)
		if id := requestID(c); id != "" {
			logger = logger.With("request_id", id)
		}
		c.Request = c.Request.WithContext(logging.ContextWithLogger(c.Request.Context(), logger))

		defer func() {
			if recovered := recover(); recovered != nil {
				logRequestError(c, logger, start, "panic", fmt.Sprintf("%v", recovered), debug.Stack())
				response.Abort(c, http.StatusInternalServerError, "Internal Server Error")
				return
			}

			if len(c.Errors) == 0 {
				if c.Writer.Status() >= http.StatusInternalServerError {
					logRequestError(c, logger, start, "http_error", fmt.Sprintf("status=%d", c.Writer.Status()), nil)
				}
				return
			}

			for _, err := range c.Errors {
				logRequestError(c, logger, start, fmt.Sprintf("%v", err.Type), err.Error(), nil)
			}
		}()

		c.Next()
	}
}

func logRequestError(c *gin.Context, logger *slog.Logger, start time.Time, errType, message string, stack []byte) {
	attrs := []any{
		"type", errType,
		"status", c.Writer.Status(),
		"query", c.Request.URL.RawQuery,
		"client_ip", c.ClientIP(),
		"dni", c.GetString(CtxDNI),
		"role", c.GetString(CtxRole),
		"latency", time.Since(start),
		"error", message,
	}
	if stack != nil {
		attrs = append(attrs, "stack", string(stack))
	}
	logger.Error("request_error", attrs...)
}

func requestID(c *gin.Context) string {
	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = c.GetHeader("X-Request-Id")
	}
	return id
}
