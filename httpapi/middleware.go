package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	loggerKey       = "logger"
	requestIDHeader = "X-Request-ID"
)

// RequestLogger stores a request scoped logger in the gin context and logs
// every completed request.
func RequestLogger(base logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()

		logger := base.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		})

		c.Header(requestIDHeader, requestID)
		c.Set(loggerKey, logger)

		c.Next()

		logger.WithFields(logrus.Fields{
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("request completed")
	}
}

func loggerFrom(c *gin.Context) logrus.FieldLogger {
	if value, ok := c.Get(loggerKey); ok {
		if logger, ok := value.(logrus.FieldLogger); ok {
			return logger
		}
	}

	return logrus.StandardLogger()
}
