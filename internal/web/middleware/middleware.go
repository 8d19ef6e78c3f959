package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

type MiddlewareManager struct {
	log *slog.Logger
}

func NewMiddlewareManager(log *slog.Logger) *MiddlewareManager {
	if log == nil {
		log = slog.Default()
	}
	return &MiddlewareManager{log: log.With("component", "http")}
}

// RequestLogger logs one line per request with its id, status and latency
func (m *MiddlewareManager) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelDebug
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		} else if c.Writer.Status() >= 400 {
			level = slog.LevelWarn
		}
		m.log.Log(c.Request.Context(), level, "request",
			"request_id", c.GetString(RequestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
