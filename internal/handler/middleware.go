package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"Critterly-App/internal/logging"
)

// RequestLogger はリクエストごとにステータスと所要時間をログに出す
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := logging.Info()
		if c.Writer.Status() >= 500 {
			event = logging.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("HTTP request")
	}
}
