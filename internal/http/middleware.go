package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// requestLogger logs basic request details and latency.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}

// recovery writes the panic dump to the global logger and answers 500.
func recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(log.Logger, func(c *gin.Context, _ any) {
		writeError(c, http.StatusInternalServerError, codeInternalError, "internal error")
	})
}
