package observability

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bft-labs/lockstep/internal/ports"
)

// RequestLogger logs one line per request. 5xx responses log at error
// level and 4xx at warn.
func RequestLogger(logger ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		log := logger.Info
		if status >= 500 {
			log = logger.Error
		} else if status >= 400 {
			log = logger.Warn
		}

		log("http_request",
			ports.String("method", c.Request.Method),
			ports.String("path", routePath(c)),
			ports.Int("status", status),
			ports.Duration("duration", time.Since(start)),
			ports.String("client_ip", c.ClientIP()),
			ports.Int("bytes", c.Writer.Size()),
		)
	}
}

// RequestMetrics records every request in m.
func RequestMetrics(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.RecordHTTPRequest(c.Request.Method, routePath(c), c.Writer.Status(), time.Since(start))
	}
}

// routePath prefers the matched route pattern to keep label cardinality low.
func routePath(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return path
	}
	return c.Request.URL.Path
}
