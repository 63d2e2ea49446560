package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/utils"
)

// TraceID returns Gin middleware that reuses the caller's X-Trace-Id or mints one,
// stores it on the context and echoes it in the response.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.Request.Header.Get(pkg.HeaderTraceId)
		if utils.IsEmpty(traceID) {
			traceID = c.Request.Header.Get(pkg.HeaderRequestId)
		}
		if utils.IsEmpty(traceID) {
			traceID = pkg.GenerateUUID()
		}
		c.Set(pkg.TraceId, traceID)
		c.Writer.Header().Set(pkg.HeaderTraceId, traceID)
		c.Next()
	}
}
