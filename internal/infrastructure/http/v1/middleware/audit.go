package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	appctx "backoffice/internal/core/context"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/audit"
	"backoffice/pkg/logger"
)

// maxAuditBody caps how much of a request body is kept in the audit trail.
const maxAuditBody = 1 << 20

// Audit records every non-GET request after the handler has run.
// A failed audit write is logged and does not change the response.
func Audit(recorder audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}

		var payload []byte
		if c.Request.Body != nil {
			payload, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBody))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(payload), c.Request.Body))
		}

		c.Next()

		ctx := c.Request.Context()
		var userID *id.ID
		if parsed, err := id.Parse(appctx.GetUserID(ctx)); err == nil {
			userID = &parsed
		}

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}

		entry := audit.NewEntry(userID, c.Request.Method, endpoint, c.Writer.Status(), payload)
		if err := recorder.Record(ctx, entry); err != nil {
			logger.Error(ctx, "audit record failed", "endpoint", endpoint, "error", err)
		}
	}
}
