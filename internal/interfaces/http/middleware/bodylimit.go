package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/invoicesxpert/backend/internal/interfaces/http/dto"
)

// DefaultBodyLimit covers an invoice with long notes and a few thousand items.
const DefaultBodyLimit int64 = 8 << 20

// BodyLimit rejects requests whose declared length exceeds maxBytes and caps
// the body reader for chunked uploads. A non-positive maxBytes means
// DefaultBodyLimit.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultBodyLimit
	}
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				GetRequestID(c),
			))
			return
		}
		// handlers see *http.MaxBytesError from their bind call
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
