package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/invoicesxpert/backend/internal/infrastructure/logger"
	"github.com/invoicesxpert/backend/internal/interfaces/http/dto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Session context keys
const (
	OwnerIDKey       = "owner_id"
	OwnerHeaderKey   = "X-Owner-ID"
	DefaultOwnerID   = "local"
	MaxOwnerIDLength = 64
)

// Owner IDs end up in storage keys, archive paths and public URLs
var ownerIDPattern = regexp.MustCompile(`^[A-Za-z0-9._@-]+$`)

// SessionInfo identifies whose clients and invoices a request works on.
// It is a scope, not an identity: nothing is authenticated.
type SessionInfo struct {
	OwnerID string `json:"owner_id"`
}

// SessionConfig holds configuration for the session middleware
type SessionConfig struct {
	// HeaderName carries the owner on API requests
	HeaderName string
	// DefaultOwner is used when neither source names an owner
	DefaultOwner string
	Logger       *zap.Logger
}

// DefaultSessionConfig returns default session middleware configuration
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		HeaderName:   OwnerHeaderKey,
		DefaultOwner: DefaultOwnerID,
	}
}

// Session resolves the owner from the X-Owner-ID header, defaulting to "local"
func Session() gin.HandlerFunc {
	return SessionWithConfig(DefaultSessionConfig())
}

// SessionWithConfig returns session middleware with custom configuration
func SessionWithConfig(cfg SessionConfig) gin.HandlerFunc {
	if cfg.DefaultOwner == "" {
		cfg.DefaultOwner = DefaultOwnerID
	}
	return func(c *gin.Context) {
		var ownerID string
		if cfg.HeaderName != "" {
			ownerID = strings.TrimSpace(c.GetHeader(cfg.HeaderName))
		}
		if ownerID == "" {
			ownerID = cfg.DefaultOwner
		}

		if !ValidOwnerID(ownerID) {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Invalid owner ID", GetRequestID(c)))
			return
		}

		c.Set(OwnerIDKey, ownerID)

		ctx := c.Request.Context()
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("owner_id", ownerID))
		ctx, enriched := logger.WithOwnerID(ctx, logger.FromContext(ctx), ownerID)
		c.Request = c.Request.WithContext(ctx)
		if _, ok := c.Get("logger"); ok {
			logger.SetGinLogger(c, enriched)
		}

		if cfg.Logger != nil {
			cfg.Logger.Debug("Session resolved", zap.String("owner_id", ownerID))
		}

		c.Next()
	}
}

// ValidOwnerID reports whether id is short and URL/path safe
func ValidOwnerID(id string) bool {
	return len(id) <= MaxOwnerIDLength && ownerIDPattern.MatchString(id) && id != "." && id != ".."
}

// GetSession returns the session resolved for the request. Without the
// middleware it is the default owner.
func GetSession(c *gin.Context) SessionInfo {
	if ownerID, exists := c.Get(OwnerIDKey); exists {
		if id, ok := ownerID.(string); ok && id != "" {
			return SessionInfo{OwnerID: id}
		}
	}
	return SessionInfo{OwnerID: DefaultOwnerID}
}
