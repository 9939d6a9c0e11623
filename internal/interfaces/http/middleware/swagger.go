package middleware

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/invoicesxpert/backend/internal/interfaces/http/dto"
)

// SwaggerConfig guards the /swagger routes.
type SwaggerConfig struct {
	Enabled bool
	// Accounts turns on basic auth when non-empty
	Accounts gin.Accounts
	// AllowedIPs holds addresses or CIDR prefixes; empty allows everyone
	AllowedIPs []string
}

// SwaggerProtection serves 404 when the docs are disabled, then applies the
// IP allow-list and finally basic auth.
func SwaggerProtection(cfg SwaggerConfig) gin.HandlerFunc {
	allowed := parseAllowList(cfg.AllowedIPs)
	restricted := len(cfg.AllowedIPs) > 0

	var basicAuth gin.HandlerFunc
	if len(cfg.Accounts) > 0 {
		basicAuth = gin.BasicAuthForRealm(cfg.Accounts, "API documentation")
	}

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeNotFound, "API documentation is not available", GetRequestID(c)))
			return
		}
		// an allow-list with no parsable entries admits nobody
		if restricted && !ipAllowed(clientAddr(c), allowed) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Access to API documentation is restricted", GetRequestID(c)))
			return
		}
		if basicAuth != nil {
			if basicAuth(c); c.IsAborted() {
				return
			}
		}
		c.Next()
	}
}

// parseAllowList turns addresses into single-host prefixes and drops
// entries that parse as neither.
func parseAllowList(entries []string) []netip.Prefix {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if p, err := netip.ParsePrefix(entry); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
		}
	}
	return prefixes
}

// clientAddr prefers gin's proxy-aware ClientIP and falls back to the peer.
func clientAddr(c *gin.Context) netip.Addr {
	if addr, err := netip.ParseAddr(c.ClientIP()); err == nil {
		return addr.Unmap()
	}
	if ap, err := netip.ParseAddrPort(c.Request.RemoteAddr); err == nil {
		return ap.Addr().Unmap()
	}
	return netip.Addr{}
}

func ipAllowed(addr netip.Addr, allowed []netip.Prefix) bool {
	if !addr.IsValid() {
		return false
	}
	for _, p := range allowed {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
