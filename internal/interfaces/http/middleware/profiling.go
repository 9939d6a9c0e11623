package middleware

import (
	"context"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/invoicesxpert/backend/internal/infrastructure/telemetry"
)

// Profiling labels the handler goroutine with method, route, controller and
// owner so PDF export CPU time can be told apart from the CRUD endpoints in
// Pyroscope. It belongs after Session. Unmatched routes are not labelled.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return passThrough
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}

		labels := []string{
			telemetry.ProfilingLabelMethod, c.Request.Method,
			telemetry.ProfilingLabelRoute, route,
			telemetry.ProfilingLabelOwnerID, GetSession(c).OwnerID,
		}
		if controller := controllerOf(route); controller != "" {
			labels = append(labels, telemetry.ProfilingLabelController, controller)
		}

		telemetry.WithProfilingLabels(c.Request.Context(), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		}, labels...)
	}
}

var versionSegment = regexp.MustCompile(`^[vV][0-9]+$`)

// controllerOf returns the first resource segment of a route:
// "/api/v1/invoices/:id/pdf" is "invoices", "/pay/:id" is "pay".
func controllerOf(route string) string {
	for part := range strings.SplitSeq(route, "/") {
		switch {
		case part == "", part == "api", versionSegment.MatchString(part):
			continue
		case strings.HasPrefix(part, ":"), strings.HasPrefix(part, "*"):
			continue
		}
		return part
	}
	return ""
}
