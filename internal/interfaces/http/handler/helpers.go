package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// contentDisposition builds an attachment header value for fileName
func contentDisposition(fileName string) string {
	fileName = strings.NewReplacer(`"`, "_", "\\", "_", "\r", "", "\n", "").Replace(fileName)
	return `attachment; filename="` + fileName + `"`
}

// requestOrigin reconstructs scheme://host of the incoming request
func requestOrigin(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	host := c.Request.Host
	if fwd := c.GetHeader("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return scheme + "://" + host
}
