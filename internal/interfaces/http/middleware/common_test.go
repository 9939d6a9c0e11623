package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// through runs one request through mw in front of a handler that echoes the
// request id and sets the download header the SPA reads.
func through(mw gin.HandlerFunc, method string, headers map[string]string) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(mw)
	router.Handle(method, "/api/v1/invoices/:id/pdf", func(c *gin.Context) {
		c.Header("Content-Disposition", `attachment; filename="Invoice-INV-2024-0001.pdf"`)
		c.String(http.StatusOK, c.GetString("request_id"))
	})
	req := httptest.NewRequest(method, "/api/v1/invoices/abc/pdf", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	spa := DefaultCORSConfig()
	spa.AllowOrigins = []string{"http://localhost:5173"}
	wildcard := CORSConfig{AllowOrigins: []string{"*"}, AllowMethods: []string{"GET"}, AllowCredentials: true}

	tests := []struct {
		name       string
		mw         gin.HandlerFunc
		method     string
		origin     string
		wantCode   int
		wantOrigin string
		wantCreds  string
	}{
		{"no origins configured", CORS(), http.MethodGet, "http://elsewhere.example", http.StatusOK, "", ""},
		{"preflight from unknown origin", CORS(), http.MethodOptions, "http://elsewhere.example", http.StatusNoContent, "", ""},
		{"allowed origin", CORSWithConfig(spa), http.MethodGet, "http://localhost:5173", http.StatusOK, "http://localhost:5173", "true"},
		{"allowed preflight", CORSWithConfig(spa), http.MethodOptions, "http://localhost:5173", http.StatusNoContent, "http://localhost:5173", "true"},
		{"other origin", CORSWithConfig(spa), http.MethodGet, "http://evil.example", http.StatusOK, "", ""},
		{"wildcard drops credentials", CORSWithConfig(wildcard), http.MethodGet, "http://any.example", http.StatusOK, "*", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := through(tt.mw, tt.method, map[string]string{"Origin": tt.origin})

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCreds, w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestCORS_ExposesDownloadHeaders(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"http://localhost:5173"}

	w := through(CORSWithConfig(cfg), http.MethodGet, map[string]string{"Origin": "http://localhost:5173"})

	exposed := w.Header().Get("Access-Control-Expose-Headers")
	assert.Contains(t, exposed, "Content-Disposition")
	assert.Contains(t, exposed, "X-Export-ID")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), OwnerHeaderKey)
	assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, 12*time.Hour, cfg.MaxAge)
}

func TestRequestID(t *testing.T) {
	t.Run("generated", func(t *testing.T) {
		w := through(RequestID(), http.MethodGet, nil)
		id := w.Header().Get("X-Request-ID")
		assert.Len(t, id, 32)
		assert.NotContains(t, id, "-")
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("caller supplied", func(t *testing.T) {
		w := through(RequestID(), http.MethodGet, map[string]string{"X-Request-ID": "req-42"})
		assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "req-42", w.Body.String())
	})

	t.Run("oversized is replaced", func(t *testing.T) {
		w := through(RequestID(), http.MethodGet, map[string]string{"X-Request-ID": strings.Repeat("a", MaxRequestIDLength+1)})
		assert.Len(t, w.Header().Get("X-Request-ID"), 32)
	})
}

func TestSecure(t *testing.T) {
	h := through(Secure(), http.MethodGet, nil).Header()

	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Contains(t, h.Get("Content-Security-Policy"), "script-src 'self'")
	assert.Contains(t, h.Get("Permissions-Policy"), "camera=()")
	assert.Empty(t, h.Get("Strict-Transport-Security"))
}

func TestSecureWithConfig(t *testing.T) {
	public := through(SecureWithConfig(PublicPageSecurityConfig()), http.MethodGet, nil).Header()
	csp := public.Get("Content-Security-Policy")
	assert.Contains(t, csp, "script-src 'unsafe-inline'")
	assert.Contains(t, csp, "style-src 'unsafe-inline'")
	assert.Contains(t, csp, "frame-ancestors 'none'")

	hsts := through(SecureWithConfig(SecurityConfig{HSTSEnabled: true, HSTSMaxAge: 31536000, HSTSIncludeSubdomains: true, HSTSPreload: true}), http.MethodGet, nil).Header()
	assert.Equal(t, "max-age=31536000; includeSubDomains; preload", hsts.Get("Strict-Transport-Security"))
	assert.Empty(t, hsts.Get("Content-Security-Policy"))
}
