package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/invoicesxpert/backend/internal/domain/shared"
	"github.com/invoicesxpert/backend/internal/interfaces/http/dto"
	"github.com/invoicesxpert/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// testContext returns a bare context whose request carries X-Request-ID req-1.
func testContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	c.Request.Header.Set("X-Request-ID", "req-1")
	return c, w
}

func jsonContext(body string) (*gin.Context, *httptest.ResponseRecorder) {
	c, w := testContext(http.MethodPost, "/")
	c.Request.Body = io.NopCloser(strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandler_Envelope(t *testing.T) {
	h := &BaseHandler{}

	t.Run("success", func(t *testing.T) {
		c, w := testContext(http.MethodGet, "/")
		h.Success(c, gin.H{"number": "INV-0001"})

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.True(t, resp.Success)
		assert.Nil(t, resp.Error)
		assert.Equal(t, map[string]any{"number": "INV-0001"}, resp.Data)
	})

	t.Run("created", func(t *testing.T) {
		c, w := testContext(http.MethodPost, "/")
		h.Created(c, gin.H{"id": "123"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decode(t, w).Success)
	})

	t.Run("no content", func(t *testing.T) {
		router := gin.New()
		router.DELETE("/clients/x", h.NoContent)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/clients/x", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.Bytes())
	})

	t.Run("bad request quotes the request id", func(t *testing.T) {
		c, w := testContext(http.MethodGet, "/")
		h.BadRequest(c, "Invalid page")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
		assert.Equal(t, "req-1", resp.Error.RequestID)
	})

	t.Run("validation details", func(t *testing.T) {
		c, w := testContext(http.MethodPost, "/")
		h.ValidationError(c, []dto.ValidationDetail{
			{Field: "client.email", Message: "Must be a valid email address"},
			{Field: "items[0].quantity", Message: "Must be at least 1"},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Len(t, resp.Error.Details, 2)
	})
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", shared.ErrNotFound.WithMessage("Invoice not found"), http.StatusNotFound, dto.ErrCodeNotFound, "Invoice not found"},
		{"wrapped not found", fmt.Errorf("load client: %w", shared.ErrNotFound), http.StatusNotFound, dto.ErrCodeNotFound, "Resource not found"},
		{"invoice rule", invoicing.ErrItemsRequired, http.StatusBadRequest, dto.ErrCodeItemsRequired, invoicing.ErrItemsRequired.Message},
		{"field rule", invoicing.ErrInvalidCurrency, http.StatusBadRequest, "INVALID_CURRENCY", invoicing.ErrInvalidCurrency.Message},
		{"export busy", shared.ErrExportBusy, http.StatusConflict, dto.ErrCodeExportBusy, shared.ErrExportBusy.Message},
		{"export failed hides the cause", fmt.Errorf("%w: %w", shared.ErrExportFailed, assert.AnError), http.StatusInternalServerError, dto.ErrCodeExportFailed, "failed to generate PDF, try again"},
		{"unsupported app", shared.ErrUnsupportedApp, http.StatusBadRequest, dto.ErrCodeUnsupportedApp, shared.ErrUnsupportedApp.Message},
		{"plain error", assert.AnError, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext(http.MethodGet, "/")

			(&BaseHandler{}).HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
		})
	}

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := testContext(http.MethodGet, "/")
		(&BaseHandler{}).HandleError(c, nil)
		assert.Empty(t, w.Body.Bytes())
	})

	t.Run("client gone", func(t *testing.T) {
		c, _ := testContext(http.MethodGet, "/")
		(&BaseHandler{}).HandleError(c, fmt.Errorf("export cancelled during rendering: %w", context.Canceled))

		assert.True(t, c.IsAborted())
		assert.Equal(t, dto.StatusClientClosedRequest, c.Writer.Status())
	})
}

func TestBaseHandler_BindJSON(t *testing.T) {
	type body struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required,email"`
	}
	bind := func(raw string) (*httptest.ResponseRecorder, bool) {
		c, w := jsonContext(raw)
		var req body
		return w, (&BaseHandler{}).bindJSON(c, &req)
	}

	_, ok := bind(`{"name":"Ada","email":"ada@example.com"}`)
	assert.True(t, ok)

	w, ok := bind(`{"name":"Ada","email":"nope"}`)
	assert.False(t, ok)
	resp := decode(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "email", resp.Error.Details[0].Field)

	w, ok = bind(`{"name":`)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, decode(t, w).Error.Code)
}

func TestBaseHandler_BindJSONTooLarge(t *testing.T) {
	router := gin.New()
	router.POST("/invoices", middleware.BodyLimit(16), func(c *gin.Context) {
		var req map[string]any
		if (&BaseHandler{}).bindJSON(c, &req) {
			c.Status(http.StatusOK)
		}
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(`{"notes":"`+strings.Repeat("x", 64)+`"}`))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, dto.ErrCodeRequestTooLarge, decode(t, w).Error.Code)
}

func TestBaseHandler_ParseID(t *testing.T) {
	h := &BaseHandler{}
	router := gin.New()
	router.GET("/invoices/:id", func(c *gin.Context) {
		if id, ok := h.parseID(c, "id"); ok {
			c.String(http.StatusOK, id.String())
		}
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invoices/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid id format")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invoices/6f1c2a3e-1111-4222-8333-944455556666", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "6f1c2a3e-1111-4222-8333-944455556666", w.Body.String())
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="Invoice-INV-2024-0001.pdf"`, contentDisposition("Invoice-INV-2024-0001.pdf"))
	assert.Equal(t, `attachment; filename="a_b.pdf"`, contentDisposition(`a"b.pdf`))
}

func TestRequestOrigin(t *testing.T) {
	c, _ := testContext(http.MethodGet, "http://api.example.com/x")
	assert.Equal(t, "http://api.example.com", requestOrigin(c))

	c.Request.Header.Set("X-Forwarded-Proto", "https, http")
	c.Request.Header.Set("X-Forwarded-Host", "invoices.example.com")
	assert.Equal(t, "https://invoices.example.com", requestOrigin(c))
}
