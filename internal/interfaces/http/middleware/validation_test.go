package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/invoicesxpert/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLineItem struct {
	Description string `json:"description" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
}

type testInvoice struct {
	Currency string          `json:"currency" binding:"required,len=3,currency"`
	Email    string          `json:"email" binding:"omitempty,email"`
	IssuedOn string          `json:"issued_on" binding:"omitempty,isodate"`
	TaxRate  decimal.Decimal `json:"tax_rate" binding:"gte=0,lte=100"`
	Items    []testLineItem  `json:"items" binding:"required,min=1,dive"`
}

// postInvoice binds body and returns the field details keyed by path.
func postInvoice(t *testing.T, body string) (int, map[string]string) {
	t.Helper()
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req testInvoice
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Invalid request", GetRequestID(c), ValidationDetails(err)))
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(nil))
	})

	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	fields := map[string]string{}
	if resp.Error != nil {
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Message
		}
	}
	return w.Code, fields
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()
	SetupValidator()

	_, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
}

func TestValidationDetails_NestedFields(t *testing.T) {
	code, fields := postInvoice(t, `{"currency":"US","email":"nope","items":[{"description":"Design","quantity":1},{"description":"","quantity":0}]}`)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Must be exactly 3 characters", fields["currency"])
	assert.Equal(t, "Invalid email format", fields["email"])
	assert.Equal(t, "This field is required", fields["items[1].description"])
	assert.Equal(t, "This field is required", fields["items[1].quantity"])
	assert.NotContains(t, fields, "items[0].description")
}

func TestValidationDetails_EmptyItems(t *testing.T) {
	code, fields := postInvoice(t, `{"currency":"USD","items":[]}`)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, map[string]string{"items": "Must contain at least 1 entries"}, fields)
}

func TestCurrencyTag(t *testing.T) {
	tests := []struct {
		currency string
		valid    bool
	}{
		{"USD", true},
		{"eur", true},
		{"CNY", true},
		{"XYZ", false},
		{"AB1", false},
	}
	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			code, fields := postInvoice(t, `{"currency":"`+tt.currency+`","items":[{"description":"Design","quantity":1}]}`)
			if tt.valid {
				assert.Equal(t, http.StatusOK, code)
				return
			}
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, "Must be an ISO 4217 currency code", fields["currency"])
		})
	}
}

func TestISODateTag(t *testing.T) {
	code, _ := postInvoice(t, `{"currency":"USD","issued_on":"2024-02-29","items":[{"description":"Design","quantity":1}]}`)
	assert.Equal(t, http.StatusOK, code)

	code, fields := postInvoice(t, `{"currency":"USD","issued_on":"29/02/2024","items":[{"description":"Design","quantity":1}]}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Must be a date formatted YYYY-MM-DD", fields["issued_on"])

	_, fields = postInvoice(t, `{"currency":"USD","issued_on":"2023-02-29","items":[{"description":"Design","quantity":1}]}`)
	assert.Contains(t, fields, "issued_on")
}

func TestDecimalBounds(t *testing.T) {
	code, _ := postInvoice(t, `{"currency":"USD","tax_rate":"19.5","items":[{"description":"Design","quantity":1}]}`)
	assert.Equal(t, http.StatusOK, code)

	_, fields := postInvoice(t, `{"currency":"USD","tax_rate":"100.01","items":[{"description":"Design","quantity":1}]}`)
	assert.Equal(t, "Must be at most 100", fields["tax_rate"])

	_, fields = postInvoice(t, `{"currency":"USD","tax_rate":-1,"items":[{"description":"Design","quantity":1}]}`)
	assert.Equal(t, "Must be at least 0", fields["tax_rate"])

	for _, rate := range []string{`"1e50000000"`, `1e50000000`, `"1e-50000000"`} {
		code, fields = postInvoice(t, `{"currency":"USD","tax_rate":`+rate+`,"items":[{"description":"Design","quantity":1}]}`)
		assert.Equal(t, http.StatusBadRequest, code, rate)
		assert.Contains(t, fields, "tax_rate", rate)
	}
}

func TestValidationDetails_NonValidatorError(t *testing.T) {
	assert.Nil(t, ValidationDetails(assert.AnError))
}
