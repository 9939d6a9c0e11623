package middleware

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/invoicesxpert/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var setupOnce sync.Once

// SetupValidator configures gin's validator once per process: errors name
// the JSON (or form) field, decimal.Decimal validates like a number, and the
// currency and isodate tags become available.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(wireName)
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = v.RegisterValidation("currency", validCurrency)
		_ = v.RegisterValidation("isodate", validISODate)
	})
}

func wireName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		name, _, _ = strings.Cut(fld.Tag.Get("form"), ",")
	}
	return name
}

// maxDecimalExponent keeps decimalValue away from expanding 10^exp; any
// amount this service accepts is far inside it.
const maxDecimalExponent = 64

// decimalValue exposes a decimal as a float64. Decimals whose exponent alone
// puts them out of reach become NaN, which fails every numeric comparison.
func decimalValue(v reflect.Value) any {
	d, ok := v.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	if exp := d.Exponent(); exp > maxDecimalExponent || exp < -maxDecimalExponent {
		return math.NaN()
	}
	return d.InexactFloat64()
}

// validCurrency accepts ISO 4217 codes in any case.
func validCurrency(fl validator.FieldLevel) bool {
	_, err := currency.ParseISO(strings.ToUpper(fl.Field().String()))
	return err == nil
}

func validISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(invoicing.DateLayout, fl.Field().String())
	return err == nil
}

// ValidationDetails lists the rejected fields of a binding error. Nested
// fields keep their path, e.g. "items[1].quantity". Errors that did not come
// from the validator yield nil.
func ValidationDetails(err error) []dto.ValidationDetail {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}
	details := make([]dto.ValidationDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, dto.ValidationDetail{Field: fieldPath(fe), Message: validationMessage(fe)})
	}
	return details
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

var fixedMessages = map[string]string{
	"required": "This field is required",
	"email":    "Invalid email format",
	"uuid":     "Invalid UUID format",
	"alpha":    "Must contain only letters",
	"currency": "Must be an ISO 4217 currency code",
	"isodate":  "Must be a date formatted YYYY-MM-DD",
}

func validationMessage(fe validator.FieldError) string {
	if msg, ok := fixedMessages[fe.Tag()]; ok {
		return msg
	}
	p := fe.Param()
	switch fe.Tag() {
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return "Must be at least " + p + " characters"
		case reflect.Slice:
			return "Must contain at least " + p + " entries"
		}
		return "Must be at least " + p
	case "max":
		if fe.Kind() == reflect.String {
			return "Must be at most " + p + " characters"
		}
		return "Must be at most " + p
	case "gte":
		return "Must be at least " + p
	case "lte":
		return "Must be at most " + p
	case "len":
		return "Must be exactly " + p + " characters"
	case "oneof":
		return "Must be one of: " + p
	case "datetime":
		return "Must be a date formatted " + p
	}
	return "Invalid value"
}
