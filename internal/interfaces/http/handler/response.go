package handler

import "github.com/invoicesxpert/backend/internal/interfaces/http/dto"

// Envelope shapes referenced from the swag annotations. Handlers write
// dto.Response; these only give the generated OpenAPI document typed data.

// APIResponse wraps a successful payload
// @Description Success envelope; data holds the typed payload
type APIResponse[T any] struct {
	Success bool           `json:"success" example:"true"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is every non-2xx JSON body
// @Description Failure envelope; error.code is stable, error.message is for people
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// PreviewHTMLResponse documents the text/html invoice preview
// @Description Standalone invoice document as rendered for capture
type PreviewHTMLResponse string
