package shared

// DomainError is a rule violation a caller can act on. Code is stable and is
// what the HTTP layer maps to a status; Message is safe to show.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string { return e.Message }

// Is compares codes only, so errors.Is(err, ErrNotFound) holds for any
// not-found error whatever its message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e carrying a more specific message.
//
//	return shared.ErrNotFound.WithMessage("Invoice not found")
func (e *DomainError) WithMessage(message string) *DomainError {
	return &DomainError{Code: e.Code, Message: message}
}

var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState  = NewDomainError("INVALID_STATE", "Operation not allowed in current state")

	ErrExportBusy     = NewDomainError("EXPORT_BUSY", "Another export of this invoice is still running")
	ErrExportFailed   = NewDomainError("EXPORT_FAILED", "Failed to generate PDF, try again")
	ErrUnsupportedApp = NewDomainError("UNSUPPORTED_APP", "Payment app is not supported")
)
