package invoicing

import "github.com/invoicesxpert/backend/internal/domain/shared"

var (
	ErrClientRequired    = shared.NewDomainError("CLIENT_REQUIRED", "Invoice requires a client")
	ErrCompanyIncomplete = shared.NewDomainError("COMPANY_INCOMPLETE", "Company name, address, city, country and postal code are required")
	ErrItemsRequired     = shared.NewDomainError("ITEMS_REQUIRED", "Invoice requires at least one line item")
	ErrInvalidItem       = shared.NewDomainError("INVALID_ITEM", "Line items need a description, a quantity from 1 to 1,000,000 and a price from 0 to 999,999,999,999.9999")
	ErrInvalidDate       = shared.NewDomainError("INVALID_DATE", "Dates must be formatted as YYYY-MM-DD")
	ErrInvalidCurrency   = shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter code")
	ErrInvalidTaxRate    = shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100 with at most 4 decimals")
	ErrInvalidStatus     = shared.NewDomainError("INVALID_STATUS", "Status must be one of draft, pending, sent, paid, overdue")
	ErrInvalidName       = shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	ErrInvalidEmail      = shared.NewDomainError("INVALID_EMAIL", "Client email must be a valid address")
	ErrInvalidNumber     = shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
)
