package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Client DTOs
// =============================================================================

// CreateClientRequest represents a request to create a client
type CreateClientRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200"`
	Email       string `json:"email" binding:"required,email,max=200"`
	CompanyName string `json:"company_name" binding:"max=200"`
	Phone       string `json:"phone" binding:"max=50"`
	Address     string `json:"address" binding:"max=500"`
	Notes       string `json:"notes"`
}

// UpdateClientRequest represents a partial client update
type UpdateClientRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	Email       *string `json:"email" binding:"omitempty,email,max=200"`
	CompanyName *string `json:"company_name" binding:"omitempty,max=200"`
	Phone       *string `json:"phone" binding:"omitempty,max=50"`
	Address     *string `json:"address" binding:"omitempty,max=500"`
	Notes       *string `json:"notes"`
}

// ClientResponse represents a client
type ClientResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	CompanyName string    `json:"company_name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToClientResponse converts a domain client to a response
func ToClientResponse(c *invoicing.Client) ClientResponse {
	return ClientResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Email:       c.Email,
		CompanyName: c.CompanyName,
		Phone:       c.Phone,
		Address:     c.Address,
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// =============================================================================
// Invoice DTOs
// =============================================================================

// LineItemRequest is one row of an invoice form. Price accepts a JSON number
// or a numeric string.
type LineItemRequest struct {
	Description string          `json:"description" binding:"required,max=500"`
	Quantity    int             `json:"quantity" binding:"required,min=1,max=1000000"`
	Price       invoicing.Price `json:"price"`
}

// ClientSnapshotRequest is an inline recipient when no stored client is referenced
type ClientSnapshotRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Email       string `json:"email" binding:"omitempty,email,max=200"`
	CompanyName string `json:"company" binding:"max=200"`
	Phone       string `json:"phone" binding:"max=50"`
	Address     string `json:"address" binding:"max=500"`
}

// CompanyRequest is the sender block
type CompanyRequest struct {
	Name       string `json:"name" binding:"required,max=200"`
	Address    string `json:"address" binding:"required,max=500"`
	City       string `json:"city" binding:"required,max=100"`
	Country    string `json:"country" binding:"required,max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
}

// InvoiceRequest carries every editable invoice field. Either ClientID or
// Client must be set; a stored client is copied into the invoice by value.
type InvoiceRequest struct {
	ClientID  *uuid.UUID             `json:"client_id"`
	Client    *ClientSnapshotRequest `json:"client"`
	Company   CompanyRequest         `json:"company" binding:"required"`
	IssueDate string                 `json:"issue_date" binding:"required,isodate"`
	DueDate   string                 `json:"due_date" binding:"required,isodate"`
	Currency  string                 `json:"currency" binding:"omitempty,len=3,currency"`
	TaxRate   decimal.Decimal        `json:"tax_rate" binding:"gte=0,lte=100"`
	Notes     string                 `json:"notes"`
	Terms     string                 `json:"terms"`
	Template  string                 `json:"template"`
	Status    string                 `json:"status" binding:"omitempty,oneof=draft pending sent paid overdue"`
	Items     []LineItemRequest      `json:"items" binding:"required,min=1,dive"`
}

// UpdateStatusRequest changes the status label
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft pending sent paid overdue"`
}

// ListInvoicesRequest filters the invoice list
type ListInvoicesRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=draft pending sent paid overdue"`
	Search   string `form:"search"`
}

// LineItemResponse is one invoice row with its line total
type LineItemResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
	Total       string `json:"total"`
}

// InvoiceResponse represents an invoice with its computed totals
type InvoiceResponse struct {
	ID            string                   `json:"id"`
	InvoiceNumber string                   `json:"invoice_number"`
	IssueDate     string                   `json:"issue_date"`
	DueDate       string                   `json:"due_date"`
	Currency      string                   `json:"currency"`
	Status        string                   `json:"status"`
	Template      string                   `json:"template"`
	Notes         string                   `json:"notes,omitempty"`
	Terms         string                   `json:"terms,omitempty"`
	Client        invoicing.ClientSnapshot `json:"client"`
	Company       invoicing.Company        `json:"company"`
	Items         []LineItemResponse       `json:"items"`
	Totals        invoicing.DisplayTotals  `json:"totals"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

// ToInvoiceResponse converts a domain invoice to a response
func ToInvoiceResponse(inv *invoicing.Invoice) InvoiceResponse {
	items := make([]LineItemResponse, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = LineItemResponse{
			ID:          item.ID.String(),
			Description: item.Description,
			Quantity:    item.Quantity,
			Price:       item.UnitPrice.StringFixed(2),
			Total:       item.Total().StringFixed(2),
		}
	}
	return InvoiceResponse{
		ID:            inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Currency:      inv.Currency,
		Status:        inv.Status.String(),
		Template:      inv.Template,
		Notes:         inv.Notes,
		Terms:         inv.Terms,
		Client:        inv.Client,
		Company:       inv.Company,
		Items:         items,
		Totals:        inv.Totals().Display(),
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

// ToInvoiceResponses converts an invoice list
func ToInvoiceResponses(invoices []invoicing.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i])
	}
	return out
}

// =============================================================================
// Dashboard DTOs
// =============================================================================

// CurrencySummary holds money totals in a single currency
type CurrencySummary struct {
	Currency    string `json:"currency"`
	Paid        string `json:"paid"`
	Outstanding string `json:"outstanding"`
	Revenue     string `json:"revenue"`
}

// DashboardResponse is the overview shown on the home screen
type DashboardResponse struct {
	InvoiceCount   int               `json:"invoice_count"`
	ClientCount    int               `json:"client_count"`
	StatusCounts   map[string]int    `json:"status_counts"`
	Currencies     []CurrencySummary `json:"currencies"`
	RecentInvoices []InvoiceResponse `json:"recent_invoices"`
}
