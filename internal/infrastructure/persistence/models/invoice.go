package models

import (
	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate. The client
// and company snapshots are flattened into columns.
type InvoiceModel struct {
	OwnedModel
	InvoiceNumber string          `gorm:"type:varchar(50);not null;index"`
	IssueDate     string          `gorm:"type:varchar(10);not null"`
	DueDate       string          `gorm:"type:varchar(10);not null"`
	Currency      string          `gorm:"type:varchar(3);not null;default:'USD'"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
	Notes         string          `gorm:"type:text"`
	Terms         string          `gorm:"type:text"`
	Template      string          `gorm:"type:varchar(50)"`
	Status        string          `gorm:"type:varchar(20);not null;default:'draft'"`

	ClientID          *uuid.UUID `gorm:"type:uuid;index"`
	ClientName        string     `gorm:"type:varchar(200);not null"`
	ClientEmail       string     `gorm:"type:varchar(200)"`
	ClientCompanyName string     `gorm:"type:varchar(200)"`
	ClientPhone       string     `gorm:"type:varchar(50)"`
	ClientAddress     string     `gorm:"type:text"`

	CompanyName       string `gorm:"type:varchar(200);not null"`
	CompanyAddress    string `gorm:"type:text;not null"`
	CompanyCity       string `gorm:"type:varchar(100);not null"`
	CompanyCountry    string `gorm:"type:varchar(100);not null"`
	CompanyPostalCode string `gorm:"type:varchar(20);not null"`

	Items []InvoiceItemModel `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceItemModel is one line item row. Position keeps the entry order.
type InvoiceItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null"`
	Description string          `gorm:"type:text;not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain Invoice. Items must be
// loaded and ordered by position.
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	inv := &invoicing.Invoice{
		InvoiceNumber: m.InvoiceNumber,
		IssueDate:     m.IssueDate,
		DueDate:       m.DueDate,
		Currency:      m.Currency,
		TaxRate:       m.TaxRate,
		Notes:         m.Notes,
		Terms:         m.Terms,
		Template:      m.Template,
		Status:        invoicing.Status(m.Status),
		Client: invoicing.ClientSnapshot{
			ClientID:    m.ClientID,
			Name:        m.ClientName,
			Email:       m.ClientEmail,
			CompanyName: m.ClientCompanyName,
			Phone:       m.ClientPhone,
			Address:     m.ClientAddress,
		},
		Company: invoicing.Company{
			Name:       m.CompanyName,
			Address:    m.CompanyAddress,
			City:       m.CompanyCity,
			Country:    m.CompanyCountry,
			PostalCode: m.CompanyPostalCode,
		},
		Items: make([]invoicing.LineItem, len(m.Items)),
	}
	inv.OwnedAggregateRoot = m.root()
	for i, item := range m.Items {
		inv.Items[i] = invoicing.LineItem{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   invoicing.NewPrice(item.UnitPrice),
		}
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice
func (m *InvoiceModel) FromDomain(inv *invoicing.Invoice) {
	m.OwnedModel = ownedModel(inv.OwnedAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.Currency = inv.Currency
	m.TaxRate = inv.TaxRate
	m.Notes = inv.Notes
	m.Terms = inv.Terms
	m.Template = inv.Template
	m.Status = inv.Status.String()

	m.ClientID = inv.Client.ClientID
	m.ClientName = inv.Client.Name
	m.ClientEmail = inv.Client.Email
	m.ClientCompanyName = inv.Client.CompanyName
	m.ClientPhone = inv.Client.Phone
	m.ClientAddress = inv.Client.Address

	m.CompanyName = inv.Company.Name
	m.CompanyAddress = inv.Company.Address
	m.CompanyCity = inv.Company.City
	m.CompanyCountry = inv.Company.Country
	m.CompanyPostalCode = inv.Company.PostalCode

	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i, item := range inv.Items {
		m.Items[i] = InvoiceItemModel{
			ID:          item.ID,
			InvoiceID:   inv.ID,
			Position:    i,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.Decimal,
		}
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}
