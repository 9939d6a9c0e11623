package models

import (
	"github.com/invoicesxpert/backend/internal/domain/invoicing"
)

// ClientModel is the persistence model for the Client aggregate.
type ClientModel struct {
	OwnedModel
	Name        string `gorm:"type:varchar(200);not null"`
	Email       string `gorm:"type:varchar(200);not null"`
	CompanyName string `gorm:"type:varchar(200)"`
	Phone       string `gorm:"type:varchar(50)"`
	Address     string `gorm:"type:text"`
	Notes       string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client
func (m *ClientModel) ToDomain() *invoicing.Client {
	c := &invoicing.Client{
		Name:        m.Name,
		Email:       m.Email,
		CompanyName: m.CompanyName,
		Phone:       m.Phone,
		Address:     m.Address,
		Notes:       m.Notes,
	}
	c.OwnedAggregateRoot = m.root()
	return c
}

// FromDomain populates the persistence model from a domain Client
func (m *ClientModel) FromDomain(c *invoicing.Client) {
	m.OwnedModel = ownedModel(c.OwnedAggregateRoot)
	m.Name = c.Name
	m.Email = c.Email
	m.CompanyName = c.CompanyName
	m.Phone = c.Phone
	m.Address = c.Address
	m.Notes = c.Notes
}

// ClientModelFromDomain creates a new persistence model from a domain Client
func ClientModelFromDomain(c *invoicing.Client) *ClientModel {
	m := &ClientModel{}
	m.FromDomain(c)
	return m
}
