package invoicing

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/shared"
)

var validate = validator.New()

// Client is a billable party. Clients are hard-deleted and never versioned.
type Client struct {
	shared.OwnedAggregateRoot
	Name        string `json:"name"`
	Email       string `json:"email"`
	CompanyName string `json:"company_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// ClientParams carries the editable client fields
type ClientParams struct {
	Name        string
	Email       string
	CompanyName string
	Phone       string
	Address     string
	Notes       string
}

// NewClient creates a validated client
func NewClient(ownerID string, p ClientParams) (*Client, error) {
	c := &Client{OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID)}
	if err := c.apply(p); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the editable fields
func (c *Client) Update(p ClientParams) error {
	if err := c.apply(p); err != nil {
		return err
	}
	c.Touch()
	c.IncrementVersion()
	return nil
}

func (c *Client) apply(p ClientParams) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return ErrInvalidName
	}
	email := strings.TrimSpace(p.Email)
	if err := validate.Var(email, "required,email"); err != nil {
		return ErrInvalidEmail
	}
	c.Name = name
	c.Email = email
	c.CompanyName = strings.TrimSpace(p.CompanyName)
	c.Phone = strings.TrimSpace(p.Phone)
	c.Address = strings.TrimSpace(p.Address)
	c.Notes = p.Notes
	return nil
}

// Snapshot copies the client into the shape an invoice stores by value.
func (c *Client) Snapshot() ClientSnapshot {
	id := c.ID
	return ClientSnapshot{
		ClientID:    &id,
		Name:        c.Name,
		Email:       c.Email,
		CompanyName: c.CompanyName,
		Phone:       c.Phone,
		Address:     c.Address,
	}
}

// ClientSnapshot is the recipient block frozen into an invoice at creation.
type ClientSnapshot struct {
	ClientID    *uuid.UUID `json:"client_id,omitempty"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	CompanyName string     `json:"company,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
}

// Validate requires at least a name
func (s ClientSnapshot) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrClientRequired
	}
	return nil
}

func (s ClientSnapshot) clone() ClientSnapshot {
	out := s
	if s.ClientID != nil {
		id := *s.ClientID
		out.ClientID = &id
	}
	return out
}
