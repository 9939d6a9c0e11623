package invoicing

import "strings"

// Company is the sender profile. It is embedded by value in every invoice.
type Company struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

// Validate requires every field
func (c Company) Validate() error {
	for _, f := range []string{c.Name, c.Address, c.City, c.Country, c.PostalCode} {
		if strings.TrimSpace(f) == "" {
			return ErrCompanyIncomplete
		}
	}
	return nil
}

// Locality renders "City, Country PostalCode".
func (c Company) Locality() string {
	return strings.TrimSpace(c.City + ", " + c.Country + " " + c.PostalCode)
}
