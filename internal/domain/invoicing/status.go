package invoicing

import "strings"

// Status is a display label only. Nothing in the system moves an invoice
// between statuses on its own.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// IsValid checks if the Status is a known label
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusSent, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsPaid reports whether the invoice counts toward the paid total.
func (s Status) IsPaid() bool {
	return s == StatusPaid
}

// ParseStatus normalizes case and defaults an empty label to draft.
func ParseStatus(s string) (Status, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return StatusDraft, nil
	}
	st := Status(s)
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// AllStatuses returns every label in display order
func AllStatuses() []Status {
	return []Status{StatusDraft, StatusPending, StatusSent, StatusPaid, StatusOverdue}
}
