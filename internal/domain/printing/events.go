package printing

import (
	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/shared"
)

// AggregateTypeExportJob identifies export job events
const AggregateTypeExportJob = "ExportJob"

// Event type constants for ExportJob
const (
	EventTypeExportStatusChanged = "ExportStatusChanged"
	EventTypeExportCompleted     = "ExportCompleted"
	EventTypeExportFailed        = "ExportFailed"
)

// ExportStatusChangedEvent is published on every stage transition
type ExportStatusChangedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID    `json:"invoice_id"`
	From      ExportStatus `json:"from"`
	To        ExportStatus `json:"to"`
}

// NewExportStatusChangedEvent creates a new ExportStatusChangedEvent
func NewExportStatusChangedEvent(j *ExportJob, from, to ExportStatus) *ExportStatusChangedEvent {
	return &ExportStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExportStatusChanged, AggregateTypeExportJob, j.ID, j.OwnerID),
		InvoiceID:       j.InvoiceID,
		From:            from,
		To:              to,
	}
}

// ExportCompletedEvent is published once the PDF is assembled
type ExportCompletedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Template      string    `json:"template"`
	PageCount     int       `json:"page_count"`
	SizeBytes     int64     `json:"size_bytes"`
}

// NewExportCompletedEvent creates a new ExportCompletedEvent
func NewExportCompletedEvent(j *ExportJob) *ExportCompletedEvent {
	return &ExportCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExportCompleted, AggregateTypeExportJob, j.ID, j.OwnerID),
		InvoiceID:       j.InvoiceID,
		InvoiceNumber:   j.InvoiceNumber,
		Template:        j.Template,
		PageCount:       j.PageCount,
		SizeBytes:       j.SizeBytes,
	}
}

// ExportFailedEvent is published when an export fails
type ExportFailedEvent struct {
	shared.BaseDomainEvent
	InvoiceID    uuid.UUID    `json:"invoice_id"`
	Template     string       `json:"template"`
	FailedStage  ExportStatus `json:"failed_stage"`
	ErrorMessage string       `json:"error_message"`
}

// NewExportFailedEvent creates a new ExportFailedEvent
func NewExportFailedEvent(j *ExportJob) *ExportFailedEvent {
	return &ExportFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExportFailed, AggregateTypeExportJob, j.ID, j.OwnerID),
		InvoiceID:       j.InvoiceID,
		Template:        j.Template,
		FailedStage:     j.FailedStage,
		ErrorMessage:    j.ErrorMessage,
	}
}
