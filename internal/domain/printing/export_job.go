package printing

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/shared"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// HostTarget is the id of the container that holds one invoice during export.
func HostTarget(invoiceID uuid.UUID) string {
	return fmt.Sprintf("invoice-%s-pdf", invoiceID)
}

// FileNameFor returns the download name Invoice-<number>.pdf with any
// character outside [A-Za-z0-9._-] replaced by an underscore.
func FileNameFor(invoiceNumber string) string {
	return "Invoice-" + unsafeFileChars.ReplaceAllString(invoiceNumber, "_") + ".pdf"
}

// ExportJob tracks one PDF export of one invoice.
type ExportJob struct {
	shared.OwnedAggregateRoot
	InvoiceID     uuid.UUID    `json:"invoice_id"`
	InvoiceNumber string       `json:"invoice_number"`
	Template      string       `json:"template"`
	HostTarget    string       `json:"host_target"`
	Paper         PaperSize    `json:"paper"`
	Status        ExportStatus `json:"status"`
	FileName      string       `json:"file_name"`
	PageCount     int          `json:"page_count"`
	SizeBytes     int64        `json:"size_bytes"`
	ArchiveURL    string       `json:"archive_url,omitempty"`
	ErrorMessage  string       `json:"error_message,omitempty"`
	FailedStage   ExportStatus `json:"failed_stage,omitempty"`
	FinishedAt    *time.Time   `json:"finished_at,omitempty"`
}

// NewExportJob creates an idle export job
func NewExportJob(ownerID string, invoiceID uuid.UUID, invoiceNumber, template string) (*ExportJob, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}

	return &ExportJob{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		InvoiceID:          invoiceID,
		InvoiceNumber:      invoiceNumber,
		Template:           template,
		HostTarget:         HostTarget(invoiceID),
		Paper:              PaperSizeA4,
		Status:             ExportStatusIdle,
		FileName:           FileNameFor(invoiceNumber),
	}, nil
}

// StartRendering moves Idle -> Rendering
func (j *ExportJob) StartRendering() error {
	return j.transition(ExportStatusRendering)
}

// MarkMounted moves Rendering -> Mounted
func (j *ExportJob) MarkMounted() error {
	return j.transition(ExportStatusMounted)
}

// MarkCaptured moves Mounted -> Captured
func (j *ExportJob) MarkCaptured() error {
	return j.transition(ExportStatusCaptured)
}

// MarkAssembled moves Captured -> Assembled and records the document shape
func (j *ExportJob) MarkAssembled(pageCount int, sizeBytes int64) error {
	if pageCount < 1 {
		return shared.NewDomainError("INVALID_PAGE_COUNT", "An assembled document has at least one page")
	}
	if err := j.transition(ExportStatusAssembled); err != nil {
		return err
	}
	j.PageCount = pageCount
	j.SizeBytes = sizeBytes
	j.AddDomainEvent(NewExportCompletedEvent(j))
	return nil
}

// MarkDownloaded moves Assembled -> Downloaded once the bytes are handed over
func (j *ExportJob) MarkDownloaded() error {
	if err := j.transition(ExportStatusDownloaded); err != nil {
		return err
	}
	now := time.Now()
	j.FinishedAt = &now
	return nil
}

// Fail moves Rendering, Mounted or Captured -> Failed
func (j *ExportJob) Fail(message string) error {
	if !j.Status.CanTransitionTo(ExportStatusFailed) {
		return shared.ErrInvalidState.WithMessage(
			"Cannot fail an export in status: "+j.Status.String())
	}
	stage := j.Status
	if err := j.transition(ExportStatusFailed); err != nil {
		return err
	}
	j.FailedStage = stage
	j.ErrorMessage = message
	now := time.Now()
	j.FinishedAt = &now
	j.AddDomainEvent(NewExportFailedEvent(j))
	return nil
}

// SetArchiveURL records where an archived copy of the PDF lives
func (j *ExportJob) SetArchiveURL(url string) {
	j.ArchiveURL = url
	j.Touch()
}

// IsTerminal returns true if the job is in a terminal state
func (j *ExportJob) IsTerminal() bool {
	return j.Status.IsTerminal()
}

func (j *ExportJob) transition(target ExportStatus) error {
	if !j.Status.CanTransitionTo(target) {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Cannot move export from %s to %s", j.Status, target))
	}
	old := j.Status
	j.Status = target
	j.Touch()
	j.IncrementVersion()
	j.AddDomainEvent(NewExportStatusChangedEvent(j, old, target))
	return nil
}
