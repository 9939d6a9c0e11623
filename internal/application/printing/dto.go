package printing

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/printing"
)

// PDFContentType is the media type of every exported document
const PDFContentType = "application/pdf"

// ExportRequest selects the invoice and the style to export it in
type ExportRequest struct {
	InvoiceID uuid.UUID
	// Template overrides the style remembered on the invoice when set
	Template string `form:"template"`
}

// ExportResult is an assembled PDF ready to be written to the client
type ExportResult struct {
	Job         *printing.ExportJob
	PDF         []byte
	FileName    string
	PageCount   int
	ContentType string
}

// Size returns the PDF size in bytes
func (r *ExportResult) Size() int {
	return len(r.PDF)
}

// ExportJobResponse represents an export job
type ExportJobResponse struct {
	ID            string     `json:"id"`
	InvoiceID     string     `json:"invoice_id"`
	InvoiceNumber string     `json:"invoice_number"`
	Template      string     `json:"template"`
	Status        string     `json:"status"`
	FileName      string     `json:"file_name"`
	Paper         string     `json:"paper"`
	PageCount     int        `json:"page_count,omitempty"`
	SizeBytes     int64      `json:"size_bytes,omitempty"`
	ArchiveURL    string     `json:"archive_url,omitempty"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	FailedStage   string     `json:"failed_stage,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

// ToExportJobResponse converts an export job to its response
func ToExportJobResponse(job *printing.ExportJob) ExportJobResponse {
	return ExportJobResponse{
		ID:            job.ID.String(),
		InvoiceID:     job.InvoiceID.String(),
		InvoiceNumber: job.InvoiceNumber,
		Template:      job.Template,
		Status:        job.Status.String(),
		FileName:      job.FileName,
		Paper:         job.Paper.String(),
		PageCount:     job.PageCount,
		SizeBytes:     job.SizeBytes,
		ArchiveURL:    job.ArchiveURL,
		ErrorMessage:  job.ErrorMessage,
		FailedStage:   job.FailedStage.String(),
		CreatedAt:     job.CreatedAt,
		FinishedAt:    job.FinishedAt,
	}
}

// ToExportJobResponses converts a job list
func ToExportJobResponses(jobs []printing.ExportJob) []ExportJobResponse {
	out := make([]ExportJobResponse, len(jobs))
	for i := range jobs {
		out[i] = ToExportJobResponse(&jobs[i])
	}
	return out
}

// PreviewResponse is a rendered style preview
type PreviewResponse struct {
	Template string `json:"template"`
	HTML     string `json:"html"`
}
