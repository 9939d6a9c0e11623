package printing

import (
	"context"

	"github.com/google/uuid"
)

// ExportJobRepository persists export jobs
type ExportJobRepository interface {
	// Save inserts or updates a job
	Save(ctx context.Context, job *ExportJob) error

	// FindByID returns shared.ErrNotFound for unknown jobs
	FindByID(ctx context.Context, ownerID string, id uuid.UUID) (*ExportJob, error)

	// FindByInvoice lists an invoice's jobs, newest first
	FindByInvoice(ctx context.Context, ownerID string, invoiceID uuid.UUID) ([]ExportJob, error)
}
