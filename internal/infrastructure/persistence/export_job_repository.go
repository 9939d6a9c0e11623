package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/printing"
	"github.com/invoicesxpert/backend/internal/domain/shared"
	"github.com/invoicesxpert/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormExportJobRepository implements printing.ExportJobRepository using GORM
type GormExportJobRepository struct {
	db *gorm.DB
}

// NewGormExportJobRepository creates a new GormExportJobRepository
func NewGormExportJobRepository(db *gorm.DB) *GormExportJobRepository {
	return &GormExportJobRepository{db: db}
}

// Save inserts or updates an export job
func (r *GormExportJobRepository) Save(ctx context.Context, job *printing.ExportJob) error {
	model := models.ExportJobModelFromDomain(job)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save export job: %w", err)
	}
	return nil
}

// FindByID finds an export job within an owner
func (r *GormExportJobRepository) FindByID(ctx context.Context, ownerID string, id uuid.UUID) (*printing.ExportJob, error) {
	var model models.ExportJobModel
	if err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find export job: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByInvoice lists an invoice's export jobs, newest first
func (r *GormExportJobRepository) FindByInvoice(ctx context.Context, ownerID string, invoiceID uuid.UUID) ([]printing.ExportJob, error) {
	var rows []models.ExportJobModel
	if err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Where("invoice_id = ?", invoiceID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list export jobs: %w", err)
	}

	jobs := make([]printing.ExportJob, len(rows))
	for i := range rows {
		jobs[i] = *rows[i].ToDomain()
	}
	return jobs, nil
}

var _ printing.ExportJobRepository = (*GormExportJobRepository)(nil)
