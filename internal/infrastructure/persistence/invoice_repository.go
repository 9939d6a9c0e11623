package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/invoicesxpert/backend/internal/domain/shared"
	"github.com/invoicesxpert/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements invoicing.InvoiceRepository using GORM.
// Line items are stored in invoice_items and always loaded with the invoice.
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// FindAll returns the owner's invoices, oldest first
func (r *GormInvoiceRepository) FindAll(ctx context.Context, ownerID string) ([]invoicing.Invoice, error) {
	var rows []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID), preloadItems).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	invoices := make([]invoicing.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, nil
}

// FindByID finds an invoice with its items
func (r *GormInvoiceRepository) FindByID(ctx context.Context, ownerID string, id uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID), preloadItems).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find invoice: %w", err)
	}
	return model.ToDomain(), nil
}

// Lookup finds an invoice by ID whoever owns it
func (r *GormInvoiceRepository) Lookup(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Scopes(preloadItems).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up invoice: %w", err)
	}
	return model.ToDomain(), nil
}

// Add inserts the invoice and its items
func (r *GormInvoiceRepository) Add(ctx context.Context, inv *invoicing.Invoice) (*invoicing.Invoice, error) {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	model := models.InvoiceModelFromDomain(inv)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return model.ToDomain(), nil
}

// Update loads the invoice, applies patch and rewrites it with its items
func (r *GormInvoiceRepository) Update(ctx context.Context, ownerID string, id uuid.UUID, patch func(*invoicing.Invoice) error) (*invoicing.Invoice, error) {
	var updated *invoicing.Invoice
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.InvoiceModel
		if err := tx.Scopes(OwnerScope(ownerID), preloadItems).Where("id = ?", id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		inv := model.ToDomain()
		if err := patch(inv); err != nil {
			return err
		}
		inv.ID = id
		inv.OwnerID = ownerID

		model.FromDomain(inv)
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
		if err := tx.Omit("Items").Save(&model).Error; err != nil {
			return err
		}
		if len(model.Items) > 0 {
			if err := tx.Create(&model.Items).Error; err != nil {
				return err
			}
		}
		updated = model.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an invoice and its items
func (r *GormInvoiceRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Scopes(OwnerScope(ownerID)).Where("id = ?", id).Delete(&models.InvoiceModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItemModel{}).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete invoice: %w", err)
	}
	return deleted, nil
}

var _ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)
