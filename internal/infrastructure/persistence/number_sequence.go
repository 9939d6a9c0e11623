package persistence

import (
	"context"
	"fmt"

	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/invoicesxpert/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNumberSequence keeps invoice number counters in invoice_sequences.
// The counter row is locked with SELECT ... FOR UPDATE while it is bumped.
type GormNumberSequence struct {
	db *gorm.DB
}

// NewGormNumberSequence creates a new GormNumberSequence
func NewGormNumberSequence(db *gorm.DB) *GormNumberSequence {
	return &GormNumberSequence{db: db}
}

// Next increments and returns the owner's counter for year
func (s *GormNumberSequence) Next(ctx context.Context, ownerID string, year int) (int64, error) {
	var next int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := models.InvoiceSequenceModel{OwnerID: ownerID, Year: year}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}

		var row models.InvoiceSequenceModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("owner_id = ? AND year = ?", ownerID, year).
			First(&row).Error; err != nil {
			return err
		}

		next = row.Value + 1
		return tx.Model(&models.InvoiceSequenceModel{}).
			Where("owner_id = ? AND year = ?", ownerID, year).
			Update("value", next).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to advance invoice sequence: %w", err)
	}
	return next, nil
}

var _ invoicing.NumberSequence = (*GormNumberSequence)(nil)
