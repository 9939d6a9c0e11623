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

// GormClientRepository implements invoicing.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindAll returns the owner's clients, oldest first
func (r *GormClientRepository) FindAll(ctx context.Context, ownerID string) ([]invoicing.Client, error) {
	var rows []models.ClientModel
	if err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	clients := make([]invoicing.Client, len(rows))
	for i := range rows {
		clients[i] = *rows[i].ToDomain()
	}
	return clients, nil
}

// FindByID finds a client by ID within an owner
func (r *GormClientRepository) FindByID(ctx context.Context, ownerID string, id uuid.UUID) (*invoicing.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return model.ToDomain(), nil
}

// Add inserts a new client
func (r *GormClientRepository) Add(ctx context.Context, client *invoicing.Client) (*invoicing.Client, error) {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	model := models.ClientModelFromDomain(client)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return model.ToDomain(), nil
}

// Update loads the client, applies patch and saves it in one transaction
func (r *GormClientRepository) Update(ctx context.Context, ownerID string, id uuid.UUID, patch func(*invoicing.Client) error) (*invoicing.Client, error) {
	var updated *invoicing.Client
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.ClientModel
		if err := tx.Scopes(OwnerScope(ownerID)).Where("id = ?", id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		client := model.ToDomain()
		if err := patch(client); err != nil {
			return err
		}
		client.OwnerID = ownerID
		client.ID = id

		model.FromDomain(client)
		if err := tx.Save(&model).Error; err != nil {
			return err
		}
		updated = model.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a client. Invoices keep their snapshot of it.
func (r *GormClientRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Where("id = ?", id).
		Delete(&models.ClientModel{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete client: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

var _ invoicing.ClientRepository = (*GormClientRepository)(nil)
