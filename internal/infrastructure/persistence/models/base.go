package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/shared"
)

// OwnedModel holds the columns every owner-scoped table shares. Version is
// the optimistic lock the repositories compare on update.
type OwnedModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID   string    `gorm:"type:varchar(64);not null;index"`
	Version   int       `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func ownedModel(o shared.OwnedAggregateRoot) OwnedModel {
	return OwnedModel{
		ID:        o.ID,
		OwnerID:   o.OwnerID,
		Version:   o.Version,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func (m *OwnedModel) root() shared.OwnedAggregateRoot {
	var o shared.OwnedAggregateRoot
	o.ID = m.ID
	o.CreatedAt = m.CreatedAt
	o.UpdatedAt = m.UpdatedAt
	o.Version = m.Version
	o.OwnerID = m.OwnerID
	return o
}
