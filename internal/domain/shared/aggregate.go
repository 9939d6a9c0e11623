package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity and timestamps.
type BaseEntity struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

func (e *BaseEntity) GetID() uuid.UUID { return e.ID }

// Touch bumps UpdatedAt.
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// BaseAggregateRoot adds a version counter and the events raised since the
// last save. Version starts at 1 and grows by one per edit.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `json:"version"`

	pending []DomainEvent
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent queues e for publication after the aggregate is stored.
func (a *BaseAggregateRoot) AddDomainEvent(e DomainEvent) {
	a.pending = append(a.pending, e)
}

// GetDomainEvents returns the queued events without draining them.
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.pending
}

func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.pending = nil
}

// PullDomainEvents drains the queue.
func (a *BaseAggregateRoot) PullDomainEvents() []DomainEvent {
	events := a.pending
	a.pending = nil
	return events
}

// OwnedAggregateRoot belongs to one session owner; stores never return it
// to anyone else.
type OwnedAggregateRoot struct {
	BaseAggregateRoot
	OwnerID string `json:"owner_id"`
}

func NewOwnedAggregateRoot(ownerID string) OwnedAggregateRoot {
	return OwnedAggregateRoot{BaseAggregateRoot: NewBaseAggregateRoot(), OwnerID: ownerID}
}

// OwnedBy reports whether ownerID may see the aggregate.
func (o *OwnedAggregateRoot) OwnedBy(ownerID string) bool {
	return o.OwnerID == ownerID
}
