package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() uuid.UUID
	GetUpdatedAt() time.Time
}

// BaseEntity provides the identifier and last-updated timestamp shared by
// products, sales and debtors.
type BaseEntity struct {
	ID        uuid.UUID
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// GetUpdatedAt returns the last update timestamp
func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// Touch moves UpdatedAt to now.
func (e *BaseEntity) Touch() {
	e.UpdatedAt = Now()
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	return BaseEntity{
		ID:        uuid.New(),
		UpdatedAt: Now(),
	}
}

// Now returns the current time truncated to millisecond precision, matching
// what the store persists.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
