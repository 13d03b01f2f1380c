package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/domain/enum"
	"gorm.io/gorm"
)

// VoidRequest asks a manager to exclude one order item from billing
type VoidRequest struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderItemID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_item_id"`
	RequestedBy    uuid.UUID       `gorm:"type:uuid;not null" json:"requested_by"`
	Reason         string          `gorm:"type:text;not null" json:"reason"`
	PreviousStatus enum.ItemStatus `gorm:"not null" json:"previous_status"`
	Status         enum.VoidStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	DecidedBy      *uuid.UUID      `gorm:"type:uuid" json:"decided_by,omitempty"`
	DecisionReason string          `gorm:"type:text" json:"decision_reason,omitempty"`
	DecidedAt      *time.Time      `json:"decided_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Relationships
	OrderItem *OrderItem `gorm:"foreignKey:OrderItemID" json:"order_item,omitempty"`
}

// BeforeCreate generates a UUID before creating a new void request
func (v *VoidRequest) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the VoidRequest model
func (VoidRequest) TableName() string {
	return "void_requests"
}

// Decide records the terminal decision on the request
func (v *VoidRequest) Decide(status enum.VoidStatus, by uuid.UUID, reason string, at time.Time) {
	v.Status = status
	v.DecidedBy = &by
	v.DecisionReason = reason
	v.DecidedAt = &at
}
