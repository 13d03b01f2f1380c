package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Shift is one cashier session on one terminal
type Shift struct {
	ID           uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	CashierID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"cashier_id"`
	TerminalID   string           `gorm:"size:100;not null;index" json:"terminal_id"`
	OpeningFloat int64            `gorm:"not null" json:"opening_float"`
	OpenedAt     time.Time        `gorm:"not null" json:"opened_at"`
	ClosedAt     *time.Time       `json:"closed_at,omitempty"`
	CountedCash  *int64           `json:"counted_cash,omitempty"`
	CloseNote    string           `gorm:"type:text" json:"close_note,omitempty"`
	Status       enum.ShiftStatus `gorm:"size:20;not null;default:'open';index" json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	// Relationships
	Payments []Payment `gorm:"foreignKey:ShiftID" json:"payments,omitempty"`
}

// BeforeCreate generates a UUID before creating a new shift
func (s *Shift) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Shift model
func (Shift) TableName() string {
	return "shifts"
}

// IsOpen reports whether payments may still be attached
func (s *Shift) IsOpen() bool {
	return s.Status == enum.ShiftStatusOpen
}

// Payment is an immutable record of money received against one invoice
type Payment struct {
	ID         uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID  uuid.UUID          `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ShiftID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"shift_id"`
	Amount     int64              `gorm:"not null" json:"amount"`
	Method     enum.PaymentMethod `gorm:"size:20;not null" json:"method"`
	RecordedBy uuid.UUID          `gorm:"type:uuid;not null" json:"recorded_by"`
	CreatedAt  time.Time          `gorm:"index" json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
