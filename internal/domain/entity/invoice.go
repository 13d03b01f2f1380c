package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice is the payable projection of exactly one order.
// Totals are only ever written by the billing calculator.
type Invoice struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceNo     string             `gorm:"size:100;unique;not null" json:"invoice_no"`
	OrderID       uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	SubTotal      int64              `gorm:"not null;default:0" json:"sub_total"`
	Discount      int64              `gorm:"not null;default:0" json:"discount"`
	VATRate       decimal.Decimal    `gorm:"type:numeric(5,2);not null;default:0" json:"vat_rate"`
	Tax           int64              `gorm:"not null;default:0" json:"tax"`
	GrandTotal    int64              `gorm:"not null;default:0" json:"grand_total"`
	Status        enum.InvoiceStatus `gorm:"default:0;index" json:"status"`
	PaymentMethod enum.PaymentMethod `gorm:"size:20" json:"payment_method,omitempty"`
	PaidAt        *time.Time         `json:"paid_at,omitempty"`
	CreatedAt     time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`

	// Relationships
	Order *Order `gorm:"foreignKey:OrderID" json:"order,omitempty"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// IsPaid reports whether the invoice has been settled
func (i *Invoice) IsPaid() bool {
	return i.Status == enum.InvoiceStatusPaid
}

// Balanced reports whether grand total agrees with its components
func (i *Invoice) Balanced() bool {
	return i.GrandTotal == i.SubTotal-i.Discount+i.Tax
}
