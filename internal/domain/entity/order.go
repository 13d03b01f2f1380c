package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Order represents the running tab of one table
type Order struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	TableRef  string           `gorm:"size:50;not null;index" json:"table_ref"`
	Note      string           `gorm:"type:text" json:"note,omitempty"`
	CreatedBy uuid.UUID        `gorm:"type:uuid;not null;index" json:"created_by"`
	Status    enum.OrderStatus `gorm:"default:0;index" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsOpen reports whether items may still be added
func (o *Order) IsOpen() bool {
	return o.Status == enum.OrderStatusOpen
}

// AppendNote joins another order's note onto this one
func (o *Order) AppendNote(note string) {
	if note == "" {
		return
	}
	if o.Note == "" {
		o.Note = note
		return
	}
	o.Note = o.Note + "; " + note
}

// OrderItem represents a dish requested on an order at a captured unit price
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	DishID    uuid.UUID       `gorm:"type:uuid;not null" json:"dish_id"`
	DishName  string          `gorm:"size:255;not null" json:"dish_name"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice int64           `gorm:"not null" json:"unit_price"`
	Status    enum.ItemStatus `gorm:"default:0;index" json:"status"`
	// PreviousStatus is set while a void is pending so a rejection can restore it
	PreviousStatus *enum.ItemStatus `json:"previous_status,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new order item
func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal is quantity x unit price
func (i *OrderItem) LineTotal() int64 {
	return int64(i.Quantity) * i.UnitPrice
}

// Billable reports whether the line counts towards invoice totals
func (i *OrderItem) Billable() bool {
	return i.Status.Billable()
}
