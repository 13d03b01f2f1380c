package entity

import (
	"time"

	"github.com/google/uuid"
)

// Dish is the read-only catalog projection used for price capture.
// The menu service owns this table.
type Dish struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Price     int64     `gorm:"not null" json:"price"`
	Available bool      `gorm:"default:true" json:"available"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Dish model
func (Dish) TableName() string {
	return "dishes"
}
