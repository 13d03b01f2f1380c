package entity

import "time"

// Setting is a key/value entry of the shared configuration store
type Setting struct {
	Key       string    `gorm:"size:100;primary_key" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Setting model
func (Setting) TableName() string {
	return "settings"
}

// SettingVATRate is the key holding the VAT percentage
const SettingVATRate = "vat_rate"
