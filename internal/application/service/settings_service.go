package service

import (
	"context"

	"github.com/shopspring/decimal"
)

// SettingsService exposes the billing configuration in effect
type SettingsService struct {
	*Billing
}

// NewSettingsService creates a new settings service
func NewSettingsService(b *Billing) *SettingsService {
	return &SettingsService{Billing: b}
}

// BillingSettings is what a POS needs to preview totals
type BillingSettings struct {
	VATRate           decimal.Decimal `json:"vat_rate"`
	VarianceTolerance int64           `json:"variance_tolerance"`
	MaxRetries        int             `json:"max_retries"`
}

// GetBillingSettings returns the VAT rate new invoices will use and the shift close tolerance
func (s *SettingsService) GetBillingSettings(ctx context.Context) *BillingSettings {
	return &BillingSettings{
		VATRate:           s.vatRate(ctx),
		VarianceTolerance: s.cfg.VarianceTolerance,
		MaxRetries:        s.cfg.MaxRetries,
	}
}
