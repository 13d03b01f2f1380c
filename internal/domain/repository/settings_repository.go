package repository

import (
	"context"
)

// SettingsRepository defines read access to the shared configuration store
type SettingsRepository interface {
	// GetValue returns the raw value and whether the key exists
	GetValue(ctx context.Context, key string) (string, bool, error)
}
