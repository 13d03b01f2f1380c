package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/domain/entity"
)

// DishRepository is the read-only price lookup into the menu catalog
type DishRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Dish, error)
}

// StaffRepository is the read-only lookup into the staff store
type StaffRepository interface {
	// GetByUsername loads the staff member with roles and permissions
	GetByUsername(ctx context.Context, username string) (*entity.Staff, error)
}

// AuditRepository persists audit entries outside any billing transaction
type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditLog) error
}
