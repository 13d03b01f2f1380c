package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/domain/entity"
)

// VoidRequestRepository defines the interface for void request data operations
type VoidRequestRepository interface {
	Create(ctx context.Context, request *entity.VoidRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.VoidRequest, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.VoidRequest, error)
	GetPendingByItem(ctx context.Context, itemID uuid.UUID) (*entity.VoidRequest, error)
	ListPending(ctx context.Context) ([]entity.VoidRequest, error)
	Update(ctx context.Context, request *entity.VoidRequest) error
}
