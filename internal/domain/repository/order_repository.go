package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/domain/entity"
)

// OrderRepository defines the interface for order data operations.
// Lookups return (nil, nil) when the record does not exist.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	// GetByIDForUpdate locks the order row until the surrounding transaction ends
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Order, error)
	GetOpenByTable(ctx context.Context, tableRef string) (*entity.Order, error)
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	ListOpen(ctx context.Context) ([]entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderItemRepository defines the interface for order item data operations
type OrderItemRepository interface {
	Create(ctx context.Context, item *entity.OrderItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.OrderItem, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.OrderItem, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.OrderItem, error)
	Update(ctx context.Context, item *entity.OrderItem) error
	// MoveItems reassigns the given items to another order
	MoveItems(ctx context.Context, itemIDs []uuid.UUID, toOrderID uuid.UUID) (int64, error)
	// MoveAll reassigns every item of one order to another order
	MoveAll(ctx context.Context, fromOrderID, toOrderID uuid.UUID) (int64, error)
	CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
}
