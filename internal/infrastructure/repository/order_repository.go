package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/domain/entity"
	"github.com/sangkips/tablebill-api/internal/domain/enum"
	domainRepo "github.com/sangkips/tablebill-api/internal/domain/repository"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) domainRepo.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	return translate(conn(ctx, r.db).Create(order).Error)
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return r.first(conn(ctx, r.db), "id = ?", id)
}

func (r *orderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return r.first(forUpdate(conn(ctx, r.db)), "id = ?", id)
}

func (r *orderRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Order, error) {
	var orders []entity.Order
	err := conn(ctx, r.db).Where("id IN ?", ids).Order("id").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetOpenByTable(ctx context.Context, tableRef string) (*entity.Order, error) {
	return r.first(forUpdate(conn(ctx, r.db)), "table_ref = ? AND status = ?", tableRef, enum.OrderStatusOpen)
}

func (r *orderRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return r.first(conn(ctx, r.db).Preload("Items", orderedItems), "id = ?", id)
}

func (r *orderRepository) ListOpen(ctx context.Context) ([]entity.Order, error) {
	var orders []entity.Order
	err := conn(ctx, r.db).
		Preload("Items", orderedItems).
		Where("status = ?", enum.OrderStatusOpen).
		Order("table_ref ASC, created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Update(ctx context.Context, order *entity.Order) error {
	return conn(ctx, r.db).Omit("Items").Save(order).Error
}

func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Delete(&entity.Order{}, "id = ?", id).Error
}

func (r *orderRepository) first(db *gorm.DB, query string, args ...interface{}) (*entity.Order, error) {
	var order entity.Order
	err := db.Where(query, args...).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

type orderItemRepository struct {
	db *gorm.DB
}

// NewOrderItemRepository creates a new order item repository
func NewOrderItemRepository(db *gorm.DB) domainRepo.OrderItemRepository {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) Create(ctx context.Context, item *entity.OrderItem) error {
	return conn(ctx, r.db).Create(item).Error
}

func (r *orderItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.OrderItem, error) {
	return r.first(conn(ctx, r.db), id)
}

func (r *orderItemRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.OrderItem, error) {
	return r.first(forUpdate(conn(ctx, r.db)), id)
}

func (r *orderItemRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.OrderItem, error) {
	var items []entity.OrderItem
	err := orderedItems(conn(ctx, r.db)).Where("order_id = ?", orderID).Find(&items).Error
	return items, err
}

func (r *orderItemRepository) Update(ctx context.Context, item *entity.OrderItem) error {
	return conn(ctx, r.db).Save(item).Error
}

func (r *orderItemRepository) MoveItems(ctx context.Context, itemIDs []uuid.UUID, toOrderID uuid.UUID) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	res := conn(ctx, r.db).Model(&entity.OrderItem{}).
		Where("id IN ?", itemIDs).
		Update("order_id", toOrderID)
	return res.RowsAffected, res.Error
}

func (r *orderItemRepository) MoveAll(ctx context.Context, fromOrderID, toOrderID uuid.UUID) (int64, error) {
	res := conn(ctx, r.db).Model(&entity.OrderItem{}).
		Where("order_id = ?", fromOrderID).
		Update("order_id", toOrderID)
	return res.RowsAffected, res.Error
}

func (r *orderItemRepository) CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.OrderItem{}).Where("order_id = ?", orderID).Count(&count).Error
	return count, err
}

func (r *orderItemRepository) first(db *gorm.DB, id uuid.UUID) (*entity.OrderItem, error) {
	var item entity.OrderItem
	err := db.First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}
