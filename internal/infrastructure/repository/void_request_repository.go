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

type voidRequestRepository struct {
	db *gorm.DB
}

// NewVoidRequestRepository creates a new void request repository
func NewVoidRequestRepository(db *gorm.DB) domainRepo.VoidRequestRepository {
	return &voidRequestRepository{db: db}
}

func (r *voidRequestRepository) Create(ctx context.Context, request *entity.VoidRequest) error {
	return conn(ctx, r.db).Omit("OrderItem").Create(request).Error
}

func (r *voidRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.VoidRequest, error) {
	return r.first(conn(ctx, r.db).Preload("OrderItem"), "id = ?", id)
}

func (r *voidRequestRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.VoidRequest, error) {
	return r.first(forUpdate(conn(ctx, r.db)), "id = ?", id)
}

func (r *voidRequestRepository) GetPendingByItem(ctx context.Context, itemID uuid.UUID) (*entity.VoidRequest, error) {
	return r.first(forUpdate(conn(ctx, r.db)), "order_item_id = ? AND status = ?", itemID, enum.VoidStatusPending)
}

func (r *voidRequestRepository) ListPending(ctx context.Context) ([]entity.VoidRequest, error) {
	var requests []entity.VoidRequest
	err := conn(ctx, r.db).
		Preload("OrderItem").
		Where("status = ?", enum.VoidStatusPending).
		Order("created_at ASC").
		Find(&requests).Error
	return requests, err
}

func (r *voidRequestRepository) Update(ctx context.Context, request *entity.VoidRequest) error {
	return conn(ctx, r.db).Omit("OrderItem").Save(request).Error
}

func (r *voidRequestRepository) first(db *gorm.DB, query string, args ...interface{}) (*entity.VoidRequest, error) {
	var request entity.VoidRequest
	err := db.Where(query, args...).First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}
