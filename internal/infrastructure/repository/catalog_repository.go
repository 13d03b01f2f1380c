package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tablebill-api/internal/domain/repository"
	"gorm.io/gorm"
)

type dishRepository struct {
	db *gorm.DB
}

// NewDishRepository creates a read-only dish catalog repository
func NewDishRepository(db *gorm.DB) domainRepo.DishRepository {
	return &dishRepository{db: db}
}

func (r *dishRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Dish, error) {
	var dish entity.Dish
	err := conn(ctx, r.db).First(&dish, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &dish, nil
}

type staffRepository struct {
	db *gorm.DB
}

// NewStaffRepository creates a read-only staff repository
func NewStaffRepository(db *gorm.DB) domainRepo.StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) GetByUsername(ctx context.Context, username string) (*entity.Staff, error) {
	var staff entity.Staff
	err := conn(ctx, r.db).
		Preload("Roles.Permissions").
		First(&staff, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit log repository. Writes never join
// a billing transaction.
func NewAuditRepository(db *gorm.DB) domainRepo.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *entity.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
