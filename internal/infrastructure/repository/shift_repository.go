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

type shiftRepository struct {
	db *gorm.DB
}

// NewShiftRepository creates a new shift repository
func NewShiftRepository(db *gorm.DB) domainRepo.ShiftRepository {
	return &shiftRepository{db: db}
}

func (r *shiftRepository) Create(ctx context.Context, shift *entity.Shift) error {
	return translate(conn(ctx, r.db).Omit("Payments").Create(shift).Error)
}

func (r *shiftRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Shift, error) {
	return r.first(conn(ctx, r.db), "id = ?", id)
}

func (r *shiftRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Shift, error) {
	return r.first(forUpdate(conn(ctx, r.db)), "id = ?", id)
}

func (r *shiftRepository) GetOpenByCashier(ctx context.Context, cashierID uuid.UUID) (*entity.Shift, error) {
	return r.first(conn(ctx, r.db), "cashier_id = ? AND status = ?", cashierID, enum.ShiftStatusOpen)
}

func (r *shiftRepository) GetOpenByTerminal(ctx context.Context, terminalID string) (*entity.Shift, error) {
	return r.first(conn(ctx, r.db), "terminal_id = ? AND status = ?", terminalID, enum.ShiftStatusOpen)
}

func (r *shiftRepository) Update(ctx context.Context, shift *entity.Shift) error {
	return translate(conn(ctx, r.db).Omit("Payments").Save(shift).Error)
}

func (r *shiftRepository) first(db *gorm.DB, query string, args ...interface{}) (*entity.Shift, error) {
	var shift entity.Shift
	err := db.Where(query, args...).First(&shift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) domainRepo.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	return translate(conn(ctx, r.db).Create(payment).Error)
}

func (r *paymentRepository) GetByInvoice(ctx context.Context, invoiceID uuid.UUID) (*entity.Payment, error) {
	var payment entity.Payment
	err := conn(ctx, r.db).First(&payment, "invoice_id = ?", invoiceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) ListByShift(ctx context.Context, shiftID uuid.UUID) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := conn(ctx, r.db).
		Where("shift_id = ?", shiftID).
		Order("created_at ASC, id ASC").
		Find(&payments).Error
	return payments, err
}
