package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/domain/entity"
)

// ShiftRepository defines the interface for shift data operations
type ShiftRepository interface {
	// Create returns ErrDuplicate when the cashier or terminal already has an open shift
	Create(ctx context.Context, shift *entity.Shift) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Shift, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Shift, error)
	GetOpenByCashier(ctx context.Context, cashierID uuid.UUID) (*entity.Shift, error)
	GetOpenByTerminal(ctx context.Context, terminalID string) (*entity.Shift, error)
	Update(ctx context.Context, shift *entity.Shift) error
}

// PaymentRepository defines the interface for payment data operations.
// Payments are append-only.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByInvoice(ctx context.Context, invoiceID uuid.UUID) (*entity.Payment, error)
	// ListByShift returns payments ordered by creation time then id
	ListByShift(ctx context.Context, shiftID uuid.UUID) ([]entity.Payment, error)
}
