package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tablebill-api/internal/domain/repository"
	"gorm.io/gorm"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	return translate(conn(ctx, r.db).Omit("Order").Create(invoice).Error)
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.first(conn(ctx, r.db), "id = ?", id)
}

func (r *invoiceRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.first(forUpdate(conn(ctx, r.db)), "id = ?", id)
}

func (r *invoiceRepository) GetByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]entity.Invoice, error) {
	var invoices []entity.Invoice
	err := forUpdate(conn(ctx, r.db)).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*entity.Invoice, error) {
	return r.first(conn(ctx, r.db), "order_id = ?", orderID)
}

func (r *invoiceRepository) GetByOrderIDForUpdate(ctx context.Context, orderID uuid.UUID) (*entity.Invoice, error) {
	return r.first(forUpdate(conn(ctx, r.db)), "order_id = ?", orderID)
}

func (r *invoiceRepository) GetWithOrder(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.first(conn(ctx, r.db).
		Preload("Order").
		Preload("Order.Items", orderedItems), "id = ?", id)
}

func (r *invoiceRepository) List(ctx context.Context, params *domainRepo.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	query := conn(ctx, r.db).Model(&entity.Invoice{})

	if params.Status != nil {
		query = query.Where("invoices.status = ?", *params.Status)
	}

	if params.TableRef != "" {
		query = query.Joins("JOIN orders ON orders.id = invoices.order_id").
			Where("orders.table_ref = ?", params.TableRef)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Order").
		Order("invoices.created_at DESC, invoices.id DESC").
		Find(&invoices).Error

	return invoices, total, err
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *entity.Invoice) error {
	return conn(ctx, r.db).Omit("Order").Save(invoice).Error
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Delete(&entity.Invoice{}, "id = ?", id).Error
}

func (r *invoiceRepository) first(db *gorm.DB, query string, args ...interface{}) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := db.Where(query, args...).First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}
