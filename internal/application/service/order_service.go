package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/domain/entity"
	"github.com/sangkips/tablebill-api/internal/domain/enum"
	"github.com/sangkips/tablebill-api/internal/domain/repository"
	"github.com/sangkips/tablebill-api/pkg/apperror"
	"github.com/sangkips/tablebill-api/pkg/notify"
	"github.com/sangkips/tablebill-api/pkg/utils"
)

// OrderService handles the order ledger: table tabs, their items and checkout
type OrderService struct {
	*Billing
}

// NewOrderService creates a new order service
func NewOrderService(b *Billing) *OrderService {
	return &OrderService{Billing: b}
}

// OpenOrderInput represents the open order input
type OpenOrderInput struct {
	TableRef string
	Note     string
}

// OpenOrder returns the table's open order, creating it when there is none.
// created reports whether a new order was opened.
func (s *OrderService) OpenOrder(ctx context.Context, caller Caller, input *OpenOrderInput) (order *entity.Order, created bool, err error) {
	table := strings.TrimSpace(input.TableRef)
	if table == "" {
		return nil, false, apperror.NewFieldError("table_ref", "table reference is required")
	}

	open := func(ctx context.Context) error {
		existing, err := s.stores.Orders.GetOpenByTable(ctx, table)
		if err != nil {
			return err
		}
		if existing != nil {
			order, created = existing, false
			return nil
		}

		order = &entity.Order{
			TableRef:  table,
			Note:      strings.TrimSpace(input.Note),
			CreatedBy: caller.StaffID,
			Status:    enum.OrderStatusOpen,
		}
		created = true
		return s.stores.Orders.Create(ctx, order)
	}

	err = s.inTx(ctx, "open order", open)
	if errors.Is(err, repository.ErrDuplicate) {
		// another terminal opened the table between our read and insert
		err = s.inTx(ctx, "open order", open)
	}
	if err != nil {
		return nil, false, err
	}
	return order, created, nil
}

// AddItemInput represents the add item input
type AddItemInput struct {
	DishID   uuid.UUID
	Quantity int
}

// AddItem appends a PENDING item at the dish's current catalog price
func (s *OrderService) AddItem(ctx context.Context, orderID uuid.UUID, input *AddItemInput) (*entity.OrderItem, error) {
	if input.Quantity <= 0 {
		return nil, apperror.NewFieldError("quantity", "quantity must be greater than zero")
	}

	var item *entity.OrderItem
	err := s.inTx(ctx, "add item", func(ctx context.Context) error {
		order, err := s.stores.Orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return apperror.NewNotFoundError("Order")
		}
		if !order.IsOpen() {
			return apperror.Wrap(apperror.ErrNotFound, "order is closed, open a new order for this table")
		}

		dish, err := s.stores.Dishes.GetByID(ctx, input.DishID)
		if err != nil {
			return err
		}
		if dish == nil || !dish.Available {
			return apperror.NewNotFoundError("Dish")
		}

		item = &entity.OrderItem{
			OrderID:   order.ID,
			DishID:    dish.ID,
			DishName:  dish.Name,
			Quantity:  input.Quantity,
			UnitPrice: dish.Price,
			Status:    enum.ItemStatusPending,
		}
		return s.stores.Items.Create(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// TransitionItem moves an item one step along PENDING -> IN_PROGRESS -> READY -> SERVED
func (s *OrderService) TransitionItem(ctx context.Context, itemID uuid.UUID, next enum.ItemStatus) (*entity.OrderItem, error) {
	if next == enum.ItemStatusVoidRequested || next == enum.ItemStatusVoided {
		return nil, apperror.NewInvalidTransitionError("items are voided through a void request")
	}
	if !next.Valid() {
		return nil, apperror.NewFieldError("status", "unknown item status")
	}

	var item *entity.OrderItem
	var order *entity.Order
	err := s.inTx(ctx, "transition item", func(ctx context.Context) error {
		var err error
		item, err = s.stores.Items.GetByIDForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return apperror.NewNotFoundError("Order item")
		}
		if !item.Status.CanAdvanceTo(next) {
			return apperror.NewInvalidTransitionError(fmt.Sprintf("cannot move item from %s to %s", item.Status, next))
		}

		item.Status = next
		if err := s.stores.Items.Update(ctx, item); err != nil {
			return err
		}

		order, err = s.stores.Orders.GetByID(ctx, item.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if next == enum.ItemStatusReady && order != nil {
		s.publish(ctx, order.CreatedBy.String(), notify.Event{
			Type:    notify.EventItemReady,
			Title:   "Item ready",
			Message: fmt.Sprintf("%dx %s is ready for table %s", item.Quantity, item.DishName, order.TableRef),
			Data: map[string]any{
				"order_id":  order.ID,
				"item_id":   item.ID,
				"table_ref": order.TableRef,
			},
		})
	}
	return item, nil
}

// Checkout closes the order and creates its invoice. Calling it again
// returns the invoice created the first time.
func (s *OrderService) Checkout(ctx context.Context, caller Caller, orderID uuid.UUID) (invoice *entity.Invoice, created bool, err error) {
	err = s.inTx(ctx, "checkout", func(ctx context.Context) error {
		created = false
		order, err := s.stores.Orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return apperror.NewNotFoundError("Order")
		}

		existing, err := s.stores.Invoices.GetByOrderID(ctx, order.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			invoice = existing
			return nil
		}
		if !order.IsOpen() {
			return apperror.NewInvalidTransitionError("order is closed and has no invoice")
		}

		items, err := s.stores.Items.ListByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if billableCount(items) == 0 {
			return apperror.NewInvalidTransitionError("cannot check out an order with no billable items")
		}

		rate, err := s.loadVATRate(ctx)
		if err != nil {
			return err
		}
		invoice = &entity.Invoice{
			InvoiceNo: utils.GenerateInvoiceNo(s.now()),
			OrderID:   order.ID,
			VATRate:   rate,
			Status:    enum.InvoiceStatusOpen,
		}
		applyTotals(invoice, items)
		if err := s.stores.Invoices.Create(ctx, invoice); err != nil {
			return err
		}

		order.Status = enum.OrderStatusClosed
		created = true
		return s.stores.Orders.Update(ctx, order)
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.audit(ctx, caller.StaffID, auditCheckout, "invoice", invoice.ID, invoice.InvoiceNo)
	}
	return invoice, created, nil
}

// GetOrder returns an order with its items
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*entity.Order, error) {
	order, err := s.stores.Orders.GetWithItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// ListOpen returns every open table order with items
func (s *OrderService) ListOpen(ctx context.Context) ([]entity.Order, error) {
	return s.stores.Orders.ListOpen(ctx)
}
