package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/domain/entity"
	"github.com/sangkips/tablebill-api/internal/domain/enum"
	"github.com/sangkips/tablebill-api/internal/domain/repository"
	"github.com/sangkips/tablebill-api/pkg/apperror"
	"github.com/sangkips/tablebill-api/pkg/utils"
)

// InvoiceService implements merge, split, discount and payment of invoices
type InvoiceService struct {
	*Billing
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(b *Billing) *InvoiceService {
	return &InvoiceService{Billing: b}
}

// Merge folds two or more open invoices of the same table into the
// earliest-created one. Items move to the target order, source invoices and
// their emptied orders are deleted, and the target is recomputed from its items.
func (s *InvoiceService) Merge(ctx context.Context, caller Caller, invoiceIDs []uuid.UUID) (*entity.Invoice, error) {
	ids := uniqueIDs(invoiceIDs)
	if len(ids) < 2 {
		return nil, apperror.Wrap(apperror.ErrEmptySelection, "select at least two different invoices to merge")
	}

	var target *entity.Invoice
	var merged []string
	err := s.inTx(ctx, "merge invoices", func(ctx context.Context) error {
		merged = merged[:0]
		invoices, err := s.stores.Invoices.GetByIDsForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		if len(invoices) != len(ids) {
			return apperror.NewNotFoundError(fmt.Sprintf("Invoice %s", missingID(ids, invoices)))
		}
		for i := range invoices {
			if invoices[i].IsPaid() {
				return apperror.Wrap(apperror.ErrAlreadyPaid, fmt.Sprintf("cannot merge a paid invoice (%s)", invoices[i].InvoiceNo))
			}
		}

		orderIDs := make([]uuid.UUID, len(invoices))
		for i := range invoices {
			orderIDs[i] = invoices[i].OrderID
		}
		orders, err := s.stores.Orders.GetByIDs(ctx, orderIDs)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*entity.Order, len(orders))
		for i := range orders {
			byID[orders[i].ID] = &orders[i]
		}
		for i := range invoices {
			order, ok := byID[invoices[i].OrderID]
			if !ok {
				return apperror.NewNotFoundError(fmt.Sprintf("Order of invoice %s", invoices[i].InvoiceNo))
			}
			if order.TableRef != byID[invoices[0].OrderID].TableRef {
				return apperror.Wrap(apperror.ErrTableMismatch,
					fmt.Sprintf("cannot merge invoices of table %s and table %s", byID[invoices[0].OrderID].TableRef, order.TableRef))
			}
		}

		sort.Slice(invoices, func(i, j int) bool {
			if !invoices[i].CreatedAt.Equal(invoices[j].CreatedAt) {
				return invoices[i].CreatedAt.Before(invoices[j].CreatedAt)
			}
			return invoices[i].ID.String() < invoices[j].ID.String()
		})

		t := invoices[0]
		targetOrder := byID[t.OrderID]
		discount := t.Discount
		for _, src := range invoices[1:] {
			srcOrder := byID[src.OrderID]
			if _, err := s.stores.Items.MoveAll(ctx, srcOrder.ID, targetOrder.ID); err != nil {
				return err
			}
			targetOrder.AppendNote(srcOrder.Note)
			discount += src.Discount

			if err := s.stores.Invoices.Delete(ctx, src.ID); err != nil {
				return err
			}
			left, err := s.stores.Items.CountByOrder(ctx, srcOrder.ID)
			if err != nil {
				return err
			}
			if left != 0 {
				return fmt.Errorf("merge: order %s still has %d items after reassignment", srcOrder.ID, left)
			}
			if err := s.stores.Orders.Delete(ctx, srcOrder.ID); err != nil {
				return err
			}
			merged = append(merged, src.InvoiceNo)
		}

		if err := s.stores.Orders.Update(ctx, targetOrder); err != nil {
			return err
		}

		t.Discount = discount
		if err := s.recalcInvoice(ctx, &t); err != nil {
			return err
		}
		target = &t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, caller.StaffID, auditMerge, "invoice", target.ID, "merged "+strings.Join(merged, ", "))
	return target, nil
}

// SplitResult holds both sides of a split by items
type SplitResult struct {
	Source  *entity.Invoice `json:"source"`
	Created *entity.Invoice `json:"created"`
}

// SplitByItems moves the selected items onto a new order and invoice for
// the same table. Both invoices must keep at least one billable item.
func (s *InvoiceService) SplitByItems(ctx context.Context, caller Caller, invoiceID uuid.UUID, itemIDs []uuid.UUID) (*SplitResult, error) {
	selected := uniqueIDs(itemIDs)
	if len(selected) == 0 {
		return nil, apperror.Wrap(apperror.ErrEmptySelection, "select at least one item to split off")
	}

	var result *SplitResult
	err := s.inTx(ctx, "split invoice", func(ctx context.Context) error {
		src, err := s.stores.Invoices.GetByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if src == nil {
			return apperror.NewNotFoundError("Invoice")
		}
		if src.IsPaid() {
			return apperror.Wrap(apperror.ErrAlreadyPaid, "cannot split a paid invoice")
		}

		order, err := s.stores.Orders.GetByIDForUpdate(ctx, src.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return apperror.NewNotFoundError("Order")
		}

		items, err := s.stores.Items.ListByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]entity.OrderItem, len(items))
		for _, it := range items {
			byID[it.ID] = it
		}

		for _, id := range selected {
			it, ok := byID[id]
			if !ok {
				return apperror.Wrap(apperror.ErrCrossInvoice, fmt.Sprintf("item %s does not belong to invoice %s", id, src.InvoiceNo))
			}
			if !it.Billable() {
				return apperror.NewInvalidTransitionError(fmt.Sprintf("item %s (%s) is voided and cannot be split", id, it.DishName))
			}
		}
		if len(selected) == billableCount(items) {
			return apperror.Wrap(apperror.ErrEmptySelection, "a split must leave at least one item on the original invoice")
		}

		newOrder := &entity.Order{
			TableRef:  order.TableRef,
			Note:      "split from " + src.InvoiceNo,
			CreatedBy: caller.StaffID,
			Status:    enum.OrderStatusClosed,
		}
		if err := s.stores.Orders.Create(ctx, newOrder); err != nil {
			return err
		}
		moved, err := s.stores.Items.MoveItems(ctx, selected, newOrder.ID)
		if err != nil {
			return err
		}
		if moved != int64(len(selected)) {
			return fmt.Errorf("split: moved %d of %d items", moved, len(selected))
		}

		created := &entity.Invoice{
			InvoiceNo: utils.GenerateInvoiceNo(s.now()),
			OrderID:   newOrder.ID,
			VATRate:   src.VATRate,
			Status:    enum.InvoiceStatusOpen,
		}
		newItems, err := s.stores.Items.ListByOrder(ctx, newOrder.ID)
		if err != nil {
			return err
		}
		applyTotals(created, newItems)
		if err := s.stores.Invoices.Create(ctx, created); err != nil {
			return err
		}

		if err := s.recalcInvoice(ctx, src); err != nil {
			return err
		}
		result = &SplitResult{Source: src, Created: created}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, caller.StaffID, auditSplitItems, "invoice", result.Source.ID,
		fmt.Sprintf("%d items moved to %s", len(selected), result.Created.InvoiceNo))
	return result, nil
}

// PeopleSplit is the presentation-only division of an invoice total
type PeopleSplit struct {
	Invoice *entity.Invoice `json:"invoice"`
	People  int             `json:"people"`
	Shares  []int64         `json:"shares"`
}

// SplitByPeople computes n shares of the invoice's grand total that differ
// by at most one unit and add up exactly. Nothing is persisted except an
// audit entry.
func (s *InvoiceService) SplitByPeople(ctx context.Context, caller Caller, invoiceID uuid.UUID, people int) (*PeopleSplit, error) {
	if people < 1 {
		return nil, apperror.NewFieldError("people", "number of people must be at least 1")
	}

	inv, err := s.stores.Invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}

	split := &PeopleSplit{Invoice: inv, People: people, Shares: splitShares(inv.GrandTotal, people)}
	s.audit(ctx, caller.StaffID, auditSplitPeople, "invoice", inv.ID, fmt.Sprintf("%d people", people))
	return split, nil
}

// ApplyDiscount sets the invoice discount and recomputes totals
func (s *InvoiceService) ApplyDiscount(ctx context.Context, caller Caller, invoiceID uuid.UUID, amount int64) (*entity.Invoice, error) {
	if !caller.HasCapability(ActionApplyDiscount) {
		return nil, apperror.NewForbiddenError("you are not allowed to apply discounts")
	}
	if amount < 0 {
		return nil, apperror.NewFieldError("amount", "discount cannot be negative")
	}

	var inv *entity.Invoice
	err := s.inTx(ctx, "apply discount", func(ctx context.Context) error {
		var err error
		inv, err = s.stores.Invoices.GetByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return apperror.NewNotFoundError("Invoice")
		}
		if inv.IsPaid() {
			return apperror.Wrap(apperror.ErrAlreadyPaid, "cannot discount a paid invoice")
		}
		if amount > inv.SubTotal {
			return apperror.NewFieldError("amount", fmt.Sprintf("discount cannot exceed the subtotal of %d", inv.SubTotal))
		}

		inv.Discount = amount
		return s.recalcInvoice(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, caller.StaffID, auditDiscount, "invoice", inv.ID, fmt.Sprintf("discount %d", amount))
	return inv, nil
}

// PayInput represents the pay input
type PayInput struct {
	Method enum.PaymentMethod
	Amount int64
}

// Pay records a full payment in the caller's open shift and marks the
// invoice paid. The amount is checked against the locked row, not against
// whatever total the client saw.
func (s *InvoiceService) Pay(ctx context.Context, caller Caller, invoiceID uuid.UUID, input *PayInput) (*entity.Invoice, *entity.Payment, error) {
	method, ok := enum.ParsePaymentMethod(input.Method.String())
	if !ok {
		return nil, nil, apperror.NewFieldError("method", "method must be one of cash, card, transfer, ewallet")
	}

	var inv *entity.Invoice
	var payment *entity.Payment
	err := s.inTx(ctx, "pay invoice", func(ctx context.Context) error {
		var err error
		inv, err = s.stores.Invoices.GetByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return apperror.NewNotFoundError("Invoice")
		}
		if inv.IsPaid() {
			return apperror.Wrap(apperror.ErrAlreadyPaid, fmt.Sprintf("invoice %s is already paid", inv.InvoiceNo))
		}
		items, err := s.stores.Items.ListByOrder(ctx, inv.OrderID)
		if err != nil {
			return err
		}
		for i := range items {
			if items[i].Status == enum.ItemStatusVoidRequested {
				return apperror.NewInvalidTransitionError(
					fmt.Sprintf("%s has a pending void request, approve or reject it before taking payment", items[i].DishName))
			}
		}
		if input.Amount != inv.GrandTotal {
			return apperror.Wrap(apperror.ErrAmountMismatch,
				fmt.Sprintf("amount %d does not match the invoice total of %d", input.Amount, inv.GrandTotal))
		}

		shift, err := s.openShiftForUpdate(ctx, caller.StaffID)
		if err != nil {
			return err
		}

		now := s.now()
		payment = &entity.Payment{
			InvoiceID:  inv.ID,
			ShiftID:    shift.ID,
			Amount:     input.Amount,
			Method:     method,
			RecordedBy: caller.StaffID,
			CreatedAt:  now,
		}
		if err := s.stores.Payments.Create(ctx, payment); err != nil {
			return err
		}

		inv.Status = enum.InvoiceStatusPaid
		inv.PaymentMethod = method
		inv.PaidAt = &now
		return s.stores.Invoices.Update(ctx, inv)
	})
	if err != nil {
		return nil, nil, err
	}

	s.audit(ctx, caller.StaffID, auditPay, "invoice", inv.ID, fmt.Sprintf("%s %d", method, input.Amount))
	return inv, payment, nil
}

// openShiftForUpdate locks the cashier's open shift so a concurrent close
// waits for the payment
func (s *InvoiceService) openShiftForUpdate(ctx context.Context, cashierID uuid.UUID) (*entity.Shift, error) {
	shift, err := s.stores.Shifts.GetOpenByCashier(ctx, cashierID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, apperror.Wrap(apperror.ErrShiftNotOpen, "open a shift before taking payments")
	}
	shift, err = s.stores.Shifts.GetByIDForUpdate(ctx, shift.ID)
	if err != nil {
		return nil, err
	}
	if shift == nil || !shift.IsOpen() {
		return nil, apperror.Wrap(apperror.ErrShiftNotOpen, "your shift was closed, open a new shift before taking payments")
	}
	return shift, nil
}

// GetInvoice returns an invoice with its order and items
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	inv, err := s.stores.Invoices.GetWithOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return inv, nil
}

// ListInvoices returns a page of invoices
func (s *InvoiceService) ListInvoices(ctx context.Context, params *repository.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	return s.stores.Invoices.List(ctx, params)
}

// uniqueIDs drops duplicates and nil ids, keeping first-seen order
func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missingID(ids []uuid.UUID, found []entity.Invoice) uuid.UUID {
	have := make(map[uuid.UUID]struct{}, len(found))
	for i := range found {
		have[found[i].ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := have[id]; !ok {
			return id
		}
	}
	return uuid.Nil
}
