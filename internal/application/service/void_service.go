package service

import (
	"context"
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

// RoleManager is the role whose connections receive void requests
const RoleManager = "manager"

// VoidService gates voiding of order items behind manager approval
type VoidService struct {
	*Billing
}

// NewVoidService creates a new void service
func NewVoidService(b *Billing) *VoidService {
	return &VoidService{Billing: b}
}

// ManagerCredential is re-checked against the staff store on every approval
type ManagerCredential struct {
	Username string
	PIN      string
}

// RequestVoid puts an item on hold pending a manager decision
func (s *VoidService) RequestVoid(ctx context.Context, caller Caller, itemID uuid.UUID, reason string) (*entity.VoidRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.NewFieldError("reason", "a reason is required to void an item")
	}

	var req *entity.VoidRequest
	var item *entity.OrderItem
	err := s.inTx(ctx, "request void", func(ctx context.Context) error {
		var inv *entity.Invoice
		var err error
		item, inv, err = s.lockItem(ctx, itemID)
		if err != nil {
			return err
		}
		if !item.Status.Voidable() {
			return apperror.NewInvalidTransitionError(fmt.Sprintf("cannot request a void for an item that is %s", item.Status))
		}
		pending, err := s.stores.Voids.GetPendingByItem(ctx, item.ID)
		if err != nil {
			return err
		}
		if pending != nil {
			return apperror.NewInvalidTransitionError("a void request for this item is already pending")
		}
		if inv != nil && inv.IsPaid() {
			return apperror.Wrap(apperror.ErrAlreadyPaid, fmt.Sprintf("cannot void an item of paid invoice %s", inv.InvoiceNo))
		}

		prev := item.Status
		req = &entity.VoidRequest{
			OrderItemID:    item.ID,
			RequestedBy:    caller.StaffID,
			Reason:         reason,
			PreviousStatus: prev,
			Status:         enum.VoidStatusPending,
		}
		if err := s.stores.Voids.Create(ctx, req); err != nil {
			return err
		}

		item.PreviousStatus = &prev
		item.Status = enum.ItemStatusVoidRequested
		return s.stores.Items.Update(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, caller.StaffID, auditVoidRequest, "order_item", item.ID, reason)
	s.publish(ctx, notify.RoleRecipient(RoleManager), notify.Event{
		Type:    notify.EventVoidRequest,
		Title:   "Void requested",
		Message: fmt.Sprintf("Void requested for %dx %s: %s", item.Quantity, item.DishName, reason),
		Data: map[string]any{
			"void_request_id": req.ID,
			"item_id":         item.ID,
			"order_id":        item.OrderID,
		},
	})
	req.OrderItem = item
	return req, nil
}

// Approve voids the item after re-validating the manager's PIN
func (s *VoidService) Approve(ctx context.Context, requestID uuid.UUID, cred ManagerCredential) (*entity.VoidRequest, error) {
	manager, err := s.verifyManager(ctx, cred)
	if err != nil {
		return nil, err
	}

	var req *entity.VoidRequest
	var item *entity.OrderItem
	err = s.inTx(ctx, "approve void", func(ctx context.Context) error {
		var err error
		req, err = s.pendingRequest(ctx, requestID)
		if err != nil {
			return err
		}

		var inv *entity.Invoice
		item, inv, err = s.lockItem(ctx, req.OrderItemID)
		if err != nil {
			return err
		}
		if inv != nil && inv.IsPaid() {
			return apperror.Wrap(apperror.ErrAlreadyPaid, fmt.Sprintf("invoice %s was paid before the void was approved", inv.InvoiceNo))
		}

		req.Decide(enum.VoidStatusApproved, manager.ID, "", s.now())
		if err := s.stores.Voids.Update(ctx, req); err != nil {
			return err
		}
		return s.voidItem(ctx, item, inv)
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, manager.ID, auditVoidApprove, "void_request", req.ID, item.DishName)
	s.notifyDecision(ctx, req, item)
	req.OrderItem = item
	return req, nil
}

// Reject restores the item to the status it had before the request
func (s *VoidService) Reject(ctx context.Context, caller Caller, requestID uuid.UUID, reason string) (*entity.VoidRequest, error) {
	if !caller.HasCapability(ActionApproveVoid) {
		return nil, apperror.NewForbiddenError("you are not allowed to decide void requests")
	}

	var req *entity.VoidRequest
	var item *entity.OrderItem
	err := s.inTx(ctx, "reject void", func(ctx context.Context) error {
		var err error
		req, err = s.pendingRequest(ctx, requestID)
		if err != nil {
			return err
		}
		item, err = s.stores.Items.GetByIDForUpdate(ctx, req.OrderItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return apperror.NewNotFoundError("Order item")
		}

		req.Decide(enum.VoidStatusRejected, caller.StaffID, strings.TrimSpace(reason), s.now())
		if err := s.stores.Voids.Update(ctx, req); err != nil {
			return err
		}

		if item.Status == enum.ItemStatusVoidRequested {
			item.Status = req.PreviousStatus
			item.PreviousStatus = nil
			return s.stores.Items.Update(ctx, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, caller.StaffID, auditVoidReject, "void_request", req.ID, reason)
	s.notifyDecision(ctx, req, item)
	req.OrderItem = item
	return req, nil
}

// DirectVoid voids an item without a request. Only callers holding
// void-direct may use it; any pending request is closed as approved.
func (s *VoidService) DirectVoid(ctx context.Context, caller Caller, itemID uuid.UUID, reason string) (*entity.OrderItem, error) {
	if !caller.HasCapability(ActionVoidDirect) {
		return nil, apperror.NewForbiddenError("you are not allowed to void items directly, request a void instead")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.NewFieldError("reason", "a reason is required to void an item")
	}

	var item *entity.OrderItem
	var closed *entity.VoidRequest
	err := s.inTx(ctx, "direct void", func(ctx context.Context) error {
		var inv *entity.Invoice
		var err error
		item, inv, err = s.lockItem(ctx, itemID)
		if err != nil {
			return err
		}
		if item.Status == enum.ItemStatusVoided {
			return apperror.NewInvalidTransitionError("item is already voided")
		}
		if inv != nil && inv.IsPaid() {
			return apperror.Wrap(apperror.ErrAlreadyPaid, fmt.Sprintf("cannot void an item of paid invoice %s", inv.InvoiceNo))
		}

		closed, err = s.stores.Voids.GetPendingByItem(ctx, item.ID)
		if err != nil {
			return err
		}
		if closed != nil {
			closed.Decide(enum.VoidStatusApproved, caller.StaffID, "direct void: "+reason, s.now())
			if err := s.stores.Voids.Update(ctx, closed); err != nil {
				return err
			}
		}
		return s.voidItem(ctx, item, inv)
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, caller.StaffID, auditVoidDirect, "order_item", item.ID, reason)
	if closed != nil {
		s.notifyDecision(ctx, closed, item)
	}
	return item, nil
}

// ListPending returns undecided requests, oldest first
func (s *VoidService) ListPending(ctx context.Context) ([]entity.VoidRequest, error) {
	return s.stores.Voids.ListPending(ctx)
}

// verifyManager checks username and PIN against the staff store
func (s *VoidService) verifyManager(ctx context.Context, cred ManagerCredential) (*entity.Staff, error) {
	if cred.Username == "" || cred.PIN == "" {
		return nil, apperror.Wrap(apperror.ErrInvalidCredential, "manager username and PIN are required")
	}
	staff, err := s.stores.Staff.GetByUsername(ctx, cred.Username)
	if err != nil {
		return nil, err
	}
	if staff == nil || !staff.Active || !utils.CheckSecretHash(cred.PIN, staff.PinHash) {
		return nil, apperror.Wrap(apperror.ErrInvalidCredential, "invalid manager username or PIN")
	}
	if !staff.HasPermission(ActionApproveVoid) {
		return nil, apperror.NewForbiddenError(fmt.Sprintf("%s is not allowed to approve voids", staff.Name))
	}
	return staff, nil
}

func (s *VoidService) pendingRequest(ctx context.Context, id uuid.UUID) (*entity.VoidRequest, error) {
	req, err := s.stores.Voids.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperror.NewNotFoundError("Void request")
	}
	if req.Status != enum.VoidStatusPending {
		return nil, apperror.NewInvalidTransitionError(fmt.Sprintf("void request was already %s", req.Status))
	}
	return req, nil
}

// lockItem locks the invoice of the item's order (if any) before the item
// itself, the same order merge and pay take their locks in. If a merge
// moved the item in between, the transaction is retried.
func (s *VoidService) lockItem(ctx context.Context, itemID uuid.UUID) (*entity.OrderItem, *entity.Invoice, error) {
	peek, err := s.stores.Items.GetByID(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if peek == nil {
		return nil, nil, apperror.NewNotFoundError("Order item")
	}

	inv, err := s.stores.Invoices.GetByOrderIDForUpdate(ctx, peek.OrderID)
	if err != nil {
		return nil, nil, err
	}

	item, err := s.stores.Items.GetByIDForUpdate(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, apperror.NewNotFoundError("Order item")
	}
	if item.OrderID != peek.OrderID {
		return nil, nil, repository.ErrConflict
	}
	return item, inv, nil
}

// voidItem marks the item VOIDED and recomputes its open invoice
func (s *VoidService) voidItem(ctx context.Context, item *entity.OrderItem, inv *entity.Invoice) error {
	item.Status = enum.ItemStatusVoided
	item.PreviousStatus = nil
	if err := s.stores.Items.Update(ctx, item); err != nil {
		return err
	}
	if inv == nil {
		return nil
	}
	return s.recalcInvoice(ctx, inv)
}

func (s *VoidService) notifyDecision(ctx context.Context, req *entity.VoidRequest, item *entity.OrderItem) {
	s.publish(ctx, req.RequestedBy.String(), notify.Event{
		Type:    notify.EventVoidDecision,
		Title:   "Void " + req.Status.String(),
		Message: fmt.Sprintf("Your void request for %s was %s", item.DishName, req.Status),
		Data: map[string]any{
			"void_request_id": req.ID,
			"item_id":         item.ID,
			"status":          req.Status,
		},
	})
}
