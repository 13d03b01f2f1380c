package service

import (
	"github.com/google/uuid"
)

// Actions gated by the permission check
const (
	ActionManageOrders       = "manage-orders"
	ActionManageInvoices     = "manage-invoices"
	ActionCollectPayments    = "collect-payments"
	ActionRequestVoid        = "request-void"
	ActionApproveVoid        = "approve-void"
	ActionVoidDirect         = "void-direct"
	ActionApplyDiscount      = "apply-discount"
	ActionManageShifts       = "manage-shifts"
	ActionCloseShiftOverride = "close-shift-override"
	ActionViewReports        = "view-reports"
)

// Actions lists every permission name the billing API checks
var Actions = []string{
	ActionManageOrders,
	ActionManageInvoices,
	ActionCollectPayments,
	ActionRequestVoid,
	ActionApproveVoid,
	ActionVoidDirect,
	ActionApplyDiscount,
	ActionManageShifts,
	ActionCloseShiftOverride,
	ActionViewReports,
}

// Caller identifies the staff member behind a request and what they may do
type Caller struct {
	StaffID      uuid.UUID
	TerminalID   string
	Roles        []string
	capabilities map[string]struct{}
}

// NewCaller builds a caller from the permissions granted by the session
func NewCaller(staffID uuid.UUID, terminalID string, roles, permissions []string) Caller {
	caps := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		caps[p] = struct{}{}
	}
	return Caller{
		StaffID:      staffID,
		TerminalID:   terminalID,
		Roles:        roles,
		capabilities: caps,
	}
}

// HasCapability reports whether the caller may perform action
func (c Caller) HasCapability(action string) bool {
	_, ok := c.capabilities[action]
	return ok
}
