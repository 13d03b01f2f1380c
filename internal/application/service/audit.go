package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/domain/entity"
)

// Audit actions
const (
	auditCheckout      = "invoice.checkout"
	auditMerge         = "invoice.merge"
	auditSplitItems    = "invoice.split_items"
	auditSplitPeople   = "invoice.split_people"
	auditDiscount      = "invoice.discount"
	auditPay           = "invoice.pay"
	auditVoidRequest   = "void.request"
	auditVoidApprove   = "void.approve"
	auditVoidReject    = "void.reject"
	auditVoidDirect    = "void.direct"
	auditShiftOpen     = "shift.open"
	auditShiftClose    = "shift.close"
	auditShiftOverride = "shift.close_override"
)

// audit writes a best-effort audit entry after commit. A failed write is
// logged and never reaches the caller.
func (b *Billing) audit(ctx context.Context, actor uuid.UUID, action, entityType string, entityID uuid.UUID, detail string) {
	if b.stores.Audit == nil {
		return
	}
	entry := &entity.AuditLog{
		ActorID:    actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
	}
	if err := b.stores.Audit.Create(context.WithoutCancel(ctx), entry); err != nil {
		b.logger.Warn("audit write failed", "action", action, "entity_id", entityID, "error", err)
	}
}
