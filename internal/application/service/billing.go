package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sangkips/tablebill-api/internal/config"
	"github.com/sangkips/tablebill-api/internal/domain/repository"
	"github.com/sangkips/tablebill-api/pkg/apperror"
	"github.com/sangkips/tablebill-api/pkg/notify"
)

// Stores groups the repositories shared by the billing services
type Stores struct {
	Tx       repository.Transactor
	Orders   repository.OrderRepository
	Items    repository.OrderItemRepository
	Invoices repository.InvoiceRepository
	Shifts   repository.ShiftRepository
	Payments repository.PaymentRepository
	Voids    repository.VoidRequestRepository
	Dishes   repository.DishRepository
	Staff    repository.StaffRepository
	Settings repository.SettingsRepository
	Audit    repository.AuditRepository
}

// Billing carries what every billing service needs: storage, the
// transaction runner, notification publishing and the clock.
type Billing struct {
	stores    Stores
	cfg       config.BillingConfig
	publisher notify.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewBilling creates the shared billing core
func NewBilling(stores Stores, cfg config.BillingConfig, publisher notify.Publisher, logger *slog.Logger) *Billing {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Billing{
		stores:    stores,
		cfg:       cfg,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// inTx runs fn in one serializable transaction, retrying serialization
// failures up to MaxRetries times before reporting Busy.
func (b *Billing) inTx(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt <= b.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			b.logger.Debug("retrying billing transaction", "op", op, "attempt", attempt, "error", err)
			if waitErr := sleepCtx(ctx, time.Duration(attempt)*b.cfg.RetryBackoff); waitErr != nil {
				return waitErr
			}
		}

		err = b.stores.Tx.WithinTransaction(ctx, fn)
		if !errors.Is(err, repository.ErrConflict) {
			return err
		}
	}

	b.logger.Warn("billing transaction gave up after retries", "op", op, "retries", b.cfg.MaxRetries, "error", err)
	return apperror.Wrap(apperror.ErrBusy, op+": the record is being changed by someone else, please retry")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// publish hands an event to the notification transport after commit
func (b *Billing) publish(ctx context.Context, recipient string, ev notify.Event) {
	if ev.SentAt.IsZero() {
		ev.SentAt = b.now()
	}
	b.publisher.Publish(ctx, recipient, ev)
}
