package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/domain/entity"
	"github.com/sangkips/tablebill-api/internal/domain/enum"
	"github.com/sangkips/tablebill-api/internal/domain/repository"
	"github.com/sangkips/tablebill-api/pkg/apperror"
)

// ShiftService handles the cashier shift lifecycle and its reports
type ShiftService struct {
	*Billing
}

// NewShiftService creates a new shift service
func NewShiftService(b *Billing) *ShiftService {
	return &ShiftService{Billing: b}
}

// OpenShiftInput represents the open shift input
type OpenShiftInput struct {
	TerminalID   string
	OpeningFloat int64
}

// OpenShift starts a shift for the calling cashier. A cashier and a
// terminal each have at most one open shift.
func (s *ShiftService) OpenShift(ctx context.Context, caller Caller, input *OpenShiftInput) (*entity.Shift, error) {
	terminal := strings.TrimSpace(input.TerminalID)
	if terminal == "" {
		terminal = caller.TerminalID
	}
	if terminal == "" {
		return nil, apperror.NewFieldError("terminal_id", "terminal is required")
	}
	if input.OpeningFloat < 0 {
		return nil, apperror.NewFieldError("opening_float", "opening float cannot be negative")
	}

	var shift *entity.Shift
	err := s.inTx(ctx, "open shift", func(ctx context.Context) error {
		existing, err := s.stores.Shifts.GetOpenByCashier(ctx, caller.StaffID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.Wrap(apperror.ErrShiftAlreadyOpen,
				fmt.Sprintf("you already have an open shift on terminal %s", existing.TerminalID))
		}
		existing, err = s.stores.Shifts.GetOpenByTerminal(ctx, terminal)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.Wrap(apperror.ErrShiftAlreadyOpen,
				fmt.Sprintf("terminal %s already has an open shift", terminal))
		}

		shift = &entity.Shift{
			CashierID:    caller.StaffID,
			TerminalID:   terminal,
			OpeningFloat: input.OpeningFloat,
			OpenedAt:     s.now(),
			Status:       enum.ShiftStatusOpen,
		}
		return s.stores.Shifts.Create(ctx, shift)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperror.Wrap(apperror.ErrShiftAlreadyOpen, "a shift was opened for this cashier or terminal at the same time")
	}
	if err != nil {
		return nil, err
	}

	s.audit(ctx, caller.StaffID, auditShiftOpen, "shift", shift.ID, terminal)
	return shift, nil
}

// CloseShiftInput represents the close shift input
type CloseShiftInput struct {
	CountedCash int64
	Note        string
	// Override accepts a variance beyond tolerance; needs close-shift-override
	Override bool
}

// CloseShift records the counted cash and closes the shift. Open invoices
// do not block closing.
func (s *ShiftService) CloseShift(ctx context.Context, caller Caller, shiftID uuid.UUID, input *CloseShiftInput) (*entity.Shift, error) {
	if input.CountedCash < 0 {
		return nil, apperror.NewFieldError("counted_cash", "counted cash cannot be negative")
	}

	var shift *entity.Shift
	var overridden bool
	err := s.inTx(ctx, "close shift", func(ctx context.Context) error {
		overridden = false
		var err error
		shift, err = s.stores.Shifts.GetByIDForUpdate(ctx, shiftID)
		if err != nil {
			return err
		}
		if shift == nil {
			return apperror.NewNotFoundError("Shift")
		}
		if !shift.IsOpen() {
			return apperror.Wrap(apperror.ErrShiftNotOpen, "shift is already closed")
		}

		if tol := s.cfg.VarianceTolerance; tol > 0 {
			payments, err := s.stores.Payments.ListByShift(ctx, shift.ID)
			if err != nil {
				return err
			}
			report := buildReport(shift, payments)
			variance := input.CountedCash - report.ExpectedCash
			if variance > tol || variance < -tol {
				if !input.Override {
					return apperror.Wrap(apperror.ErrVarianceExceeded,
						fmt.Sprintf("counted cash differs from expected by %d, more than the allowed %d", variance, tol))
				}
				if !caller.HasCapability(ActionCloseShiftOverride) {
					return apperror.NewForbiddenError("you are not allowed to close a shift with this variance")
				}
				overridden = true
			}
		}

		now := s.now()
		counted := input.CountedCash
		shift.ClosedAt = &now
		shift.CountedCash = &counted
		shift.CloseNote = strings.TrimSpace(input.Note)
		shift.Status = enum.ShiftStatusClosed
		return s.stores.Shifts.Update(ctx, shift)
	})
	if err != nil {
		return nil, err
	}

	action := auditShiftClose
	if overridden {
		action = auditShiftOverride
	}
	s.audit(ctx, caller.StaffID, action, "shift", shift.ID, fmt.Sprintf("counted %d", input.CountedCash))
	return shift, nil
}

// CurrentShift returns the calling cashier's open shift
func (s *ShiftService) CurrentShift(ctx context.Context, caller Caller) (*entity.Shift, error) {
	shift, err := s.stores.Shifts.GetOpenByCashier(ctx, caller.StaffID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, apperror.Wrap(apperror.ErrShiftNotOpen, "you have no open shift")
	}
	return shift, nil
}

// ZReport reconciles a closed shift. It is recomputed from the payments
// every time so a disputed report can be regenerated from source data.
func (s *ShiftService) ZReport(ctx context.Context, shiftID uuid.UUID) (*entity.ShiftReport, error) {
	shift, payments, err := s.load(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.IsOpen() {
		return nil, apperror.NewInvalidTransitionError("the Z-report is available once the shift is closed")
	}
	return buildReport(shift, payments), nil
}

// XReport is the same aggregation taken while the shift is still open
func (s *ShiftService) XReport(ctx context.Context, shiftID uuid.UUID) (*entity.ShiftReport, error) {
	shift, payments, err := s.load(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if !shift.IsOpen() {
		return nil, apperror.NewInvalidTransitionError("shift is closed, use the Z-report")
	}
	return buildReport(shift, payments), nil
}

func (s *ShiftService) load(ctx context.Context, shiftID uuid.UUID) (*entity.Shift, []entity.Payment, error) {
	shift, err := s.stores.Shifts.GetByID(ctx, shiftID)
	if err != nil {
		return nil, nil, err
	}
	if shift == nil {
		return nil, nil, apperror.NewNotFoundError("Shift")
	}
	payments, err := s.stores.Payments.ListByShift(ctx, shift.ID)
	if err != nil {
		return nil, nil, err
	}
	return shift, payments, nil
}

// buildReport aggregates payments per method. Methods are listed in name
// order, including those without payments, so output is stable.
func buildReport(shift *entity.Shift, payments []entity.Payment) *entity.ShiftReport {
	totals := make(map[enum.PaymentMethod]entity.MethodTotal)
	for _, m := range enum.PaymentMethods() {
		totals[m] = entity.MethodTotal{Method: m}
	}

	report := &entity.ShiftReport{
		ShiftID:      shift.ID,
		CashierID:    shift.CashierID,
		TerminalID:   shift.TerminalID,
		OpenedAt:     shift.OpenedAt,
		ClosedAt:     shift.ClosedAt,
		Final:        !shift.IsOpen(),
		OpeningFloat: shift.OpeningFloat,
	}

	for _, p := range payments {
		t := totals[p.Method]
		t.Method = p.Method
		t.Count++
		t.Total += p.Amount
		totals[p.Method] = t

		report.PaymentCount++
		report.TotalCollected += p.Amount
		if p.Method == enum.PaymentMethodCash {
			report.CashCollected += p.Amount
		}
	}

	report.Methods = make([]entity.MethodTotal, 0, len(totals))
	for _, t := range totals {
		report.Methods = append(report.Methods, t)
	}
	sort.Slice(report.Methods, func(i, j int) bool {
		return report.Methods[i].Method < report.Methods[j].Method
	})

	report.ExpectedCash = report.OpeningFloat + report.CashCollected
	if report.Final && shift.CountedCash != nil {
		counted := *shift.CountedCash
		variance := counted - report.ExpectedCash
		report.CountedCash = &counted
		report.Variance = &variance
	}
	return report
}
