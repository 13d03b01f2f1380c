package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/domain/enum"
)

// MethodTotal aggregates the payments of one method within a shift
type MethodTotal struct {
	Method enum.PaymentMethod `json:"method"`
	Count  int                `json:"count"`
	Total  int64              `json:"total"`
}

// ShiftReport is a read-only reconciliation projection over a shift's payments.
// It is never persisted; Final distinguishes a Z-report (closed shift) from an
// interim X-report.
type ShiftReport struct {
	ShiftID        uuid.UUID     `json:"shift_id"`
	CashierID      uuid.UUID     `json:"cashier_id"`
	TerminalID     string        `json:"terminal_id"`
	OpenedAt       time.Time     `json:"opened_at"`
	ClosedAt       *time.Time    `json:"closed_at,omitempty"`
	Final          bool          `json:"final"`
	OpeningFloat   int64         `json:"opening_float"`
	Methods        []MethodTotal `json:"methods"`
	PaymentCount   int           `json:"payment_count"`
	TotalCollected int64         `json:"total_collected"`
	CashCollected  int64         `json:"cash_collected"`
	ExpectedCash   int64         `json:"expected_cash"`
	CountedCash    *int64        `json:"counted_cash,omitempty"`
	Variance       *int64        `json:"variance,omitempty"`
}
