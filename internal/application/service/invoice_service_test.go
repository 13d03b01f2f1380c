package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/config"
	"github.com/sangkips/tablebill-api/internal/domain/enum"
	"github.com/sangkips/tablebill-api/internal/domain/repository"
	"github.com/sangkips/tablebill-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSameTable(t *testing.T) {
	env := newTestEnv(t, withVAT(0))
	ctx := context.Background()

	a, _ := env.invoice("5", 10000)
	b, _ := env.invoice("5", 15000, 25000)
	require.Equal(t, int64(10000), a.GrandTotal)
	require.Equal(t, int64(40000), b.GrandTotal)

	merged, err := env.invoices.Merge(ctx, env.cashier, []uuid.UUID{b.ID, a.ID})
	require.NoError(t, err)

	assert.Equal(t, a.ID, merged.ID, "earliest invoice survives")
	assert.Equal(t, int64(50000), merged.GrandTotal)
	assert.True(t, merged.Balanced())

	orders, items, invoices := env.counts()
	assert.Equal(t, 1, orders)
	assert.Equal(t, 3, items)
	assert.Equal(t, 1, invoices)

	_, ok := env.storedInvoice(b.ID)
	assert.False(t, ok)

	full, err := env.invoices.GetInvoice(ctx, merged.ID)
	require.NoError(t, err)
	assert.Len(t, full.Order.Items, 3)
}

func TestMergeConservesBillableValue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, _ := env.invoice("8", 1200, 3400)
	b, itemsB := env.invoice("8", 560, 7800)
	c, _ := env.invoice("8", 90)

	_, err := env.voids.DirectVoid(ctx, env.manager, itemsB[1].ID, "sent back")
	require.NoError(t, err)
	_, err = env.invoices.ApplyDiscount(ctx, env.manager, a.ID, 200)
	require.NoError(t, err)
	_, err = env.invoices.ApplyDiscount(ctx, env.manager, c.ID, 50)
	require.NoError(t, err)

	merged, err := env.invoices.Merge(ctx, env.cashier, []uuid.UUID{a.ID, b.ID, c.ID, b.ID})
	require.NoError(t, err)

	assert.Equal(t, int64(1200+3400+560+90), merged.SubTotal)
	assert.Equal(t, env.billableValue(*merged), merged.SubTotal)
	assert.Equal(t, int64(250), merged.Discount)
	assert.Equal(t, int64(525), merged.Tax)
	assert.Equal(t, merged.SubTotal-250+525, merged.GrandTotal)
	assert.Equal(t, "10", merged.VATRate.String())
}

func TestMergeAcrossTablesChangesNothing(t *testing.T) {
	env := newTestEnv(t)
	a, _ := env.invoice("A", 1000)
	b, _ := env.invoice("B", 2000)
	orders, items, invoices := env.counts()

	_, err := env.invoices.Merge(context.Background(), env.cashier, []uuid.UUID{a.ID, b.ID})
	assert.ErrorIs(t, err, apperror.ErrTableMismatch)

	o, i, n := env.counts()
	assert.Equal(t, []int{orders, items, invoices}, []int{o, i, n})
	storedA, _ := env.storedInvoice(a.ID)
	storedB, _ := env.storedInvoice(b.ID)
	assert.Equal(t, a.GrandTotal, storedA.GrandTotal)
	assert.Equal(t, b.GrandTotal, storedB.GrandTotal)
}

func TestMergeWithPaidInvoiceChangesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.openShift(env.cashier, 0)

	a, _ := env.invoice("5", 1000)
	b, _ := env.invoice("5", 2000)
	_, _, err := env.invoices.Pay(ctx, env.cashier, b.ID, &PayInput{Method: enum.PaymentMethodCard, Amount: b.GrandTotal})
	require.NoError(t, err)
	orders, items, invoices := env.counts()

	_, err = env.invoices.Merge(ctx, env.cashier, []uuid.UUID{a.ID, b.ID})
	assert.ErrorIs(t, err, apperror.ErrAlreadyPaid)

	o, i, n := env.counts()
	assert.Equal(t, []int{orders, items, invoices}, []int{o, i, n})
	storedA, _ := env.storedInvoice(a.ID)
	assert.Equal(t, a.GrandTotal, storedA.GrandTotal)
}

func TestMergeSelectionErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a, _ := env.invoice("5", 1000)

	_, err := env.invoices.Merge(ctx, env.cashier, []uuid.UUID{a.ID})
	assert.ErrorIs(t, err, apperror.ErrEmptySelection)

	_, err = env.invoices.Merge(ctx, env.cashier, []uuid.UUID{a.ID, a.ID, uuid.Nil})
	assert.ErrorIs(t, err, apperror.ErrEmptySelection)

	ghost := uuid.New()
	_, err = env.invoices.Merge(ctx, env.cashier, []uuid.UUID{a.ID, ghost})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Contains(t, err.Error(), ghost.String())
}

func TestSplitByItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	prices := make([]int64, 10)
	var all int64
	for i := range prices {
		prices[i] = int64(i+1) * 1000
		all += prices[i]
	}
	inv, items := env.invoice("12", prices...)

	picked := []uuid.UUID{items[1].ID, items[4].ID, items[8].ID}
	pickedValue := prices[1] + prices[4] + prices[8]

	res, err := env.invoices.SplitByItems(ctx, env.cashier, inv.ID, picked)
	require.NoError(t, err)

	assert.Equal(t, inv.ID, res.Source.ID)
	assert.Equal(t, all-pickedValue, res.Source.SubTotal)
	assert.Equal(t, pickedValue, res.Created.SubTotal)
	assert.Equal(t, inv.SubTotal, res.Source.SubTotal+res.Created.SubTotal)
	assert.True(t, res.Source.Balanced())
	assert.True(t, res.Created.Balanced())
	assert.True(t, inv.VATRate.Equal(res.Created.VATRate))

	for _, id := range picked {
		assert.Equal(t, res.Created.OrderID, env.storedItem(id).OrderID)
	}
	assert.Equal(t, inv.OrderID, env.storedItem(items[0].ID).OrderID)

	newOrder, err := env.orders.GetOrder(ctx, res.Created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "12", newOrder.TableRef)
	assert.Equal(t, enum.OrderStatusClosed, newOrder.Status)
	assert.Equal(t, "split from "+inv.InvoiceNo, newOrder.Note)
	assert.Len(t, newOrder.Items, 3)
}

func TestSplitByItemsClampsSourceDiscount(t *testing.T) {
	env := newTestEnv(t, withVAT(0))
	ctx := context.Background()
	inv, items := env.invoice("12", 1000, 9000)
	_, err := env.invoices.ApplyDiscount(ctx, env.manager, inv.ID, 5000)
	require.NoError(t, err)

	res, err := env.invoices.SplitByItems(ctx, env.cashier, inv.ID, []uuid.UUID{items[1].ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.Source.Discount)
	assert.Equal(t, int64(0), res.Source.GrandTotal)
	assert.Equal(t, int64(0), res.Created.Discount)
	assert.Equal(t, int64(9000), res.Created.GrandTotal)
}

func TestSplitByItemsRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	inv, items := env.invoice("1", 1000, 2000, 3000)
	_, otherItems := env.invoice("2", 500)

	_, err := env.invoices.SplitByItems(ctx, env.cashier, inv.ID, nil)
	assert.ErrorIs(t, err, apperror.ErrEmptySelection)

	_, err = env.invoices.SplitByItems(ctx, env.cashier, inv.ID, []uuid.UUID{items[0].ID, items[1].ID, items[2].ID})
	assert.ErrorIs(t, err, apperror.ErrEmptySelection)

	_, err = env.invoices.SplitByItems(ctx, env.cashier, inv.ID, []uuid.UUID{items[0].ID, otherItems[0].ID})
	assert.ErrorIs(t, err, apperror.ErrCrossInvoice)

	_, err = env.voids.DirectVoid(ctx, env.manager, items[2].ID, "spilled")
	require.NoError(t, err)
	_, err = env.invoices.SplitByItems(ctx, env.cashier, inv.ID, []uuid.UUID{items[2].ID})
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)

	// two billable items left, selecting both leaves nothing behind
	_, err = env.invoices.SplitByItems(ctx, env.cashier, inv.ID, []uuid.UUID{items[0].ID, items[1].ID})
	assert.ErrorIs(t, err, apperror.ErrEmptySelection)

	_, err = env.invoices.SplitByItems(ctx, env.cashier, uuid.New(), []uuid.UUID{items[0].ID})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	orders, _, invoices := env.counts()
	assert.Equal(t, 2, orders)
	assert.Equal(t, 2, invoices)
}

func TestSplitPaidInvoice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.openShift(env.cashier, 0)
	inv, items := env.invoice("1", 1000, 2000)
	_, _, err := env.invoices.Pay(ctx, env.cashier, inv.ID, &PayInput{Method: enum.PaymentMethodCash, Amount: inv.GrandTotal})
	require.NoError(t, err)

	_, err = env.invoices.SplitByItems(ctx, env.cashier, inv.ID, []uuid.UUID{items[0].ID})
	assert.ErrorIs(t, err, apperror.ErrAlreadyPaid)
}

func TestSplitByPeople(t *testing.T) {
	env := newTestEnv(t, withVAT(0))
	ctx := context.Background()
	inv, _ := env.invoice("1", 100)

	split, err := env.invoices.SplitByPeople(ctx, env.cashier, inv.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{34, 33, 33}, split.Shares)
	assert.Equal(t, 3, split.People)

	_, err = env.invoices.SplitByPeople(ctx, env.cashier, inv.ID, 0)
	assert.ErrorIs(t, err, &apperror.AppError{Reason: apperror.ReasonValidation})

	_, err = env.invoices.SplitByPeople(ctx, env.cashier, uuid.New(), 2)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	stored, _ := env.storedInvoice(inv.ID)
	assert.Equal(t, inv.GrandTotal, stored.GrandTotal)
}

func TestApplyDiscount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	inv, _ := env.invoice("1", 10000)

	_, err := env.invoices.ApplyDiscount(ctx, env.cashier, inv.ID, 100)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = env.invoices.ApplyDiscount(ctx, env.manager, inv.ID, -1)
	assert.ErrorIs(t, err, &apperror.AppError{Reason: apperror.ReasonValidation})

	_, err = env.invoices.ApplyDiscount(ctx, env.manager, inv.ID, 10001)
	assert.ErrorIs(t, err, &apperror.AppError{Reason: apperror.ReasonValidation})

	got, err := env.invoices.ApplyDiscount(ctx, env.manager, inv.ID, 2500)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), got.Discount)
	assert.Equal(t, int64(1000), got.Tax, "tax is computed on the subtotal")
	assert.Equal(t, int64(8500), got.GrandTotal)
}

func TestPay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	inv, _ := env.invoice("1", 10000)

	_, _, err := env.invoices.Pay(ctx, env.cashier, inv.ID, &PayInput{Method: enum.PaymentMethodCash, Amount: inv.GrandTotal})
	assert.ErrorIs(t, err, apperror.ErrShiftNotOpen)

	shift := env.openShift(env.cashier, 0)

	_, _, err = env.invoices.Pay(ctx, env.cashier, inv.ID, &PayInput{Method: "cheque", Amount: inv.GrandTotal})
	assert.ErrorIs(t, err, &apperror.AppError{Reason: apperror.ReasonValidation})

	_, _, err = env.invoices.Pay(ctx, env.cashier, inv.ID, &PayInput{Method: enum.PaymentMethodCash, Amount: inv.GrandTotal - 1})
	assert.ErrorIs(t, err, apperror.ErrAmountMismatch)

	paid, payment, err := env.invoices.Pay(ctx, env.cashier, inv.ID, &PayInput{Method: enum.PaymentMethodCash, Amount: 11000})
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusPaid, paid.Status)
	assert.Equal(t, enum.PaymentMethodCash, paid.PaymentMethod)
	assert.NotNil(t, paid.PaidAt)
	assert.Equal(t, shift.ID, payment.ShiftID)
	assert.Equal(t, int64(11000), payment.Amount)
	assert.Equal(t, env.cashier.StaffID, payment.RecordedBy)

	_, _, err = env.invoices.Pay(ctx, env.cashier, inv.ID, &PayInput{Method: enum.PaymentMethodCash, Amount: 11000})
	assert.ErrorIs(t, err, apperror.ErrAlreadyPaid)
	assert.Len(t, env.store.payments, 1)
}

func TestPayStoresNormalizedMethod(t *testing.T) {
	env := newTestEnv(t, withVAT(0))
	ctx := context.Background()
	shift := env.openShift(env.cashier, 500000)

	cashInv, _ := env.invoice("1", 100000)
	paid, payment, err := env.invoices.Pay(ctx, env.cashier, cashInv.ID, &PayInput{Method: "CASH", Amount: 100000})
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentMethodCash, payment.Method)
	assert.Equal(t, enum.PaymentMethodCash, paid.PaymentMethod)
	assert.Equal(t, enum.PaymentMethodCash, env.store.payments[payment.ID].Method)

	cardInv, _ := env.invoice("2", 20000)
	_, payment, err = env.invoices.Pay(ctx, env.cashier, cardInv.ID, &PayInput{Method: " Card ", Amount: 20000})
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentMethodCard, payment.Method)

	_, err = env.shifts.CloseShift(ctx, env.cashier, shift.ID, &CloseShiftInput{CountedCash: 600000})
	require.NoError(t, err)

	report, err := env.shifts.ZReport(ctx, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), report.CashCollected)
	assert.Equal(t, int64(600000), report.ExpectedCash)
	require.NotNil(t, report.Variance)
	assert.Equal(t, int64(0), *report.Variance)
	assert.Len(t, report.Methods, len(enum.PaymentMethods()))
}

func TestPayRefusedWhileVoidPending(t *testing.T) {
	env := newTestEnv(t, withVAT(0))
	ctx := context.Background()
	env.openShift(env.cashier, 0)
	inv, items := env.invoice("1", 1000, 2000)

	req, err := env.voids.RequestVoid(ctx, env.waiter, items[1].ID, "cold")
	require.NoError(t, err)

	_, _, err = env.invoices.Pay(ctx, env.cashier, inv.ID, &PayInput{Method: enum.PaymentMethodCash, Amount: 3000})
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	stored, _ := env.storedInvoice(inv.ID)
	assert.False(t, stored.IsPaid())
	assert.Empty(t, env.store.payments)

	_, err = env.voids.Reject(ctx, env.manager, req.ID, "it was fine")
	require.NoError(t, err)

	paid, _, err := env.invoices.Pay(ctx, env.cashier, inv.ID, &PayInput{Method: enum.PaymentMethodCash, Amount: 3000})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid())
}

func TestPayRejectsStaleTotal(t *testing.T) {
	env := newTestEnv(t, withVAT(0))
	ctx := context.Background()
	env.openShift(env.cashier, 0)
	inv, items := env.invoice("1", 1000, 2000)

	_, err := env.voids.DirectVoid(ctx, env.manager, items[1].ID, "wrong table")
	require.NoError(t, err)

	_, _, err = env.invoices.Pay(ctx, env.cashier, inv.ID, &PayInput{Method: enum.PaymentMethodCard, Amount: 3000})
	assert.ErrorIs(t, err, apperror.ErrAmountMismatch)

	paid, _, err := env.invoices.Pay(ctx, env.cashier, inv.ID, &PayInput{Method: enum.PaymentMethodCard, Amount: 1000})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid())
}

func TestPayAfterShiftClosed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	shift := env.openShift(env.cashier, 0)
	inv, _ := env.invoice("1", 1000)

	_, err := env.shifts.CloseShift(ctx, env.cashier, shift.ID, &CloseShiftInput{CountedCash: 0})
	require.NoError(t, err)

	_, _, err = env.invoices.Pay(ctx, env.cashier, inv.ID, &PayInput{Method: enum.PaymentMethodCash, Amount: inv.GrandTotal})
	assert.ErrorIs(t, err, apperror.ErrShiftNotOpen)
}

func TestRetriesThenReportsBusy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.openShift(env.cashier, 0)
	inv, _ := env.invoice("1", 1000)
	before := env.store.txCount

	env.store.conflicts = 10
	_, _, err := env.invoices.Pay(ctx, env.cashier, inv.ID, &PayInput{Method: enum.PaymentMethodCash, Amount: inv.GrandTotal})
	assert.ErrorIs(t, err, apperror.ErrBusy)
	assert.Equal(t, 4, env.store.txCount-before, "one attempt plus three retries")

	stored, _ := env.storedInvoice(inv.ID)
	assert.False(t, stored.IsPaid())
	assert.Empty(t, env.store.payments)

	env.store.conflicts = 2
	paid, _, err := env.invoices.Pay(ctx, env.cashier, inv.ID, &PayInput{Method: enum.PaymentMethodCash, Amount: inv.GrandTotal})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid())
	assert.Len(t, env.store.payments, 1)
}

func TestRetryHonoursContext(t *testing.T) {
	env := newTestEnv(t, func(c *config.BillingConfig) { c.RetryBackoff = time.Hour })
	env.openShift(env.cashier, 0)
	inv, _ := env.invoice("1", 1000)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	env.store.conflicts = 1
	_, _, err := env.invoices.Pay(ctx, env.cashier, inv.ID, &PayInput{Method: enum.PaymentMethodCash, Amount: inv.GrandTotal})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	cancelled, stop := context.WithCancel(context.Background())
	stop()
	_, _, err = env.invoices.Pay(cancelled, env.cashier, inv.ID, &PayInput{Method: enum.PaymentMethodCash, Amount: inv.GrandTotal})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConflictErrorIsRetriedNotSurfaced(t *testing.T) {
	env := newTestEnv(t)
	calls := 0
	err := env.billing.inTx(context.Background(), "probe", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return repository.ErrConflict
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

// Pay and void approval race on the same invoice. Whatever the interleaving,
// exactly one wins and the stored invoice matches its items.
func TestConcurrentPayAndVoidApproval(t *testing.T) {
	for round := 0; round < 10; round++ {
		env := newTestEnv(t, withVAT(0))
		ctx := context.Background()
		env.seedManager("lan", "4321", ActionApproveVoid)
		env.openShift(env.cashier, 0)
		inv, items := env.invoice("1", 1000, 2000)

		req, err := env.voids.RequestVoid(ctx, env.waiter, items[1].ID, "cold")
		require.NoError(t, err)

		var wg sync.WaitGroup
		var payErr, approveErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _, payErr = env.invoices.Pay(ctx, env.cashier, inv.ID, &PayInput{Method: enum.PaymentMethodCash, Amount: 3000})
		}()
		go func() {
			defer wg.Done()
			_, approveErr = env.voids.Approve(ctx, req.ID, ManagerCredential{Username: "lan", PIN: "4321"})
		}()
		wg.Wait()

		// Pay either sees the pending request or the recomputed total; the
		// approval always wins.
		require.NoError(t, approveErr, "round %d", round)
		assert.True(t, errors.Is(payErr, apperror.ErrInvalidTransition) || errors.Is(payErr, apperror.ErrAmountMismatch),
			"round %d: %v", round, payErr)

		stored, _ := env.storedInvoice(inv.ID)
		assert.True(t, stored.Balanced())
		assert.False(t, stored.IsPaid())
		assert.Equal(t, int64(1000), stored.GrandTotal)
		assert.Equal(t, enum.ItemStatusVoided, env.storedItem(items[1].ID).Status)
		assert.Equal(t, env.billableValue(stored), stored.SubTotal)
	}
}

func TestConcurrentPayAndDirectVoid(t *testing.T) {
	for round := 0; round < 10; round++ {
		env := newTestEnv(t, withVAT(0))
		ctx := context.Background()
		env.openShift(env.cashier, 0)
		inv, items := env.invoice("1", 1000, 2000)

		var wg sync.WaitGroup
		var payErr, voidErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _, payErr = env.invoices.Pay(ctx, env.cashier, inv.ID, &PayInput{Method: enum.PaymentMethodCash, Amount: 3000})
		}()
		go func() {
			defer wg.Done()
			_, voidErr = env.voids.DirectVoid(ctx, env.manager, items[1].ID, "wrong table")
		}()
		wg.Wait()

		stored, _ := env.storedInvoice(inv.ID)
		assert.True(t, stored.Balanced())
		switch {
		case payErr == nil:
			assert.True(t, errors.Is(voidErr, apperror.ErrAlreadyPaid), "round %d: %v", round, voidErr)
			assert.True(t, stored.IsPaid())
			assert.Equal(t, int64(3000), stored.GrandTotal)
			assert.Equal(t, enum.ItemStatusPending, env.storedItem(items[1].ID).Status)
		case voidErr == nil:
			assert.True(t, errors.Is(payErr, apperror.ErrAmountMismatch), "round %d: %v", round, payErr)
			assert.False(t, stored.IsPaid())
			assert.Equal(t, int64(1000), stored.GrandTotal)
			assert.Equal(t, enum.ItemStatusVoided, env.storedItem(items[1].ID).Status)
		default:
			t.Fatalf("round %d: both failed: pay=%v void=%v", round, payErr, voidErr)
		}
		assert.Equal(t, env.billableValue(stored), stored.SubTotal)
	}
}

func TestListInvoicesFiltersByStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.openShift(env.cashier, 0)
	a, _ := env.invoice("1", 1000)
	env.invoice("2", 2000)
	_, _, err := env.invoices.Pay(ctx, env.cashier, a.ID, &PayInput{Method: enum.PaymentMethodCard, Amount: a.GrandTotal})
	require.NoError(t, err)

	open := enum.InvoiceStatusOpen
	list, total, err := env.invoices.ListInvoices(ctx, &repository.InvoiceFilterParams{Status: &open})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "2", env.store.orders[list[0].OrderID].TableRef)

	_, err = env.invoices.GetInvoice(ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
