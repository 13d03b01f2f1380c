package service

import (
	"context"

	"github.com/sangkips/tablebill-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// applyTotals recomputes an invoice from its order items. It is the only
// place invoice money fields are written. The discount is clamped to the
// new subtotal.
func applyTotals(inv *entity.Invoice, items []entity.OrderItem) {
	var subtotal int64
	for i := range items {
		if items[i].Billable() {
			subtotal += items[i].LineTotal()
		}
	}

	inv.SubTotal = subtotal
	if inv.Discount > subtotal {
		inv.Discount = subtotal
	}
	if inv.Discount < 0 {
		inv.Discount = 0
	}
	inv.Tax = computeTax(subtotal, inv.VATRate)
	inv.GrandTotal = inv.SubTotal - inv.Discount + inv.Tax
}

// computeTax rounds subtotal * rate / 100 half away from zero
func computeTax(subtotal int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(subtotal).Mul(rate).Div(hundred).Round(0).IntPart()
}

// billableCount counts items that contribute to totals
func billableCount(items []entity.OrderItem) int {
	n := 0
	for i := range items {
		if items[i].Billable() {
			n++
		}
	}
	return n
}

// splitShares divides total into n shares differing by at most one unit;
// the first total mod n shares carry the extra unit.
func splitShares(total int64, n int) []int64 {
	shares := make([]int64, n)
	base := total / int64(n)
	rem := total % int64(n)
	for i := range shares {
		shares[i] = base
		if int64(i) < rem {
			shares[i]++
		}
	}
	return shares
}

// vatRate reads the configured VAT percentage, falling back to VAT_RATE
func (b *Billing) vatRate(ctx context.Context) decimal.Decimal {
	rate, err := b.loadVATRate(ctx)
	if err != nil {
		b.logger.Warn("read vat_rate setting failed, using default", "error", err)
		return b.cfg.VATRate
	}
	return rate
}

// loadVATRate is vatRate for use inside a transaction: a store error is
// returned, since the transaction cannot continue after it
func (b *Billing) loadVATRate(ctx context.Context) (decimal.Decimal, error) {
	raw, ok, err := b.stores.Settings.GetValue(ctx, entity.SettingVATRate)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !ok {
		return b.cfg.VATRate, nil
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsNegative() {
		b.logger.Warn("invalid vat_rate setting, using default", "value", raw)
		return b.cfg.VATRate, nil
	}
	return rate, nil
}

// recalcInvoice reloads the invoice's items and recomputes it in place
func (b *Billing) recalcInvoice(ctx context.Context, inv *entity.Invoice) error {
	items, err := b.stores.Items.ListByOrder(ctx, inv.OrderID)
	if err != nil {
		return err
	}
	applyTotals(inv, items)
	return b.stores.Invoices.Update(ctx, inv)
}
