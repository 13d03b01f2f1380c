package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/config"
	"github.com/sangkips/tablebill-api/internal/domain/entity"
	"github.com/sangkips/tablebill-api/pkg/printer"
)

// PrinterService formats invoice slips and shift reports for the receipt printer.
type PrinterService struct {
	printer   printer.Printer
	invoices  *InvoiceService
	shifts    *ShiftService
	storeName string
	width     int
	logger    *slog.Logger
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	invoices *InvoiceService,
	shifts *ShiftService,
	cfg config.PrinterConfig,
	logger *slog.Logger,
) *PrinterService {
	return &PrinterService{
		printer:   p,
		invoices:  invoices,
		shifts:    shifts,
		storeName: cfg.StoreName,
		width:     cfg.Width,
		logger:    logger,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printer.Kind() != "none",
		Connected:  s.printer.IsConnected(ctx),
		Type:       s.printer.Kind(),
	}
}

// PrintInvoice prints an invoice slip. With people > 1 the slip also lists
// the split-by-people shares. The receipt is returned even when printing
// fails so the POS can show it on screen.
func (s *PrinterService) PrintInvoice(ctx context.Context, caller Caller, invoiceID uuid.UUID, people int) (*entity.Receipt, error) {
	inv, err := s.invoices.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	receipt := s.buildReceipt(inv)
	if people > 1 {
		split, err := s.invoices.SplitByPeople(ctx, caller, invoiceID, people)
		if err != nil {
			return nil, err
		}
		receipt.Shares = split.Shares
	}

	if err := s.printer.Print(ctx, FormatReceipt(receipt, s.width)); err != nil {
		s.logger.Error("print invoice failed", "invoice_no", inv.InvoiceNo, "error", err)
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}
	return receipt, nil
}

// PrintShiftReport prints the Z-report of a closed shift, or the X-report
// of an open one.
func (s *PrinterService) PrintShiftReport(ctx context.Context, shiftID uuid.UUID) (*entity.ShiftReport, error) {
	shift, _, err := s.shifts.load(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	var report *entity.ShiftReport
	if shift.IsOpen() {
		report, err = s.shifts.XReport(ctx, shiftID)
	} else {
		report, err = s.shifts.ZReport(ctx, shiftID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.printer.Print(ctx, FormatShiftReport(report, s.storeName, s.width)); err != nil {
		s.logger.Error("print shift report failed", "shift_id", shiftID, "error", err)
		return report, fmt.Errorf("failed to print report: %w", err)
	}
	return report, nil
}

func (s *PrinterService) buildReceipt(inv *entity.Invoice) *entity.Receipt {
	r := &entity.Receipt{
		Header:        entity.ReceiptHeader{StoreName: s.storeName},
		InvoiceNo:     inv.InvoiceNo,
		Date:          inv.CreatedAt.Format("2006-01-02 15:04"),
		Status:        inv.Status.String(),
		PaymentMethod: inv.PaymentMethod.String(),
		SubTotal:      inv.SubTotal,
		Discount:      inv.Discount,
		VATRate:       inv.VATRate.String(),
		Tax:           inv.Tax,
		Total:         inv.GrandTotal,
	}
	if inv.Order != nil {
		r.Table = inv.Order.TableRef
		for _, it := range inv.Order.Items {
			if !it.Billable() {
				continue
			}
			r.Items = append(r.Items, entity.ReceiptItem{
				Name:      it.DishName,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
				Total:     it.LineTotal(),
			})
		}
	}
	return r
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)

	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Text(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Text(r.Header.Phone)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-').
		Columns("Invoice:", r.InvoiceNo).
		Columns("Table:", r.Table).
		Columns("Date:", r.Date)
	if r.PaymentMethod != "" {
		doc.Columns("Payment:", r.PaymentMethod)
	}
	doc.Separator('-')

	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, item.Total)
		if item.Quantity > 1 {
			doc.TextF("  @ %s", printer.FormatAmount(item.UnitPrice))
		}
	}

	doc.Separator('-').
		Amount("Subtotal:", r.SubTotal)
	if r.Discount > 0 {
		doc.Amount("Discount:", -r.Discount)
	}
	doc.Amount("VAT "+r.VATRate+"%:", r.Tax).
		SetBold(true).
		Amount("TOTAL:", r.Total).
		SetBold(false)

	if len(r.Shares) > 1 {
		doc.Separator('-').
			TextF("Split between %d:", len(r.Shares))
		for i, share := range r.Shares {
			doc.Amount(fmt.Sprintf("  Guest %d", i+1), share)
		}
	}

	doc.Separator('-').
		SetAlign(printer.AlignCenter).
		Text(r.Status).
		Text("Thank you!").
		SetAlign(printer.AlignLeft).
		FeedLines(3).
		PartialCut()

	return doc.Bytes()
}

// FormatShiftReport converts a Z- or X-report into ESC/POS bytes.
func FormatShiftReport(report *entity.ShiftReport, storeName string, width int) []byte {
	title := "X-REPORT"
	if report.Final {
		title = "Z-REPORT"
	}

	doc := printer.NewDocument(width)
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		Text(storeName).
		Text(title).
		SetBold(false).
		SetAlign(printer.AlignLeft).
		Separator('-').
		Columns("Terminal:", report.TerminalID).
		Columns("Opened:", report.OpenedAt.Format("2006-01-02 15:04"))
	if report.ClosedAt != nil {
		doc.Columns("Closed:", report.ClosedAt.Format("2006-01-02 15:04"))
	}
	doc.Separator('-')

	for _, m := range report.Methods {
		doc.Amount(fmt.Sprintf("%s (%d)", m.Method, m.Count), m.Total)
	}

	doc.Separator('-').
		Amount(fmt.Sprintf("Collected (%d)", report.PaymentCount), report.TotalCollected).
		Amount("Opening float", report.OpeningFloat).
		Amount("Expected cash", report.ExpectedCash)
	if report.CountedCash != nil {
		doc.Amount("Counted cash", *report.CountedCash)
	}
	if report.Variance != nil {
		doc.SetBold(true).
			Amount("Variance", *report.Variance).
			SetBold(false)
	}

	doc.FeedLines(3).
		PartialCut()
	return doc.Bytes()
}
