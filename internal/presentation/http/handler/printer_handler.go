package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tablebill-api/internal/application/service"
	"github.com/sangkips/tablebill-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tablebill-api/internal/presentation/http/dto/response"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the current printer connection status.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	status := h.printerService.GetStatus(c.Request.Context())
	response.OK(c, "Printer status retrieved", status)
}

// PrintInvoice prints an invoice slip, optionally with per-person shares.
func (h *PrinterHandler) PrintInvoice(c *gin.Context) {
	caller, ok := GetCaller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req request.PrintInvoiceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request: "+err.Error())
			return
		}
	}

	receipt, err := h.printerService.PrintInvoice(c.Request.Context(), caller, id, req.People)
	if err != nil {
		// If receipt was built but printing failed, return receipt with warning
		if receipt != nil {
			response.OK(c, "Receipt generated but printing failed", gin.H{
				"receipt": receipt,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}
	response.OK(c, "Invoice printed successfully", gin.H{
		"receipt": receipt,
	})
}

// PrintShiftReport prints the X- or Z-report of a shift.
func (h *PrinterHandler) PrintShiftReport(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	report, err := h.printerService.PrintShiftReport(c.Request.Context(), id)
	if err != nil {
		if report != nil {
			response.OK(c, "Report generated but printing failed", gin.H{
				"report":  report,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}
	response.OK(c, "Shift report printed successfully", gin.H{
		"report": report,
	})
}
