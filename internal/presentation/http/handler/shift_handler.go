package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tablebill-api/internal/application/service"
	"github.com/sangkips/tablebill-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tablebill-api/internal/presentation/http/dto/response"
)

// ShiftHandler handles shift ledger HTTP requests
type ShiftHandler struct {
	shiftService *service.ShiftService
}

// NewShiftHandler creates a new shift handler
func NewShiftHandler(shiftService *service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftService: shiftService}
}

// Open handles opening a shift for the calling cashier
func (h *ShiftHandler) Open(c *gin.Context) {
	caller, ok := GetCaller(c)
	if !ok {
		return
	}

	var req request.OpenShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	shift, err := h.shiftService.OpenShift(c.Request.Context(), caller, &service.OpenShiftInput{
		TerminalID:   req.TerminalID,
		OpeningFloat: req.OpeningFloat,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Shift opened successfully", shift)
}

// Current handles getting the calling cashier's open shift
func (h *ShiftHandler) Current(c *gin.Context) {
	caller, ok := GetCaller(c)
	if !ok {
		return
	}

	shift, err := h.shiftService.CurrentShift(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Shift retrieved successfully", shift)
}

// Close handles closing a shift with the counted cash
func (h *ShiftHandler) Close(c *gin.Context) {
	caller, ok := GetCaller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req request.CloseShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	shift, err := h.shiftService.CloseShift(c.Request.Context(), caller, id, &service.CloseShiftInput{
		CountedCash: *req.CountedCash,
		Note:        req.Note,
		Override:    req.Override,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Shift closed successfully", shift)
}

// ZReport handles the final report of a closed shift
func (h *ShiftHandler) ZReport(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	report, err := h.shiftService.ZReport(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Z-report generated successfully", report)
}

// XReport handles the interim report of an open shift
func (h *ShiftHandler) XReport(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	report, err := h.shiftService.XReport(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "X-report generated successfully", report)
}
