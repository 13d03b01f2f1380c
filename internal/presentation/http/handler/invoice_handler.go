package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tablebill-api/internal/application/service"
	"github.com/sangkips/tablebill-api/internal/domain/enum"
	"github.com/sangkips/tablebill-api/internal/domain/repository"
	"github.com/sangkips/tablebill-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tablebill-api/internal/presentation/http/dto/response"
	"github.com/sangkips/tablebill-api/pkg/pagination"
	"github.com/sangkips/tablebill-api/pkg/utils"
)

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// List handles listing invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter request.InvoiceFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.InvoiceFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		TableRef: filter.TableRef,
	}
	params.Pagination.Validate()
	if filter.Status != "" {
		if status, ok := enum.ParseInvoiceStatus(filter.Status); ok {
			params.Status = &status
		}
	}

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(invoices,
		pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total))
	response.SuccessWithPagination(c, http.StatusOK, "Invoices retrieved successfully", result)
}

// Get handles getting an invoice with its order and items
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Invoice retrieved successfully", invoice)
}

// Merge handles folding several invoices of one table into one
func (h *InvoiceHandler) Merge(c *gin.Context) {
	caller, ok := GetCaller(c)
	if !ok {
		return
	}

	var req request.MergeInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	ids, err := utils.ParseUUIDs(req.InvoiceIDs)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.Merge(c.Request.Context(), caller, ids)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Invoices merged successfully", invoice)
}

// SplitItems handles moving selected items to a new invoice
func (h *InvoiceHandler) SplitItems(c *gin.Context) {
	caller, ok := GetCaller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req request.SplitItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	itemIDs, err := utils.ParseUUIDs(req.ItemIDs)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.invoiceService.SplitByItems(c.Request.Context(), caller, id, itemIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Invoice split successfully", result)
}

// SplitPeople handles dividing an invoice total between n people
func (h *InvoiceHandler) SplitPeople(c *gin.Context) {
	caller, ok := GetCaller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	people, err := strconv.Atoi(c.Query("people"))
	if err != nil {
		response.BadRequest(c, "people must be a number")
		return
	}

	split, err := h.invoiceService.SplitByPeople(c.Request.Context(), caller, id, people)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Shares computed successfully", split)
}

// Discount handles setting the invoice discount
func (h *InvoiceHandler) Discount(c *gin.Context) {
	caller, ok := GetCaller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req request.DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	invoice, err := h.invoiceService.ApplyDiscount(c.Request.Context(), caller, id, *req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Discount applied successfully", invoice)
}

// Pay handles recording a full payment
func (h *InvoiceHandler) Pay(c *gin.Context) {
	caller, ok := GetCaller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req request.PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	method, _ := enum.ParsePaymentMethod(req.Method)

	invoice, payment, err := h.invoiceService.Pay(c.Request.Context(), caller, id, &service.PayInput{
		Method: method,
		Amount: *req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Invoice paid successfully", gin.H{
		"invoice": invoice,
		"payment": payment,
	})
}
