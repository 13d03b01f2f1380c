package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/application/service"
	"github.com/sangkips/tablebill-api/internal/domain/enum"
	"github.com/sangkips/tablebill-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tablebill-api/internal/presentation/http/dto/response"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// ListOpen handles listing the open tab of every table
func (h *OrderHandler) ListOpen(c *gin.Context) {
	orders, err := h.orderService.ListOpen(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Open orders retrieved successfully", orders)
}

// Open handles opening (or resuming) the order of a table
func (h *OrderHandler) Open(c *gin.Context) {
	caller, ok := GetCaller(c)
	if !ok {
		return
	}

	var req request.OpenOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, created, err := h.orderService.OpenOrder(c.Request.Context(), caller, &service.OpenOrderInput{
		TableRef: req.TableRef,
		Note:     req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if created {
		response.Created(c, "Order opened successfully", order)
		return
	}
	response.OK(c, "Table already has an open order", order)
}

// Get handles getting an order with its items
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Order retrieved successfully", order)
}

// AddItem handles adding a dish to an open order
func (h *OrderHandler) AddItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req request.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.orderService.AddItem(c.Request.Context(), id, &service.AddItemInput{
		DishID:   uuid.MustParse(req.DishID),
		Quantity: req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Item added successfully", item)
}

// TransitionItem handles moving an item along the kitchen flow
func (h *OrderHandler) TransitionItem(c *gin.Context) {
	id, ok := paramID(c, "itemId")
	if !ok {
		return
	}

	var req request.TransitionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	next, known := enum.ParseItemStatus(req.Status)
	if !known {
		response.ErrorWithCode(c, http.StatusUnprocessableEntity, "Unknown item status "+req.Status)
		return
	}

	item, err := h.orderService.TransitionItem(c.Request.Context(), id, next)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item status updated successfully", item)
}

// Checkout handles closing an order into its invoice
func (h *OrderHandler) Checkout(c *gin.Context) {
	caller, ok := GetCaller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	invoice, created, err := h.orderService.Checkout(c.Request.Context(), caller, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	if created {
		response.Created(c, "Invoice created successfully", invoice)
		return
	}
	response.OK(c, "Order was already checked out", invoice)
}
