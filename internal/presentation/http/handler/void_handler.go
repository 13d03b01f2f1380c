package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/application/service"
	"github.com/sangkips/tablebill-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tablebill-api/internal/presentation/http/dto/response"
)

// VoidHandler handles void workflow HTTP requests
type VoidHandler struct {
	voidService *service.VoidService
}

// NewVoidHandler creates a new void handler
func NewVoidHandler(voidService *service.VoidService) *VoidHandler {
	return &VoidHandler{voidService: voidService}
}

// ListPending handles listing undecided void requests
func (h *VoidHandler) ListPending(c *gin.Context) {
	requests, err := h.voidService.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Pending void requests retrieved successfully", requests)
}

// Request handles asking a manager to void an item
func (h *VoidHandler) Request(c *gin.Context) {
	caller, ok := GetCaller(c)
	if !ok {
		return
	}

	var req request.RequestVoidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	voidReq, err := h.voidService.RequestVoid(c.Request.Context(), caller, uuid.MustParse(req.ItemID), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Void requested successfully", voidReq)
}

// Approve handles a manager approving a void with their PIN
func (h *VoidHandler) Approve(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req request.ApproveVoidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	voidReq, err := h.voidService.Approve(c.Request.Context(), id, service.ManagerCredential{
		Username: req.Username,
		PIN:      req.PIN,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Void approved successfully", voidReq)
}

// Reject handles a manager rejecting a void
func (h *VoidHandler) Reject(c *gin.Context) {
	caller, ok := GetCaller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req request.RejectVoidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	voidReq, err := h.voidService.Reject(c.Request.Context(), caller, id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Void rejected successfully", voidReq)
}

// Direct handles voiding an item without a request
func (h *VoidHandler) Direct(c *gin.Context) {
	caller, ok := GetCaller(c)
	if !ok {
		return
	}

	var req request.DirectVoidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.voidService.DirectVoid(c.Request.Context(), caller, uuid.MustParse(req.ItemID), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item voided successfully", item)
}
