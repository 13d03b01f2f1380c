package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/application/service"
	"github.com/sangkips/tablebill-api/internal/presentation/http/dto/response"
)

// GetStaffID extracts the staff ID from the Gin context
func GetStaffID(c *gin.Context) *uuid.UUID {
	staffIDVal, exists := c.Get("staff_id")
	if !exists {
		return nil
	}
	staffID, ok := staffIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &staffID
}

// GetStaffRoles extracts the staff roles from the Gin context
func GetStaffRoles(c *gin.Context) []string {
	roles, exists := c.Get("staff_roles")
	if !exists {
		return nil
	}
	r, _ := roles.([]string)
	return r
}

// GetStaffPermissions extracts the staff permissions from the Gin context
func GetStaffPermissions(c *gin.Context) []string {
	permissions, exists := c.Get("staff_permissions")
	if !exists {
		return nil
	}
	p, _ := permissions.([]string)
	return p
}

// GetCaller builds the billing caller for the authenticated session. It
// writes a 401 and returns false when there is none.
func GetCaller(c *gin.Context) (service.Caller, bool) {
	staffID := GetStaffID(c)
	if staffID == nil {
		response.Unauthorized(c, "Staff not authenticated")
		return service.Caller{}, false
	}
	return service.NewCaller(*staffID, c.GetString("terminal_id"), GetStaffRoles(c), GetStaffPermissions(c)), true
}

// paramID parses a UUID path parameter, writing a 400 on failure
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
