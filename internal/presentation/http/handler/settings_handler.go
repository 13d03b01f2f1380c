package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tablebill-api/internal/application/service"
	"github.com/sangkips/tablebill-api/internal/presentation/http/dto/response"
)

// SettingsHandler handles settings-related HTTP requests
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetBillingSettings returns the VAT rate and limits the billing engine uses
func (h *SettingsHandler) GetBillingSettings(c *gin.Context) {
	settings := h.settingsService.GetBillingSettings(c.Request.Context())
	response.OK(c, "Settings retrieved successfully", settings)
}
