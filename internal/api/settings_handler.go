package api

import (
	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/service"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settings service.SettingsService
}

func NewSettingsHandler(settings service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

type ThemeRequest struct {
	Theme domain.Theme `json:"theme" binding:"required"`
}

type ThemeResponse struct {
	Theme domain.Theme `json:"theme"`
}

func (h *SettingsHandler) GetTheme(c *gin.Context) {
	theme, err := h.settings.Theme(c.Request.Context())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ThemeResponse{Theme: theme})
}

// SetTheme stores the display theme ("dark" or "light").
func (h *SettingsHandler) SetTheme(c *gin.Context) {
	var req ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	if err := h.settings.SetTheme(c.Request.Context(), req.Theme); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ThemeResponse{Theme: req.Theme})
}
