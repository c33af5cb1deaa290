package api

import (
	"alcyxob/climb-tracker/internal/service"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type TokenRequest struct {
	Passphrase string `json:"passphrase" binding:"required"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IssueToken godoc
// @Summary Get a device token
// @Description Exchanges the owner passphrase for a JWT.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body TokenRequest true "Passphrase"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} gin.H "Invalid input or auth not configured"
// @Failure 401 {object} gin.H "Wrong passphrase"
// @Router /auth/token [post]
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, expiresAt, err := h.authService.IssueToken(c.Request.Context(), req.Passphrase)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuthenticationFailed):
			abortWithError(c, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrAuthDisabled):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			log.Printf("ERROR: Token generation failed: %v", err)
			abortWithError(c, http.StatusInternalServerError, "Could not issue token")
		}
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Token: token, ExpiresAt: expiresAt})
}
