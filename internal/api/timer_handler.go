package api

import (
	"alcyxob/climb-tracker/internal/service"
	"alcyxob/climb-tracker/internal/timer"
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// TimerHandler exposes the hang timer of a training session.
type TimerHandler struct {
	timers service.TimerService
}

func NewTimerHandler(timers service.TimerService) *TimerHandler {
	return &TimerHandler{timers: timers}
}

type StartHangRequest struct {
	SetID string `json:"setId"`
}

type TimerResponse struct {
	Phase       timer.Phase `json:"phase"`
	State       timer.State `json:"state"`
	RemainingMs int64       `json:"remainingMs"`
	SetID       string      `json:"setId,omitempty"`
	PrepDone    bool        `json:"prepDone"`
}

func mapSnapshotToResponse(s timer.Snapshot) TimerResponse {
	return TimerResponse{
		Phase:       s.Phase,
		State:       s.State,
		RemainingMs: s.Remaining.Milliseconds(),
		SetID:       s.SetID,
		PrepDone:    s.PrepDone,
	}
}

// GetTimer returns the current timer snapshot. A session without a timer
// reads as idle.
func (h *TimerHandler) GetTimer(c *gin.Context) {
	c.JSON(http.StatusOK, mapSnapshotToResponse(h.timers.Snapshot(c.Param("id"))))
}

// StartHang godoc
// @Summary Start a hang
// @Description Runs prep then hang for a hang set. Without setId the next incomplete hang set is used.
// @Tags Timer
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param set body StartHangRequest false "Hang set"
// @Success 200 {object} TimerResponse
// @Failure 409 {object} gin.H "Timer busy or no hang set left"
// @Router /sessions/{id}/timer/hang [post]
func (h *TimerHandler) StartHang(c *gin.Context) {
	var req StartHangRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	snap, err := h.timers.StartHang(c.Request.Context(), c.Param("id"), req.SetID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSnapshotToResponse(snap))
}

func (h *TimerHandler) Pause(c *gin.Context)  { h.control(c, h.timers.Pause) }
func (h *TimerHandler) Resume(c *gin.Context) { h.control(c, h.timers.Resume) }
func (h *TimerHandler) Skip(c *gin.Context)   { h.control(c, h.timers.Skip) }

// Cancel stops the timer without completing anything.
func (h *TimerHandler) Cancel(c *gin.Context) {
	h.timers.Cancel(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *TimerHandler) control(c *gin.Context, fn func(context.Context, string) (timer.Snapshot, error)) {
	snap, err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSnapshotToResponse(snap))
}
