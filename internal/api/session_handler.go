package api

import (
	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/service"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionHandler serves the session lifecycle. Lifecycle events that affect
// the hang timer are forwarded to the timer service.
type SessionHandler struct {
	sessions service.SessionService
	timers   service.TimerService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions service.SessionService, timers service.TimerService) *SessionHandler {
	return &SessionHandler{sessions: sessions, timers: timers}
}

// --- DTOs ---

type StartVolumeRequest struct {
	TargetLevel  *int `json:"targetLevel" binding:"omitempty,min=1"`
	BoulderCount *int `json:"boulderCount" binding:"omitempty,min=0,max=200"`
}

type StartTrainingRequest struct {
	HangWeight    *float64 `json:"hangWeight" binding:"omitempty,min=0"`
	PullupWeight  *float64 `json:"pullupWeight" binding:"omitempty,min=0"`
	BenchWeight   *float64 `json:"benchWeight" binding:"omitempty,min=0"`
	TrapBarWeight *float64 `json:"trapBarWeight" binding:"omitempty,min=0"`
}

type LogAttemptRequest struct {
	Result  domain.AttemptResult `json:"result" binding:"required,oneof=flash done fail"`
	Comment string               `json:"comment"`
}

type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

type AttemptResponse struct {
	ID        string               `json:"id"`
	Order     int                  `json:"order"`
	Result    domain.AttemptResult `json:"result,omitempty"`
	Comment   string               `json:"comment,omitempty"`
	Timestamp *time.Time           `json:"timestamp,omitempty"`
}

type SetResponse struct {
	ID        string          `json:"id"`
	Order     int             `json:"order"`
	Exercise  domain.Exercise `json:"exercise"`
	Completed bool            `json:"completed"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}

type ExerciseResponse struct {
	Exercise  domain.Exercise `json:"exercise"`
	Name      string          `json:"name"`
	Weight    float64         `json:"weight"`
	Completed int             `json:"completed"`
	Total     int             `json:"total"`
	Sets      []SetResponse   `json:"sets"`
}

// SessionStatsResponse carries the derived numbers views display.
type SessionStatsResponse struct {
	Flash         int     `json:"flash"`
	Done          int     `json:"done"`
	Fail          int     `json:"fail"`
	Unlogged      int     `json:"unlogged"`
	FailRate      float64 `json:"failRate"`
	CompletedSets int     `json:"completedSets"`
	TotalSets     int     `json:"totalSets"`
	Duration      string  `json:"duration"`
}

type SessionResponse struct {
	ID          string             `json:"id"`
	SessionType domain.SessionType `json:"sessionType"`
	Date        time.Time          `json:"date"`
	StartTime   time.Time          `json:"startTime"`
	EndTime     *time.Time         `json:"endTime,omitempty"`
	IsFinished  bool               `json:"isFinished"`

	TargetLevel  *int              `json:"targetLevel,omitempty"`
	BoulderCount *int              `json:"boulderCount,omitempty"`
	Attempts     []AttemptResponse `json:"attempts,omitempty"`

	Exercises []ExerciseResponse `json:"exercises,omitempty"`

	Stats SessionStatsResponse `json:"stats"`
}

// MapSessionToResponse converts a domain session to its API form.
func MapSessionToResponse(s *domain.Session) SessionResponse {
	resp := SessionResponse{
		ID:          s.ID,
		SessionType: s.Type,
		Date:        s.Date,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		IsFinished:  s.IsFinished,
	}

	counts := s.AttemptCounts()
	sets := s.SetCounts()
	resp.Stats = SessionStatsResponse{
		Flash:         counts.Flash,
		Done:          counts.Done,
		Fail:          counts.Fail,
		Unlogged:      counts.Unlogged,
		FailRate:      s.FailRate(),
		CompletedSets: sets.Completed,
		TotalSets:     sets.Total,
		Duration:      s.FormattedDuration(),
	}

	switch s.Type {
	case domain.SessionVolume:
		if s.Volume == nil {
			break
		}
		level, count := s.Volume.TargetLevel, s.Volume.BoulderCount
		resp.TargetLevel, resp.BoulderCount = &level, &count
		resp.Attempts = make([]AttemptResponse, len(s.Volume.Attempts))
		for i, a := range s.Volume.Attempts {
			resp.Attempts[i] = AttemptResponse{
				ID:        a.ID,
				Order:     a.Order,
				Result:    a.Result,
				Comment:   a.Comment,
				Timestamp: a.Timestamp,
			}
		}
	case domain.SessionTraining:
		if s.Training == nil {
			break
		}
		for _, e := range domain.Exercises() {
			setCounts := s.ExerciseSetCounts(e)
			ex := ExerciseResponse{
				Exercise:  e,
				Name:      e.DisplayName(),
				Weight:    s.Training.Weight(e),
				Completed: setCounts.Completed,
				Total:     setCounts.Total,
				Sets:      []SetResponse{},
			}
			for _, set := range s.Training.Sets(e) {
				ex.Sets = append(ex.Sets, SetResponse{
					ID:        set.ID,
					Order:     set.Order,
					Exercise:  set.Exercise,
					Completed: set.Completed,
					Timestamp: set.Timestamp,
					Notes:     set.Notes,
				})
			}
			resp.Exercises = append(resp.Exercises, ex)
		}
	}
	return resp
}

func MapSessionsToResponse(sessions []domain.Session) []SessionResponse {
	responses := make([]SessionResponse, len(sessions))
	for i := range sessions {
		responses[i] = MapSessionToResponse(&sessions[i])
	}
	return responses
}

// --- Handler Methods ---

// ListSessions godoc
// @Summary List sessions
// @Description Returns all sessions, newest first.
// @Tags Sessions
// @Produce json
// @Success 200 {array} SessionResponse
// @Router /sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	sessions, err := h.sessions.List(c.Request.Context())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapSessionsToResponse(sessions))
}

// StartVolume godoc
// @Summary Start a volume session
// @Description Omitted fields are taken from the volume recommendation.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param params body StartVolumeRequest false "Level and boulder count"
// @Success 201 {object} SessionResponse
// @Failure 409 {object} gin.H "A session is already active"
// @Router /sessions/volume [post]
func (h *SessionHandler) StartVolume(c *gin.Context) {
	var req StartVolumeRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	ctx := c.Request.Context()
	params := service.VolumeParams{}
	if req.TargetLevel == nil || req.BoulderCount == nil {
		rec, err := h.sessions.RecommendVolume(ctx)
		if err != nil {
			abortWithServiceError(c, err)
			return
		}
		params.TargetLevel, params.BoulderCount = rec.Level, rec.BoulderCount
	}
	if req.TargetLevel != nil {
		params.TargetLevel = *req.TargetLevel
	}
	if req.BoulderCount != nil {
		params.BoulderCount = *req.BoulderCount
	}

	session, err := h.sessions.StartVolume(ctx, params)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapSessionToResponse(session))
}

// StartTraining godoc
// @Summary Start a training session
// @Description Omitted weights are taken from the training recommendation.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param params body StartTrainingRequest false "Weights in kg"
// @Success 201 {object} SessionResponse
// @Failure 409 {object} gin.H "A session is already active"
// @Router /sessions/training [post]
func (h *SessionHandler) StartTraining(c *gin.Context) {
	var req StartTrainingRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	ctx := c.Request.Context()
	rec, err := h.sessions.RecommendTraining(ctx)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	weights := rec.Weights
	override(&weights.Hang, req.HangWeight)
	override(&weights.Pullup, req.PullupWeight)
	override(&weights.Bench, req.BenchWeight)
	override(&weights.TrapBar, req.TrapBarWeight)

	session, err := h.sessions.StartTraining(ctx, weights)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapSessionToResponse(session))
}

// GetCurrentSession returns the active session, or 404 when there is none.
func (h *SessionHandler) GetCurrentSession(c *gin.Context) {
	session, err := h.sessions.Current(c.Request.Context())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	if session == nil {
		abortWithError(c, http.StatusNotFound, "No active session")
		return
	}
	c.JSON(http.StatusOK, MapSessionToResponse(session))
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapSessionToResponse(session))
}

// LogAttempt godoc
// @Summary Log a boulder attempt
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param attemptId path string true "Attempt ID"
// @Param attempt body LogAttemptRequest true "Result and comment"
// @Success 200 {object} SessionResponse
// @Failure 404 {object} gin.H "Session or attempt not found"
// @Router /sessions/{id}/attempts/{attemptId} [put]
func (h *SessionHandler) LogAttempt(c *gin.Context) {
	var req LogAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	session, err := h.sessions.LogAttempt(c.Request.Context(), c.Param("id"), c.Param("attemptId"), req.Result, req.Comment)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapSessionToResponse(session))
}

// ToggleSet flips a set. Completing a non-hang set starts the rest timer.
func (h *SessionHandler) ToggleSet(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID, setID := c.Param("id"), c.Param("setId")

	session, err := h.sessions.ToggleSet(ctx, sessionID, setID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	if session.Training == nil {
		c.JSON(http.StatusOK, MapSessionToResponse(session))
		return
	}
	if set, ok := session.Training.FindSet(setID); ok && set.Completed {
		if _, err := h.timers.StartRest(ctx, sessionID); err != nil {
			// A hang in progress keeps running; the set is still recorded.
			log.Printf("WARN: Rest timer not started for session %s: %v", sessionID, err)
		}
	}
	c.JSON(http.StatusOK, MapSessionToResponse(session))
}

func (h *SessionHandler) UpdateSetNotes(c *gin.Context) {
	var req UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	session, err := h.sessions.UpdateSetNotes(c.Request.Context(), c.Param("id"), c.Param("setId"), req.Notes)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapSessionToResponse(session))
}

// GetCompletionGate reports whether finishing needs confirmation.
func (h *SessionHandler) GetCompletionGate(c *gin.Context) {
	gate, err := h.sessions.CompletionGate(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gate)
}

// FinishSession godoc
// @Summary Finish a session
// @Description Finishes unconditionally; check the completion gate first.
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SessionResponse
// @Failure 409 {object} gin.H "Session already finished"
// @Router /sessions/{id}/finish [post]
func (h *SessionHandler) FinishSession(c *gin.Context) {
	sessionID := c.Param("id")
	session, err := h.sessions.Finish(c.Request.Context(), sessionID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	h.timers.Release(sessionID)
	c.JSON(http.StatusOK, MapSessionToResponse(session))
}

// AbandonSession deletes an active session. This cannot be undone.
func (h *SessionHandler) AbandonSession(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.sessions.Abandon(c.Request.Context(), sessionID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	h.timers.Release(sessionID)
	c.Status(http.StatusNoContent)
}

// bindOptionalJSON binds a JSON body if one was sent.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func override(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
