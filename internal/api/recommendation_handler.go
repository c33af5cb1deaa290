package api

import (
	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RecommendationHandler serves the suggested parameters for the next session.
type RecommendationHandler struct {
	sessions service.SessionService
}

func NewRecommendationHandler(sessions service.SessionService) *RecommendationHandler {
	return &RecommendationHandler{sessions: sessions}
}

type VolumeRecommendationResponse struct {
	TargetLevel  int    `json:"targetLevel"`
	BoulderCount int    `json:"boulderCount"`
	Reason       string `json:"reason"`
}

type TrainingRecommendationResponse struct {
	HangWeight    float64           `json:"hangWeight"`
	PullupWeight  float64           `json:"pullupWeight"`
	BenchWeight   float64           `json:"benchWeight"`
	TrapBarWeight float64           `json:"trapBarWeight"`
	Progressed    []domain.Exercise `json:"progressed"`
	Reason        string            `json:"reason"`
}

// GetVolumeRecommendation godoc
// @Summary Recommend the next volume session
// @Description Based on the fail rate of the last finished volume session and the days since.
// @Tags Recommendations
// @Produce json
// @Success 200 {object} VolumeRecommendationResponse
// @Router /recommendations/volume [get]
func (h *RecommendationHandler) GetVolumeRecommendation(c *gin.Context) {
	rec, err := h.sessions.RecommendVolume(c.Request.Context())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, VolumeRecommendationResponse{
		TargetLevel:  rec.Level,
		BoulderCount: rec.BoulderCount,
		Reason:       rec.Reason,
	})
}

// GetTrainingRecommendation godoc
// @Summary Recommend the next training weights
// @Tags Recommendations
// @Produce json
// @Success 200 {object} TrainingRecommendationResponse
// @Router /recommendations/training [get]
func (h *RecommendationHandler) GetTrainingRecommendation(c *gin.Context) {
	rec, err := h.sessions.RecommendTraining(c.Request.Context())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	progressed := rec.Progressed
	if progressed == nil {
		progressed = []domain.Exercise{}
	}
	c.JSON(http.StatusOK, TrainingRecommendationResponse{
		HangWeight:    rec.Weights.Hang,
		PullupWeight:  rec.Weights.Pullup,
		BenchWeight:   rec.Weights.Bench,
		TrapBarWeight: rec.Weights.TrapBar,
		Progressed:    progressed,
		Reason:        rec.Reason,
	})
}
