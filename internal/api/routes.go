package api

import (
	"alcyxob/climb-tracker/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	authService service.AuthService,
	sessionService service.SessionService,
	timerService service.TimerService,
	settingsService service.SettingsService,
) {
	authHandler := NewAuthHandler(authService)
	sessionHandler := NewSessionHandler(sessionService, timerService)
	timerHandler := NewTimerHandler(timerService)
	recommendationHandler := NewRecommendationHandler(sessionService)
	settingsHandler := NewSettingsHandler(settingsService)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/token", authHandler.IssueToken)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(authService))
	{
		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.GET("", sessionHandler.ListSessions)
			sessionGroup.POST("/volume", sessionHandler.StartVolume)
			sessionGroup.POST("/training", sessionHandler.StartTraining)
			sessionGroup.GET("/current", sessionHandler.GetCurrentSession)
			sessionGroup.GET("/:id", sessionHandler.GetSession)
			sessionGroup.DELETE("/:id", sessionHandler.AbandonSession)
			sessionGroup.GET("/:id/gate", sessionHandler.GetCompletionGate)
			sessionGroup.POST("/:id/finish", sessionHandler.FinishSession)

			// Volume
			sessionGroup.PUT("/:id/attempts/:attemptId", sessionHandler.LogAttempt)

			// Training
			sessionGroup.POST("/:id/sets/:setId/toggle", sessionHandler.ToggleSet)
			sessionGroup.PUT("/:id/sets/:setId/notes", sessionHandler.UpdateSetNotes)

			timerGroup := sessionGroup.Group("/:id/timer")
			{
				timerGroup.GET("", timerHandler.GetTimer)
				timerGroup.DELETE("", timerHandler.Cancel)
				timerGroup.POST("/hang", timerHandler.StartHang)
				timerGroup.POST("/pause", timerHandler.Pause)
				timerGroup.POST("/resume", timerHandler.Resume)
				timerGroup.POST("/skip", timerHandler.Skip)
			}
		}

		recommendationGroup := protected.Group("/recommendations")
		{
			recommendationGroup.GET("/volume", recommendationHandler.GetVolumeRecommendation)
			recommendationGroup.GET("/training", recommendationHandler.GetTrainingRecommendation)
		}

		settingsGroup := protected.Group("/settings")
		{
			settingsGroup.GET("/theme", settingsHandler.GetTheme)
			settingsGroup.PUT("/theme", settingsHandler.SetTheme)
		}
	}
}
