package api

import (
	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/repository"
	"alcyxob/climb-tracker/internal/service"
	"alcyxob/climb-tracker/internal/timer"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// User-facing messages for write failures.
const (
	msgQuotaExceeded      = "Storage is full. Delete old sessions to free up space."
	msgStorageUnavailable = "Storage is unavailable. Try again later."
)

// abortWithServiceError maps service and repository errors to HTTP responses.
func abortWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		// The client holds a stale copy and should reload.
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Session not found", "reload": true})

	case errors.Is(err, repository.ErrQuotaExceeded):
		abortWithError(c, http.StatusInsufficientStorage, msgQuotaExceeded)
	case errors.Is(err, repository.ErrStorageUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, msgStorageUnavailable)

	case errors.Is(err, service.ErrAttemptNotFound),
		errors.Is(err, service.ErrSetNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrPreconditionViolated),
		errors.Is(err, service.ErrHangRequiresTimer),
		errors.Is(err, service.ErrNoHangSetLeft),
		errors.Is(err, service.ErrSetAlreadyCompleted),
		errors.Is(err, timer.ErrBusy),
		errors.Is(err, timer.ErrIdle),
		errors.Is(err, timer.ErrNotPausable),
		errors.Is(err, timer.ErrNotSkippable),
		errors.Is(err, timer.ErrNotRunning),
		errors.Is(err, timer.ErrNotPaused):
		abortWithError(c, http.StatusConflict, err.Error())

	case errors.Is(err, service.ErrWrongSessionType),
		errors.Is(err, service.ErrInvalidResult),
		errors.Is(err, service.ErrInvalidParams),
		errors.Is(err, service.ErrNotHangSet),
		errors.Is(err, domain.ErrInvalidTheme),
		errors.Is(err, domain.ErrInvalidSession):
		abortWithError(c, http.StatusBadRequest, err.Error())

	default:
		log.Printf("ERROR: Unhandled error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
