package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"forgefit/gym-api/internal/domain"
	"forgefit/gym-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func statusFor(respond func(*gin.Context, error), err error) int {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respond(c, err)
	return w.Code
}

func TestProgressionErrorStatuses(t *testing.T) {
	h := &ProgressionHandler{}

	assert.Equal(t, http.StatusNotFound, statusFor(h.respondServiceError, service.ErrClientNotFound))
	assert.Equal(t, http.StatusBadRequest, statusFor(h.respondServiceError, service.ErrNegativeIncrement))

	// Broken stored data is the server's fault, not the caller's.
	assert.Equal(t, http.StatusInternalServerError, statusFor(h.respondServiceError, domain.ErrProgressionOutOfBounds))
	wrapped := fmt.Errorf("%w: block 2 has no weeks", domain.ErrInvalidProgramStructure)
	assert.Equal(t, http.StatusInternalServerError, statusFor(h.respondServiceError, wrapped))
}

func TestWorkoutErrorStatuses(t *testing.T) {
	h := &WorkoutHandler{}

	assert.Equal(t, http.StatusNotFound, statusFor(h.respondServiceError, service.ErrSessionNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(h.respondServiceError, service.ErrSessionInactive))
	assert.Equal(t, http.StatusInternalServerError, statusFor(h.respondServiceError, domain.ErrProgressionOutOfBounds))
}

func TestScheduleErrorStatuses(t *testing.T) {
	h := &ScheduleHandler{}

	assert.Equal(t, http.StatusNotFound, statusFor(h.respondServiceError, service.ErrScheduleNotFound))

	// Capacity and double-booking are ordinary request failures.
	assert.Equal(t, http.StatusBadRequest, statusFor(h.respondServiceError, service.ErrSlotFull))
	assert.Equal(t, http.StatusBadRequest, statusFor(h.respondServiceError, service.ErrAlreadyEnrolled))

	// Losing the conditional update is retryable, so it keeps a distinct status.
	assert.Equal(t, http.StatusConflict, statusFor(h.respondServiceError, service.ErrEnrollmentConflict))

	conflictErr := &service.EnrollmentConflictError{Conflicts: []service.ClientConflict{{StartTime: "09:00", EndTime: "10:00"}}}
	assert.Equal(t, http.StatusBadRequest, statusFor(h.respondServiceError, conflictErr))
}
