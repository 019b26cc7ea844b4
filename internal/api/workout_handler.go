package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"forgefit/gym-api/internal/domain"
	"forgefit/gym-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler serves workout session tracking.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- Request Structs ---

type StartSessionRequest struct {
	Day int `json:"day" binding:"min=0"`
}

type CompleteSetRequest struct {
	ActivityID string `json:"activityId" binding:"required"`
	SetNumber  int    `json:"setNumber" binding:"required,min=1"`
}

// --- Handler Methods ---

func (h *WorkoutHandler) StartSession(c *gin.Context) {
	gymID, clientID, ok := h.gymAndClient(c)
	if !ok {
		return
	}
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	session, err := h.workoutService.StartSession(c.Request.Context(), clientID, gymID, req.Day)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondCreated(c, session)
}

func (h *WorkoutHandler) GetActiveSession(c *gin.Context) {
	gymID, clientID, ok := h.gymAndClient(c)
	if !ok {
		return
	}
	day, err := strconv.Atoi(c.DefaultQuery("day", "0"))
	if err != nil || day < 0 {
		abortWithError(c, http.StatusBadRequest, "Invalid day parameter")
		return
	}

	session, err := h.workoutService.GetActiveSession(c.Request.Context(), clientID, gymID, day)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, session)
}

func (h *WorkoutHandler) GetSession(c *gin.Context) {
	gymID, sessionID, ok := h.gymAndSession(c)
	if !ok {
		return
	}
	session, err := h.workoutService.GetSession(c.Request.Context(), sessionID, gymID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, session)
}

func (h *WorkoutHandler) CompleteSet(c *gin.Context) {
	gymID, sessionID, ok := h.gymAndSession(c)
	if !ok {
		return
	}
	var req CompleteSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	activityID, err := primitive.ObjectIDFromHex(req.ActivityID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid activityId format")
		return
	}

	result, err := h.workoutService.CompleteSet(c.Request.Context(), sessionID, gymID, activityID, req.SetNumber)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, result)
}

func (h *WorkoutHandler) EndSession(c *gin.Context) {
	gymID, sessionID, ok := h.gymAndSession(c)
	if !ok {
		return
	}
	session, err := h.workoutService.EndSession(c.Request.Context(), sessionID, gymID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, session)
}

// --- Helpers ---

func (h *WorkoutHandler) gymAndClient(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	clientID, ok := parseObjectIDParam(c, "clientId")
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return gymID, clientID, true
}

func (h *WorkoutHandler) gymAndSession(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	sessionID, ok := parseObjectIDParam(c, "sessionId")
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return gymID, sessionID, true
}

func (h *WorkoutHandler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrClientNotFound),
		errors.Is(err, service.ErrProgramNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSessionInactive):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrProgressionOutOfBounds), errors.Is(err, domain.ErrInvalidProgramStructure):
		abortWithError(c, http.StatusInternalServerError, err.Error())
	default:
		abortWithError(c, http.StatusBadRequest, err.Error())
	}
}
