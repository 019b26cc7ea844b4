package api

import (
	"errors"
	"fmt"
	"net/http"

	"forgefit/gym-api/internal/domain"
	"forgefit/gym-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressionHandler serves progression pointer moves and workout previews.
type ProgressionHandler struct {
	progressionService service.ProgressionService
}

func NewProgressionHandler(progressionService service.ProgressionService) *ProgressionHandler {
	return &ProgressionHandler{progressionService: progressionService}
}

// --- Request Structs ---

// AdvanceRequest moves the pointer by the given increments. Absent fields
// default to the standard one-week step.
type AdvanceRequest struct {
	Blocks *int `json:"blocks" binding:"omitempty,min=0"`
	Weeks  *int `json:"weeks" binding:"omitempty,min=0"`
}

func (r AdvanceRequest) increments() (blocks, weeks int) {
	blocks, weeks = 0, 1
	if r.Blocks != nil {
		blocks = *r.Blocks
	}
	if r.Weeks != nil {
		weeks = *r.Weeks
	}
	return blocks, weeks
}

type ResetProgressionRequest struct {
	Block int `json:"block" binding:"min=0"`
	Week  int `json:"week" binding:"min=0"`
}

// --- Handler Methods ---

func (h *ProgressionHandler) Advance(c *gin.Context) {
	gymID, clientID, ok := h.gymAndClient(c)
	if !ok {
		return
	}
	var req AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	blocks, weeks := req.increments()
	result, err := h.progressionService.Advance(c.Request.Context(), clientID, gymID, blocks, weeks)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, result)
}

func (h *ProgressionHandler) Reset(c *gin.Context) {
	gymID, clientID, ok := h.gymAndClient(c)
	if !ok {
		return
	}
	var req ResetProgressionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	result, err := h.progressionService.Reset(c.Request.Context(), clientID, gymID, domain.Position{Block: req.Block, Week: req.Week})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, result)
}

func (h *ProgressionHandler) GetCurrentWorkout(c *gin.Context) {
	gymID, clientID, ok := h.gymAndClient(c)
	if !ok {
		return
	}
	workout, err := h.progressionService.GetCurrentWorkout(c.Request.Context(), clientID, gymID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, workout)
}

// AdvanceAll moves every active client with a program in the gym.
func (h *ProgressionHandler) AdvanceAll(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	blocks, weeks := req.increments()
	outcomes, err := h.progressionService.AdvanceAll(c.Request.Context(), gymID, blocks, weeks)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondList(c, outcomes, len(outcomes))
}

// RunWeeklyProgression is the admin hook for the weekly scheduler.
func (h *ProgressionHandler) RunWeeklyProgression(c *gin.Context) {
	outcomes, err := h.progressionService.RunWeeklyProgression(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondList(c, outcomes, len(outcomes))
}

// --- Helpers ---

func (h *ProgressionHandler) gymAndClient(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
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

func (h *ProgressionHandler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClientNotFound), errors.Is(err, service.ErrProgramNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrProgressionOutOfBounds), errors.Is(err, domain.ErrInvalidProgramStructure):
		// Data-integrity failures: the stored pointer or program shape is
		// broken, not the request.
		abortWithError(c, http.StatusInternalServerError, err.Error())
	default:
		abortWithError(c, http.StatusBadRequest, err.Error())
	}
}
