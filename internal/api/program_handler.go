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

// ProgramHandler serves program templates and client assignments.
type ProgramHandler struct {
	programService service.ProgramService
}

func NewProgramHandler(programService service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService}
}

// --- Request Structs ---

type ProgramRequest struct {
	Name   string         `json:"name" binding:"required"`
	Blocks []domain.Block `json:"blocks" binding:"required,min=1"`
}

type AssignProgramRequest struct {
	ClientID string `json:"clientId" binding:"required"`
}

// --- Handler Methods ---

func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	userID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	program, err := h.programService.CreateProgram(c.Request.Context(), &domain.Program{
		GymID:      gymID,
		Name:       req.Name,
		Blocks:     req.Blocks,
		IsTemplate: true,
		CreatedBy:  userID,
	})
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	respondCreated(c, program)
}

func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	templatesOnly := c.Query("templates") == "true"
	programs, err := h.programService.ListPrograms(c.Request.Context(), gymID, templatesOnly)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list programs")
		return
	}
	respondList(c, programs, len(programs))
}

func (h *ProgramHandler) GetProgram(c *gin.Context) {
	gymID, programID, ok := h.gymAndProgram(c)
	if !ok {
		return
	}
	program, err := h.programService.GetProgram(c.Request.Context(), programID, gymID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, program)
}

func (h *ProgramHandler) UpdateProgram(c *gin.Context) {
	gymID, programID, ok := h.gymAndProgram(c)
	if !ok {
		return
	}
	var req ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	program, err := h.programService.GetProgram(c.Request.Context(), programID, gymID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	program.Name = req.Name
	program.Blocks = req.Blocks

	if err := h.programService.UpdateProgram(c.Request.Context(), program); err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, program)
}

func (h *ProgramHandler) DeleteProgram(c *gin.Context) {
	gymID, programID, ok := h.gymAndProgram(c)
	if !ok {
		return
	}
	if err := h.programService.DeleteProgram(c.Request.Context(), programID, gymID); err != nil {
		if errors.Is(err, service.ErrProgramInUse) {
			abortWithError(c, http.StatusConflict, err.Error())
			return
		}
		h.respondServiceError(c, err)
		return
	}
	respondMessage(c, "Program deleted")
}

func (h *ProgramHandler) AssignProgram(c *gin.Context) {
	gymID, templateID, ok := h.gymAndProgram(c)
	if !ok {
		return
	}
	userID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req AssignProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	clientID, err := primitive.ObjectIDFromHex(req.ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid clientId format")
		return
	}

	assigned, err := h.programService.AssignProgram(c.Request.Context(), templateID, clientID, gymID, userID)
	if err != nil {
		if errors.Is(err, service.ErrProgramNotTemplate) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.respondServiceError(c, err)
		return
	}
	respondCreated(c, assigned)
}

func (h *ProgramHandler) UnassignProgram(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	clientID, ok := parseObjectIDParam(c, "clientId")
	if !ok {
		return
	}
	if err := h.programService.UnassignProgram(c.Request.Context(), clientID, gymID); err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondMessage(c, "Program unassigned")
}

// --- Helpers ---

func (h *ProgramHandler) gymAndProgram(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	programID, ok := parseObjectIDParam(c, "programId")
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return gymID, programID, true
}

func (h *ProgramHandler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProgramNotFound), errors.Is(err, service.ErrClientNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	default:
		abortWithError(c, http.StatusBadRequest, err.Error())
	}
}
