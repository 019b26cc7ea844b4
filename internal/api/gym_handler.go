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

// GymHandler serves gym, membership and location endpoints.
type GymHandler struct {
	gymService service.GymService
}

func NewGymHandler(gymService service.GymService) *GymHandler {
	return &GymHandler{gymService: gymService}
}

// --- Request Structs ---

type CreateGymRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Address     string `json:"address" binding:"required"`
	Phone       string `json:"phone"`
	Email       string `json:"email" binding:"omitempty,email"`
}

type AddMemberRequest struct {
	UserID string         `json:"userId" binding:"required"`
	Role   domain.GymRole `json:"role" binding:"required,oneof=owner trainer client"`
}

type UpdateMemberRoleRequest struct {
	Role domain.GymRole `json:"role" binding:"required,oneof=owner trainer client"`
}

type LocationRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

// --- Handler Methods ---

func (h *GymHandler) CreateGym(c *gin.Context) {
	var req CreateGymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	ownerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Invalid user identity")
		return
	}

	gym := &domain.Gym{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		Phone:       req.Phone,
		Email:       req.Email,
	}
	created, err := h.gymService.CreateGym(c.Request.Context(), gym, ownerID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	respondCreated(c, created)
}

func (h *GymHandler) ListGyms(c *gin.Context) {
	gyms, err := h.gymService.ListGyms(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list gyms")
		return
	}
	respondList(c, gyms, len(gyms))
}

func (h *GymHandler) GetGym(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	gym, err := h.gymService.GetGym(c.Request.Context(), gymID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, gym)
}

func (h *GymHandler) UpdateGym(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req CreateGymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	gym, err := h.gymService.GetGym(c.Request.Context(), gymID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	gym.Name = req.Name
	gym.Description = req.Description
	gym.Address = req.Address
	gym.Phone = req.Phone
	gym.Email = req.Email

	if err := h.gymService.UpdateGym(c.Request.Context(), gym); err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, gym)
}

func (h *GymHandler) DeactivateGym(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.gymService.DeactivateGym(c.Request.Context(), gymID); err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondMessage(c, "Gym deactivated")
}

func (h *GymHandler) AddMember(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid userId format")
		return
	}

	membership, err := h.gymService.AddMember(c.Request.Context(), gymID, userID, req.Role)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyMember) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrGymNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusBadRequest, err.Error())
		}
		return
	}
	respondCreated(c, membership)
}

func (h *GymHandler) ListCoaches(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	coaches, err := h.gymService.ListCoaches(c.Request.Context(), gymID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list coaches")
		return
	}
	respondList(c, coaches, len(coaches))
}

func (h *GymHandler) UpdateMemberRole(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	userID, ok := parseObjectIDParam(c, "userId")
	if !ok {
		return
	}
	var req UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.gymService.UpdateMemberRole(c.Request.Context(), gymID, userID, req.Role); err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondMessage(c, "Member role updated")
}

func (h *GymHandler) RemoveCoach(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	userID, ok := parseObjectIDParam(c, "userId")
	if !ok {
		return
	}

	if err := h.gymService.RemoveCoach(c.Request.Context(), gymID, userID); err != nil {
		if errors.Is(err, service.ErrCoachHasSchedules) {
			abortWithError(c, http.StatusConflict, err.Error())
			return
		}
		h.respondServiceError(c, err)
		return
	}
	respondMessage(c, "Coach removed from gym")
}

func (h *GymHandler) CreateLocation(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	location, err := h.gymService.CreateLocation(c.Request.Context(), &domain.Location{
		GymID:   gymID,
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	respondCreated(c, location)
}

func (h *GymHandler) ListLocations(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	locations, err := h.gymService.ListLocations(c.Request.Context(), gymID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list locations")
		return
	}
	respondList(c, locations, len(locations))
}

func (h *GymHandler) UpdateLocation(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	locationID, ok := parseObjectIDParam(c, "locationId")
	if !ok {
		return
	}
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	location := &domain.Location{
		ID:      locationID,
		GymID:   gymID,
		Name:    req.Name,
		Address: req.Address,
	}
	if err := h.gymService.UpdateLocation(c.Request.Context(), location); err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, location)
}

func (h *GymHandler) DeleteLocation(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	locationID, ok := parseObjectIDParam(c, "locationId")
	if !ok {
		return
	}
	if err := h.gymService.DeleteLocation(c.Request.Context(), locationID, gymID); err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondMessage(c, "Location deleted")
}

func (h *GymHandler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGymNotFound),
		errors.Is(err, service.ErrMembershipNotFound),
		errors.Is(err, service.ErrLocationNotFound),
		errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	default:
		abortWithError(c, http.StatusBadRequest, err.Error())
	}
}
