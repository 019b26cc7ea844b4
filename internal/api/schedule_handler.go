package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"forgefit/gym-api/internal/domain"
	"forgefit/gym-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleHandler serves weekly schedules, enrollment and conflict reports.
type ScheduleHandler struct {
	scheduleService service.ScheduleService
}

func NewScheduleHandler(scheduleService service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// --- Request Structs ---

type ScheduleRequest struct {
	Name        string               `json:"name" binding:"required"`
	Description string               `json:"description"`
	Days        []domain.ScheduleDay `json:"days"`
	IsTemplate  bool                 `json:"isTemplate"`
}

type EnrollmentRequest struct {
	ClientID      string `json:"clientId" binding:"required"`
	DayOfWeek     int    `json:"dayOfWeek" binding:"min=0,max=6"`
	TimeSlotIndex int    `json:"timeSlotIndex" binding:"min=0"`
}

type MaterializeRequest struct {
	WeekStartDate time.Time `json:"weekStartDate" binding:"required"`
}

// --- Handler Methods ---

func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	gymID, coachID, ok := h.gymAndCoach(c)
	if !ok {
		return
	}
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	schedule, err := h.scheduleService.CreateSchedule(c.Request.Context(), &domain.WeeklySchedule{
		GymID:       gymID,
		CoachID:     coachID,
		Name:        req.Name,
		Description: req.Description,
		Days:        req.Days,
		IsTemplate:  req.IsTemplate,
	})
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	respondCreated(c, schedule)
}

func (h *ScheduleHandler) ListCoachSchedules(c *gin.Context) {
	gymID, coachID, ok := h.gymAndCoach(c)
	if !ok {
		return
	}
	var isTemplate *bool
	if v := c.Query("template"); v != "" {
		b := v == "true"
		isTemplate = &b
	}
	schedules, err := h.scheduleService.ListCoachSchedules(c.Request.Context(), gymID, coachID, isTemplate)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list schedules")
		return
	}
	respondList(c, schedules, len(schedules))
}

func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	gymID, scheduleID, ok := h.gymAndSchedule(c)
	if !ok {
		return
	}
	schedule, err := h.scheduleService.GetSchedule(c.Request.Context(), scheduleID, gymID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, schedule)
}

func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	gymID, scheduleID, ok := h.gymAndSchedule(c)
	if !ok {
		return
	}
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	schedule, err := h.scheduleService.GetSchedule(c.Request.Context(), scheduleID, gymID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	schedule.Name = req.Name
	schedule.Description = req.Description
	schedule.Days = req.Days

	if err := h.scheduleService.UpdateSchedule(c.Request.Context(), schedule); err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, schedule)
}

func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	gymID, scheduleID, ok := h.gymAndSchedule(c)
	if !ok {
		return
	}
	if err := h.scheduleService.DeleteSchedule(c.Request.Context(), scheduleID, gymID); err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondMessage(c, "Schedule deleted")
}

func (h *ScheduleHandler) Enroll(c *gin.Context) {
	gymID, scheduleID, ok := h.gymAndSchedule(c)
	if !ok {
		return
	}
	clientID, ref, ok := h.bindEnrollment(c)
	if !ok {
		return
	}

	schedule, err := h.scheduleService.Enroll(c.Request.Context(), scheduleID, gymID, clientID, ref)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, schedule)
}

func (h *ScheduleHandler) Unenroll(c *gin.Context) {
	gymID, scheduleID, ok := h.gymAndSchedule(c)
	if !ok {
		return
	}
	clientID, ref, ok := h.bindEnrollment(c)
	if !ok {
		return
	}

	schedule, err := h.scheduleService.Unenroll(c.Request.Context(), scheduleID, gymID, clientID, ref)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, schedule)
}

func (h *ScheduleHandler) Materialize(c *gin.Context) {
	gymID, scheduleID, ok := h.gymAndSchedule(c)
	if !ok {
		return
	}
	var req MaterializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	schedule, err := h.scheduleService.Materialize(c.Request.Context(), scheduleID, gymID, req.WeekStartDate)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondCreated(c, schedule)
}

func (h *ScheduleHandler) Rollover(c *gin.Context) {
	gymID, scheduleID, ok := h.gymAndSchedule(c)
	if !ok {
		return
	}
	schedule, err := h.scheduleService.Rollover(c.Request.Context(), scheduleID, gymID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondCreated(c, schedule)
}

func (h *ScheduleHandler) Overview(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	schedules, err := h.scheduleService.Overview(c.Request.Context(), gymID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load schedule overview")
		return
	}
	respondList(c, schedules, len(schedules))
}

func (h *ScheduleHandler) ConflictReport(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	conflicts, err := h.scheduleService.ConflictReport(c.Request.Context(), gymID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to build conflict report")
		return
	}
	respondList(c, conflicts, len(conflicts))
}

// --- Helpers ---

func (h *ScheduleHandler) gymAndCoach(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	coachID, ok := parseObjectIDParam(c, "coachId")
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return gymID, coachID, true
}

func (h *ScheduleHandler) gymAndSchedule(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	scheduleID, ok := parseObjectIDParam(c, "scheduleId")
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return gymID, scheduleID, true
}

func (h *ScheduleHandler) bindEnrollment(c *gin.Context) (primitive.ObjectID, service.SlotRef, bool) {
	var req EnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return primitive.NilObjectID, service.SlotRef{}, false
	}
	clientID, err := primitive.ObjectIDFromHex(req.ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid clientId format")
		return primitive.NilObjectID, service.SlotRef{}, false
	}
	return clientID, service.SlotRef{DayOfWeek: req.DayOfWeek, TimeSlotIndex: req.TimeSlotIndex}, true
}

func (h *ScheduleHandler) respondServiceError(c *gin.Context, err error) {
	var conflict *service.EnrollmentConflictError
	if errors.As(err, &conflict) {
		c.AbortWithStatusJSON(http.StatusBadRequest, Response{
			Success: false,
			Message: conflict.Error(),
			Data:    conflict.Conflicts,
		})
		return
	}
	switch {
	case errors.Is(err, service.ErrScheduleNotFound),
		errors.Is(err, service.ErrSlotNotFound),
		errors.Is(err, service.ErrClientNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEnrollmentConflict):
		// Lost a concurrent update race; the caller can retry as-is.
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusBadRequest, err.Error())
	}
}
