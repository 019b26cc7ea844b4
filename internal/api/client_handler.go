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

// ClientHandler serves client records, benchmarks and progress photos.
type ClientHandler struct {
	clientService service.ClientService
}

func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// --- Request Structs ---

type CreateClientRequest struct {
	UserID    string  `json:"userId"`
	Email     string  `json:"email" binding:"required,email"`
	FirstName string  `json:"firstName" binding:"required"`
	LastName  string  `json:"lastName"`
	Weight    float64 `json:"weight" binding:"omitempty,gt=0"`
}

type UpdateClientRequest struct {
	Email            string              `json:"email" binding:"required,email"`
	FirstName        string              `json:"firstName" binding:"required"`
	LastName         string              `json:"lastName"`
	Weight           float64             `json:"weight" binding:"omitempty,gt=0"`
	MembershipStatus domain.ClientStatus `json:"membershipStatus" binding:"omitempty,oneof=active inactive suspended"`
}

type BenchmarkTemplateRequest struct {
	Name          string               `json:"name" binding:"required"`
	Notes         string               `json:"notes"`
	BenchmarkType domain.BenchmarkType `json:"benchmarkType" binding:"required,oneof=Lift Other"`
}

type RecordBenchmarkRequest struct {
	TemplateID string `json:"templateId" binding:"required"`
	Notes      string `json:"notes"`

	// Lift variant
	Weight float64 `json:"weight"`

	// Other variant
	Value            float64 `json:"value"`
	Unit             string  `json:"unit"`
	MeasurementNotes string  `json:"measurementNotes"`
}

type RequestUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmUploadRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size" binding:"omitempty,gt=0"`
	Notes       string `json:"notes"`
}

// --- Handler Methods ---

func (h *ClientHandler) CreateClient(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	client := &domain.Client{
		GymID:     gymID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Weight:    req.Weight,
	}
	if req.UserID != "" {
		userID, err := primitive.ObjectIDFromHex(req.UserID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid userId format")
			return
		}
		client.UserID = userID
	}

	created, err := h.clientService.CreateClient(c.Request.Context(), client)
	if err != nil {
		if errors.Is(err, service.ErrClientAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusBadRequest, err.Error())
		}
		return
	}
	respondCreated(c, created)
}

func (h *ClientHandler) ListClients(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	clients, err := h.clientService.ListClients(c.Request.Context(), gymID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list clients")
		return
	}
	respondList(c, clients, len(clients))
}

func (h *ClientHandler) GetClient(c *gin.Context) {
	gymID, clientID, ok := h.gymAndClient(c)
	if !ok {
		return
	}
	client, err := h.clientService.GetClient(c.Request.Context(), clientID, gymID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, client)
}

func (h *ClientHandler) UpdateClient(c *gin.Context) {
	gymID, clientID, ok := h.gymAndClient(c)
	if !ok {
		return
	}
	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	client, err := h.clientService.GetClient(c.Request.Context(), clientID, gymID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	client.Email = req.Email
	client.FirstName = req.FirstName
	client.LastName = req.LastName
	client.Weight = req.Weight
	if req.MembershipStatus != "" {
		client.MembershipStatus = req.MembershipStatus
	}

	if err := h.clientService.UpdateClient(c.Request.Context(), client); err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, client)
}

// ListClientNames returns a lightweight id/name roster for pickers.
func (h *ClientHandler) ListClientNames(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	clients, err := h.clientService.ListClients(c.Request.Context(), gymID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list clients")
		return
	}
	names := make([]gin.H, 0, len(clients))
	for i := range clients {
		names = append(names, gin.H{"id": clients[i].ID, "name": clients[i].FullName()})
	}
	respondList(c, names, len(names))
}

func (h *ClientHandler) DeleteClient(c *gin.Context) {
	gymID, clientID, ok := h.gymAndClient(c)
	if !ok {
		return
	}
	if err := h.clientService.DeleteClient(c.Request.Context(), clientID, gymID); err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondMessage(c, "Client deleted")
}

// --- Benchmark endpoints ---

func (h *ClientHandler) CreateBenchmarkTemplate(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req BenchmarkTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	template, err := h.clientService.CreateBenchmarkTemplate(c.Request.Context(), &domain.BenchmarkTemplate{
		GymID:         gymID,
		Name:          req.Name,
		Notes:         req.Notes,
		BenchmarkType: req.BenchmarkType,
	})
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	respondCreated(c, template)
}

func (h *ClientHandler) ListBenchmarkTemplates(c *gin.Context) {
	gymID, err := getGymIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	templates, err := h.clientService.ListBenchmarkTemplates(c.Request.Context(), gymID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list benchmark templates")
		return
	}
	respondList(c, templates, len(templates))
}

// RecordBenchmark dispatches on the template's type: weight for lifts,
// value/unit for everything else.
func (h *ClientHandler) RecordBenchmark(c *gin.Context) {
	gymID, clientID, ok := h.gymAndClient(c)
	if !ok {
		return
	}
	var req RecordBenchmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	templateID, err := primitive.ObjectIDFromHex(req.TemplateID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid templateId format")
		return
	}

	var client *domain.Client
	if req.Weight > 0 {
		client, err = h.clientService.RecordLiftBenchmark(c.Request.Context(), clientID, gymID, templateID,
			service.LiftBenchmarkInput{Weight: req.Weight, Notes: req.Notes})
	} else {
		client, err = h.clientService.RecordOtherBenchmark(c.Request.Context(), clientID, gymID, templateID,
			service.OtherBenchmarkInput{
				Value:            req.Value,
				Unit:             req.Unit,
				MeasurementNotes: req.MeasurementNotes,
				Notes:            req.Notes,
			})
	}
	if err != nil {
		if errors.Is(err, service.ErrBenchmarkTypeMismatch) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{
		"currentBenchmarks":    client.CurrentBenchmarks,
		"historicalBenchmarks": client.HistoricalBenchmarks,
	})
}

func (h *ClientHandler) ListBenchmarks(c *gin.Context) {
	gymID, clientID, ok := h.gymAndClient(c)
	if !ok {
		return
	}
	client, err := h.clientService.GetClient(c.Request.Context(), clientID, gymID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondList(c, client.CurrentBenchmarks, len(client.CurrentBenchmarks))
}

func (h *ClientHandler) ListBenchmarkHistory(c *gin.Context) {
	gymID, clientID, ok := h.gymAndClient(c)
	if !ok {
		return
	}
	client, err := h.clientService.GetClient(c.Request.Context(), clientID, gymID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondList(c, client.HistoricalBenchmarks, len(client.HistoricalBenchmarks))
}

func (h *ClientHandler) DeleteBenchmark(c *gin.Context) {
	gymID, clientID, ok := h.gymAndClient(c)
	if !ok {
		return
	}
	benchmarkID, ok := parseObjectIDParam(c, "benchmarkId")
	if !ok {
		return
	}
	client, err := h.clientService.DeleteBenchmark(c.Request.Context(), clientID, gymID, benchmarkID)
	if err != nil {
		if errors.Is(err, service.ErrBenchmarkNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{
		"currentBenchmarks":    client.CurrentBenchmarks,
		"historicalBenchmarks": client.HistoricalBenchmarks,
	})
}

// --- Progress photo endpoints ---

func (h *ClientHandler) RequestPhotoUpload(c *gin.Context) {
	gymID, clientID, ok := h.gymAndClient(c)
	if !ok {
		return
	}
	var req RequestUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	resp, err := h.clientService.RequestPhotoUploadURL(c.Request.Context(), clientID, gymID, req.ContentType)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, resp)
}

func (h *ClientHandler) ConfirmPhotoUpload(c *gin.Context) {
	gymID, clientID, ok := h.gymAndClient(c)
	if !ok {
		return
	}
	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	photo, err := h.clientService.ConfirmPhotoUpload(c.Request.Context(), clientID, gymID,
		req.ObjectKey, req.FileName, req.ContentType, req.Size, req.Notes)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondCreated(c, photo)
}

func (h *ClientHandler) ListPhotos(c *gin.Context) {
	gymID, clientID, ok := h.gymAndClient(c)
	if !ok {
		return
	}
	photos, err := h.clientService.ListPhotos(c.Request.Context(), clientID, gymID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondList(c, photos, len(photos))
}

func (h *ClientHandler) GetPhotoDownloadURL(c *gin.Context) {
	gymID, clientID, ok := h.gymAndClient(c)
	if !ok {
		return
	}
	photoID, ok := parseObjectIDParam(c, "photoId")
	if !ok {
		return
	}
	url, err := h.clientService.GetPhotoDownloadURL(c.Request.Context(), photoID, clientID, gymID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"downloadUrl": url})
}

func (h *ClientHandler) DeletePhoto(c *gin.Context) {
	gymID, clientID, ok := h.gymAndClient(c)
	if !ok {
		return
	}
	photoID, ok := parseObjectIDParam(c, "photoId")
	if !ok {
		return
	}
	if err := h.clientService.DeletePhoto(c.Request.Context(), photoID, clientID, gymID); err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondMessage(c, "Photo deleted")
}

// --- Helpers ---

func (h *ClientHandler) gymAndClient(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
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

func (h *ClientHandler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClientNotFound),
		errors.Is(err, service.ErrBenchmarkTemplateNotFound),
		errors.Is(err, service.ErrPhotoNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUploadURLError), errors.Is(err, service.ErrDownloadURLError):
		abortWithError(c, http.StatusInternalServerError, err.Error())
	default:
		abortWithError(c, http.StatusBadRequest, err.Error())
	}
}
