package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"forgefit/gym-api/internal/domain"
	"forgefit/gym-api/internal/repository"
	"forgefit/gym-api/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrClientNotFound            = errors.New("client not found")
	ErrClientAlreadyExists       = errors.New("a client with this email already exists in this gym")
	ErrBenchmarkTemplateNotFound = errors.New("benchmark template not found")
	ErrBenchmarkTypeMismatch     = errors.New("benchmark payload does not match the template type")
	ErrBenchmarkNotFound         = errors.New("benchmark not found")
	ErrPhotoNotFound             = errors.New("progress photo not found")
	ErrUploadURLError            = errors.New("failed to generate upload URL")
	ErrDownloadURLError          = errors.New("failed to generate download URL")
)

// UploadURLResponse carries a presigned PUT URL and the object key the client
// must report back when it confirms the upload.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// LiftBenchmarkInput is the payload for recording a lift benchmark.
type LiftBenchmarkInput struct {
	Weight float64
	Notes  string
}

// OtherBenchmarkInput is the payload for recording a non-lift benchmark.
type OtherBenchmarkInput struct {
	Value            float64
	Unit             string
	MeasurementNotes string
	Notes            string
}

type ClientService interface {
	CreateClient(ctx context.Context, client *domain.Client) (*domain.Client, error)
	GetClient(ctx context.Context, idOrUserID, gymID primitive.ObjectID) (*domain.Client, error)
	ListClients(ctx context.Context, gymID primitive.ObjectID) ([]domain.Client, error)
	UpdateClient(ctx context.Context, client *domain.Client) error
	DeleteClient(ctx context.Context, id, gymID primitive.ObjectID) error

	// Benchmarks
	CreateBenchmarkTemplate(ctx context.Context, template *domain.BenchmarkTemplate) (*domain.BenchmarkTemplate, error)
	ListBenchmarkTemplates(ctx context.Context, gymID primitive.ObjectID) ([]domain.BenchmarkTemplate, error)
	RecordLiftBenchmark(ctx context.Context, clientID, gymID, templateID primitive.ObjectID, input LiftBenchmarkInput) (*domain.Client, error)
	RecordOtherBenchmark(ctx context.Context, clientID, gymID, templateID primitive.ObjectID, input OtherBenchmarkInput) (*domain.Client, error)
	DeleteBenchmark(ctx context.Context, clientID, gymID, benchmarkID primitive.ObjectID) (*domain.Client, error)

	// Progress photos
	RequestPhotoUploadURL(ctx context.Context, clientID, gymID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	ConfirmPhotoUpload(ctx context.Context, clientID, gymID primitive.ObjectID, objectKey, fileName, contentType string, size int64, notes string) (*domain.ProgressPhoto, error)
	ListPhotos(ctx context.Context, clientID, gymID primitive.ObjectID) ([]domain.ProgressPhoto, error)
	GetPhotoDownloadURL(ctx context.Context, photoID, clientID, gymID primitive.ObjectID) (string, error)
	DeletePhoto(ctx context.Context, photoID, clientID, gymID primitive.ObjectID) error
}

type clientService struct {
	clientRepo   repository.ClientRepository
	templateRepo repository.BenchmarkTemplateRepository
	photoRepo    repository.PhotoRepository
	fileStorage  storage.FileStorage
}

func NewClientService(
	clientRepo repository.ClientRepository,
	templateRepo repository.BenchmarkTemplateRepository,
	photoRepo repository.PhotoRepository,
	fileStorage storage.FileStorage,
) ClientService {
	return &clientService{
		clientRepo:   clientRepo,
		templateRepo: templateRepo,
		photoRepo:    photoRepo,
		fileStorage:  fileStorage,
	}
}

func (s *clientService) CreateClient(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	if client.Email == "" || client.FirstName == "" || client.GymID.IsZero() {
		return nil, errors.New("client email, first name, and gym are required")
	}

	existing, err := s.clientRepo.GetByEmail(ctx, client.Email, client.GymID)
	if err == nil && existing != nil {
		return nil, ErrClientAlreadyExists
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	id, err := s.clientRepo.Create(ctx, client)
	if err != nil {
		return nil, err
	}
	client.ID = id
	return client, nil
}

func (s *clientService) GetClient(ctx context.Context, idOrUserID, gymID primitive.ObjectID) (*domain.Client, error) {
	client, err := s.clientRepo.GetByIDOrUserID(ctx, idOrUserID, gymID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return client, nil
}

func (s *clientService) ListClients(ctx context.Context, gymID primitive.ObjectID) ([]domain.Client, error) {
	return s.clientRepo.GetByGym(ctx, gymID)
}

func (s *clientService) UpdateClient(ctx context.Context, client *domain.Client) error {
	if client.Email == "" || client.FirstName == "" {
		return errors.New("client email and first name are required")
	}
	err := s.clientRepo.Update(ctx, client)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrClientNotFound
	}
	return err
}

func (s *clientService) DeleteClient(ctx context.Context, id, gymID primitive.ObjectID) error {
	err := s.clientRepo.Delete(ctx, id, gymID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrClientNotFound
	}
	return err
}

// --- Benchmarks ---

func (s *clientService) CreateBenchmarkTemplate(ctx context.Context, template *domain.BenchmarkTemplate) (*domain.BenchmarkTemplate, error) {
	if template.Name == "" || template.GymID.IsZero() {
		return nil, errors.New("template name and gym are required")
	}
	if template.BenchmarkType != domain.BenchmarkLift && template.BenchmarkType != domain.BenchmarkOther {
		return nil, errors.New("benchmark type must be Lift or Other")
	}
	id, err := s.templateRepo.Create(ctx, template)
	if err != nil {
		return nil, err
	}
	template.ID = id
	return template, nil
}

func (s *clientService) ListBenchmarkTemplates(ctx context.Context, gymID primitive.ObjectID) ([]domain.BenchmarkTemplate, error) {
	return s.templateRepo.GetByGym(ctx, gymID)
}

// RecordLiftBenchmark records a new lift benchmark against a template. A
// previous current benchmark for the same template is rotated into the
// client's historical list.
func (s *clientService) RecordLiftBenchmark(ctx context.Context, clientID, gymID, templateID primitive.ObjectID, input LiftBenchmarkInput) (*domain.Client, error) {
	if input.Weight <= 0 {
		return nil, errors.New("lift benchmark weight must be positive")
	}
	template, err := s.getTemplate(ctx, templateID, gymID, domain.BenchmarkLift)
	if err != nil {
		return nil, err
	}

	benchmark := domain.Benchmark{
		ID:                  primitive.NewObjectID(),
		Type:                domain.BenchmarkLift,
		Name:                template.Name,
		Notes:               input.Notes,
		BenchmarkTemplateID: templateID,
		RecordedAt:          time.Now().UTC(),
		Weight:              input.Weight,
	}
	return s.rotateBenchmark(ctx, clientID, gymID, benchmark)
}

// RecordOtherBenchmark records a new non-lift benchmark (time, distance,
// bodyweight and so on) with the same rotation behavior.
func (s *clientService) RecordOtherBenchmark(ctx context.Context, clientID, gymID, templateID primitive.ObjectID, input OtherBenchmarkInput) (*domain.Client, error) {
	if input.Unit == "" {
		return nil, errors.New("benchmark unit is required")
	}
	template, err := s.getTemplate(ctx, templateID, gymID, domain.BenchmarkOther)
	if err != nil {
		return nil, err
	}

	benchmark := domain.Benchmark{
		ID:                  primitive.NewObjectID(),
		Type:                domain.BenchmarkOther,
		Name:                template.Name,
		Notes:               input.Notes,
		BenchmarkTemplateID: templateID,
		RecordedAt:          time.Now().UTC(),
		Value:               input.Value,
		Unit:                input.Unit,
		MeasurementNotes:    input.MeasurementNotes,
	}
	return s.rotateBenchmark(ctx, clientID, gymID, benchmark)
}

func (s *clientService) getTemplate(ctx context.Context, templateID, gymID primitive.ObjectID, expectedType domain.BenchmarkType) (*domain.BenchmarkTemplate, error) {
	template, err := s.templateRepo.GetByID(ctx, templateID, gymID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBenchmarkTemplateNotFound
		}
		return nil, err
	}
	if template.BenchmarkType != expectedType {
		return nil, ErrBenchmarkTypeMismatch
	}
	return template, nil
}

// rotateBenchmark inserts the new benchmark into the client's current list.
// If a current benchmark for the same template exists it is moved to the
// historical list and replaced in place, so the current list keeps at most
// one entry per template.
func (s *clientService) rotateBenchmark(ctx context.Context, clientID, gymID primitive.ObjectID, benchmark domain.Benchmark) (*domain.Client, error) {
	client, err := s.GetClient(ctx, clientID, gymID)
	if err != nil {
		return nil, err
	}

	current := make([]domain.Benchmark, len(client.CurrentBenchmarks))
	copy(current, client.CurrentBenchmarks)
	historical := make([]domain.Benchmark, len(client.HistoricalBenchmarks))
	copy(historical, client.HistoricalBenchmarks)

	replaced := false
	for i := range current {
		if current[i].BenchmarkTemplateID == benchmark.BenchmarkTemplateID {
			historical = append(historical, current[i])
			current[i] = benchmark
			replaced = true
			break
		}
	}
	if !replaced {
		current = append(current, benchmark)
	}

	if err := s.clientRepo.SetBenchmarks(ctx, client.ID, current, historical); err != nil {
		return nil, err
	}
	client.CurrentBenchmarks = current
	client.HistoricalBenchmarks = historical
	return client, nil
}

// DeleteBenchmark removes a single entry from the client's current or
// historical benchmark list.
func (s *clientService) DeleteBenchmark(ctx context.Context, clientID, gymID, benchmarkID primitive.ObjectID) (*domain.Client, error) {
	client, err := s.GetClient(ctx, clientID, gymID)
	if err != nil {
		return nil, err
	}

	removed := false
	current := make([]domain.Benchmark, 0, len(client.CurrentBenchmarks))
	for _, b := range client.CurrentBenchmarks {
		if b.ID == benchmarkID {
			removed = true
			continue
		}
		current = append(current, b)
	}
	historical := make([]domain.Benchmark, 0, len(client.HistoricalBenchmarks))
	for _, b := range client.HistoricalBenchmarks {
		if b.ID == benchmarkID {
			removed = true
			continue
		}
		historical = append(historical, b)
	}
	if !removed {
		return nil, ErrBenchmarkNotFound
	}

	if err := s.clientRepo.SetBenchmarks(ctx, client.ID, current, historical); err != nil {
		return nil, err
	}
	client.CurrentBenchmarks = current
	client.HistoricalBenchmarks = historical
	return client, nil
}

// --- Progress photos ---

// RequestPhotoUploadURL generates a unique object key and a presigned PUT URL
// so the client can upload the image directly to S3.
func (s *clientService) RequestPhotoUploadURL(ctx context.Context, clientID, gymID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errors.New("progress photos must be images")
	}
	client, err := s.GetClient(ctx, clientID, gymID)
	if err != nil {
		return nil, err
	}

	fileExtension := ""
	if parts := strings.Split(contentType, "/"); len(parts) == 2 {
		fileExtension = parts[1]
	}
	objectKey := path.Join("progress-photos", client.GymID.Hex(), client.ID.Hex(),
		fmt.Sprintf("%s.%s", uuid.NewString(), fileExtension))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}
	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmPhotoUpload records the photo metadata after the client has PUT the
// image to S3 via the presigned URL.
func (s *clientService) ConfirmPhotoUpload(ctx context.Context, clientID, gymID primitive.ObjectID, objectKey, fileName, contentType string, size int64, notes string) (*domain.ProgressPhoto, error) {
	if objectKey == "" {
		return nil, errors.New("object key is required")
	}
	client, err := s.GetClient(ctx, clientID, gymID)
	if err != nil {
		return nil, err
	}
	// The key embeds gym and client IDs; reject confirmations for keys that
	// were issued to someone else.
	expectedPrefix := path.Join("progress-photos", client.GymID.Hex(), client.ID.Hex()) + "/"
	if !strings.HasPrefix(objectKey, expectedPrefix) {
		return nil, errors.New("object key does not belong to this client")
	}

	photo := &domain.ProgressPhoto{
		ClientID:    client.ID,
		GymID:       client.GymID,
		S3ObjectKey: objectKey,
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
		Notes:       notes,
	}
	id, err := s.photoRepo.Create(ctx, photo)
	if err != nil {
		return nil, err
	}
	photo.ID = id
	return photo, nil
}

func (s *clientService) ListPhotos(ctx context.Context, clientID, gymID primitive.ObjectID) ([]domain.ProgressPhoto, error) {
	client, err := s.GetClient(ctx, clientID, gymID)
	if err != nil {
		return nil, err
	}
	return s.photoRepo.GetByClient(ctx, client.ID)
}

func (s *clientService) GetPhotoDownloadURL(ctx context.Context, photoID, clientID, gymID primitive.ObjectID) (string, error) {
	photo, err := s.getOwnedPhoto(ctx, photoID, clientID, gymID)
	if err != nil {
		return "", err
	}
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, photo.S3ObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", ErrDownloadURLError
	}
	return url, nil
}

func (s *clientService) DeletePhoto(ctx context.Context, photoID, clientID, gymID primitive.ObjectID) error {
	photo, err := s.getOwnedPhoto(ctx, photoID, clientID, gymID)
	if err != nil {
		return err
	}
	if err := s.photoRepo.Delete(ctx, photo.ID); err != nil {
		return err
	}
	// Metadata is gone either way; an S3 cleanup failure leaves an orphaned
	// object, not a dangling record.
	_ = s.fileStorage.DeleteObject(ctx, photo.S3ObjectKey)
	return nil
}

func (s *clientService) getOwnedPhoto(ctx context.Context, photoID, clientID, gymID primitive.ObjectID) (*domain.ProgressPhoto, error) {
	client, err := s.GetClient(ctx, clientID, gymID)
	if err != nil {
		return nil, err
	}
	photo, err := s.photoRepo.GetByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	if photo.ClientID != client.ID || photo.GymID != gymID {
		return nil, ErrPhotoNotFound
	}
	return photo, nil
}
