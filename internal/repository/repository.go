package repository

import (
	"context"
	"time"

	"forgefit/gym-api/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("document was modified concurrently")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpdateName(ctx context.Context, id primitive.ObjectID, name string) error
	SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

// GymRepository defines the interface for gym documents.
type GymRepository interface {
	Create(ctx context.Context, gym *domain.Gym) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Gym, error)
	List(ctx context.Context) ([]domain.Gym, error)
	Update(ctx context.Context, gym *domain.Gym) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MembershipRepository defines the interface for gym memberships.
type MembershipRepository interface {
	Create(ctx context.Context, membership *domain.GymMembership) (primitive.ObjectID, error)
	GetByUserAndGym(ctx context.Context, userID, gymID primitive.ObjectID) (*domain.GymMembership, error)
	GetByGym(ctx context.Context, gymID primitive.ObjectID, roles ...domain.GymRole) ([]domain.GymMembership, error)
	UpdateRole(ctx context.Context, userID, gymID primitive.ObjectID, role domain.GymRole) error
	Delete(ctx context.Context, userID, gymID primitive.ObjectID) error
}

// LocationRepository defines the interface for gym locations.
type LocationRepository interface {
	Create(ctx context.Context, location *domain.Location) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Location, error)
	GetByGym(ctx context.Context, gymID primitive.ObjectID) ([]domain.Location, error)
	Update(ctx context.Context, location *domain.Location) error
	Delete(ctx context.Context, id, gymID primitive.ObjectID) error
}

// ClientRepository defines the interface for client training records.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id, gymID primitive.ObjectID) (*domain.Client, error)
	// GetByIDOrUserID resolves a client by document ID first, then by the
	// owning user's ID. Callers routinely hold either.
	GetByIDOrUserID(ctx context.Context, idOrUserID, gymID primitive.ObjectID) (*domain.Client, error)
	GetByEmail(ctx context.Context, email string, gymID primitive.ObjectID) (*domain.Client, error)
	GetByGym(ctx context.Context, gymID primitive.ObjectID) ([]domain.Client, error)
	// GetActiveWithPrograms returns active clients with an assigned program.
	// A zero gymID means every gym (weekly auto-progression).
	GetActiveWithPrograms(ctx context.Context, gymID primitive.ObjectID) ([]domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	SetProgression(ctx context.Context, id primitive.ObjectID, block, week int, at time.Time) error
	SetProgram(ctx context.Context, id primitive.ObjectID, programID *primitive.ObjectID, at time.Time) error
	SetBenchmarks(ctx context.Context, id primitive.ObjectID, current, historical []domain.Benchmark) error
	Delete(ctx context.Context, id, gymID primitive.ObjectID) error
}

// ProgramRepository defines the interface for training programs.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id, gymID primitive.ObjectID) (*domain.Program, error)
	GetByGym(ctx context.Context, gymID primitive.ObjectID, templatesOnly bool) ([]domain.Program, error)
	Update(ctx context.Context, program *domain.Program) error
	Delete(ctx context.Context, id, gymID primitive.ObjectID) error
}

// BenchmarkTemplateRepository defines the interface for benchmark templates.
type BenchmarkTemplateRepository interface {
	Create(ctx context.Context, template *domain.BenchmarkTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id, gymID primitive.ObjectID) (*domain.BenchmarkTemplate, error)
	GetByGym(ctx context.Context, gymID primitive.ObjectID) ([]domain.BenchmarkTemplate, error)
	Update(ctx context.Context, template *domain.BenchmarkTemplate) error
	Delete(ctx context.Context, id, gymID primitive.ObjectID) error
}

// ScheduleRepository defines the interface for weekly schedules.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.WeeklySchedule) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id, gymID primitive.ObjectID) (*domain.WeeklySchedule, error)
	// GetByGym filters by the optional isTemplate flag (nil means both).
	GetByGym(ctx context.Context, gymID primitive.ObjectID, isTemplate *bool) ([]domain.WeeklySchedule, error)
	GetByCoach(ctx context.Context, gymID, coachID primitive.ObjectID, isTemplate *bool) ([]domain.WeeklySchedule, error)
	GetActiveByTemplate(ctx context.Context, gymID, templateID primitive.ObjectID) ([]domain.WeeklySchedule, error)
	CountByCoach(ctx context.Context, gymID, coachID primitive.ObjectID) (int64, error)
	Update(ctx context.Context, schedule *domain.WeeklySchedule) error
	// ReplaceSlotClients swaps one slot's enrollment list, but only when the
	// stored list still equals expected; otherwise it returns ErrConflict.
	// This closes the read-modify-write window on capacity checks.
	ReplaceSlotClients(ctx context.Context, scheduleID primitive.ObjectID, dayOfWeek, slotIndex int, expected, updated []primitive.ObjectID) error
	Delete(ctx context.Context, id, gymID primitive.ObjectID) error
}

// SessionRepository defines the interface for workout sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error)
	GetActive(ctx context.Context, clientID, gymID primitive.ObjectID, block, week, day int) (*domain.WorkoutSession, error)
	DeactivateAllForClient(ctx context.Context, clientID primitive.ObjectID, at time.Time) error
	AddCompletedSet(ctx context.Context, id primitive.ObjectID, set domain.CompletedSet) error
	End(ctx context.Context, id primitive.ObjectID, at time.Time) (*domain.WorkoutSession, error)
}

// PhotoRepository defines the interface for progress-photo metadata.
type PhotoRepository interface {
	Create(ctx context.Context, photo *domain.ProgressPhoto) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgressPhoto, error)
	GetByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.ProgressPhoto, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
