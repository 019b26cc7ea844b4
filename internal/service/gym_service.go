package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forgefit/gym-api/internal/domain"
	"forgefit/gym-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrGymNotFound        = errors.New("gym not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrAlreadyMember      = errors.New("user is already a member of this gym")
	ErrLocationNotFound   = errors.New("location not found")
	ErrCoachHasSchedules  = errors.New("coach still has schedules in this gym; reassign or delete them first")
)

// CoachInfo pairs a coach's membership with the underlying account details.
type CoachInfo struct {
	User     *domain.User            `json:"user"`
	Role     domain.GymRole          `json:"role"`
	JoinedAt time.Time               `json:"joinedAt"`
	Status   domain.MembershipStatus `json:"status"`
}

type GymService interface {
	CreateGym(ctx context.Context, gym *domain.Gym, ownerID primitive.ObjectID) (*domain.Gym, error)
	GetGym(ctx context.Context, id primitive.ObjectID) (*domain.Gym, error)
	ListGyms(ctx context.Context) ([]domain.Gym, error)
	UpdateGym(ctx context.Context, gym *domain.Gym) error
	DeactivateGym(ctx context.Context, id primitive.ObjectID) error

	AddMember(ctx context.Context, gymID, userID primitive.ObjectID, role domain.GymRole) (*domain.GymMembership, error)
	GetMembership(ctx context.Context, userID, gymID primitive.ObjectID) (*domain.GymMembership, error)
	ListCoaches(ctx context.Context, gymID primitive.ObjectID) ([]CoachInfo, error)
	UpdateMemberRole(ctx context.Context, gymID, userID primitive.ObjectID, role domain.GymRole) error
	RemoveCoach(ctx context.Context, gymID, userID primitive.ObjectID) error

	CreateLocation(ctx context.Context, location *domain.Location) (*domain.Location, error)
	ListLocations(ctx context.Context, gymID primitive.ObjectID) ([]domain.Location, error)
	UpdateLocation(ctx context.Context, location *domain.Location) error
	DeleteLocation(ctx context.Context, id, gymID primitive.ObjectID) error
}

type gymService struct {
	gymRepo        repository.GymRepository
	membershipRepo repository.MembershipRepository
	locationRepo   repository.LocationRepository
	userRepo       repository.UserRepository
	scheduleRepo   repository.ScheduleRepository
}

func NewGymService(
	gymRepo repository.GymRepository,
	membershipRepo repository.MembershipRepository,
	locationRepo repository.LocationRepository,
	userRepo repository.UserRepository,
	scheduleRepo repository.ScheduleRepository,
) GymService {
	return &gymService{
		gymRepo:        gymRepo,
		membershipRepo: membershipRepo,
		locationRepo:   locationRepo,
		userRepo:       userRepo,
		scheduleRepo:   scheduleRepo,
	}
}

// CreateGym creates the gym and an owner membership for its creator in one go.
func (s *gymService) CreateGym(ctx context.Context, gym *domain.Gym, ownerID primitive.ObjectID) (*domain.Gym, error) {
	if gym.Name == "" || gym.Address == "" {
		return nil, errors.New("gym name and address are required")
	}

	gym.OwnerID = &ownerID
	gym.IsActive = true
	gymID, err := s.gymRepo.Create(ctx, gym)
	if err != nil {
		return nil, err
	}
	gym.ID = gymID

	membership := &domain.GymMembership{
		UserID: ownerID,
		GymID:  gymID,
		Role:   domain.GymRoleOwner,
	}
	if _, err := s.membershipRepo.Create(ctx, membership); err != nil {
		return nil, fmt.Errorf("gym created but owner membership failed: %w", err)
	}
	return gym, nil
}

func (s *gymService) GetGym(ctx context.Context, id primitive.ObjectID) (*domain.Gym, error) {
	gym, err := s.gymRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGymNotFound
		}
		return nil, err
	}
	return gym, nil
}

func (s *gymService) ListGyms(ctx context.Context) ([]domain.Gym, error) {
	return s.gymRepo.List(ctx)
}

func (s *gymService) UpdateGym(ctx context.Context, gym *domain.Gym) error {
	if gym.Name == "" || gym.Address == "" {
		return errors.New("gym name and address are required")
	}
	err := s.gymRepo.Update(ctx, gym)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrGymNotFound
	}
	return err
}

// DeactivateGym soft-disables the gym. Documents under it are kept.
func (s *gymService) DeactivateGym(ctx context.Context, id primitive.ObjectID) error {
	gym, err := s.GetGym(ctx, id)
	if err != nil {
		return err
	}
	gym.IsActive = false
	return s.gymRepo.Update(ctx, gym)
}

func (s *gymService) AddMember(ctx context.Context, gymID, userID primitive.ObjectID, role domain.GymRole) (*domain.GymMembership, error) {
	if role != domain.GymRoleOwner && role != domain.GymRoleTrainer && role != domain.GymRoleClient {
		return nil, errors.New("invalid gym role")
	}

	if _, err := s.GetGym(ctx, gymID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	existing, err := s.membershipRepo.GetByUserAndGym(ctx, userID, gymID)
	if err == nil && existing != nil {
		return nil, ErrAlreadyMember
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	membership := &domain.GymMembership{
		UserID: userID,
		GymID:  gymID,
		Role:   role,
	}
	if _, err := s.membershipRepo.Create(ctx, membership); err != nil {
		return nil, err
	}
	return membership, nil
}

func (s *gymService) GetMembership(ctx context.Context, userID, gymID primitive.ObjectID) (*domain.GymMembership, error) {
	membership, err := s.membershipRepo.GetByUserAndGym(ctx, userID, gymID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	return membership, nil
}

// ListCoaches returns the gym's coaching roster (owners and trainers) with
// account details resolved.
func (s *gymService) ListCoaches(ctx context.Context, gymID primitive.ObjectID) ([]CoachInfo, error) {
	memberships, err := s.membershipRepo.GetByGym(ctx, gymID, domain.GymRoleOwner, domain.GymRoleTrainer)
	if err != nil {
		return nil, err
	}

	coaches := make([]CoachInfo, 0, len(memberships))
	for _, m := range memberships {
		user, err := s.userRepo.GetByID(ctx, m.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue // orphaned membership, skip
			}
			return nil, err
		}
		user.PasswordHash = ""
		coaches = append(coaches, CoachInfo{
			User:     user,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
			Status:   m.Status,
		})
	}
	return coaches, nil
}

func (s *gymService) UpdateMemberRole(ctx context.Context, gymID, userID primitive.ObjectID, role domain.GymRole) error {
	if role != domain.GymRoleOwner && role != domain.GymRoleTrainer && role != domain.GymRoleClient {
		return errors.New("invalid gym role")
	}
	err := s.membershipRepo.UpdateRole(ctx, userID, gymID, role)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrMembershipNotFound
	}
	return err
}

// RemoveCoach revokes a coach's membership. Refused while the coach still
// owns schedules in the gym, so nothing is left pointing at a phantom coach.
func (s *gymService) RemoveCoach(ctx context.Context, gymID, userID primitive.ObjectID) error {
	membership, err := s.GetMembership(ctx, userID, gymID)
	if err != nil {
		return err
	}
	if !membership.IsCoach() {
		return errors.New("member is not a coach")
	}

	count, err := s.scheduleRepo.CountByCoach(ctx, gymID, userID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCoachHasSchedules
	}

	err = s.membershipRepo.Delete(ctx, userID, gymID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrMembershipNotFound
	}
	return err
}

func (s *gymService) CreateLocation(ctx context.Context, location *domain.Location) (*domain.Location, error) {
	if location.Name == "" || location.GymID.IsZero() {
		return nil, errors.New("location name and gym are required")
	}
	location.IsActive = true
	id, err := s.locationRepo.Create(ctx, location)
	if err != nil {
		return nil, err
	}
	location.ID = id
	return location, nil
}

func (s *gymService) ListLocations(ctx context.Context, gymID primitive.ObjectID) ([]domain.Location, error) {
	return s.locationRepo.GetByGym(ctx, gymID)
}

func (s *gymService) UpdateLocation(ctx context.Context, location *domain.Location) error {
	if location.Name == "" {
		return errors.New("location name is required")
	}
	err := s.locationRepo.Update(ctx, location)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrLocationNotFound
	}
	return err
}

func (s *gymService) DeleteLocation(ctx context.Context, id, gymID primitive.ObjectID) error {
	err := s.locationRepo.Delete(ctx, id, gymID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrLocationNotFound
	}
	return err
}
