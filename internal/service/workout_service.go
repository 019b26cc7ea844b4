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
	ErrSessionNotFound  = errors.New("workout session not found")
	ErrSessionInactive  = errors.New("workout session is no longer active")
	ErrActivityNotInDay = errors.New("activity is not part of this session's day")
	ErrInvalidSetNumber = errors.New("set number must be at least 1")
	ErrDayOutOfRange    = errors.New("day index is out of range for the current week")
)

// SetResult reports the outcome of recording one completed set. Recorded is
// false when the set was already present; the call is then a no-op.
type SetResult struct {
	Recorded          bool                   `json:"recorded"`
	SetsCompleted     int                    `json:"setsCompleted"`
	SetsPlanned       int                    `json:"setsPlanned"`
	ExerciseCompleted bool                   `json:"exerciseCompleted"`
	NextActivityID    *primitive.ObjectID    `json:"nextActivityId,omitempty"`
	Session           *domain.WorkoutSession `json:"session"`
}

type WorkoutService interface {
	// StartSession opens a session pinned to the client's current program
	// position and the given day of that week. Any previously active session
	// is closed first; a client has at most one active session.
	StartSession(ctx context.Context, clientID, gymID primitive.ObjectID, day int) (*domain.WorkoutSession, error)
	GetActiveSession(ctx context.Context, clientID, gymID primitive.ObjectID, day int) (*domain.WorkoutSession, error)
	GetSession(ctx context.Context, sessionID, gymID primitive.ObjectID) (*domain.WorkoutSession, error)
	CompleteSet(ctx context.Context, sessionID, gymID, activityID primitive.ObjectID, setNumber int) (*SetResult, error)
	EndSession(ctx context.Context, sessionID, gymID primitive.ObjectID) (*domain.WorkoutSession, error)
}

type workoutService struct {
	sessionRepo repository.SessionRepository
	clientRepo  repository.ClientRepository
	programRepo repository.ProgramRepository
}

func NewWorkoutService(
	sessionRepo repository.SessionRepository,
	clientRepo repository.ClientRepository,
	programRepo repository.ProgramRepository,
) WorkoutService {
	return &workoutService{
		sessionRepo: sessionRepo,
		clientRepo:  clientRepo,
		programRepo: programRepo,
	}
}

func (s *workoutService) StartSession(ctx context.Context, clientID, gymID primitive.ObjectID, day int) (*domain.WorkoutSession, error) {
	client, err := s.clientRepo.GetByIDOrUserID(ctx, clientID, gymID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.ProgramID == nil {
		return nil, ErrNoProgramAssigned
	}

	program, err := s.programRepo.GetByID(ctx, *client.ProgramID, gymID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("assigned program %s not found", client.ProgramID.Hex())
		}
		return nil, err
	}
	week, err := program.WeekAt(client.Position())
	if err != nil {
		return nil, err
	}
	if day < 0 || day >= len(week.Days) {
		return nil, ErrDayOutOfRange
	}

	// Resuming an existing session for the same day beats opening a fresh
	// one and losing the recorded sets.
	existing, err := s.sessionRepo.GetActive(ctx, client.ID, gymID, client.CurrentBlock, client.CurrentWeek, day)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if err := s.sessionRepo.DeactivateAllForClient(ctx, client.ID, time.Now().UTC()); err != nil {
		return nil, err
	}

	session := &domain.WorkoutSession{
		ClientID:  client.ID,
		GymID:     gymID,
		ProgramID: *client.ProgramID,
		Block:     client.CurrentBlock,
		Week:      client.CurrentWeek,
		Day:       day,
	}
	id, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	session.ID = id
	return session, nil
}

func (s *workoutService) GetActiveSession(ctx context.Context, clientID, gymID primitive.ObjectID, day int) (*domain.WorkoutSession, error) {
	client, err := s.clientRepo.GetByIDOrUserID(ctx, clientID, gymID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	session, err := s.sessionRepo.GetActive(ctx, client.ID, gymID, client.CurrentBlock, client.CurrentWeek, day)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *workoutService) GetSession(ctx context.Context, sessionID, gymID primitive.ObjectID) (*domain.WorkoutSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.GymID != gymID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// CompleteSet records one finished set. Recording the same (activity, set
// number) twice is a no-op reported through Recorded=false, so a flaky client
// retrying a request cannot inflate the count. The result says whether the
// exercise is done and which activity of the day comes next.
func (s *workoutService) CompleteSet(ctx context.Context, sessionID, gymID, activityID primitive.ObjectID, setNumber int) (*SetResult, error) {
	if setNumber < 1 {
		return nil, ErrInvalidSetNumber
	}

	session, err := s.GetSession(ctx, sessionID, gymID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return nil, ErrSessionInactive
	}

	activities, err := s.sessionDayActivities(ctx, session)
	if err != nil {
		return nil, err
	}
	activity, nextActivityID := locateActivity(activities, activityID)
	if activity == nil {
		return nil, ErrActivityNotInDay
	}

	result := &SetResult{SetsPlanned: activity.Sets}

	if session.HasSet(activityID, setNumber) {
		result.Recorded = false
		result.SetsCompleted = session.SetsCompletedFor(activityID)
		result.ExerciseCompleted = activity.Sets > 0 && result.SetsCompleted >= activity.Sets
		if result.ExerciseCompleted {
			result.NextActivityID = nextActivityID
		}
		result.Session = session
		return result, nil
	}

	set := domain.CompletedSet{
		ActivityID:  activityID,
		SetNumber:   setNumber,
		CompletedAt: time.Now().UTC(),
	}
	if err := s.sessionRepo.AddCompletedSet(ctx, session.ID, set); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionInactive
		}
		return nil, err
	}
	session.CompletedSets = append(session.CompletedSets, set)

	result.Recorded = true
	result.SetsCompleted = session.SetsCompletedFor(activityID)
	result.ExerciseCompleted = activity.Sets > 0 && result.SetsCompleted >= activity.Sets
	if result.ExerciseCompleted {
		result.NextActivityID = nextActivityID
	}
	result.Session = session
	return result, nil
}

func (s *workoutService) EndSession(ctx context.Context, sessionID, gymID primitive.ObjectID) (*domain.WorkoutSession, error) {
	session, err := s.GetSession(ctx, sessionID, gymID)
	if err != nil {
		return nil, err
	}
	ended, err := s.sessionRepo.End(ctx, session.ID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return ended, nil
}

// sessionDayActivities resolves the activity list of the day the session is
// pinned to. The pin survives progression: a session started on week 2 keeps
// showing week 2 even after the client advances.
func (s *workoutService) sessionDayActivities(ctx context.Context, session *domain.WorkoutSession) ([]domain.Activity, error) {
	program, err := s.programRepo.GetByID(ctx, session.ProgramID, session.GymID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("session program %s not found", session.ProgramID.Hex())
		}
		return nil, err
	}
	week, err := program.WeekAt(domain.Position{Block: session.Block, Week: session.Week})
	if err != nil {
		return nil, err
	}
	if session.Day < 0 || session.Day >= len(week.Days) {
		return nil, ErrDayOutOfRange
	}
	return week.Days[session.Day].Activities(), nil
}

// locateActivity finds the activity and the ID of the one after it in the
// day's execution order, if any.
func locateActivity(activities []domain.Activity, activityID primitive.ObjectID) (*domain.Activity, *primitive.ObjectID) {
	for i := range activities {
		if activities[i].ID == activityID {
			var next *primitive.ObjectID
			if i+1 < len(activities) {
				next = &activities[i+1].ID
			}
			return &activities[i], next
		}
	}
	return nil, nil
}
