package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"forgefit/gym-api/internal/domain"
	"forgefit/gym-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrNoProgramAssigned = errors.New("client has no assigned program")
	ErrNegativeIncrement = errors.New("block and week increments must be non-negative")
	ErrNothingToAdvance  = errors.New("at least one of block or week increment must be positive")
	ErrIncrementTooLarge = errors.New("block and week increments are limited to 10 per request")
)

// MaxProgressionIncrement caps how far a single gym-wide advancement may move
// each client.
const MaxProgressionIncrement = 10

// PlannedActivity is an activity annotated with the working weight derived
// from the client's current benchmark, when one applies.
type PlannedActivity struct {
	domain.Activity
	RecommendedWeight *float64 `json:"recommendedWeight,omitempty"`
	BenchmarkWeight   *float64 `json:"benchmarkWeight,omitempty"`
}

// WorkoutDay is one day of the client's current training week with weights
// resolved.
type WorkoutDay struct {
	Name       string            `json:"name,omitempty"`
	Activities []PlannedActivity `json:"activities"`
}

// CurrentWorkout is the client's training week at their progression pointer.
type CurrentWorkout struct {
	ProgramID   primitive.ObjectID `json:"programId"`
	ProgramName string             `json:"programName"`
	Block       int                `json:"block"`
	Week        int                `json:"week"`
	TotalBlocks int                `json:"totalBlocks"`
	TotalWeeks  int                `json:"totalWeeks"`
	Days        []WorkoutDay       `json:"days"`
}

// BulkAdvanceOutcome reports one client's result within a bulk advancement.
type BulkAdvanceOutcome struct {
	ClientID primitive.ObjectID    `json:"clientId"`
	Result   *domain.AdvanceResult `json:"result,omitempty"`
	Error    string                `json:"error,omitempty"`
}

type ProgressionService interface {
	// Advance moves the client's pointer forward. Week overflow carries into
	// the next block; walking off the end restarts the program at (0,0).
	Advance(ctx context.Context, clientID, gymID primitive.ObjectID, blockIncrement, weekIncrement int) (*domain.AdvanceResult, error)
	// Reset moves the pointer to an explicit (block, week). Out-of-range
	// targets are rejected, never clamped.
	Reset(ctx context.Context, clientID, gymID primitive.ObjectID, target domain.Position) (*domain.AdvanceResult, error)
	GetCurrentWorkout(ctx context.Context, clientID, gymID primitive.ObjectID) (*CurrentWorkout, error)
	// AdvanceAll moves every active client with a program in the gym,
	// continuing past individual failures and collecting per-client errors.
	AdvanceAll(ctx context.Context, gymID primitive.ObjectID, blockIncrement, weekIncrement int) ([]BulkAdvanceOutcome, error)
	// RunWeeklyProgression advances every active client with a program, in
	// every gym, by one week. Intended for a weekly scheduler.
	RunWeeklyProgression(ctx context.Context) ([]BulkAdvanceOutcome, error)
}

type progressionService struct {
	clientRepo  repository.ClientRepository
	programRepo repository.ProgramRepository
}

func NewProgressionService(clientRepo repository.ClientRepository, programRepo repository.ProgramRepository) ProgressionService {
	return &progressionService{
		clientRepo:  clientRepo,
		programRepo: programRepo,
	}
}

func (s *progressionService) Advance(ctx context.Context, clientID, gymID primitive.ObjectID, blockIncrement, weekIncrement int) (*domain.AdvanceResult, error) {
	if blockIncrement < 0 || weekIncrement < 0 {
		return nil, ErrNegativeIncrement
	}
	if blockIncrement == 0 && weekIncrement == 0 {
		return nil, ErrNothingToAdvance
	}

	client, program, err := s.loadClientProgram(ctx, clientID, gymID)
	if err != nil {
		return nil, err
	}

	result, err := program.Advance(client.Position(), blockIncrement, weekIncrement)
	if err != nil {
		return nil, err
	}

	if err := s.clientRepo.SetProgression(ctx, client.ID, result.Current.Block, result.Current.Week, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *progressionService) Reset(ctx context.Context, clientID, gymID primitive.ObjectID, target domain.Position) (*domain.AdvanceResult, error) {
	client, program, err := s.loadClientProgram(ctx, clientID, gymID)
	if err != nil {
		return nil, err
	}

	if err := program.ValidateTarget(target); err != nil {
		return nil, err
	}

	if err := s.clientRepo.SetProgression(ctx, client.ID, target.Block, target.Week, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &domain.AdvanceResult{
		Previous: client.Position(),
		Current:  target,
	}, nil
}

// GetCurrentWorkout resolves the client's current week and annotates every
// lift activity with a recommended weight from the client's current benchmark
// for the activity's template. Pointers invalidated by program edits surface
// as ErrProgressionOutOfBounds here.
func (s *progressionService) GetCurrentWorkout(ctx context.Context, clientID, gymID primitive.ObjectID) (*CurrentWorkout, error) {
	client, program, err := s.loadClientProgram(ctx, clientID, gymID)
	if err != nil {
		return nil, err
	}

	week, err := program.WeekAt(client.Position())
	if err != nil {
		return nil, err
	}

	days := make([]WorkoutDay, len(week.Days))
	for di, day := range week.Days {
		activities := day.Activities()
		planned := make([]PlannedActivity, len(activities))
		for ai, activity := range activities {
			planned[ai] = s.planActivity(client, activity)
		}
		days[di] = WorkoutDay{Name: day.Name, Activities: planned}
	}

	return &CurrentWorkout{
		ProgramID:   program.ID,
		ProgramName: program.Name,
		Block:       client.CurrentBlock,
		Week:        client.CurrentWeek,
		TotalBlocks: len(program.Blocks),
		TotalWeeks:  program.TotalWeeks(),
		Days:        days,
	}, nil
}

// planActivity attaches benchmark-derived weights. Activities without a
// benchmark template, or whose client has no current benchmark for it, pass
// through unannotated.
func (s *progressionService) planActivity(client *domain.Client, activity domain.Activity) PlannedActivity {
	planned := PlannedActivity{Activity: activity}
	if activity.BenchmarkTemplateID == nil {
		return planned
	}
	benchmark := client.CurrentBenchmarkFor(*activity.BenchmarkTemplateID)
	if benchmark == nil || benchmark.Type != domain.BenchmarkLift {
		return planned
	}

	weight := benchmark.Weight
	planned.BenchmarkWeight = &weight
	if recommended, ok := activity.RecommendedWeight(weight); ok {
		planned.RecommendedWeight = &recommended
	}
	return planned
}

func (s *progressionService) AdvanceAll(ctx context.Context, gymID primitive.ObjectID, blockIncrement, weekIncrement int) ([]BulkAdvanceOutcome, error) {
	if blockIncrement < 0 || weekIncrement < 0 {
		return nil, ErrNegativeIncrement
	}
	if blockIncrement == 0 && weekIncrement == 0 {
		return nil, ErrNothingToAdvance
	}
	if blockIncrement > MaxProgressionIncrement || weekIncrement > MaxProgressionIncrement {
		return nil, ErrIncrementTooLarge
	}

	clients, err := s.clientRepo.GetActiveWithPrograms(ctx, gymID)
	if err != nil {
		return nil, err
	}

	outcomes := make([]BulkAdvanceOutcome, 0, len(clients))
	for i := range clients {
		client := &clients[i]
		outcome := BulkAdvanceOutcome{ClientID: client.ID}

		result, err := s.advanceLoaded(ctx, client, blockIncrement, weekIncrement)
		if err != nil {
			outcome.Error = err.Error()
		} else {
			outcome.Result = result
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (s *progressionService) RunWeeklyProgression(ctx context.Context) ([]BulkAdvanceOutcome, error) {
	clients, err := s.clientRepo.GetActiveWithPrograms(ctx, primitive.NilObjectID)
	if err != nil {
		return nil, err
	}

	outcomes := make([]BulkAdvanceOutcome, 0, len(clients))
	for i := range clients {
		client := &clients[i]
		outcome := BulkAdvanceOutcome{ClientID: client.ID}

		result, err := s.advanceLoaded(ctx, client, 0, 1)
		if err != nil {
			// One broken client must not stall the whole run.
			log.Printf("weekly progression: client %s: %v", client.ID.Hex(), err)
			outcome.Error = err.Error()
		} else {
			outcome.Result = result
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// advanceLoaded advances a client already in hand, skipping the re-fetch.
func (s *progressionService) advanceLoaded(ctx context.Context, client *domain.Client, blockIncrement, weekIncrement int) (*domain.AdvanceResult, error) {
	if client.ProgramID == nil {
		return nil, ErrNoProgramAssigned
	}
	program, err := s.programRepo.GetByID(ctx, *client.ProgramID, client.GymID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("assigned program %s not found", client.ProgramID.Hex())
		}
		return nil, err
	}

	result, err := program.Advance(client.Position(), blockIncrement, weekIncrement)
	if err != nil {
		return nil, err
	}
	if err := s.clientRepo.SetProgression(ctx, client.ID, result.Current.Block, result.Current.Week, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *progressionService) loadClientProgram(ctx context.Context, clientID, gymID primitive.ObjectID) (*domain.Client, *domain.Program, error) {
	client, err := s.clientRepo.GetByIDOrUserID(ctx, clientID, gymID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrClientNotFound
		}
		return nil, nil, err
	}
	if client.ProgramID == nil {
		return nil, nil, ErrNoProgramAssigned
	}

	program, err := s.programRepo.GetByID(ctx, *client.ProgramID, gymID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("assigned program %s not found", client.ProgramID.Hex())
		}
		return nil, nil, err
	}
	return client, program, nil
}
