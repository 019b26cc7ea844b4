package service

import (
	"context"
	"testing"

	"forgefit/gym-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func buildProgram(gymID primitive.ObjectID, weekCounts ...int) *domain.Program {
	blocks := make([]domain.Block, len(weekCounts))
	for bi, wc := range weekCounts {
		weeks := make([]domain.Week, wc)
		for wi := range weeks {
			weeks[wi] = domain.Week{Days: []domain.Day{{
				PrimaryLiftActivities: []domain.Activity{{
					ID:           primitive.NewObjectID(),
					Type:         domain.ActivityPrimaryLift,
					Name:         "Back Squat",
					PercentOfMax: 80,
					Sets:         5,
					Repetitions:  5,
				}},
			}}}
		}
		blocks[bi] = domain.Block{Weeks: weeks}
	}
	return &domain.Program{
		ID:     primitive.NewObjectID(),
		GymID:  gymID,
		Name:   "Strength Cycle",
		Blocks: blocks,
	}
}

type progressionFixture struct {
	svc      ProgressionService
	clients  *fakeClientRepo
	programs *fakeProgramRepo
	gymID    primitive.ObjectID
}

func newProgressionFixture(t *testing.T, weekCounts ...int) (*progressionFixture, *domain.Client, *domain.Program) {
	t.Helper()
	gymID := primitive.NewObjectID()
	clients := newFakeClientRepo()
	programs := newFakeProgramRepo()

	program := buildProgram(gymID, weekCounts...)
	_, err := programs.Create(context.Background(), program)
	require.NoError(t, err)

	client := &domain.Client{
		GymID:     gymID,
		UserID:    primitive.NewObjectID(),
		Email:     "lifter@example.com",
		FirstName: "Sam",
		ProgramID: &program.ID,
	}
	_, err = clients.Create(context.Background(), client)
	require.NoError(t, err)

	return &progressionFixture{
		svc:      NewProgressionService(clients, programs),
		clients:  clients,
		programs: programs,
		gymID:    gymID,
	}, client, program
}

func TestProgressionAdvance_SingleWeek(t *testing.T) {
	fix, client, _ := newProgressionFixture(t, 3, 3)

	result, err := fix.svc.Advance(context.Background(), client.ID, fix.gymID, 0, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.Position{Block: 0, Week: 1}, result.Current)
	assert.False(t, result.ProgramRestarted)
	assert.Equal(t, 0, client.CurrentBlock)
	assert.Equal(t, 1, client.CurrentWeek)
	assert.NotNil(t, client.LastProgressionUpdate)
}

func TestProgressionAdvance_WeekOverflowCarriesIntoNextBlock(t *testing.T) {
	fix, client, _ := newProgressionFixture(t, 2, 3)
	client.CurrentBlock = 0
	client.CurrentWeek = 1

	result, err := fix.svc.Advance(context.Background(), client.ID, fix.gymID, 0, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.Position{Block: 1, Week: 0}, result.Current)
	assert.False(t, result.ProgramRestarted)
}

func TestProgressionAdvance_WraparoundRestartsProgram(t *testing.T) {
	fix, client, _ := newProgressionFixture(t, 2, 3)
	client.CurrentBlock = 1
	client.CurrentWeek = 2

	result, err := fix.svc.Advance(context.Background(), client.ID, fix.gymID, 0, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.Position{Block: 0, Week: 0}, result.Current)
	assert.True(t, result.ProgramRestarted)
	assert.Equal(t, 0, client.CurrentBlock)
	assert.Equal(t, 0, client.CurrentWeek)
}

func TestProgressionAdvance_RejectsNegativeAndZeroIncrements(t *testing.T) {
	fix, client, _ := newProgressionFixture(t, 2)

	_, err := fix.svc.Advance(context.Background(), client.ID, fix.gymID, -1, 1)
	assert.ErrorIs(t, err, ErrNegativeIncrement)

	_, err = fix.svc.Advance(context.Background(), client.ID, fix.gymID, 0, 0)
	assert.ErrorIs(t, err, ErrNothingToAdvance)

	// Neither attempt may move the pointer.
	assert.Equal(t, 0, client.CurrentBlock)
	assert.Equal(t, 0, client.CurrentWeek)
}

func TestProgressionAdvance_NoProgramAssigned(t *testing.T) {
	fix, client, _ := newProgressionFixture(t, 2)
	client.ProgramID = nil

	_, err := fix.svc.Advance(context.Background(), client.ID, fix.gymID, 0, 1)
	assert.ErrorIs(t, err, ErrNoProgramAssigned)
}

func TestProgressionReset_RejectsOutOfRangeWithoutMutating(t *testing.T) {
	fix, client, _ := newProgressionFixture(t, 2, 3)
	client.CurrentBlock = 1
	client.CurrentWeek = 1

	_, err := fix.svc.Reset(context.Background(), client.ID, fix.gymID, domain.Position{Block: 5, Week: 0})
	require.Error(t, err)
	assert.Equal(t, 1, client.CurrentBlock)
	assert.Equal(t, 1, client.CurrentWeek)

	_, err = fix.svc.Reset(context.Background(), client.ID, fix.gymID, domain.Position{Block: 1, Week: 3})
	require.Error(t, err)
	assert.Equal(t, 1, client.CurrentWeek)
}

func TestProgressionReset_MovesPointer(t *testing.T) {
	fix, client, _ := newProgressionFixture(t, 2, 3)
	client.CurrentBlock = 1
	client.CurrentWeek = 2

	result, err := fix.svc.Reset(context.Background(), client.ID, fix.gymID, domain.Position{Block: 0, Week: 1})
	require.NoError(t, err)

	assert.Equal(t, domain.Position{Block: 1, Week: 2}, result.Previous)
	assert.Equal(t, domain.Position{Block: 0, Week: 1}, result.Current)
	assert.Equal(t, 0, client.CurrentBlock)
	assert.Equal(t, 1, client.CurrentWeek)
}

func TestGetCurrentWorkout_RecommendedWeights(t *testing.T) {
	fix, client, program := newProgressionFixture(t, 1)

	templateID := primitive.NewObjectID()
	program.Blocks[0].Weeks[0].Days[0].PrimaryLiftActivities[0].BenchmarkTemplateID = &templateID
	client.CurrentBenchmarks = []domain.Benchmark{{
		ID:                  primitive.NewObjectID(),
		Type:                domain.BenchmarkLift,
		Name:                "Back Squat 1RM",
		BenchmarkTemplateID: templateID,
		Weight:              200,
	}}

	workout, err := fix.svc.GetCurrentWorkout(context.Background(), client.ID, fix.gymID)
	require.NoError(t, err)
	require.Len(t, workout.Days, 1)
	require.Len(t, workout.Days[0].Activities, 1)

	activity := workout.Days[0].Activities[0]
	require.NotNil(t, activity.RecommendedWeight)
	assert.InDelta(t, 160, *activity.RecommendedWeight, 0.001) // 80% of 200
	require.NotNil(t, activity.BenchmarkWeight)
	assert.InDelta(t, 200, *activity.BenchmarkWeight, 0.001)
}

func TestGetCurrentWorkout_MissingBenchmarkLeavesWeightUnset(t *testing.T) {
	fix, client, program := newProgressionFixture(t, 1)

	templateID := primitive.NewObjectID()
	program.Blocks[0].Weeks[0].Days[0].PrimaryLiftActivities[0].BenchmarkTemplateID = &templateID

	workout, err := fix.svc.GetCurrentWorkout(context.Background(), client.ID, fix.gymID)
	require.NoError(t, err)
	assert.Nil(t, workout.Days[0].Activities[0].RecommendedWeight)
	assert.Nil(t, workout.Days[0].Activities[0].BenchmarkWeight)
}

func TestGetCurrentWorkout_StalePointerSurfacesError(t *testing.T) {
	fix, client, _ := newProgressionFixture(t, 2)
	// A later program edit shrank the structure under the pointer.
	client.CurrentBlock = 0
	client.CurrentWeek = 5

	_, err := fix.svc.GetCurrentWorkout(context.Background(), client.ID, fix.gymID)
	assert.ErrorIs(t, err, domain.ErrProgressionOutOfBounds)
}

func outcomeFor(t *testing.T, outcomes []BulkAdvanceOutcome, clientID primitive.ObjectID) BulkAdvanceOutcome {
	t.Helper()
	for _, o := range outcomes {
		if o.ClientID == clientID {
			return o
		}
	}
	t.Fatalf("no outcome for client %s", clientID.Hex())
	return BulkAdvanceOutcome{}
}

func TestAdvanceAll_MovesEveryClientWithProgram(t *testing.T) {
	fix, client, _ := newProgressionFixture(t, 2)

	// A client without a program is not part of the gym-wide run.
	noProgram := &domain.Client{
		GymID:            fix.gymID,
		UserID:           primitive.NewObjectID(),
		Email:            "idle@example.com",
		FirstName:        "Alex",
		MembershipStatus: domain.ClientActive,
	}
	_, err := fix.clients.Create(context.Background(), noProgram)
	require.NoError(t, err)

	outcomes, err := fix.svc.AdvanceAll(context.Background(), fix.gymID, 0, 1)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	outcome := outcomeFor(t, outcomes, client.ID)
	assert.Empty(t, outcome.Error)
	require.NotNil(t, outcome.Result)
	assert.Equal(t, domain.Position{Block: 0, Week: 1}, outcome.Result.Current)
}

func TestAdvanceAll_CollectsPerClientErrors(t *testing.T) {
	fix, client, _ := newProgressionFixture(t, 2)

	// A dangling program pointer fails that client alone, not the run.
	danglingID := primitive.NewObjectID()
	broken := &domain.Client{
		GymID:            fix.gymID,
		UserID:           primitive.NewObjectID(),
		Email:            "broken@example.com",
		FirstName:        "Casey",
		ProgramID:        &danglingID,
		MembershipStatus: domain.ClientActive,
	}
	_, err := fix.clients.Create(context.Background(), broken)
	require.NoError(t, err)

	outcomes, err := fix.svc.AdvanceAll(context.Background(), fix.gymID, 0, 1)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	ok := outcomeFor(t, outcomes, client.ID)
	assert.Empty(t, ok.Error)
	require.NotNil(t, ok.Result)

	failed := outcomeFor(t, outcomes, broken.ID)
	assert.NotEmpty(t, failed.Error)
	assert.Nil(t, failed.Result)
}

func TestAdvanceAll_CapsIncrements(t *testing.T) {
	fix, _, _ := newProgressionFixture(t, 2)

	_, err := fix.svc.AdvanceAll(context.Background(), fix.gymID, 0, MaxProgressionIncrement+1)
	assert.ErrorIs(t, err, ErrIncrementTooLarge)

	_, err = fix.svc.AdvanceAll(context.Background(), fix.gymID, 0, 0)
	assert.ErrorIs(t, err, ErrNothingToAdvance)
}

func TestRunWeeklyProgression_AdvancesAllGyms(t *testing.T) {
	fix, client, _ := newProgressionFixture(t, 2)

	// A second gym with its own program and client.
	otherGym := primitive.NewObjectID()
	otherProgram := buildProgram(otherGym, 1)
	_, err := fix.programs.Create(context.Background(), otherProgram)
	require.NoError(t, err)
	otherClient := &domain.Client{
		GymID:     otherGym,
		UserID:    primitive.NewObjectID(),
		Email:     "other@example.com",
		FirstName: "Kim",
		ProgramID: &otherProgram.ID,
	}
	_, err = fix.clients.Create(context.Background(), otherClient)
	require.NoError(t, err)

	outcomes, err := fix.svc.RunWeeklyProgression(context.Background())
	require.NoError(t, err)
	assert.Len(t, outcomes, 2)

	assert.Equal(t, 1, client.CurrentWeek)
	// Single-week program wraps straight back to the start.
	assert.Equal(t, 0, otherClient.CurrentBlock)
	assert.Equal(t, 0, otherClient.CurrentWeek)
}
