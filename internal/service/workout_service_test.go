package service

import (
	"context"
	"testing"

	"forgefit/gym-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type workoutFixture struct {
	svc      WorkoutService
	sessions *fakeSessionRepo
	clients  *fakeClientRepo
	programs *fakeProgramRepo
	gymID    primitive.ObjectID
	client   *domain.Client
	program  *domain.Program
}

func newWorkoutFixture(t *testing.T) *workoutFixture {
	t.Helper()
	gymID := primitive.NewObjectID()
	sessions := newFakeSessionRepo()
	clients := newFakeClientRepo()
	programs := newFakeProgramRepo()

	program := buildProgram(gymID, 2)
	// Give the day a second activity so "next activity" has something to
	// point at.
	program.Blocks[0].Weeks[0].Days[0].AccessoryLiftActivities = []domain.Activity{{
		ID:          primitive.NewObjectID(),
		Type:        domain.ActivityAccessoryLift,
		Name:        "Romanian Deadlift",
		Sets:        3,
		Repetitions: 8,
	}}
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

	return &workoutFixture{
		svc:      NewWorkoutService(sessions, clients, programs),
		sessions: sessions,
		clients:  clients,
		programs: programs,
		gymID:    gymID,
		client:   client,
		program:  program,
	}
}

func (fix *workoutFixture) primaryActivity() domain.Activity {
	return fix.program.Blocks[0].Weeks[0].Days[0].PrimaryLiftActivities[0]
}

func (fix *workoutFixture) accessoryActivity() domain.Activity {
	return fix.program.Blocks[0].Weeks[0].Days[0].AccessoryLiftActivities[0]
}

func TestStartSession_PinsPosition(t *testing.T) {
	fix := newWorkoutFixture(t)

	session, err := fix.svc.StartSession(context.Background(), fix.client.ID, fix.gymID, 0)
	require.NoError(t, err)

	assert.True(t, session.IsActive)
	assert.Equal(t, 0, session.Block)
	assert.Equal(t, 0, session.Week)
	assert.Equal(t, 0, session.Day)
	assert.Equal(t, fix.program.ID, session.ProgramID)
}

func TestStartSession_ResumesExistingSameDay(t *testing.T) {
	fix := newWorkoutFixture(t)

	first, err := fix.svc.StartSession(context.Background(), fix.client.ID, fix.gymID, 0)
	require.NoError(t, err)

	again, err := fix.svc.StartSession(context.Background(), fix.client.ID, fix.gymID, 0)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestStartSession_DeactivatesStaleSessions(t *testing.T) {
	fix := newWorkoutFixture(t)

	stale, err := fix.svc.StartSession(context.Background(), fix.client.ID, fix.gymID, 0)
	require.NoError(t, err)

	// The client advanced a week; the old session no longer matches the
	// pointer, so a new start closes it.
	fix.client.CurrentWeek = 1

	fresh, err := fix.svc.StartSession(context.Background(), fix.client.ID, fix.gymID, 0)
	require.NoError(t, err)
	assert.NotEqual(t, stale.ID, fresh.ID)

	reloaded, err := fix.sessions.GetByID(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)
}

func TestStartSession_DayOutOfRange(t *testing.T) {
	fix := newWorkoutFixture(t)

	_, err := fix.svc.StartSession(context.Background(), fix.client.ID, fix.gymID, 5)
	assert.ErrorIs(t, err, ErrDayOutOfRange)
}

func TestCompleteSet_RecordsAndReportsProgress(t *testing.T) {
	fix := newWorkoutFixture(t)
	activity := fix.primaryActivity()

	session, err := fix.svc.StartSession(context.Background(), fix.client.ID, fix.gymID, 0)
	require.NoError(t, err)

	result, err := fix.svc.CompleteSet(context.Background(), session.ID, fix.gymID, activity.ID, 1)
	require.NoError(t, err)

	assert.True(t, result.Recorded)
	assert.Equal(t, 1, result.SetsCompleted)
	assert.Equal(t, 5, result.SetsPlanned)
	assert.False(t, result.ExerciseCompleted)
	assert.Nil(t, result.NextActivityID)
}

func TestCompleteSet_DuplicateIsNoOp(t *testing.T) {
	fix := newWorkoutFixture(t)
	activity := fix.primaryActivity()

	session, err := fix.svc.StartSession(context.Background(), fix.client.ID, fix.gymID, 0)
	require.NoError(t, err)

	first, err := fix.svc.CompleteSet(context.Background(), session.ID, fix.gymID, activity.ID, 1)
	require.NoError(t, err)
	require.True(t, first.Recorded)

	second, err := fix.svc.CompleteSet(context.Background(), session.ID, fix.gymID, activity.ID, 1)
	require.NoError(t, err)
	assert.False(t, second.Recorded)
	assert.Equal(t, 1, second.SetsCompleted)
}

func TestCompleteSet_ExerciseCompletionAndNextActivity(t *testing.T) {
	fix := newWorkoutFixture(t)
	primary := fix.primaryActivity()
	accessory := fix.accessoryActivity()

	session, err := fix.svc.StartSession(context.Background(), fix.client.ID, fix.gymID, 0)
	require.NoError(t, err)

	var result *SetResult
	for set := 1; set <= 5; set++ {
		result, err = fix.svc.CompleteSet(context.Background(), session.ID, fix.gymID, primary.ID, set)
		require.NoError(t, err)
	}

	assert.True(t, result.ExerciseCompleted)
	require.NotNil(t, result.NextActivityID)
	assert.Equal(t, accessory.ID, *result.NextActivityID)
}

func TestCompleteSet_LastActivityHasNoNext(t *testing.T) {
	fix := newWorkoutFixture(t)
	accessory := fix.accessoryActivity()

	session, err := fix.svc.StartSession(context.Background(), fix.client.ID, fix.gymID, 0)
	require.NoError(t, err)

	var result *SetResult
	for set := 1; set <= 3; set++ {
		result, err = fix.svc.CompleteSet(context.Background(), session.ID, fix.gymID, accessory.ID, set)
		require.NoError(t, err)
	}

	assert.True(t, result.ExerciseCompleted)
	assert.Nil(t, result.NextActivityID)
}

func TestCompleteSet_UnknownActivityRejected(t *testing.T) {
	fix := newWorkoutFixture(t)

	session, err := fix.svc.StartSession(context.Background(), fix.client.ID, fix.gymID, 0)
	require.NoError(t, err)

	_, err = fix.svc.CompleteSet(context.Background(), session.ID, fix.gymID, primitive.NewObjectID(), 1)
	assert.ErrorIs(t, err, ErrActivityNotInDay)
}

func TestCompleteSet_InactiveSessionRejected(t *testing.T) {
	fix := newWorkoutFixture(t)
	activity := fix.primaryActivity()

	session, err := fix.svc.StartSession(context.Background(), fix.client.ID, fix.gymID, 0)
	require.NoError(t, err)

	_, err = fix.svc.EndSession(context.Background(), session.ID, fix.gymID)
	require.NoError(t, err)

	_, err = fix.svc.CompleteSet(context.Background(), session.ID, fix.gymID, activity.ID, 1)
	assert.ErrorIs(t, err, ErrSessionInactive)
}

func TestEndSession_StampsCompletion(t *testing.T) {
	fix := newWorkoutFixture(t)

	session, err := fix.svc.StartSession(context.Background(), fix.client.ID, fix.gymID, 0)
	require.NoError(t, err)

	ended, err := fix.svc.EndSession(context.Background(), session.ID, fix.gymID)
	require.NoError(t, err)
	assert.False(t, ended.IsActive)
	assert.NotNil(t, ended.CompletedAt)
}

func TestSessionKeepsPinnedWeekAfterProgression(t *testing.T) {
	fix := newWorkoutFixture(t)
	activity := fix.primaryActivity()

	session, err := fix.svc.StartSession(context.Background(), fix.client.ID, fix.gymID, 0)
	require.NoError(t, err)

	// Advancing the client does not move the session's pin, so set
	// completion still resolves against week 0.
	fix.client.CurrentWeek = 1

	result, err := fix.svc.CompleteSet(context.Background(), session.ID, fix.gymID, activity.ID, 1)
	require.NoError(t, err)
	assert.True(t, result.Recorded)
}
