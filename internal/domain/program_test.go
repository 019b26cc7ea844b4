package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// programWithWeekCounts builds a program whose blocks have the given week
// counts, each week holding a single empty day.
func programWithWeekCounts(weekCounts ...int) *Program {
	blocks := make([]Block, len(weekCounts))
	for i, wc := range weekCounts {
		weeks := make([]Week, wc)
		for w := range weeks {
			weeks[w] = Week{Days: []Day{{}}}
		}
		blocks[i] = Block{Weeks: weeks}
	}
	return &Program{Name: "test", Blocks: blocks}
}

func TestAdvance_SingleWeek(t *testing.T) {
	p := programWithWeekCounts(2, 3)

	res, err := p.Advance(Position{Block: 0, Week: 0}, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, Position{Block: 0, Week: 1}, res.Current)
	assert.False(t, res.ProgramRestarted)
}

func TestAdvance_WeekOverflowIntoNextBlock(t *testing.T) {
	// Blocks with week counts [2,3], client at (0,1): advancing one
	// week carries into the next block.
	p := programWithWeekCounts(2, 3)

	res, err := p.Advance(Position{Block: 0, Week: 1}, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, Position{Block: 0, Week: 1}, res.Previous)
	assert.Equal(t, Position{Block: 1, Week: 0}, res.Current)
	assert.False(t, res.ProgramRestarted)
}

func TestAdvance_WraparoundRestartsProgram(t *testing.T) {
	p := programWithWeekCounts(2, 3)

	res, err := p.Advance(Position{Block: 1, Week: 2}, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, Position{Block: 0, Week: 0}, res.Current)
	assert.True(t, res.ProgramRestarted)
}

func TestAdvance_LastValidWeekDoesNotRestart(t *testing.T) {
	p := programWithWeekCounts(2, 3)

	res, err := p.Advance(Position{Block: 1, Week: 1}, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, Position{Block: 1, Week: 2}, res.Current)
	assert.False(t, res.ProgramRestarted)
}

func TestAdvance_MultiWeekCarriesAcrossBlocks(t *testing.T) {
	// Mixed radix: week counts differ per block, so the carry uses each
	// block's own week count.
	p := programWithWeekCounts(1, 4, 2)

	res, err := p.Advance(Position{Block: 0, Week: 0}, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, Position{Block: 2, Week: 0}, res.Current)
	assert.False(t, res.ProgramRestarted)
}

func TestAdvance_BlockIncrementThenWeekOverflow(t *testing.T) {
	p := programWithWeekCounts(3, 2, 4)

	// Jump one block, then two weeks from (1, 1) overflows into block 2.
	res, err := p.Advance(Position{Block: 0, Week: 1}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, Position{Block: 2, Week: 1}, res.Current)
	assert.False(t, res.ProgramRestarted)
}

func TestAdvance_BlockIncrementPastEndRestarts(t *testing.T) {
	p := programWithWeekCounts(2, 2)

	res, err := p.Advance(Position{Block: 1, Week: 0}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, Position{Block: 0, Week: 0}, res.Current)
	assert.True(t, res.ProgramRestarted)
}

// TestAdvance_DecomposesIntoUnitSteps verifies the odometer property: for any
// program shape, advancing by N weeks lands where N single-week advances land,
// as long as the walk stays inside the program.
func TestAdvance_DecomposesIntoUnitSteps(t *testing.T) {
	shapes := [][]int{
		{1},
		{2, 3},
		{3, 1, 2},
		{1, 1, 1, 1},
		{4, 2, 5, 1},
	}

	for _, shape := range shapes {
		p := programWithWeekCounts(shape...)
		total := p.TotalWeeks()

		for weeks := 0; weeks < total; weeks++ {
			direct, err := p.Advance(Position{}, 0, weeks)
			require.NoError(t, err)

			stepped := Position{}
			restarted := false
			for i := 0; i < weeks; i++ {
				res, err := p.Advance(stepped, 0, 1)
				require.NoError(t, err)
				stepped = res.Current
				restarted = restarted || res.ProgramRestarted
			}

			assert.Equalf(t, stepped, direct.Current,
				"shape %v: %d single-week steps disagree with one %d-week advance", shape, weeks, weeks)
			assert.False(t, restarted)
			assert.False(t, direct.ProgramRestarted)
		}
	}
}

func TestAdvance_EmptyProgram(t *testing.T) {
	p := &Program{Name: "empty"}

	_, err := p.Advance(Position{}, 0, 1)
	assert.ErrorIs(t, err, ErrNoBlocks)
}

func TestAdvance_BlockWithZeroWeeksIsDataIntegrityError(t *testing.T) {
	p := programWithWeekCounts(2, 0, 3)

	// Overflow out of block 0 hits the zero-week block.
	_, err := p.Advance(Position{Block: 0, Week: 1}, 0, 1)
	require.ErrorIs(t, err, ErrInvalidProgramStructure)
	assert.Contains(t, err.Error(), "block 1 has no weeks")
}

func TestValidateTarget(t *testing.T) {
	p := programWithWeekCounts(2, 3)

	assert.NoError(t, p.ValidateTarget(Position{Block: 0, Week: 0}))
	assert.NoError(t, p.ValidateTarget(Position{Block: 1, Week: 2}))

	assert.Error(t, p.ValidateTarget(Position{Block: 2, Week: 0}))
	assert.Error(t, p.ValidateTarget(Position{Block: -1, Week: 0}))
	assert.Error(t, p.ValidateTarget(Position{Block: 0, Week: 2}))
	assert.Error(t, p.ValidateTarget(Position{Block: 0, Week: -1}))
}

func TestWeekAt_BoundsCheckedLazily(t *testing.T) {
	p := programWithWeekCounts(1, 2)

	week, err := p.WeekAt(Position{Block: 1, Week: 1})
	require.NoError(t, err)
	assert.NotNil(t, week)

	// A pointer left dangling by a program edit surfaces an error, never a
	// silently clamped position.
	_, err = p.WeekAt(Position{Block: 1, Week: 2})
	assert.ErrorIs(t, err, ErrProgressionOutOfBounds)
	_, err = p.WeekAt(Position{Block: 2, Week: 0})
	assert.ErrorIs(t, err, ErrProgressionOutOfBounds)
}

func TestRecommendedWeight_PercentNormalization(t *testing.T) {
	lift := Activity{Type: ActivityPrimaryLift, PercentOfMax: 85}
	w, ok := lift.RecommendedWeight(200)
	require.True(t, ok)
	assert.InDelta(t, 170, w, 0.001)

	fractional := Activity{Type: ActivityAccessoryLift, PercentOfMax: 0.85}
	w, ok = fractional.RecommendedWeight(200)
	require.True(t, ok)
	assert.InDelta(t, 170, w, 0.001)

	// Exactly 1 is treated as 100%, not 1%.
	full := Activity{Type: ActivityPrimaryLift, PercentOfMax: 1}
	w, ok = full.RecommendedWeight(200)
	require.True(t, ok)
	assert.InDelta(t, 200, w, 0.001)
}

func TestRecommendedWeight_NonLiftOrNoTarget(t *testing.T) {
	other := Activity{Type: ActivityOther, PercentOfMax: 85}
	_, ok := other.RecommendedWeight(200)
	assert.False(t, ok)

	noTarget := Activity{Type: ActivityPrimaryLift}
	_, ok = noTarget.RecommendedWeight(200)
	assert.False(t, ok)
}

func TestDeepCopyBlocks_FreshActivityIDs(t *testing.T) {
	original := []Block{{Weeks: []Week{{Days: []Day{{
		PrimaryLiftActivities: []Activity{{
			ID:           primitive.NewObjectID(),
			Type:         ActivityPrimaryLift,
			Name:         "Back Squat",
			PercentOfMax: 80,
			Sets:         5,
			Repetitions:  5,
		}},
	}}}}}}

	copied := DeepCopyBlocks(original)
	require.Len(t, copied, 1)

	src := original[0].Weeks[0].Days[0].PrimaryLiftActivities[0]
	dst := copied[0].Weeks[0].Days[0].PrimaryLiftActivities[0]
	assert.Equal(t, src.Name, dst.Name)
	assert.Equal(t, src.Sets, dst.Sets)
	assert.NotEqual(t, src.ID, dst.ID)

	// Mutating the copy must not reach back into the source.
	copied[0].Weeks[0].Days[0].PrimaryLiftActivities[0].Name = "Front Squat"
	assert.Equal(t, "Back Squat", original[0].Weeks[0].Days[0].PrimaryLiftActivities[0].Name)
}
