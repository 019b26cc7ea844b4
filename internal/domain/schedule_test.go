package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func slot(start, end string) *TimeSlot {
	return &TimeSlot{StartTime: start, EndTime: end, MaxCapacity: 10, LocationID: primitive.NewObjectID()}
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9*60+30, m)

	m, err = ParseClock("00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, m)

	m, err = ParseClock("23:59")
	require.NoError(t, err)
	assert.Equal(t, 23*60+59, m)

	for _, bad := range []string{"24:00", "12:60", "noon", "9", ""} {
		_, err := ParseClock(bad)
		assert.Errorf(t, err, "expected %q to be rejected", bad)
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b *TimeSlot
		want bool
	}{
		{"identical", slot("09:00", "10:00"), slot("09:00", "10:00"), true},
		{"partial", slot("09:00", "10:00"), slot("09:30", "10:30"), true},
		{"contained", slot("09:00", "12:00"), slot("10:00", "11:00"), true},
		{"back to back", slot("09:00", "10:00"), slot("10:00", "11:00"), false},
		{"disjoint", slot("09:00", "10:00"), slot("11:00", "12:00"), false},
		{"one minute overlap", slot("09:00", "10:01"), slot("10:00", "11:00"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			// The predicate must be symmetric.
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestOverlapRange(t *testing.T) {
	start, end := OverlapRange(slot("09:00", "10:00"), slot("09:30", "10:30"))
	assert.Equal(t, "09:30", start)
	assert.Equal(t, "10:00", end)

	start, end = OverlapRange(slot("09:00", "12:00"), slot("10:00", "11:00"))
	assert.Equal(t, "10:00", start)
	assert.Equal(t, "11:00", end)
}

func TestTimeSlotValidate(t *testing.T) {
	valid := slot("09:00", "10:00")
	assert.NoError(t, valid.Validate())

	backwards := slot("10:00", "09:00")
	assert.Error(t, backwards.Validate())

	zeroLength := slot("09:00", "09:00")
	assert.Error(t, zeroLength.Validate())

	noCapacity := slot("09:00", "10:00")
	noCapacity.MaxCapacity = 0
	assert.Error(t, noCapacity.Validate())

	noLocation := &TimeSlot{StartTime: "09:00", EndTime: "10:00", MaxCapacity: 5}
	assert.Error(t, noLocation.Validate())
}

func TestWeeklyScheduleValidate(t *testing.T) {
	sched := &WeeklySchedule{
		Name: "Morning classes",
		Days: []ScheduleDay{
			{DayOfWeek: 1, TimeSlots: []TimeSlot{*slot("06:00", "07:00")}},
		},
	}
	assert.NoError(t, sched.Validate())

	sched.Days = append(sched.Days, ScheduleDay{DayOfWeek: 7})
	assert.Error(t, sched.Validate())
}

func TestScheduleDayLookup(t *testing.T) {
	sched := &WeeklySchedule{
		Days: []ScheduleDay{
			{DayOfWeek: 1, TimeSlots: []TimeSlot{*slot("06:00", "07:00")}},
			{DayOfWeek: 3},
		},
	}

	require.NotNil(t, sched.Day(1))
	assert.Len(t, sched.Day(1).TimeSlots, 1)
	assert.Nil(t, sched.Day(5))
}

func TestCopyDays_PreservesEnrollmentAndDetaches(t *testing.T) {
	clientID := primitive.NewObjectID()
	src := []ScheduleDay{{
		DayOfWeek: 2,
		TimeSlots: []TimeSlot{{
			StartTime:   "18:00",
			EndTime:     "19:00",
			MaxCapacity: 8,
			LocationID:  primitive.NewObjectID(),
			ClientIDs:   []primitive.ObjectID{clientID},
		}},
	}}

	copied := CopyDays(src)
	require.Len(t, copied, 1)
	require.Len(t, copied[0].TimeSlots, 1)

	// Enrollment state carries over verbatim.
	assert.Equal(t, []primitive.ObjectID{clientID}, copied[0].TimeSlots[0].ClientIDs)

	// But the copy is detached from the source.
	copied[0].TimeSlots[0].ClientIDs = append(copied[0].TimeSlots[0].ClientIDs, primitive.NewObjectID())
	assert.Len(t, src[0].TimeSlots[0].ClientIDs, 1)
}
