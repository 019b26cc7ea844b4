package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DayNames maps dayOfWeek (0=Sunday) to its English name for reports.
var DayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// TimeSlot is a bookable window inside a schedule day. Times are "HH:MM"
// 24-hour strings; the slot occupies the half-open interval [start, end).
type TimeSlot struct {
	StartTime    string               `bson:"startTime" json:"startTime"`
	EndTime      string               `bson:"endTime" json:"endTime"`
	MaxCapacity  int                  `bson:"maxCapacity" json:"maxCapacity"`
	ClientIDs    []primitive.ObjectID `bson:"clientIds" json:"clientIds"`
	LocationID   primitive.ObjectID   `bson:"locationId" json:"locationId"`
	ActivityType string               `bson:"activityType,omitempty" json:"activityType,omitempty"`
	Notes        string               `bson:"notes,omitempty" json:"notes,omitempty"`
}

// ParseClock converts an "HH:MM" string to a minute-of-day integer.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	return h*60 + m, nil
}

// Overlaps reports whether two slots' time ranges intersect using the
// half-open rule start1 < end2 && start2 < end1. Back-to-back slots
// (end1 == start2) do not overlap. Malformed times never overlap; Validate
// is the place that rejects them.
func (t *TimeSlot) Overlaps(other *TimeSlot) bool {
	s1, err := ParseClock(t.StartTime)
	if err != nil {
		return false
	}
	e1, err := ParseClock(t.EndTime)
	if err != nil {
		return false
	}
	s2, err := ParseClock(other.StartTime)
	if err != nil {
		return false
	}
	e2, err := ParseClock(other.EndTime)
	if err != nil {
		return false
	}
	return s1 < e2 && s2 < e1
}

// OverlapRange returns the intersection [max(starts), min(ends)] of two
// overlapping slots, for conflict reporting.
func OverlapRange(a, b *TimeSlot) (start, end string) {
	sa, _ := ParseClock(a.StartTime)
	sb, _ := ParseClock(b.StartTime)
	ea, _ := ParseClock(a.EndTime)
	eb, _ := ParseClock(b.EndTime)
	start = a.StartTime
	if sb > sa {
		start = b.StartTime
	}
	end = a.EndTime
	if eb < ea {
		end = b.EndTime
	}
	return start, end
}

// HasClient reports whether the client is enrolled in this slot.
func (t *TimeSlot) HasClient(clientID primitive.ObjectID) bool {
	for _, id := range t.ClientIDs {
		if id == clientID {
			return true
		}
	}
	return false
}

// Validate checks time format, ordering and capacity for a single slot.
func (t *TimeSlot) Validate() error {
	start, err := ParseClock(t.StartTime)
	if err != nil {
		return err
	}
	end, err := ParseClock(t.EndTime)
	if err != nil {
		return err
	}
	if end <= start {
		return fmt.Errorf("end time must be after start time for time slot %s-%s", t.StartTime, t.EndTime)
	}
	if t.MaxCapacity < 1 {
		return fmt.Errorf("time slot %s-%s must have capacity of at least 1", t.StartTime, t.EndTime)
	}
	if t.LocationID.IsZero() {
		return fmt.Errorf("time slot %s-%s must have a location", t.StartTime, t.EndTime)
	}
	return nil
}

// ScheduleDay holds the ordered time slots for one weekday.
type ScheduleDay struct {
	DayOfWeek int        `bson:"dayOfWeek" json:"dayOfWeek"` // 0 (Sunday) - 6 (Saturday)
	TimeSlots []TimeSlot `bson:"timeSlots" json:"timeSlots"`
}

// WeeklySchedule is a coach's weekly pattern of time slots within a gym.
// Templates (IsTemplate=true) are reusable patterns with no calendar date;
// active schedules are concrete week instances, optionally linked back to the
// template they were materialized from.
type WeeklySchedule struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	GymID         primitive.ObjectID  `bson:"gymId" json:"gymId"`
	CoachID       primitive.ObjectID  `bson:"coachId" json:"coachId"`
	Name          string              `bson:"name" json:"name"`
	Description   string              `bson:"description,omitempty" json:"description,omitempty"`
	Days          []ScheduleDay       `bson:"days" json:"days"`
	IsTemplate    bool                `bson:"isTemplate" json:"isTemplate"`
	TemplateID    *primitive.ObjectID `bson:"templateId,omitempty" json:"templateId,omitempty"`
	WeekStartDate *time.Time          `bson:"weekStartDate,omitempty" json:"weekStartDate,omitempty"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Day returns the schedule's entry for the given weekday, or nil.
func (s *WeeklySchedule) Day(dayOfWeek int) *ScheduleDay {
	for i := range s.Days {
		if s.Days[i].DayOfWeek == dayOfWeek {
			return &s.Days[i]
		}
	}
	return nil
}

// Validate checks every day and slot in the schedule. Write-time validation;
// the enrollment path assumes stored schedules already pass.
func (s *WeeklySchedule) Validate() error {
	for i := range s.Days {
		day := &s.Days[i]
		if day.DayOfWeek < 0 || day.DayOfWeek > 6 {
			return fmt.Errorf("dayOfWeek must be between 0 and 6, got %d", day.DayOfWeek)
		}
		for j := range day.TimeSlots {
			if err := day.TimeSlots[j].Validate(); err != nil {
				return fmt.Errorf("day %d: %w", day.DayOfWeek, err)
			}
		}
	}
	return nil
}

// CopyDays clones the day/slot structure verbatim, including enrolled client
// IDs. Template enrollment state deliberately seeds materialized weeks.
func CopyDays(days []ScheduleDay) []ScheduleDay {
	out := make([]ScheduleDay, len(days))
	for i, day := range days {
		slots := make([]TimeSlot, len(day.TimeSlots))
		for j, slot := range day.TimeSlots {
			clientIDs := make([]primitive.ObjectID, len(slot.ClientIDs))
			copy(clientIDs, slot.ClientIDs)
			slots[j] = slot
			slots[j].ClientIDs = clientIDs
		}
		out[i] = ScheduleDay{DayOfWeek: day.DayOfWeek, TimeSlots: slots}
	}
	return out
}
