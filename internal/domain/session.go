package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompletedSet records one finished set during a workout session.
type CompletedSet struct {
	ActivityID  primitive.ObjectID `bson:"activityId" json:"activityId"`
	SetNumber   int                `bson:"setNumber" json:"setNumber"` // 1-based
	CompletedAt time.Time          `bson:"completedAt" json:"completedAt"`
}

// WorkoutSession tracks a client working through one program day. At most one
// session per client is active at a time; starting a new one deactivates any
// prior active sessions.
type WorkoutSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID  primitive.ObjectID `bson:"clientId" json:"clientId"`
	GymID     primitive.ObjectID `bson:"gymId" json:"gymId"`
	ProgramID primitive.ObjectID `bson:"programId" json:"programId"`

	// Pinned program position at session start.
	Block int `bson:"block" json:"block"`
	Week  int `bson:"week" json:"week"`
	Day   int `bson:"day" json:"day"`

	CompletedSets []CompletedSet `bson:"completedSets" json:"completedSets"`
	IsActive      bool           `bson:"isActive" json:"isActive"`
	StartedAt     time.Time      `bson:"startedAt" json:"startedAt"`
	CompletedAt   *time.Time     `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt     time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// HasSet reports whether the given set of the given activity is already
// recorded.
func (s *WorkoutSession) HasSet(activityID primitive.ObjectID, setNumber int) bool {
	for _, cs := range s.CompletedSets {
		if cs.ActivityID == activityID && cs.SetNumber == setNumber {
			return true
		}
	}
	return false
}

// SetsCompletedFor counts recorded sets for one activity.
func (s *WorkoutSession) SetsCompletedFor(activityID primitive.ObjectID) int {
	n := 0
	for _, cs := range s.CompletedSets {
		if cs.ActivityID == activityID {
			n++
		}
	}
	return n
}
