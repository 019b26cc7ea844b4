package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BenchmarkType discriminates benchmark variants.
type BenchmarkType string

const (
	BenchmarkLift  BenchmarkType = "Lift"
	BenchmarkOther BenchmarkType = "Other"
)

// BenchmarkTemplate names a measurable the gym tracks (e.g. "Back Squat 1RM",
// "2k Row"). Clients record Benchmark entries against templates.
type BenchmarkTemplate struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GymID         primitive.ObjectID `bson:"gymId" json:"gymId"`
	Name          string             `bson:"name" json:"name"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	BenchmarkType BenchmarkType      `bson:"benchmarkType" json:"benchmarkType"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Benchmark is a client's recorded value for a benchmark template. The Type
// field discriminates: Lift benchmarks carry a weight, Other benchmarks carry
// a value/unit pair with free-form measurement notes.
type Benchmark struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type                BenchmarkType      `bson:"type" json:"type"`
	Name                string             `bson:"name" json:"name"`
	Notes               string             `bson:"notes,omitempty" json:"notes,omitempty"`
	BenchmarkTemplateID primitive.ObjectID `bson:"benchmarkTemplateId" json:"benchmarkTemplateId"`
	RecordedAt          time.Time          `bson:"recordedAt" json:"recordedAt"`

	// Lift variant
	Weight float64 `bson:"weight,omitempty" json:"weight,omitempty"`

	// Other variant
	Value            float64 `bson:"value,omitempty" json:"value,omitempty"`
	Unit             string  `bson:"unit,omitempty" json:"unit,omitempty"`
	MeasurementNotes string  `bson:"measurementNotes,omitempty" json:"measurementNotes,omitempty"`
}

// ClientStatus tracks a client's standing in the gym.
type ClientStatus string

const (
	ClientActive    ClientStatus = "active"
	ClientInactive  ClientStatus = "inactive"
	ClientSuspended ClientStatus = "suspended"
)

// Client is a gym member's training record: their assigned program, their
// progression pointer through it, and their benchmark history. A client
// belongs to exactly one gym; the same person joining a second gym gets a
// second Client document.
type Client struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GymID     primitive.ObjectID `bson:"gymId" json:"gymId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Email     string             `bson:"email" json:"email"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Weight    float64            `bson:"weight,omitempty" json:"weight,omitempty"`

	ProgramID *primitive.ObjectID `bson:"programId,omitempty" json:"programId,omitempty"`

	// Progression pointer: 0-based indexes into the assigned program's
	// blocks and the current block's weeks. Mutated only by the progression
	// engine and by program assignment.
	CurrentBlock          int        `bson:"currentBlock" json:"currentBlock"`
	CurrentWeek           int        `bson:"currentWeek" json:"currentWeek"`
	ProgramStartDate      *time.Time `bson:"programStartDate,omitempty" json:"programStartDate,omitempty"`
	LastProgressionUpdate *time.Time `bson:"lastProgressionUpdate,omitempty" json:"lastProgressionUpdate,omitempty"`

	CurrentBenchmarks    []Benchmark `bson:"currentBenchmarks" json:"currentBenchmarks"`
	HistoricalBenchmarks []Benchmark `bson:"historicalBenchmarks" json:"historicalBenchmarks"`

	MembershipStatus ClientStatus `bson:"membershipStatus" json:"membershipStatus"`
	JoinedAt         time.Time    `bson:"joinedAt" json:"joinedAt"`
	CreatedAt        time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// FullName joins first and last name.
func (c *Client) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Position returns the client's progression pointer.
func (c *Client) Position() Position {
	return Position{Block: c.CurrentBlock, Week: c.CurrentWeek}
}

// CurrentBenchmarkFor returns the client's latest benchmark recorded against
// the given template, or nil if none exists.
func (c *Client) CurrentBenchmarkFor(templateID primitive.ObjectID) *Benchmark {
	for i := range c.CurrentBenchmarks {
		if c.CurrentBenchmarks[i].BenchmarkTemplateID == templateID {
			return &c.CurrentBenchmarks[i]
		}
	}
	return nil
}
