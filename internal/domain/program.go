package domain

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityType discriminates the activity variants stored in a program day.
type ActivityType string

const (
	ActivityPrimaryLift   ActivityType = "primaryLift"
	ActivityAccessoryLift ActivityType = "accessoryLift"
	ActivityOther         ActivityType = "other"
)

// Activity is a single prescribed exercise inside a program day. The Type
// field discriminates the variant: lift activities carry a percent-of-max
// target tied to a benchmark template, "other" activities are free-form.
type Activity struct {
	ID                  primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Type                ActivityType        `bson:"type" json:"type"`
	Name                string              `bson:"name" json:"name"`
	Notes               string              `bson:"notes,omitempty" json:"notes,omitempty"`
	ActivityGroupID     *primitive.ObjectID `bson:"activityGroupId,omitempty" json:"activityGroupId,omitempty"`
	PercentOfMax        float64             `bson:"percentOfMax,omitempty" json:"percentOfMax,omitempty"`
	Sets                int                 `bson:"sets,omitempty" json:"sets,omitempty"`
	Repetitions         int                 `bson:"repetitions,omitempty" json:"repetitions,omitempty"`
	BenchmarkTemplateID *primitive.ObjectID `bson:"benchmarkTemplateId,omitempty" json:"benchmarkTemplateId,omitempty"`
}

// IsLift reports whether the activity is one of the lift variants, which are
// the only ones eligible for percentage-based weight recommendations.
func (a *Activity) IsLift() bool {
	switch a.Type {
	case ActivityPrimaryLift, ActivityAccessoryLift:
		return true
	case ActivityOther:
		return false
	}
	return false
}

// RecommendedWeight computes the working weight for this activity from the
// client's current benchmark weight. PercentOfMax values greater than 1 are
// whole-number percentages (e.g. 85 means 85%); values in (0,1] are already
// fractions. Returns false when the activity carries no percentage target.
func (a *Activity) RecommendedWeight(benchmarkWeight float64) (float64, bool) {
	if !a.IsLift() || a.PercentOfMax <= 0 {
		return 0, false
	}
	fraction := a.PercentOfMax
	if fraction > 1 {
		fraction = fraction / 100
	}
	return benchmarkWeight * fraction, true
}

// Day is the leaf level of a program: three ordered activity lists performed
// in a single training session.
type Day struct {
	Name                    string     `bson:"name,omitempty" json:"name,omitempty"`
	PrimaryLiftActivities   []Activity `bson:"primaryLiftActivities" json:"primaryLiftActivities"`
	AccessoryLiftActivities []Activity `bson:"accessoryLiftActivities" json:"accessoryLiftActivities"`
	OtherActivities         []Activity `bson:"otherActivities" json:"otherActivities"`
}

// Activities returns every activity of the day in execution order: primary
// lifts, then accessory lifts, then everything else.
func (d *Day) Activities() []Activity {
	out := make([]Activity, 0, len(d.PrimaryLiftActivities)+len(d.AccessoryLiftActivities)+len(d.OtherActivities))
	out = append(out, d.PrimaryLiftActivities...)
	out = append(out, d.AccessoryLiftActivities...)
	out = append(out, d.OtherActivities...)
	return out
}

// Week is an ordered list of training days.
type Week struct {
	Days []Day `bson:"days" json:"days"`
}

// Block is an ordered list of weeks, typically a training phase.
type Block struct {
	Weeks []Week `bson:"weeks" json:"weeks"`
}

// Program is a block/week/day training structure. Gym templates have
// IsTemplate=true; assigning a template to a client deep-copies it into a
// client-owned program referencing the template.
type Program struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	GymID      primitive.ObjectID  `bson:"gymId" json:"gymId"`
	Name       string              `bson:"name" json:"name"`
	Blocks     []Block             `bson:"blocks" json:"blocks"`
	IsTemplate bool                `bson:"isTemplate" json:"isTemplate"`
	TemplateID *primitive.ObjectID `bson:"templateId,omitempty" json:"templateId,omitempty"`
	ClientID   *primitive.ObjectID `bson:"clientId,omitempty" json:"clientId,omitempty"`
	CreatedBy  primitive.ObjectID  `bson:"createdBy" json:"createdBy"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Position is a client's (block, week) pointer into a program. Both indexes
// are 0-based.
type Position struct {
	Block int `json:"block"`
	Week  int `json:"week"`
}

// AdvanceResult reports the outcome of moving a progression pointer.
type AdvanceResult struct {
	Previous         Position `json:"previous"`
	Current          Position `json:"current"`
	ProgramRestarted bool     `json:"programRestarted"`
}

// Progression errors.
var (
	ErrNoBlocks                = errors.New("program has no blocks")
	ErrProgressionOutOfBounds  = errors.New("progression pointer is out of bounds for the program")
	ErrInvalidProgramStructure = errors.New("invalid program structure")
)

// weekCount returns the number of weeks in block i.
func (p *Program) weekCount(i int) int {
	return len(p.Blocks[i].Weeks)
}

// Advance moves pos forward by blockIncrement blocks and weekIncrement weeks.
// Week overflow carries into subsequent blocks like a mixed-radix odometer
// where each block's radix is its own week count. Walking off the end of the
// program restarts it at (0,0) and sets ProgramRestarted; the result never
// points past the end. A block with zero weeks encountered during the walk is
// a data-integrity error, not something to route around.
func (p *Program) Advance(pos Position, blockIncrement, weekIncrement int) (AdvanceResult, error) {
	if len(p.Blocks) == 0 {
		return AdvanceResult{}, ErrNoBlocks
	}

	newBlock := pos.Block + blockIncrement
	newWeek := pos.Week + weekIncrement
	restarted := false

	for newBlock < len(p.Blocks) && newWeek >= p.weekCount(newBlock) {
		if p.weekCount(newBlock) == 0 {
			return AdvanceResult{}, fmt.Errorf("%w: block %d has no weeks", ErrInvalidProgramStructure, newBlock)
		}
		newWeek -= p.weekCount(newBlock)
		newBlock++
	}

	if newBlock >= len(p.Blocks) {
		newBlock = 0
		newWeek = 0
		restarted = true
	}

	// Increments are validated non-negative upstream.
	if newBlock < 0 {
		newBlock = 0
	}
	if newWeek < 0 {
		newWeek = 0
	}

	return AdvanceResult{
		Previous:         pos,
		Current:          Position{Block: newBlock, Week: newWeek},
		ProgramRestarted: restarted,
	}, nil
}

// ValidateTarget checks that pos refers to an existing (block, week) pair.
// Used by Reset, which rejects out-of-range targets instead of clamping.
func (p *Program) ValidateTarget(pos Position) error {
	if pos.Block < 0 || pos.Block >= len(p.Blocks) {
		return fmt.Errorf("invalid target block: %d. Program has %d blocks", pos.Block, len(p.Blocks))
	}
	if pos.Week < 0 || pos.Week >= p.weekCount(pos.Block) {
		return fmt.Errorf("invalid target week: %d. Block %d has %d weeks", pos.Week, pos.Block, p.weekCount(pos.Block))
	}
	return nil
}

// WeekAt returns the week the position points at. Bounds are checked lazily
// against the program's current shape: a pointer invalidated by a later
// program edit surfaces ErrProgressionOutOfBounds rather than being repaired.
func (p *Program) WeekAt(pos Position) (*Week, error) {
	if pos.Block < 0 || pos.Block >= len(p.Blocks) {
		return nil, ErrProgressionOutOfBounds
	}
	if pos.Week < 0 || pos.Week >= p.weekCount(pos.Block) {
		return nil, ErrProgressionOutOfBounds
	}
	return &p.Blocks[pos.Block].Weeks[pos.Week], nil
}

// TotalWeeks sums the week counts of every block.
func (p *Program) TotalWeeks() int {
	total := 0
	for i := range p.Blocks {
		total += p.weekCount(i)
	}
	return total
}

// DeepCopyBlocks clones the block structure, assigning fresh activity IDs so
// a client's assigned copy never aliases the template's activities.
func DeepCopyBlocks(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	for bi, block := range blocks {
		weeks := make([]Week, len(block.Weeks))
		for wi, week := range block.Weeks {
			days := make([]Day, len(week.Days))
			for di, day := range week.Days {
				days[di] = Day{
					Name:                    day.Name,
					PrimaryLiftActivities:   copyActivities(day.PrimaryLiftActivities),
					AccessoryLiftActivities: copyActivities(day.AccessoryLiftActivities),
					OtherActivities:         copyActivities(day.OtherActivities),
				}
			}
			weeks[wi] = Week{Days: days}
		}
		out[bi] = Block{Weeks: weeks}
	}
	return out
}

func copyActivities(activities []Activity) []Activity {
	out := make([]Activity, len(activities))
	for i, a := range activities {
		out[i] = a
		out[i].ID = primitive.NewObjectID()
	}
	return out
}
