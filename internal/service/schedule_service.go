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
	ErrScheduleNotFound   = errors.New("schedule not found")
	ErrSlotNotFound       = errors.New("time slot not found")
	ErrAlreadyEnrolled    = errors.New("client is already enrolled in this time slot")
	ErrNotEnrolled        = errors.New("client is not enrolled in this time slot")
	ErrSlotFull           = errors.New("time slot is at maximum capacity")
	ErrEnrollmentConflict = errors.New("enrollment was modified concurrently, please retry")
	ErrNotATemplate       = errors.New("schedule is not a template")
)

// ScheduleConflict is one entry of the gym-wide conflict report: two slots at
// the same location, the same weekday, with intersecting time ranges.
type ScheduleConflict struct {
	LocationID   primitive.ObjectID `json:"locationId"`
	DayOfWeek    int                `json:"dayOfWeek"`
	DayName      string             `json:"dayName"`
	ScheduleID1  primitive.ObjectID `json:"scheduleId1"`
	ScheduleID2  primitive.ObjectID `json:"scheduleId2"`
	CoachID1     primitive.ObjectID `json:"coachId1"`
	CoachID2     primitive.ObjectID `json:"coachId2"`
	Slot1        domain.TimeSlot    `json:"slot1"`
	Slot2        domain.TimeSlot    `json:"slot2"`
	OverlapStart string             `json:"overlapStart"`
	OverlapEnd   string             `json:"overlapEnd"`
}

// ClientConflict explains why an enrollment was refused: the client is
// already booked in an overlapping slot elsewhere in the gym.
type ClientConflict struct {
	ScheduleID   primitive.ObjectID `json:"scheduleId"`
	ScheduleName string             `json:"scheduleName"`
	CoachID      primitive.ObjectID `json:"coachId"`
	StartTime    string             `json:"startTime"`
	EndTime      string             `json:"endTime"`
}

// EnrollmentConflictError carries the conflicting bookings back to the caller.
type EnrollmentConflictError struct {
	Conflicts []ClientConflict
}

func (e *EnrollmentConflictError) Error() string {
	if len(e.Conflicts) == 1 {
		c := e.Conflicts[0]
		return fmt.Sprintf("client already has a booking from %s to %s in schedule %q", c.StartTime, c.EndTime, c.ScheduleName)
	}
	return fmt.Sprintf("client has %d conflicting bookings at this time", len(e.Conflicts))
}

// SlotRef identifies one time slot within a schedule.
type SlotRef struct {
	DayOfWeek     int
	TimeSlotIndex int
}

type ScheduleService interface {
	CreateSchedule(ctx context.Context, schedule *domain.WeeklySchedule) (*domain.WeeklySchedule, error)
	GetSchedule(ctx context.Context, id, gymID primitive.ObjectID) (*domain.WeeklySchedule, error)
	ListSchedules(ctx context.Context, gymID primitive.ObjectID, isTemplate *bool) ([]domain.WeeklySchedule, error)
	ListCoachSchedules(ctx context.Context, gymID, coachID primitive.ObjectID, isTemplate *bool) ([]domain.WeeklySchedule, error)
	UpdateSchedule(ctx context.Context, schedule *domain.WeeklySchedule) error
	DeleteSchedule(ctx context.Context, id, gymID primitive.ObjectID) error

	// Enroll books the client into one slot after duplicate, cross-schedule
	// conflict and capacity checks. Enrolling on a template mirrors the
	// booking into active schedules derived from it, best effort.
	Enroll(ctx context.Context, scheduleID, gymID, clientID primitive.ObjectID, ref SlotRef) (*domain.WeeklySchedule, error)
	Unenroll(ctx context.Context, scheduleID, gymID, clientID primitive.ObjectID, ref SlotRef) (*domain.WeeklySchedule, error)

	// Materialize creates a concrete week instance from a template.
	Materialize(ctx context.Context, templateID, gymID primitive.ObjectID, weekStartDate time.Time) (*domain.WeeklySchedule, error)
	// Rollover re-materializes the template for the following week.
	Rollover(ctx context.Context, scheduleID, gymID primitive.ObjectID) (*domain.WeeklySchedule, error)

	Overview(ctx context.Context, gymID primitive.ObjectID) ([]domain.WeeklySchedule, error)
	ConflictReport(ctx context.Context, gymID primitive.ObjectID) ([]ScheduleConflict, error)
}

type scheduleService struct {
	scheduleRepo repository.ScheduleRepository
	clientRepo   repository.ClientRepository
}

func NewScheduleService(scheduleRepo repository.ScheduleRepository, clientRepo repository.ClientRepository) ScheduleService {
	return &scheduleService{
		scheduleRepo: scheduleRepo,
		clientRepo:   clientRepo,
	}
}

func (s *scheduleService) CreateSchedule(ctx context.Context, schedule *domain.WeeklySchedule) (*domain.WeeklySchedule, error) {
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	id, err := s.scheduleRepo.Create(ctx, schedule)
	if err != nil {
		return nil, err
	}
	schedule.ID = id
	return schedule, nil
}

func (s *scheduleService) GetSchedule(ctx context.Context, id, gymID primitive.ObjectID) (*domain.WeeklySchedule, error) {
	schedule, err := s.scheduleRepo.GetByID(ctx, id, gymID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return schedule, nil
}

func (s *scheduleService) ListSchedules(ctx context.Context, gymID primitive.ObjectID, isTemplate *bool) ([]domain.WeeklySchedule, error) {
	return s.scheduleRepo.GetByGym(ctx, gymID, isTemplate)
}

func (s *scheduleService) ListCoachSchedules(ctx context.Context, gymID, coachID primitive.ObjectID, isTemplate *bool) ([]domain.WeeklySchedule, error) {
	return s.scheduleRepo.GetByCoach(ctx, gymID, coachID, isTemplate)
}

func (s *scheduleService) UpdateSchedule(ctx context.Context, schedule *domain.WeeklySchedule) error {
	if err := schedule.Validate(); err != nil {
		return err
	}
	err := s.scheduleRepo.Update(ctx, schedule)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrScheduleNotFound
	}
	return err
}

func (s *scheduleService) DeleteSchedule(ctx context.Context, id, gymID primitive.ObjectID) error {
	err := s.scheduleRepo.Delete(ctx, id, gymID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrScheduleNotFound
	}
	return err
}

// Enroll runs the checks in a fixed order: slot exists, not already enrolled,
// no overlapping booking anywhere in the gym, capacity. The write is a
// conditional update keyed on the slot's current enrollment list, so two
// racing enrollments cannot both land in the last seat; the loser gets
// ErrEnrollmentConflict and can retry.
func (s *scheduleService) Enroll(ctx context.Context, scheduleID, gymID, clientID primitive.ObjectID, ref SlotRef) (*domain.WeeklySchedule, error) {
	if _, err := s.clientRepo.GetByIDOrUserID(ctx, clientID, gymID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	schedule, err := s.GetSchedule(ctx, scheduleID, gymID)
	if err != nil {
		return nil, err
	}
	slot, err := findSlot(schedule, ref)
	if err != nil {
		return nil, err
	}

	if slot.HasClient(clientID) {
		return nil, ErrAlreadyEnrolled
	}

	conflicts, err := s.findClientConflicts(ctx, gymID, clientID, schedule.ID, ref, slot)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &EnrollmentConflictError{Conflicts: conflicts}
	}

	if len(slot.ClientIDs) >= slot.MaxCapacity {
		return nil, ErrSlotFull
	}

	updated := append(append([]primitive.ObjectID{}, slot.ClientIDs...), clientID)
	err = s.scheduleRepo.ReplaceSlotClients(ctx, schedule.ID, ref.DayOfWeek, ref.TimeSlotIndex, slot.ClientIDs, updated)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEnrollmentConflict
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	slot.ClientIDs = updated

	if schedule.IsTemplate {
		s.mirrorSlotClients(ctx, schedule, ref, updated, "enroll")
	}
	return schedule, nil
}

// Unenroll removes the client from the slot with the same conditional-update
// discipline, and mirrors template removals into derived schedules.
func (s *scheduleService) Unenroll(ctx context.Context, scheduleID, gymID, clientID primitive.ObjectID, ref SlotRef) (*domain.WeeklySchedule, error) {
	schedule, err := s.GetSchedule(ctx, scheduleID, gymID)
	if err != nil {
		return nil, err
	}
	slot, err := findSlot(schedule, ref)
	if err != nil {
		return nil, err
	}

	if !slot.HasClient(clientID) {
		return nil, ErrNotEnrolled
	}

	updated := make([]primitive.ObjectID, 0, len(slot.ClientIDs)-1)
	for _, id := range slot.ClientIDs {
		if id != clientID {
			updated = append(updated, id)
		}
	}
	err = s.scheduleRepo.ReplaceSlotClients(ctx, schedule.ID, ref.DayOfWeek, ref.TimeSlotIndex, slot.ClientIDs, updated)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEnrollmentConflict
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	slot.ClientIDs = updated

	if schedule.IsTemplate {
		s.mirrorSlotRemoval(ctx, schedule, ref, clientID)
	}
	return schedule, nil
}

// findClientConflicts scans every non-template schedule in the gym, the
// target schedule included, for slots on the same weekday that already hold
// the client and overlap the candidate slot's time range. Only the slot being
// enrolled into is exempt from the scan.
func (s *scheduleService) findClientConflicts(ctx context.Context, gymID, clientID, scheduleID primitive.ObjectID, ref SlotRef, candidate *domain.TimeSlot) ([]ClientConflict, error) {
	active := false
	schedules, err := s.scheduleRepo.GetByGym(ctx, gymID, &active)
	if err != nil {
		return nil, err
	}

	var conflicts []ClientConflict
	for i := range schedules {
		other := &schedules[i]
		day := other.Day(ref.DayOfWeek)
		if day == nil {
			continue
		}
		for j := range day.TimeSlots {
			if other.ID == scheduleID && j == ref.TimeSlotIndex {
				continue
			}
			slot := &day.TimeSlots[j]
			if !slot.HasClient(clientID) {
				continue
			}
			if candidate.Overlaps(slot) {
				conflicts = append(conflicts, ClientConflict{
					ScheduleID:   other.ID,
					ScheduleName: other.Name,
					CoachID:      other.CoachID,
					StartTime:    slot.StartTime,
					EndTime:      slot.EndTime,
				})
			}
		}
	}
	return conflicts, nil
}

// mirrorSlotClients pushes a template slot's new enrollment list into every
// active schedule derived from the template. Mirroring is best effort: a
// failed or shape-mismatched target is logged and skipped, never surfaced to
// the caller.
func (s *scheduleService) mirrorSlotClients(ctx context.Context, template *domain.WeeklySchedule, ref SlotRef, clientIDs []primitive.ObjectID, op string) {
	derived, err := s.scheduleRepo.GetActiveByTemplate(ctx, template.GymID, template.ID)
	if err != nil {
		log.Printf("schedule mirror (%s): list derived of %s: %v", op, template.ID.Hex(), err)
		return
	}
	for i := range derived {
		target := &derived[i]
		slot, err := findSlot(target, ref)
		if err != nil {
			log.Printf("schedule mirror (%s): %s has no matching slot: %v", op, target.ID.Hex(), err)
			continue
		}
		replacement := append([]primitive.ObjectID{}, clientIDs...)
		if err := s.scheduleRepo.ReplaceSlotClients(ctx, target.ID, ref.DayOfWeek, ref.TimeSlotIndex, slot.ClientIDs, replacement); err != nil {
			log.Printf("schedule mirror (%s): update %s: %v", op, target.ID.Hex(), err)
		}
	}
}

// mirrorSlotRemoval removes the client from the matching slot of every
// derived schedule, preserving enrollments the derived copies gained on their
// own.
func (s *scheduleService) mirrorSlotRemoval(ctx context.Context, template *domain.WeeklySchedule, ref SlotRef, clientID primitive.ObjectID) {
	derived, err := s.scheduleRepo.GetActiveByTemplate(ctx, template.GymID, template.ID)
	if err != nil {
		log.Printf("schedule mirror (unenroll): list derived of %s: %v", template.ID.Hex(), err)
		return
	}
	for i := range derived {
		target := &derived[i]
		slot, err := findSlot(target, ref)
		if err != nil || !slot.HasClient(clientID) {
			continue
		}
		updated := make([]primitive.ObjectID, 0, len(slot.ClientIDs))
		for _, id := range slot.ClientIDs {
			if id != clientID {
				updated = append(updated, id)
			}
		}
		if err := s.scheduleRepo.ReplaceSlotClients(ctx, target.ID, ref.DayOfWeek, ref.TimeSlotIndex, slot.ClientIDs, updated); err != nil {
			log.Printf("schedule mirror (unenroll): update %s: %v", target.ID.Hex(), err)
		}
	}
}

// Materialize clones a template into a concrete week. Slots are copied
// verbatim, enrolled clients included, so standing bookings carry over.
func (s *scheduleService) Materialize(ctx context.Context, templateID, gymID primitive.ObjectID, weekStartDate time.Time) (*domain.WeeklySchedule, error) {
	template, err := s.GetSchedule(ctx, templateID, gymID)
	if err != nil {
		return nil, err
	}
	if !template.IsTemplate {
		return nil, ErrNotATemplate
	}

	weekStart := weekStartDate.UTC().Truncate(24 * time.Hour)
	instance := &domain.WeeklySchedule{
		GymID:         template.GymID,
		CoachID:       template.CoachID,
		Name:          fmt.Sprintf("%s (week of %s)", template.Name, weekStart.Format("2006-01-02")),
		Description:   template.Description,
		Days:          domain.CopyDays(template.Days),
		IsTemplate:    false,
		TemplateID:    &template.ID,
		WeekStartDate: &weekStart,
	}
	id, err := s.scheduleRepo.Create(ctx, instance)
	if err != nil {
		return nil, err
	}
	instance.ID = id
	return instance, nil
}

// Rollover materializes the schedule's template for the week after the
// schedule's own week. Called on an active schedule whose week has ended.
func (s *scheduleService) Rollover(ctx context.Context, scheduleID, gymID primitive.ObjectID) (*domain.WeeklySchedule, error) {
	schedule, err := s.GetSchedule(ctx, scheduleID, gymID)
	if err != nil {
		return nil, err
	}
	if schedule.IsTemplate || schedule.TemplateID == nil {
		return nil, errors.New("only template-derived schedules can roll over")
	}

	nextWeek := time.Now().UTC()
	if schedule.WeekStartDate != nil {
		nextWeek = schedule.WeekStartDate.AddDate(0, 0, 7)
	}
	return s.Materialize(ctx, *schedule.TemplateID, gymID, nextWeek)
}

// Overview returns every schedule in the gym, templates included.
func (s *scheduleService) Overview(ctx context.Context, gymID primitive.ObjectID) ([]domain.WeeklySchedule, error) {
	return s.scheduleRepo.GetByGym(ctx, gymID, nil)
}

// ConflictReport finds every pair of overlapping slots competing for the same
// location on the same weekday, a schedule's own slots included. Templates
// are excluded; they are patterns, not bookings.
func (s *scheduleService) ConflictReport(ctx context.Context, gymID primitive.ObjectID) ([]ScheduleConflict, error) {
	active := false
	schedules, err := s.scheduleRepo.GetByGym(ctx, gymID, &active)
	if err != nil {
		return nil, err
	}

	type placedSlot struct {
		schedule  *domain.WeeklySchedule
		slot      *domain.TimeSlot
		dayOfWeek int
	}
	groups := make(map[string][]placedSlot)
	for i := range schedules {
		schedule := &schedules[i]
		for d := range schedule.Days {
			day := &schedule.Days[d]
			for t := range day.TimeSlots {
				slot := &day.TimeSlots[t]
				key := fmt.Sprintf("%s|%d", slot.LocationID.Hex(), day.DayOfWeek)
				groups[key] = append(groups[key], placedSlot{schedule: schedule, slot: slot, dayOfWeek: day.DayOfWeek})
			}
		}
	}

	var conflicts []ScheduleConflict
	for _, group := range groups {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if !a.slot.Overlaps(b.slot) {
					continue
				}
				overlapStart, overlapEnd := domain.OverlapRange(a.slot, b.slot)
				conflicts = append(conflicts, ScheduleConflict{
					LocationID:   a.slot.LocationID,
					DayOfWeek:    a.dayOfWeek,
					DayName:      domain.DayNames[a.dayOfWeek],
					ScheduleID1:  a.schedule.ID,
					ScheduleID2:  b.schedule.ID,
					CoachID1:     a.schedule.CoachID,
					CoachID2:     b.schedule.CoachID,
					Slot1:        *a.slot,
					Slot2:        *b.slot,
					OverlapStart: overlapStart,
					OverlapEnd:   overlapEnd,
				})
			}
		}
	}
	return conflicts, nil
}

// findSlot resolves a SlotRef inside a schedule.
func findSlot(schedule *domain.WeeklySchedule, ref SlotRef) (*domain.TimeSlot, error) {
	if ref.DayOfWeek < 0 || ref.DayOfWeek > 6 {
		return nil, fmt.Errorf("dayOfWeek must be between 0 and 6, got %d", ref.DayOfWeek)
	}
	day := schedule.Day(ref.DayOfWeek)
	if day == nil {
		return nil, ErrSlotNotFound
	}
	if ref.TimeSlotIndex < 0 || ref.TimeSlotIndex >= len(day.TimeSlots) {
		return nil, ErrSlotNotFound
	}
	return &day.TimeSlots[ref.TimeSlotIndex], nil
}
