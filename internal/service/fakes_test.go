package service

import (
	"context"
	"time"

	"forgefit/gym-api/internal/domain"
	"forgefit/gym-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They implement the exact semantics the Mongo
// implementations promise, including the conditional update on
// ReplaceSlotClients, so the services can be tested without a database.

type fakeClientRepo struct {
	clients map[primitive.ObjectID]*domain.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[primitive.ObjectID]*domain.Client)}
}

func (f *fakeClientRepo) Create(_ context.Context, client *domain.Client) (primitive.ObjectID, error) {
	if client.ID.IsZero() {
		client.ID = primitive.NewObjectID()
	}
	if client.CurrentBenchmarks == nil {
		client.CurrentBenchmarks = []domain.Benchmark{}
	}
	if client.HistoricalBenchmarks == nil {
		client.HistoricalBenchmarks = []domain.Benchmark{}
	}
	if client.MembershipStatus == "" {
		client.MembershipStatus = domain.ClientActive
	}
	f.clients[client.ID] = client
	return client.ID, nil
}

func (f *fakeClientRepo) GetByID(_ context.Context, id, gymID primitive.ObjectID) (*domain.Client, error) {
	client, ok := f.clients[id]
	if !ok || client.GymID != gymID {
		return nil, repository.ErrNotFound
	}
	return client, nil
}

func (f *fakeClientRepo) GetByIDOrUserID(ctx context.Context, idOrUserID, gymID primitive.ObjectID) (*domain.Client, error) {
	if client, err := f.GetByID(ctx, idOrUserID, gymID); err == nil {
		return client, nil
	}
	for _, client := range f.clients {
		if client.UserID == idOrUserID && client.GymID == gymID {
			return client, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeClientRepo) GetByEmail(_ context.Context, email string, gymID primitive.ObjectID) (*domain.Client, error) {
	for _, client := range f.clients {
		if client.Email == email && client.GymID == gymID {
			return client, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeClientRepo) GetByGym(_ context.Context, gymID primitive.ObjectID) ([]domain.Client, error) {
	var out []domain.Client
	for _, client := range f.clients {
		if client.GymID == gymID {
			out = append(out, *client)
		}
	}
	return out, nil
}

func (f *fakeClientRepo) GetActiveWithPrograms(_ context.Context, gymID primitive.ObjectID) ([]domain.Client, error) {
	var out []domain.Client
	for _, client := range f.clients {
		if client.MembershipStatus != domain.ClientActive || client.ProgramID == nil {
			continue
		}
		if !gymID.IsZero() && client.GymID != gymID {
			continue
		}
		out = append(out, *client)
	}
	return out, nil
}

func (f *fakeClientRepo) Update(_ context.Context, client *domain.Client) error {
	if _, ok := f.clients[client.ID]; !ok {
		return repository.ErrNotFound
	}
	f.clients[client.ID] = client
	return nil
}

func (f *fakeClientRepo) SetProgression(_ context.Context, id primitive.ObjectID, block, week int, at time.Time) error {
	client, ok := f.clients[id]
	if !ok {
		return repository.ErrNotFound
	}
	client.CurrentBlock = block
	client.CurrentWeek = week
	client.LastProgressionUpdate = &at
	return nil
}

func (f *fakeClientRepo) SetProgram(_ context.Context, id primitive.ObjectID, programID *primitive.ObjectID, at time.Time) error {
	client, ok := f.clients[id]
	if !ok {
		return repository.ErrNotFound
	}
	client.ProgramID = programID
	client.CurrentBlock = 0
	client.CurrentWeek = 0
	if programID != nil {
		client.ProgramStartDate = &at
	} else {
		client.ProgramStartDate = nil
	}
	return nil
}

func (f *fakeClientRepo) SetBenchmarks(_ context.Context, id primitive.ObjectID, current, historical []domain.Benchmark) error {
	client, ok := f.clients[id]
	if !ok {
		return repository.ErrNotFound
	}
	client.CurrentBenchmarks = current
	client.HistoricalBenchmarks = historical
	return nil
}

func (f *fakeClientRepo) Delete(_ context.Context, id, gymID primitive.ObjectID) error {
	client, ok := f.clients[id]
	if !ok || client.GymID != gymID {
		return repository.ErrNotFound
	}
	delete(f.clients, id)
	return nil
}

type fakeProgramRepo struct {
	programs map[primitive.ObjectID]*domain.Program
}

func newFakeProgramRepo() *fakeProgramRepo {
	return &fakeProgramRepo{programs: make(map[primitive.ObjectID]*domain.Program)}
}

func (f *fakeProgramRepo) Create(_ context.Context, program *domain.Program) (primitive.ObjectID, error) {
	if program.ID.IsZero() {
		program.ID = primitive.NewObjectID()
	}
	program.CreatedAt = time.Now().UTC()
	program.UpdatedAt = program.CreatedAt
	f.programs[program.ID] = program
	return program.ID, nil
}

func (f *fakeProgramRepo) GetByID(_ context.Context, id, gymID primitive.ObjectID) (*domain.Program, error) {
	program, ok := f.programs[id]
	if !ok || program.GymID != gymID {
		return nil, repository.ErrNotFound
	}
	return program, nil
}

func (f *fakeProgramRepo) GetByGym(_ context.Context, gymID primitive.ObjectID, templatesOnly bool) ([]domain.Program, error) {
	var out []domain.Program
	for _, program := range f.programs {
		if program.GymID != gymID {
			continue
		}
		if templatesOnly && !program.IsTemplate {
			continue
		}
		out = append(out, *program)
	}
	return out, nil
}

func (f *fakeProgramRepo) Update(_ context.Context, program *domain.Program) error {
	if _, ok := f.programs[program.ID]; !ok {
		return repository.ErrNotFound
	}
	f.programs[program.ID] = program
	return nil
}

func (f *fakeProgramRepo) Delete(_ context.Context, id, gymID primitive.ObjectID) error {
	program, ok := f.programs[id]
	if !ok || program.GymID != gymID {
		return repository.ErrNotFound
	}
	delete(f.programs, id)
	return nil
}

type fakeScheduleRepo struct {
	schedules map[primitive.ObjectID]*domain.WeeklySchedule
	// replaceErr, when set, is returned by the next ReplaceSlotClients call
	// to simulate a concurrent-modification loss.
	replaceErr error
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: make(map[primitive.ObjectID]*domain.WeeklySchedule)}
}

func (f *fakeScheduleRepo) Create(_ context.Context, schedule *domain.WeeklySchedule) (primitive.ObjectID, error) {
	if schedule.ID.IsZero() {
		schedule.ID = primitive.NewObjectID()
	}
	schedule.CreatedAt = time.Now().UTC()
	schedule.UpdatedAt = schedule.CreatedAt
	f.schedules[schedule.ID] = schedule
	return schedule.ID, nil
}

func (f *fakeScheduleRepo) GetByID(_ context.Context, id, gymID primitive.ObjectID) (*domain.WeeklySchedule, error) {
	schedule, ok := f.schedules[id]
	if !ok || schedule.GymID != gymID {
		return nil, repository.ErrNotFound
	}
	return schedule, nil
}

func (f *fakeScheduleRepo) GetByGym(_ context.Context, gymID primitive.ObjectID, isTemplate *bool) ([]domain.WeeklySchedule, error) {
	var out []domain.WeeklySchedule
	for _, schedule := range f.schedules {
		if schedule.GymID != gymID {
			continue
		}
		if isTemplate != nil && schedule.IsTemplate != *isTemplate {
			continue
		}
		out = append(out, *schedule)
	}
	return out, nil
}

func (f *fakeScheduleRepo) GetByCoach(_ context.Context, gymID, coachID primitive.ObjectID, isTemplate *bool) ([]domain.WeeklySchedule, error) {
	var out []domain.WeeklySchedule
	for _, schedule := range f.schedules {
		if schedule.GymID != gymID || schedule.CoachID != coachID {
			continue
		}
		if isTemplate != nil && schedule.IsTemplate != *isTemplate {
			continue
		}
		out = append(out, *schedule)
	}
	return out, nil
}

func (f *fakeScheduleRepo) GetActiveByTemplate(_ context.Context, gymID, templateID primitive.ObjectID) ([]domain.WeeklySchedule, error) {
	var out []domain.WeeklySchedule
	for _, schedule := range f.schedules {
		if schedule.GymID != gymID || schedule.IsTemplate {
			continue
		}
		if schedule.TemplateID != nil && *schedule.TemplateID == templateID {
			out = append(out, *schedule)
		}
	}
	return out, nil
}

func (f *fakeScheduleRepo) CountByCoach(_ context.Context, gymID, coachID primitive.ObjectID) (int64, error) {
	var n int64
	for _, schedule := range f.schedules {
		if schedule.GymID == gymID && schedule.CoachID == coachID {
			n++
		}
	}
	return n, nil
}

func (f *fakeScheduleRepo) Update(_ context.Context, schedule *domain.WeeklySchedule) error {
	if _, ok := f.schedules[schedule.ID]; !ok {
		return repository.ErrNotFound
	}
	f.schedules[schedule.ID] = schedule
	return nil
}

func (f *fakeScheduleRepo) ReplaceSlotClients(_ context.Context, scheduleID primitive.ObjectID, dayOfWeek, slotIndex int, expected, updated []primitive.ObjectID) error {
	if f.replaceErr != nil {
		err := f.replaceErr
		f.replaceErr = nil
		return err
	}
	schedule, ok := f.schedules[scheduleID]
	if !ok {
		return repository.ErrNotFound
	}
	day := schedule.Day(dayOfWeek)
	if day == nil || slotIndex < 0 || slotIndex >= len(day.TimeSlots) {
		return repository.ErrConflict
	}
	slot := &day.TimeSlots[slotIndex]
	if len(slot.ClientIDs) != len(expected) {
		return repository.ErrConflict
	}
	for i := range expected {
		if slot.ClientIDs[i] != expected[i] {
			return repository.ErrConflict
		}
	}
	slot.ClientIDs = append([]primitive.ObjectID{}, updated...)
	return nil
}

func (f *fakeScheduleRepo) Delete(_ context.Context, id, gymID primitive.ObjectID) error {
	schedule, ok := f.schedules[id]
	if !ok || schedule.GymID != gymID {
		return repository.ErrNotFound
	}
	delete(f.schedules, id)
	return nil
}

type fakeSessionRepo struct {
	sessions map[primitive.ObjectID]*domain.WorkoutSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[primitive.ObjectID]*domain.WorkoutSession)}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error) {
	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}
	if session.CompletedSets == nil {
		session.CompletedSets = []domain.CompletedSet{}
	}
	session.IsActive = true
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}
	f.sessions[session.ID] = session
	return session.ID, nil
}

func (f *fakeSessionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return session, nil
}

func (f *fakeSessionRepo) GetActive(_ context.Context, clientID, gymID primitive.ObjectID, block, week, day int) (*domain.WorkoutSession, error) {
	for _, session := range f.sessions {
		if session.ClientID == clientID && session.GymID == gymID && session.IsActive &&
			session.Block == block && session.Week == week && session.Day == day {
			return session, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSessionRepo) DeactivateAllForClient(_ context.Context, clientID primitive.ObjectID, at time.Time) error {
	for _, session := range f.sessions {
		if session.ClientID == clientID && session.IsActive {
			session.IsActive = false
			completedAt := at
			session.CompletedAt = &completedAt
		}
	}
	return nil
}

func (f *fakeSessionRepo) AddCompletedSet(_ context.Context, id primitive.ObjectID, set domain.CompletedSet) error {
	session, ok := f.sessions[id]
	if !ok || !session.IsActive {
		return repository.ErrNotFound
	}
	session.CompletedSets = append(session.CompletedSets, set)
	return nil
}

func (f *fakeSessionRepo) End(_ context.Context, id primitive.ObjectID, at time.Time) (*domain.WorkoutSession, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	session.IsActive = false
	completedAt := at
	session.CompletedAt = &completedAt
	return session, nil
}

type fakeTemplateRepo struct {
	templates map[primitive.ObjectID]*domain.BenchmarkTemplate
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[primitive.ObjectID]*domain.BenchmarkTemplate)}
}

func (f *fakeTemplateRepo) Create(_ context.Context, template *domain.BenchmarkTemplate) (primitive.ObjectID, error) {
	if template.ID.IsZero() {
		template.ID = primitive.NewObjectID()
	}
	f.templates[template.ID] = template
	return template.ID, nil
}

func (f *fakeTemplateRepo) GetByID(_ context.Context, id, gymID primitive.ObjectID) (*domain.BenchmarkTemplate, error) {
	template, ok := f.templates[id]
	if !ok || template.GymID != gymID {
		return nil, repository.ErrNotFound
	}
	return template, nil
}

func (f *fakeTemplateRepo) GetByGym(_ context.Context, gymID primitive.ObjectID) ([]domain.BenchmarkTemplate, error) {
	var out []domain.BenchmarkTemplate
	for _, template := range f.templates {
		if template.GymID == gymID {
			out = append(out, *template)
		}
	}
	return out, nil
}

func (f *fakeTemplateRepo) Update(_ context.Context, template *domain.BenchmarkTemplate) error {
	if _, ok := f.templates[template.ID]; !ok {
		return repository.ErrNotFound
	}
	f.templates[template.ID] = template
	return nil
}

func (f *fakeTemplateRepo) Delete(_ context.Context, id, gymID primitive.ObjectID) error {
	template, ok := f.templates[id]
	if !ok || template.GymID != gymID {
		return repository.ErrNotFound
	}
	delete(f.templates, id)
	return nil
}

type fakePhotoRepo struct {
	photos map[primitive.ObjectID]*domain.ProgressPhoto
}

func newFakePhotoRepo() *fakePhotoRepo {
	return &fakePhotoRepo{photos: make(map[primitive.ObjectID]*domain.ProgressPhoto)}
}

func (f *fakePhotoRepo) Create(_ context.Context, photo *domain.ProgressPhoto) (primitive.ObjectID, error) {
	if photo.ID.IsZero() {
		photo.ID = primitive.NewObjectID()
	}
	if photo.UploadedAt.IsZero() {
		photo.UploadedAt = time.Now().UTC()
	}
	f.photos[photo.ID] = photo
	return photo.ID, nil
}

func (f *fakePhotoRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ProgressPhoto, error) {
	photo, ok := f.photos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return photo, nil
}

func (f *fakePhotoRepo) GetByClient(_ context.Context, clientID primitive.ObjectID) ([]domain.ProgressPhoto, error) {
	var out []domain.ProgressPhoto
	for _, photo := range f.photos {
		if photo.ClientID == clientID {
			out = append(out, *photo)
		}
	}
	return out, nil
}

func (f *fakePhotoRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.photos[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.photos, id)
	return nil
}

// fakeFileStorage returns deterministic URLs.
type fakeFileStorage struct {
	deleted []string
}

func (f *fakeFileStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, _ string, _ time.Duration) (string, error) {
	return "https://storage.test/upload/" + objectKey, nil
}

func (f *fakeFileStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://storage.test/download/" + objectKey, nil
}

func (f *fakeFileStorage) DeleteObject(_ context.Context, objectKey string) error {
	f.deleted = append(f.deleted, objectKey)
	return nil
}
