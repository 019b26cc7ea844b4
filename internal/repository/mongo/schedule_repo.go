package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forgefit/gym-api/internal/domain"
	"forgefit/gym-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const scheduleCollectionName = "weekly_schedules"

// mongoScheduleRepository implements repository.ScheduleRepository using MongoDB.
type mongoScheduleRepository struct {
	collection *mongo.Collection
}

func NewMongoScheduleRepository(db *mongo.Database) repository.ScheduleRepository {
	return &mongoScheduleRepository{collection: db.Collection(scheduleCollectionName)}
}

func (r *mongoScheduleRepository) Create(ctx context.Context, schedule *domain.WeeklySchedule) (primitive.ObjectID, error) {
	if schedule.GymID.IsZero() || schedule.CoachID.IsZero() || schedule.Name == "" {
		return primitive.NilObjectID, errors.New("schedule gym, coach, and name are required")
	}

	schedule.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, schedule)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoScheduleRepository) GetByID(ctx context.Context, id, gymID primitive.ObjectID) (*domain.WeeklySchedule, error) {
	var schedule domain.WeeklySchedule
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "gymId": gymID}).Decode(&schedule)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

func (r *mongoScheduleRepository) GetByGym(ctx context.Context, gymID primitive.ObjectID, isTemplate *bool) ([]domain.WeeklySchedule, error) {
	filter := bson.M{"gymId": gymID}
	if isTemplate != nil {
		filter["isTemplate"] = *isTemplate
	}
	return r.find(ctx, filter)
}

func (r *mongoScheduleRepository) GetByCoach(ctx context.Context, gymID, coachID primitive.ObjectID, isTemplate *bool) ([]domain.WeeklySchedule, error) {
	filter := bson.M{"gymId": gymID, "coachId": coachID}
	if isTemplate != nil {
		filter["isTemplate"] = *isTemplate
	}
	return r.find(ctx, filter)
}

// GetActiveByTemplate returns the non-template schedules materialized from
// the given template.
func (r *mongoScheduleRepository) GetActiveByTemplate(ctx context.Context, gymID, templateID primitive.ObjectID) ([]domain.WeeklySchedule, error) {
	filter := bson.M{"gymId": gymID, "templateId": templateID, "isTemplate": false}
	return r.find(ctx, filter)
}

func (r *mongoScheduleRepository) find(ctx context.Context, filter bson.M) ([]domain.WeeklySchedule, error) {
	sort := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, sort)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var schedules []domain.WeeklySchedule
	if err = cursor.All(ctx, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *mongoScheduleRepository) CountByCoach(ctx context.Context, gymID, coachID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"gymId": gymID, "coachId": coachID})
}

func (r *mongoScheduleRepository) Update(ctx context.Context, schedule *domain.WeeklySchedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":          schedule.Name,
		"description":   schedule.Description,
		"days":          schedule.Days,
		"isTemplate":    schedule.IsTemplate,
		"templateId":    schedule.TemplateID,
		"weekStartDate": schedule.WeekStartDate,
		"updatedAt":     schedule.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": schedule.ID, "gymId": schedule.GymID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ReplaceSlotClients swaps one time slot's enrollment list in a single
// conditional update. The filter requires the stored list to still equal
// expected, so an interleaved enrollment makes the update match nothing and
// the caller gets ErrConflict instead of a capacity overshoot. A schedule
// that no longer exists reports ErrNotFound rather than a retryable conflict.
func (r *mongoScheduleRepository) ReplaceSlotClients(ctx context.Context, scheduleID primitive.ObjectID, dayOfWeek, slotIndex int, expected, updated []primitive.ObjectID) error {
	if expected == nil {
		expected = []primitive.ObjectID{}
	}
	if updated == nil {
		updated = []primitive.ObjectID{}
	}

	clientsPath := fmt.Sprintf("timeSlots.%d.clientIds", slotIndex)
	filter := bson.M{
		"_id": scheduleID,
		"days": bson.M{"$elemMatch": bson.M{
			"dayOfWeek": dayOfWeek,
			clientsPath: expected,
		}},
	}
	update := bson.M{"$set": bson.M{
		fmt.Sprintf("days.$.timeSlots.%d.clientIds", slotIndex): updated,
		"updatedAt": time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// A miss means either the expected list changed under us or the
		// schedule is gone. Only the former is worth retrying.
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": scheduleID})
		if err != nil {
			return err
		}
		if count == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}
	return nil
}

func (r *mongoScheduleRepository) Delete(ctx context.Context, id, gymID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "gymId": gymID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureScheduleIndexes creates necessary indexes for the weekly_schedules
// collection.
func EnsureScheduleIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "gymId", Value: 1}, {Key: "coachId", Value: 1}}, Options: options.Index()},
		{Keys: bson.D{{Key: "gymId", Value: 1}, {Key: "isTemplate", Value: 1}}, Options: options.Index()},
		{Keys: bson.D{{Key: "templateId", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
