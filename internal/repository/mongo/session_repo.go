package mongo

import (
	"context"
	"errors"
	"time"

	"forgefit/gym-api/internal/domain"
	"forgefit/gym-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollectionName = "workout_sessions"

// mongoSessionRepository implements repository.SessionRepository using MongoDB.
type mongoSessionRepository struct {
	collection *mongo.Collection
}

func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{collection: db.Collection(sessionCollectionName)}
}

func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error) {
	if session.ClientID.IsZero() || session.ProgramID.IsZero() {
		return primitive.NilObjectID, errors.New("session client and program are required")
	}

	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	if session.StartedAt.IsZero() {
		session.StartedAt = now
	}
	if session.CompletedSets == nil {
		session.CompletedSets = []domain.CompletedSet{}
	}
	session.IsActive = true
	session.CreatedAt = now
	session.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	var session domain.WorkoutSession
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetActive finds the client's active session pinned to the given program
// position, if any.
func (r *mongoSessionRepository) GetActive(ctx context.Context, clientID, gymID primitive.ObjectID, block, week, day int) (*domain.WorkoutSession, error) {
	filter := bson.M{
		"clientId": clientID,
		"gymId":    gymID,
		"isActive": true,
		"block":    block,
		"week":     week,
		"day":      day,
	}
	var session domain.WorkoutSession
	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *mongoSessionRepository) DeactivateAllForClient(ctx context.Context, clientID primitive.ObjectID, at time.Time) error {
	update := bson.M{"$set": bson.M{
		"isActive":    false,
		"completedAt": at,
		"updatedAt":   at,
	}}
	_, err := r.collection.UpdateMany(ctx, bson.M{"clientId": clientID, "isActive": true}, update)
	return err
}

func (r *mongoSessionRepository) AddCompletedSet(ctx context.Context, id primitive.ObjectID, set domain.CompletedSet) error {
	update := bson.M{
		"$push": bson.M{"completedSets": set},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "isActive": true}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// End deactivates the session and returns its final state.
func (r *mongoSessionRepository) End(ctx context.Context, id primitive.ObjectID, at time.Time) (*domain.WorkoutSession, error) {
	update := bson.M{"$set": bson.M{
		"isActive":    false,
		"completedAt": at,
		"updatedAt":   at,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var session domain.WorkoutSession
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// EnsureSessionIndexes creates necessary indexes for the workout_sessions
// collection.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "isActive", Value: 1}}, Options: options.Index()},
		{Keys: bson.D{{Key: "gymId", Value: 1}}, Options: options.Index()},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
