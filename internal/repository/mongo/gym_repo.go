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

const (
	gymCollectionName        = "gyms"
	membershipCollectionName = "gym_memberships"
	locationCollectionName   = "locations"
)

// mongoGymRepository implements repository.GymRepository using MongoDB.
type mongoGymRepository struct {
	collection *mongo.Collection
}

func NewMongoGymRepository(db *mongo.Database) repository.GymRepository {
	return &mongoGymRepository{collection: db.Collection(gymCollectionName)}
}

func (r *mongoGymRepository) Create(ctx context.Context, gym *domain.Gym) (primitive.ObjectID, error) {
	if gym.Name == "" {
		return primitive.NilObjectID, errors.New("gym name is required")
	}

	gym.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	gym.CreatedAt = now
	gym.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, gym)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoGymRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Gym, error) {
	var gym domain.Gym
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&gym)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &gym, nil
}

func (r *mongoGymRepository) List(ctx context.Context) ([]domain.Gym, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var gyms []domain.Gym
	if err = cursor.All(ctx, &gyms); err != nil {
		return nil, err
	}
	return gyms, nil
}

func (r *mongoGymRepository) Update(ctx context.Context, gym *domain.Gym) error {
	gym.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":        gym.Name,
		"description": gym.Description,
		"address":     gym.Address,
		"phone":       gym.Phone,
		"email":       gym.Email,
		"ownerId":     gym.OwnerID,
		"isActive":    gym.IsActive,
		"updatedAt":   gym.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": gym.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoGymRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureGymIndexes creates necessary indexes for the gyms collection.
func EnsureGymIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "ownerId", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
