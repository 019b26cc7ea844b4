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

// mongoLocationRepository implements repository.LocationRepository using MongoDB.
type mongoLocationRepository struct {
	collection *mongo.Collection
}

func NewMongoLocationRepository(db *mongo.Database) repository.LocationRepository {
	return &mongoLocationRepository{collection: db.Collection(locationCollectionName)}
}

func (r *mongoLocationRepository) Create(ctx context.Context, location *domain.Location) (primitive.ObjectID, error) {
	if location.GymID.IsZero() || location.Name == "" {
		return primitive.NilObjectID, errors.New("location gym and name are required")
	}

	location.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	location.CreatedAt = now
	location.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, location)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoLocationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Location, error) {
	var location domain.Location
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&location)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &location, nil
}

func (r *mongoLocationRepository) GetByGym(ctx context.Context, gymID primitive.ObjectID) ([]domain.Location, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"gymId": gymID}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var locations []domain.Location
	if err = cursor.All(ctx, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *mongoLocationRepository) Update(ctx context.Context, location *domain.Location) error {
	location.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":      location.Name,
		"address":   location.Address,
		"isActive":  location.IsActive,
		"updatedAt": location.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": location.ID, "gymId": location.GymID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoLocationRepository) Delete(ctx context.Context, id, gymID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "gymId": gymID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureLocationIndexes creates necessary indexes for the locations collection.
func EnsureLocationIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "gymId", Value: 1}}, Options: options.Index()},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
