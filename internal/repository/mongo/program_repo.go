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

const programCollectionName = "programs"

// mongoProgramRepository implements repository.ProgramRepository using MongoDB.
type mongoProgramRepository struct {
	collection *mongo.Collection
}

func NewMongoProgramRepository(db *mongo.Database) repository.ProgramRepository {
	return &mongoProgramRepository{collection: db.Collection(programCollectionName)}
}

func (r *mongoProgramRepository) Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error) {
	if program.GymID.IsZero() || program.Name == "" {
		return primitive.NilObjectID, errors.New("program gym and name are required")
	}

	program.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	program.CreatedAt = now
	program.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, program)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoProgramRepository) GetByID(ctx context.Context, id, gymID primitive.ObjectID) (*domain.Program, error) {
	var program domain.Program
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "gymId": gymID}).Decode(&program)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &program, nil
}

func (r *mongoProgramRepository) GetByGym(ctx context.Context, gymID primitive.ObjectID, templatesOnly bool) ([]domain.Program, error) {
	filter := bson.M{"gymId": gymID}
	if templatesOnly {
		filter["isTemplate"] = true
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var programs []domain.Program
	if err = cursor.All(ctx, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

func (r *mongoProgramRepository) Update(ctx context.Context, program *domain.Program) error {
	program.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":      program.Name,
		"blocks":    program.Blocks,
		"updatedAt": program.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": program.ID, "gymId": program.GymID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoProgramRepository) Delete(ctx context.Context, id, gymID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "gymId": gymID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureProgramIndexes creates necessary indexes for the programs collection.
func EnsureProgramIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "gymId", Value: 1}, {Key: "isTemplate", Value: 1}}, Options: options.Index()},
		{Keys: bson.D{{Key: "clientId", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
