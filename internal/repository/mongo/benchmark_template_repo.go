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

const benchmarkTemplateCollectionName = "benchmark_templates"

// mongoBenchmarkTemplateRepository implements repository.BenchmarkTemplateRepository.
type mongoBenchmarkTemplateRepository struct {
	collection *mongo.Collection
}

func NewMongoBenchmarkTemplateRepository(db *mongo.Database) repository.BenchmarkTemplateRepository {
	return &mongoBenchmarkTemplateRepository{collection: db.Collection(benchmarkTemplateCollectionName)}
}

func (r *mongoBenchmarkTemplateRepository) Create(ctx context.Context, template *domain.BenchmarkTemplate) (primitive.ObjectID, error) {
	if template.GymID.IsZero() || template.Name == "" || template.BenchmarkType == "" {
		return primitive.NilObjectID, errors.New("benchmark template gym, name, and type are required")
	}

	template.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	template.CreatedAt = now
	template.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, template)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoBenchmarkTemplateRepository) GetByID(ctx context.Context, id, gymID primitive.ObjectID) (*domain.BenchmarkTemplate, error) {
	var template domain.BenchmarkTemplate
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "gymId": gymID}).Decode(&template)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

func (r *mongoBenchmarkTemplateRepository) GetByGym(ctx context.Context, gymID primitive.ObjectID) ([]domain.BenchmarkTemplate, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"gymId": gymID}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []domain.BenchmarkTemplate
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *mongoBenchmarkTemplateRepository) Update(ctx context.Context, template *domain.BenchmarkTemplate) error {
	template.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":      template.Name,
		"notes":     template.Notes,
		"updatedAt": template.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": template.ID, "gymId": template.GymID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoBenchmarkTemplateRepository) Delete(ctx context.Context, id, gymID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "gymId": gymID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureBenchmarkTemplateIndexes creates necessary indexes for the
// benchmark_templates collection.
func EnsureBenchmarkTemplateIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "gymId", Value: 1}, {Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
