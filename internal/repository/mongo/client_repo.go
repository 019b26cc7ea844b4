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

const clientCollectionName = "clients"

// mongoClientRepository implements repository.ClientRepository using MongoDB.
type mongoClientRepository struct {
	collection *mongo.Collection
}

func NewMongoClientRepository(db *mongo.Database) repository.ClientRepository {
	return &mongoClientRepository{collection: db.Collection(clientCollectionName)}
}

func (r *mongoClientRepository) Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error) {
	if client.GymID.IsZero() || client.Email == "" {
		return primitive.NilObjectID, errors.New("client gym and email are required")
	}

	client.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now
	if client.JoinedAt.IsZero() {
		client.JoinedAt = now
	}
	if client.MembershipStatus == "" {
		client.MembershipStatus = domain.ClientActive
	}
	if client.CurrentBenchmarks == nil {
		client.CurrentBenchmarks = []domain.Benchmark{}
	}
	if client.HistoricalBenchmarks == nil {
		client.HistoricalBenchmarks = []domain.Benchmark{}
	}

	result, err := r.collection.InsertOne(ctx, client)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, errors.New("client with this email already exists in this gym")
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoClientRepository) GetByID(ctx context.Context, id, gymID primitive.ObjectID) (*domain.Client, error) {
	var client domain.Client
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "gymId": gymID}).Decode(&client)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

// GetByIDOrUserID resolves a client by document ID first, then falls back to
// the owning user's ID. Frontends hold either depending on the screen.
func (r *mongoClientRepository) GetByIDOrUserID(ctx context.Context, idOrUserID, gymID primitive.ObjectID) (*domain.Client, error) {
	client, err := r.GetByID(ctx, idOrUserID, gymID)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	var byUser domain.Client
	err = r.collection.FindOne(ctx, bson.M{"userId": idOrUserID, "gymId": gymID}).Decode(&byUser)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &byUser, nil
}

func (r *mongoClientRepository) GetByEmail(ctx context.Context, email string, gymID primitive.ObjectID) (*domain.Client, error) {
	var client domain.Client
	err := r.collection.FindOne(ctx, bson.M{"email": email, "gymId": gymID}).Decode(&client)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (r *mongoClientRepository) GetByGym(ctx context.Context, gymID primitive.ObjectID) ([]domain.Client, error) {
	sort := options.Find().SetSort(bson.D{{Key: "firstName", Value: 1}, {Key: "lastName", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"gymId": gymID}, sort)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var clients []domain.Client
	if err = cursor.All(ctx, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// GetActiveWithPrograms returns active clients that have an assigned program.
// A zero gymID widens the query to every gym, which is what the weekly
// auto-progression run wants.
func (r *mongoClientRepository) GetActiveWithPrograms(ctx context.Context, gymID primitive.ObjectID) ([]domain.Client, error) {
	filter := bson.M{
		"membershipStatus": domain.ClientActive,
		"programId":        bson.M{"$exists": true, "$ne": nil},
	}
	if !gymID.IsZero() {
		filter["gymId"] = gymID
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var clients []domain.Client
	if err = cursor.All(ctx, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *mongoClientRepository) Update(ctx context.Context, client *domain.Client) error {
	client.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"email":            client.Email,
		"firstName":        client.FirstName,
		"lastName":         client.LastName,
		"weight":           client.Weight,
		"membershipStatus": client.MembershipStatus,
		"updatedAt":        client.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": client.ID, "gymId": client.GymID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetProgression writes the progression pointer and stamps the update time.
func (r *mongoClientRepository) SetProgression(ctx context.Context, id primitive.ObjectID, block, week int, at time.Time) error {
	update := bson.M{"$set": bson.M{
		"currentBlock":          block,
		"currentWeek":           week,
		"lastProgressionUpdate": at,
		"updatedAt":             time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetProgram assigns (or clears) the client's program and resets the
// progression pointer to the start.
func (r *mongoClientRepository) SetProgram(ctx context.Context, id primitive.ObjectID, programID *primitive.ObjectID, at time.Time) error {
	update := bson.M{"$set": bson.M{
		"programId":             programID,
		"currentBlock":          0,
		"currentWeek":           0,
		"programStartDate":      at,
		"lastProgressionUpdate": at,
		"updatedAt":             time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetBenchmarks replaces both benchmark lists in one write.
func (r *mongoClientRepository) SetBenchmarks(ctx context.Context, id primitive.ObjectID, current, historical []domain.Benchmark) error {
	update := bson.M{"$set": bson.M{
		"currentBenchmarks":    current,
		"historicalBenchmarks": historical,
		"updatedAt":            time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoClientRepository) Delete(ctx context.Context, id, gymID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "gymId": gymID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureClientIndexes creates necessary indexes for the clients collection.
func EnsureClientIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "gymId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "gymId", Value: 1}, {Key: "membershipStatus", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
