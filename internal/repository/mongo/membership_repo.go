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

// mongoMembershipRepository implements repository.MembershipRepository using MongoDB.
type mongoMembershipRepository struct {
	collection *mongo.Collection
}

func NewMongoMembershipRepository(db *mongo.Database) repository.MembershipRepository {
	return &mongoMembershipRepository{collection: db.Collection(membershipCollectionName)}
}

func (r *mongoMembershipRepository) Create(ctx context.Context, membership *domain.GymMembership) (primitive.ObjectID, error) {
	if membership.UserID.IsZero() || membership.GymID.IsZero() || membership.Role == "" {
		return primitive.NilObjectID, errors.New("membership user, gym, and role are required")
	}

	membership.ID = primitive.NewObjectID()
	if membership.JoinedAt.IsZero() {
		membership.JoinedAt = time.Now().UTC()
	}
	if membership.Status == "" {
		membership.Status = domain.MembershipActive
	}

	result, err := r.collection.InsertOne(ctx, membership)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, errors.New("user already has a membership in this gym")
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoMembershipRepository) GetByUserAndGym(ctx context.Context, userID, gymID primitive.ObjectID) (*domain.GymMembership, error) {
	var membership domain.GymMembership
	filter := bson.M{"userId": userID, "gymId": gymID}

	err := r.collection.FindOne(ctx, filter).Decode(&membership)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &membership, nil
}

// GetByGym lists active memberships for a gym, optionally restricted to the
// given roles.
func (r *mongoMembershipRepository) GetByGym(ctx context.Context, gymID primitive.ObjectID, roles ...domain.GymRole) ([]domain.GymMembership, error) {
	filter := bson.M{"gymId": gymID, "status": domain.MembershipActive}
	if len(roles) > 0 {
		filter["role"] = bson.M{"$in": roles}
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var memberships []domain.GymMembership
	if err = cursor.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *mongoMembershipRepository) UpdateRole(ctx context.Context, userID, gymID primitive.ObjectID, role domain.GymRole) error {
	filter := bson.M{"userId": userID, "gymId": gymID}
	update := bson.M{"$set": bson.M{"role": role}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoMembershipRepository) Delete(ctx context.Context, userID, gymID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID, "gymId": gymID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureMembershipIndexes creates necessary indexes for the memberships collection.
func EnsureMembershipIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "gymId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "gymId", Value: 1}, {Key: "role", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
