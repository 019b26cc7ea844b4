package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GymRole is a user's role within a single gym.
type GymRole string

const (
	GymRoleOwner   GymRole = "owner"
	GymRoleTrainer GymRole = "trainer"
	GymRoleClient  GymRole = "client"
)

// MembershipStatus tracks whether a membership is currently usable.
type MembershipStatus string

const (
	MembershipActive   MembershipStatus = "active"
	MembershipInactive MembershipStatus = "inactive"
)

// Gym is the tenant root. Every client, program, schedule and session is
// scoped to exactly one gym.
type Gym struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Address     string              `bson:"address" json:"address"`
	Phone       string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Email       string              `bson:"email,omitempty" json:"email,omitempty"`
	OwnerID     *primitive.ObjectID `bson:"ownerId,omitempty" json:"ownerId,omitempty"`
	IsActive    bool                `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// GymMembership links a User to a Gym with a gym-level role. One document per
// (user, gym) pair.
type GymMembership struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID `bson:"userId" json:"userId"`
	GymID    primitive.ObjectID `bson:"gymId" json:"gymId"`
	Role     GymRole            `bson:"role" json:"role"`
	Status   MembershipStatus   `bson:"status" json:"status"`
	JoinedAt time.Time          `bson:"joinedAt" json:"joinedAt"`
}

// IsCoach reports whether the membership grants coaching rights (owners
// coach too).
func (m *GymMembership) IsCoach() bool {
	return m.Role == GymRoleOwner || m.Role == GymRoleTrainer
}

// Location is a physical training area inside a gym (a room, a rig, a
// platform). Time slots reference a location so the conflict report can group
// slots that compete for the same space.
type Location struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GymID     primitive.ObjectID `bson:"gymId" json:"gymId"`
	Name      string             `bson:"name" json:"name"`
	Address   string             `bson:"address,omitempty" json:"address,omitempty"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
