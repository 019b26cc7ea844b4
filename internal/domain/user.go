package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between system-level user roles.
type Role string

// Define constants for system roles. Gym-level roles (owner/trainer/client)
// live on GymMembership, not here.
const (
	RoleAdmin   Role = "admin"
	RoleTrainer Role = "trainer"
	RoleUser    Role = "user"
)

// User represents an account in the system. What a user may do inside a
// particular gym is determined by their GymMembership for that gym, not by
// the system role (except for admins, who bypass gym checks entirely).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	LastLogin    *time.Time         `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
