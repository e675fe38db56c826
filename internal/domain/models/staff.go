package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StaffMember is one roster entry: a person, their role and branch assignment.
// Sales agents hold slot 1 or 2 within their branch; managers and directors
// carry slot 0.
type StaffMember struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Role      StaffRole          `bson:"role" json:"role"`
	Branch    string             `bson:"branch" json:"branch"`
	Slot      int                `bson:"slot" json:"slot"`
	Active    bool               `bson:"active" json:"active"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
