package domain

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sentinel errors shared by repositories, services and controllers.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidID    = errors.New("invalid event id")
)

// ValidID reports whether id is a well-formed event identifier (24 hex characters).
func ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

// NewID returns a fresh event identifier for stores that do not assign one.
func NewID() string {
	return primitive.NewObjectID().Hex()
}
