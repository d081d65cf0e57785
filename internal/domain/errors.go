package domain

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrValidation marks input rejected before any write happens
	ErrValidation = errors.New("validation failed")
	// ErrInvalidID marks an identifier that is not a valid ObjectID hex string
	ErrInvalidID = errors.New("invalid identifier")
	// ErrNotFound marks a missing document
	ErrNotFound = errors.New("not found")
)

// ParseID converts a hex string into an ObjectID
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// IsValidID reports whether id is a structurally valid identifier
func IsValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}
