package repositories

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when a document or row does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidID is returned when an id is not a valid ObjectID hex string
	ErrInvalidID = errors.New("invalid ID format")
)

func parseObjectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return objID, nil
}
