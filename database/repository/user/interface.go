package userRepo

import (
	"context"
	"errors"

	"istishara/database"
	"istishara/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no profile matches the given ID.
var ErrNotFound = errors.New("user profile not found")

// UserRepository stores the minimal requester profiles the booking core
// reads: display data for snapshots and the FCM push token.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.UserProfile, error)
	Upsert(ctx context.Context, profile *models.UserProfile) error
}

type mongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo constructs a new MongoDB UserRepository.
func NewMongoUserRepo() UserRepository {
	return &mongoUserRepo{
		coll: database.DB().Collection("users"),
	}
}
