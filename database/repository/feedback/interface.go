package feedbackRepo

import (
	"context"
	"errors"

	"istishara/database"
	"istishara/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no feedback matches the given ID.
var ErrNotFound = errors.New("feedback not found")

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.ConsultationFeedback) error
	GetByID(ctx context.Context, id string) (*models.ConsultationFeedback, error)
	ListPublicByOffering(ctx context.Context, offeringID string) ([]models.ConsultationFeedback, error)
	SetVisibility(ctx context.Context, id string, isPublic bool) error
	DeleteByID(ctx context.Context, id string) error
}

type mongoFeedbackRepo struct {
	coll *mongo.Collection
}

// NewMongoFeedbackRepo returns a new FeedbackRepository instance using MongoDB.
func NewMongoFeedbackRepo() FeedbackRepository {
	return &mongoFeedbackRepo{
		coll: database.DB().Collection("feedback"),
	}
}
