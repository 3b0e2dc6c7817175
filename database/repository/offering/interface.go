package offeringRepo

import (
	"context"
	"errors"

	"istishara/database"
	"istishara/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no offering matches the given ID.
var ErrNotFound = errors.New("offering not found")

type OfferingRepository interface {
	Create(ctx context.Context, offering *models.ConsultationOffering) error
	GetByID(ctx context.Context, id string) (*models.ConsultationOffering, error)
	List(ctx context.Context, activeOnly bool) ([]models.ConsultationOffering, error)
	Update(ctx context.Context, offering *models.ConsultationOffering) error
	SetActive(ctx context.Context, id string, active bool) error
}

type mongoOfferingRepo struct {
	coll *mongo.Collection
}

// NewMongoOfferingRepo returns a new OfferingRepository instance using MongoDB.
func NewMongoOfferingRepo() OfferingRepository {
	return &mongoOfferingRepo{
		coll: database.DB().Collection("offerings"),
	}
}
