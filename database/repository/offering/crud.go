package offeringRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"istishara/models"
)

func (r *mongoOfferingRepo) Create(ctx context.Context, offering *models.ConsultationOffering) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if offering.ID == "" {
		offering.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	offering.CreatedAt = now
	offering.UpdatedAt = now
	offering.Active = true

	if _, err := r.coll.InsertOne(ctx, offering); err != nil {
		return fmt.Errorf("insert offering: %w", err)
	}
	return nil
}

func (r *mongoOfferingRepo) GetByID(ctx context.Context, id string) (*models.ConsultationOffering, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var offering models.ConsultationOffering
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&offering); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find offering %s: %w", id, err)
	}
	return &offering, nil
}

func (r *mongoOfferingRepo) List(ctx context.Context, activeOnly bool) ([]models.ConsultationOffering, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "title", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find offerings: %w", err)
	}
	defer cursor.Close(ctx)

	var offerings []models.ConsultationOffering
	if err := cursor.All(ctx, &offerings); err != nil {
		return nil, fmt.Errorf("decode offerings: %w", err)
	}
	return offerings, nil
}

// Update rewrites the mutable offering fields. Existing bookings keep
// their price snapshot regardless of price edits here.
func (r *mongoOfferingRepo) Update(ctx context.Context, offering *models.ConsultationOffering) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	offering.UpdatedAt = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": offering.ID},
		bson.M{"$set": bson.M{
			"title":           offering.Title,
			"description":     offering.Description,
			"category":        offering.Category,
			"price":           offering.Price,
			"currency":        offering.Currency,
			"durationMinutes": offering.DurationMinutes,
			"maxPerDay":       offering.MaxPerDay,
			"updatedAt":       offering.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("update offering %s: %w", offering.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoOfferingRepo) SetActive(ctx context.Context, id string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"active": active, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("set offering %s active=%t: %w", id, active, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
