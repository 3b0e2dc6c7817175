package feedbackRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"istishara/models"
)

func (r *mongoFeedbackRepo) Create(ctx context.Context, feedback *models.ConsultationFeedback) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if feedback.ID == "" {
		feedback.ID = uuid.New().String()
	}
	feedback.CreatedAt = time.Now().UTC()

	if _, err := r.coll.InsertOne(ctx, feedback); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (r *mongoFeedbackRepo) GetByID(ctx context.Context, id string) (*models.ConsultationFeedback, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var feedback models.ConsultationFeedback
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&feedback); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find feedback %s: %w", id, err)
	}
	return &feedback, nil
}

// ListPublicByOffering joins through bookings so offering pages can show
// visible feedback only.
func (r *mongoFeedbackRepo) ListPublicByOffering(ctx context.Context, offeringID string) ([]models.ConsultationFeedback, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isPublic": true}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "bookings",
			"localField":   "bookingId",
			"foreignField": "id",
			"as":           "booking",
		}}},
		{{Key: "$match", Value: bson.M{"booking.offeringId": offeringID}}},
		{{Key: "$project", Value: bson.M{"booking": 0}}},
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate public feedback: %w", err)
	}
	defer cursor.Close(ctx)

	var feedback []models.ConsultationFeedback
	if err := cursor.All(ctx, &feedback); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}
	return feedback, nil
}

func (r *mongoFeedbackRepo) SetVisibility(ctx context.Context, id string, isPublic bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"isPublic": isPublic}},
	)
	if err != nil {
		return fmt.Errorf("set feedback %s visibility: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoFeedbackRepo) DeleteByID(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("delete feedback %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
