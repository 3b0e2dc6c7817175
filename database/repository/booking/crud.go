// File: database/repository/booking/crud.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"istishara/models"
)

func (r *mongoBookingRepo) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": bookingID}).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find booking %s: %w", bookingID, err)
	}
	return &booking, nil
}

// SetFeedbackRef attaches the feedback reference if the booking has none
// yet. The conditional filter makes duplicate submissions lose the race.
func (r *mongoBookingRepo) SetFeedbackRef(ctx context.Context, bookingID, feedbackID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{
			"id": bookingID,
			"$or": bson.A{
				bson.M{"feedbackId": bson.M{"$exists": false}},
				bson.M{"feedbackId": ""},
			},
		},
		bson.M{"$set": bson.M{"feedbackId": feedbackID, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return false, fmt.Errorf("set feedback ref on booking %s: %w", bookingID, err)
	}
	return res.MatchedCount > 0, nil
}

func (r *mongoBookingRepo) ClearFeedbackRef(ctx context.Context, bookingID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"id": bookingID},
		bson.M{"$unset": bson.M{"feedbackId": ""}},
	)
	if err != nil {
		return fmt.Errorf("clear feedback ref on booking %s: %w", bookingID, err)
	}
	return nil
}
