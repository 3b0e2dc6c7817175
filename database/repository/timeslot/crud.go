// File: database/repository/timeslot/crud.go
package timeslotRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"istishara/models"
)

// Create inserts a new slot after verifying it does not overlap any
// existing slot of the same offering. The check and the insert run in
// one session transaction so concurrent admin inserts cannot both pass
// the overlap check.
func (r *mongoTimeSlotRepo) Create(ctx context.Context, slot *models.TimeSlot) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if slot.ID == "" {
		slot.ID = uuid.New().String()
	}
	slot.Start = slot.Start.UTC()
	slot.End = slot.End.UTC()
	slot.IsAvailable = true
	slot.Version = 1
	slot.CreatedAt = time.Now().UTC()

	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		// Overlap: existing.start < new.end && existing.end > new.start.
		overlapFilter := bson.M{
			"offeringId": slot.OfferingID,
			"start":      bson.M{"$lt": slot.End},
			"end":        bson.M{"$gt": slot.Start},
		}
		n, err := r.coll.CountDocuments(sc, overlapFilter)
		if err != nil {
			return fmt.Errorf("overlap check failed: %w", err)
		}
		if n > 0 {
			return ErrOverlap
		}
		if _, err := r.coll.InsertOne(sc, slot); err != nil {
			return fmt.Errorf("insert timeslot failed: %w", err)
		}
		return nil
	}

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}

func (r *mongoTimeSlotRepo) GetByID(ctx context.Context, slotID string) (*models.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var slot models.TimeSlot
	if err := r.coll.FindOne(ctx, bson.M{"id": slotID}).Decode(&slot); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find timeslot %s: %w", slotID, err)
	}
	return &slot, nil
}

// MarkAvailable flips the slot back to the bookable pool. Idempotent.
func (r *mongoTimeSlotRepo) MarkAvailable(ctx context.Context, slotID string) error {
	return r.setAvailability(ctx, slotID, true)
}

// MarkUnavailable takes the slot out of the bookable pool. Idempotent.
func (r *mongoTimeSlotRepo) MarkUnavailable(ctx context.Context, slotID string) error {
	return r.setAvailability(ctx, slotID, false)
}

func (r *mongoTimeSlotRepo) setAvailability(ctx context.Context, slotID string, available bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": slotID},
		bson.M{
			"$set": bson.M{"isAvailable": available},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("update timeslot availability: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a slot unless a non-cancelled booking still references
// it. The in-use check and the delete run in one transaction.
func (r *mongoTimeSlotRepo) Delete(ctx context.Context, slotID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		inUse, err := r.bookingColl.CountDocuments(sc, bson.M{
			"slotId": slotID,
			"status": bson.M{"$ne": models.BookingStatusCancelled},
		})
		if err != nil {
			return fmt.Errorf("booking reference check failed: %w", err)
		}
		if inUse > 0 {
			return ErrSlotInUse
		}
		res, err := r.coll.DeleteOne(sc, bson.M{"id": slotID})
		if err != nil {
			return fmt.Errorf("delete timeslot failed: %w", err)
		}
		if res.DeletedCount == 0 {
			return ErrNotFound
		}
		return nil
	}

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}
