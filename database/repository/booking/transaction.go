// File: database/repository/booking/transaction.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"istishara/models"
)

// withTransaction runs fn inside a session transaction, aborting on error.
func (r *mongoBookingRepo) withTransaction(ctx context.Context, fn func(mongo.SessionContext) error) error {
	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}

// claimSlot is the compare-and-swap at the heart of the reservation
// path: the filter requires isAvailable == true, so of N concurrent
// claims exactly one matches and the rest observe MatchedCount == 0.
func (r *mongoBookingRepo) claimSlot(sc mongo.SessionContext, slotID string) error {
	res, err := r.slotColl.UpdateOne(sc,
		bson.M{"id": slotID, "isAvailable": true},
		bson.M{
			"$set": bson.M{"isAvailable": false},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("claim timeslot %s: %w", slotID, err)
	}
	if res.MatchedCount == 0 {
		return ErrSlotUnavailable
	}
	return nil
}

func (r *mongoBookingRepo) releaseSlot(sc mongo.SessionContext, slotID string) error {
	_, err := r.slotColl.UpdateOne(sc,
		bson.M{"id": slotID},
		bson.M{
			"$set": bson.M{"isAvailable": true},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("release timeslot %s: %w", slotID, err)
	}
	return nil
}

// ReserveWithSlot claims the slot and inserts the pending booking as a
// single atomic unit against the slot's isAvailable precondition.
func (r *mongoBookingRepo) ReserveWithSlot(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := r.claimSlot(sc, booking.SlotID); err != nil {
			return err
		}
		if _, err := r.coll.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	})
}

// ApplyTransition writes the new status with a compare-and-swap on the
// expected current status, and performs the paired slot release/claim in
// the same transaction, so an observer never sees a half-applied
// transition.
func (r *mongoBookingRepo) ApplyTransition(ctx context.Context, t StatusTransition) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		set := bson.M{
			"status":    t.To,
			"updatedAt": time.Now().UTC(),
		}
		for k, v := range t.SetFields {
			set[k] = v
		}

		res, err := r.coll.UpdateOne(sc,
			bson.M{"id": t.BookingID, "status": t.From},
			bson.M{"$set": set},
		)
		if err != nil {
			return fmt.Errorf("transition booking %s: %w", t.BookingID, err)
		}
		if res.MatchedCount == 0 {
			return ErrStaleStatus
		}

		// Reschedule claims the new slot before releasing the old one,
		// keeping "at most one non-cancelled booking per slot" intact at
		// every point inside the transaction.
		if t.ClaimSlotID != "" {
			if err := r.claimSlot(sc, t.ClaimSlotID); err != nil {
				return err
			}
		}
		if t.ReleaseSlotID != "" {
			if err := r.releaseSlot(sc, t.ReleaseSlotID); err != nil {
				return err
			}
		}
		return nil
	})
}
