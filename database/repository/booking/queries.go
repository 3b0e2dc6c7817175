// File: database/repository/booking/queries.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"istishara/models"
)

const defaultPageSize = 20

func (r *mongoBookingRepo) ListByRequester(ctx context.Context, requesterID string, page, pageSize int64) ([]models.Booking, int64, error) {
	filter := bson.M{"requesterId": requesterID}
	return r.pagedFind(ctx, filter, page, pageSize)
}

// ListAdmin lists bookings for the admin dashboard: optional status,
// creation date range, and free-text search over requester name, email
// and booking number.
func (r *mongoBookingRepo) ListAdmin(ctx context.Context, f AdminFilter) ([]models.Booking, int64, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	created := bson.M{}
	if !f.FromDate.IsZero() {
		created["$gte"] = f.FromDate.UTC()
	}
	if !f.ToDate.IsZero() {
		created["$lt"] = f.ToDate.UTC()
	}
	if len(created) > 0 {
		filter["createdAt"] = created
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: f.Search, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"requesterName": re},
			bson.M{"requesterEmail": re},
			bson.M{"bookingNumber": re},
		}
	}
	return r.pagedFind(ctx, filter, f.Page, f.PageSize)
}

// ListPendingPaymentBefore returns bookings still awaiting payment that
// were created before the cutoff; the expiry sweep feeds on this.
func (r *mongoBookingRepo) ListPendingPaymentBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"status":    models.BookingStatusPendingPayment,
		"createdAt": bson.M{"$lt": cutoff.UTC()},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find overdue pending bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode overdue pending bookings: %w", err)
	}
	return bookings, nil
}

// CountActiveForOfferingOn counts non-cancelled bookings of an offering
// whose requested start falls on the given day. Used to enforce the
// offering's max-per-day limit.
func (r *mongoBookingRepo) CountActiveForOfferingOn(ctx context.Context, offeringID string, day time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	filter := bson.M{
		"offeringId": offeringID,
		"status":     bson.M{"$ne": models.BookingStatusCancelled},
		"requestedStart": bson.M{
			"$gte": dayStart,
			"$lt":  dayStart.Add(24 * time.Hour),
		},
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count bookings for offering %s: %w", offeringID, err)
	}
	return n, nil
}

func (r *mongoBookingRepo) pagedFind(ctx context.Context, filter bson.M, page, pageSize int64) ([]models.Booking, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * pageSize).
		SetLimit(pageSize)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, fmt.Errorf("decode bookings: %w", err)
	}
	return bookings, total, nil
}
