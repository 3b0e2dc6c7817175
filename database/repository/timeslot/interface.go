// File: database/repository/timeslot/interface.go
package timeslotRepo

import (
	"context"
	"errors"
	"time"

	"istishara/database"
	"istishara/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no slot matches the given ID.
	ErrNotFound = errors.New("timeslot not found")
	// ErrOverlap is returned when a new slot would overlap an existing
	// slot of the same offering.
	ErrOverlap = errors.New("timeslot overlaps an existing slot")
	// ErrSlotInUse is returned when a delete targets a slot still
	// referenced by a non-cancelled booking.
	ErrSlotInUse = errors.New("timeslot referenced by an active booking")
)

type TimeSlotRepository interface {
	Create(ctx context.Context, slot *models.TimeSlot) error
	GetByID(ctx context.Context, slotID string) (*models.TimeSlot, error)
	ListAvailable(ctx context.Context, offeringID string, from time.Time) ([]models.TimeSlot, error)
	ListByOffering(ctx context.Context, offeringID string) ([]models.TimeSlot, error)
	MarkAvailable(ctx context.Context, slotID string) error
	MarkUnavailable(ctx context.Context, slotID string) error
	Delete(ctx context.Context, slotID string) error
	EnsureIndexes() error
}

type mongoTimeSlotRepo struct {
	coll        *mongo.Collection
	bookingColl *mongo.Collection
}

// NewMongoTimeSlotRepo constructs a new MongoDB TimeSlotRepository.
// The bookings collection is consulted on delete to protect slots that
// are still referenced by a non-cancelled booking.
func NewMongoTimeSlotRepo() TimeSlotRepository {
	db := database.DB()
	return &mongoTimeSlotRepo{
		coll:        db.Collection("timeslots"),
		bookingColl: db.Collection("bookings"),
	}
}
