// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"
	"errors"
	"time"

	"istishara/database"
	"istishara/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no booking matches the given ID.
	ErrNotFound = errors.New("booking not found")
	// ErrSlotUnavailable is returned when the conditional slot claim
	// matched no document: another booking already holds the slot.
	ErrSlotUnavailable = errors.New("timeslot already claimed")
	// ErrStaleStatus is returned when a transition's status precondition
	// no longer holds; the caller re-reads and decides what that means.
	ErrStaleStatus = errors.New("booking status changed concurrently")
)

// StatusTransition describes one atomic booking state change. The status
// write carries a compare-and-swap on From; optional slot release/claim
// happen in the same transaction.
type StatusTransition struct {
	BookingID     string
	From          models.BookingStatus
	To            models.BookingStatus
	SetFields     map[string]interface{} // extra booking fields written with the status
	ReleaseSlotID string                 // flipped back to available, if set
	ClaimSlotID   string                 // conditionally claimed (isAvailable CAS), if set
}

// AdminFilter narrows admin booking listings.
type AdminFilter struct {
	Status   models.BookingStatus // empty means any
	FromDate time.Time
	ToDate   time.Time
	Search   string // free text over requester name/email/booking number
	Page     int64
	PageSize int64
}

type BookingRepository interface {
	// ReserveWithSlot claims the slot and inserts the booking as one
	// atomic unit. Returns ErrSlotUnavailable (and inserts nothing)
	// when the slot is already held.
	ReserveWithSlot(ctx context.Context, booking *models.Booking) error
	// ApplyTransition performs one StatusTransition transactionally.
	ApplyTransition(ctx context.Context, t StatusTransition) error
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
	ListByRequester(ctx context.Context, requesterID string, page, pageSize int64) ([]models.Booking, int64, error)
	ListAdmin(ctx context.Context, f AdminFilter) ([]models.Booking, int64, error)
	// SetFeedbackRef records the 1:1 feedback reference; reports whether
	// the booking had no reference yet.
	SetFeedbackRef(ctx context.Context, bookingID, feedbackID string) (bool, error)
	ClearFeedbackRef(ctx context.Context, bookingID string) error
	ListPendingPaymentBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
	CountActiveForOfferingOn(ctx context.Context, offeringID string, day time.Time) (int64, error)
	EnsureIndexes() error
}

type mongoBookingRepo struct {
	coll     *mongo.Collection
	slotColl *mongo.Collection
}

// NewMongoBookingRepo constructs a new MongoDB BookingRepository. It
// owns writes to the bookings collection and performs the paired slot
// mutations inside its transactions.
func NewMongoBookingRepo() BookingRepository {
	db := database.DB()
	return &mongoBookingRepo{
		coll:     db.Collection("bookings"),
		slotColl: db.Collection("timeslots"),
	}
}
