package booking

import (
	"context"
	"time"

	bookingRepo "istishara/database/repository/booking"
	offeringRepo "istishara/database/repository/offering"
	timeslotRepo "istishara/database/repository/timeslot"
	userRepo "istishara/database/repository/user"
	"istishara/models"
	"istishara/services/audit"
	"istishara/services/notification"
)

// ReserveRequest is the input for a new reservation attempt.
type ReserveRequest struct {
	RequesterID string
	OfferingID  string
	SlotID      string
	MeetingMode models.MeetingMode
	// PaymentMethod is handed through to the gateway ("card" or "cash").
	PaymentMethod string
}

// ReserveResult carries the booking plus, on a lost claim race, the
// refreshed list of slots still available for the offering.
type ReserveResult struct {
	Booking        *models.Booking   `json:"booking,omitempty"`
	AvailableSlots []models.TimeSlot `json:"availableSlots,omitempty"`
}

// TransitionOptions carries per-event extras.
type TransitionOptions struct {
	NewSlotID     string // required for EventRescheduled
	TransactionID string // set with EventPaymentSucceeded
}

// ExpiryScheduler enqueues a deferred payment-expiry check for a booking.
type ExpiryScheduler interface {
	ScheduleExpiry(ctx context.Context, bookingID string, delay time.Duration) error
}

// BookingService is the transactional boundary around slots and
// bookings: reservation claims, lifecycle transitions, and payment
// reconciliation all go through here.
type BookingService interface {
	Reserve(ctx context.Context, req ReserveRequest) (*ReserveResult, error)
	Get(ctx context.Context, bookingID string) (*models.Booking, error)
	ListByRequester(ctx context.Context, requesterID string, page, pageSize int64) ([]models.Booking, int64, error)
	ListAdmin(ctx context.Context, f bookingRepo.AdminFilter) ([]models.Booking, int64, error)
	Transition(ctx context.Context, bookingID string, event models.BookingEvent, actor string, opts TransitionOptions) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID, actor string) (*models.Booking, error)
	Reconcile(ctx context.Context, bookingID string, outcome models.ChargeResult) error
	ExpirePendingPayment(ctx context.Context, bookingID string) error
	SweepOverduePayments(ctx context.Context) (int, error)
}

// DefaultBookingService is the production implementation.
type DefaultBookingService struct {
	Repo         bookingRepo.BookingRepository
	SlotRepo     timeslotRepo.TimeSlotRepository
	OfferingRepo offeringRepo.OfferingRepository
	UserRepo     userRepo.UserRepository
	Gateway      PaymentGateway
	Notifier     notification.NotificationService
	Audit        *audit.Recorder
	Expiry       ExpiryScheduler

	// PaymentGrace is how long a booking may sit in pending_payment
	// before it is cancelled and its slot released.
	PaymentGrace time.Duration
	// PaymentMaxRetries bounds retries of transient gateway failures.
	PaymentMaxRetries int
}
