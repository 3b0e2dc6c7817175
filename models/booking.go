package models

import (
	"fmt"
	"time"
)

// BookingStatus is the closed set of booking lifecycle states.
// Unknown strings are rejected at the boundary by ParseBookingStatus.
type BookingStatus string

const (
	BookingStatusPendingPayment      BookingStatus = "pending_payment"
	BookingStatusPendingConfirmation BookingStatus = "pending_confirmation"
	BookingStatusConfirmed           BookingStatus = "confirmed"
	BookingStatusCompleted           BookingStatus = "completed"
	BookingStatusCancelled           BookingStatus = "cancelled"
	BookingStatusRescheduled         BookingStatus = "rescheduled"
	BookingStatusNoShow              BookingStatus = "no_show"
)

// Terminal reports whether no further transitions are allowed from s.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// HoldsSlot reports whether a booking in state s still consumes its time slot.
func (s BookingStatus) HoldsSlot() bool {
	return s != BookingStatusCancelled
}

func ParseBookingStatus(raw string) (BookingStatus, error) {
	switch s := BookingStatus(raw); s {
	case BookingStatusPendingPayment, BookingStatusPendingConfirmation,
		BookingStatusConfirmed, BookingStatusCompleted,
		BookingStatusCancelled, BookingStatusRescheduled, BookingStatusNoShow:
		return s, nil
	}
	return "", fmt.Errorf("unknown booking status %q", raw)
}

// PaymentStatus tracks the external payment outcome for a booking.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// MeetingMode is how the consultation session takes place.
type MeetingMode string

const (
	MeetingModeOnline   MeetingMode = "online"
	MeetingModeInPerson MeetingMode = "in_person"
)

func ParseMeetingMode(raw string) (MeetingMode, error) {
	switch m := MeetingMode(raw); m {
	case MeetingModeOnline, MeetingModeInPerson:
		return m, nil
	}
	return "", fmt.Errorf("unknown meeting mode %q", raw)
}

// Booking is a requester's reservation of one consultation slot.
// Bookings are never deleted; cancellation is a state, not a removal.
type Booking struct {
	ID             string        `bson:"id" json:"id"`
	BookingNumber  string        `bson:"bookingNumber" json:"bookingNumber"` // human-readable, e.g. "CNS-20240201-7F3A21"
	RequesterID    string        `bson:"requesterId" json:"requesterId"`
	RequesterName  string        `bson:"requesterName,omitempty" json:"requesterName,omitempty"`   // snapshot for admin search
	RequesterEmail string        `bson:"requesterEmail,omitempty" json:"requesterEmail,omitempty"` // snapshot for admin search
	OfferingID     string        `bson:"offeringId" json:"offeringId"`
	SlotID         string        `bson:"slotId" json:"slotId"`
	RequestedStart time.Time     `bson:"requestedStart" json:"requestedStart"`                 // slot start as originally chosen
	ConfirmedStart *time.Time    `bson:"confirmedStart,omitempty" json:"confirmedStart,omitempty"` // set when the advisor confirms
	MeetingMode    MeetingMode   `bson:"meetingMode" json:"meetingMode"`
	Amount         float64       `bson:"amount" json:"amount"` // snapshotted from the offering, never re-derived
	Currency       string        `bson:"currency" json:"currency"`
	Status         BookingStatus `bson:"status" json:"status"`
	PaymentStatus  PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	TransactionID  string        `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	FeedbackID     string        `bson:"feedbackId,omitempty" json:"feedbackId,omitempty"`
	CreatedAt      time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time     `bson:"updatedAt" json:"updatedAt"`
	CancelledAt    *time.Time    `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CompletedAt    *time.Time    `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// BookingEvent is a trigger applied to a booking through the state machine.
type BookingEvent string

const (
	EventPaymentSucceeded BookingEvent = "payment_succeeded"
	EventPaymentFailed    BookingEvent = "payment_failed"
	EventPaymentTimeout   BookingEvent = "payment_timeout"
	EventAdvisorConfirmed BookingEvent = "advisor_confirmed"
	EventSessionCompleted BookingEvent = "session_completed"
	EventRescheduled      BookingEvent = "rescheduled"
	EventCancelled        BookingEvent = "cancelled"
	EventNoShow           BookingEvent = "no_show"
)

func ParseBookingEvent(raw string) (BookingEvent, error) {
	switch e := BookingEvent(raw); e {
	case EventPaymentSucceeded, EventPaymentFailed, EventPaymentTimeout,
		EventAdvisorConfirmed, EventSessionCompleted, EventRescheduled,
		EventCancelled, EventNoShow:
		return e, nil
	}
	return "", fmt.Errorf("unknown booking event %q", raw)
}
