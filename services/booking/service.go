package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	bookingRepo "istishara/database/repository/booking"
	"istishara/models"
	"istishara/utils"
)

// Get returns a booking, lazily applying the payment timeout so a
// caller never observes a booking stuck in pending_payment past its
// grace period.
func (svc *DefaultBookingService) Get(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := svc.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, NewError(CodeNotFound, "booking %s not found", bookingID)
		}
		return nil, err
	}

	if b.Status == models.BookingStatusPendingPayment &&
		time.Now().UTC().After(b.CreatedAt.Add(svc.PaymentGrace)) {
		if err := svc.ExpirePendingPayment(ctx, b.ID); err != nil {
			utils.GetLogger().Warn("lazy payment expiry failed",
				zap.String("bookingId", b.ID), zap.Error(err))
		} else if b, err = svc.Repo.GetByID(ctx, bookingID); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (svc *DefaultBookingService) ListByRequester(ctx context.Context, requesterID string, page, pageSize int64) ([]models.Booking, int64, error) {
	return svc.Repo.ListByRequester(ctx, requesterID, page, pageSize)
}

func (svc *DefaultBookingService) ListAdmin(ctx context.Context, f bookingRepo.AdminFilter) ([]models.Booking, int64, error) {
	return svc.Repo.ListAdmin(ctx, f)
}

// Cancel applies the requester/advisor cancellation. Cancelling an
// already-cancelled booking is a no-op, never a double slot release.
func (svc *DefaultBookingService) Cancel(ctx context.Context, bookingID, actor string) (*models.Booking, error) {
	return svc.Transition(ctx, bookingID, models.EventCancelled, actor, TransitionOptions{})
}

// Transition validates the event against the state machine and applies
// the status write plus any slot release/claim as one atomic unit.
func (svc *DefaultBookingService) Transition(ctx context.Context, bookingID string, event models.BookingEvent, actor string, opts TransitionOptions) (*models.Booking, error) {
	b, err := svc.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, NewError(CodeNotFound, "booking %s not found", bookingID)
		}
		return nil, err
	}

	// Idempotent replays: cancelling a cancelled booking and re-applying
	// a payment outcome to a booking already past pending_payment are
	// no-ops, not errors.
	if event == models.EventCancelled && b.Status == models.BookingStatusCancelled {
		return b, nil
	}
	if isPaymentEvent(event) && b.Status != models.BookingStatusPendingPayment {
		return b, nil
	}

	to, ok := nextStatus(b.Status, event)
	if !ok {
		return nil, NewError(CodeIllegalTransition,
			"event %s is not allowed while booking %s is %s", event, b.ID, b.Status)
	}

	t := bookingRepo.StatusTransition{
		BookingID: b.ID,
		From:      b.Status,
		To:        to,
		SetFields: map[string]interface{}{},
	}
	if releasesSlot(event) {
		t.ReleaseSlotID = b.SlotID
	}

	now := time.Now().UTC()
	switch event {
	case models.EventPaymentSucceeded:
		t.SetFields["paymentStatus"] = models.PaymentStatusCompleted
		if opts.TransactionID != "" {
			t.SetFields["transactionId"] = opts.TransactionID
		}
	case models.EventPaymentFailed, models.EventPaymentTimeout:
		t.SetFields["paymentStatus"] = models.PaymentStatusFailed
		t.SetFields["cancelledAt"] = now
	case models.EventAdvisorConfirmed:
		slot, err := svc.SlotRepo.GetByID(ctx, b.SlotID)
		if err != nil {
			return nil, fmt.Errorf("load slot for confirmation: %w", err)
		}
		t.SetFields["confirmedStart"] = slot.Start
	case models.EventSessionCompleted:
		t.SetFields["completedAt"] = now
	case models.EventRescheduled:
		if opts.NewSlotID == "" {
			return nil, NewError(CodeInvalidInterval, "reschedule requires a new timeslot")
		}
		newSlot, err := svc.SlotRepo.GetByID(ctx, opts.NewSlotID)
		if err != nil {
			return nil, NewError(CodeNotFound, "timeslot %s not found", opts.NewSlotID)
		}
		if newSlot.OfferingID != b.OfferingID {
			return nil, NewError(CodeNotFound,
				"timeslot %s does not belong to offering %s", opts.NewSlotID, b.OfferingID)
		}
		// Price snapshot is preserved across reschedules; only the slot
		// reference moves. Old release and new claim commit together.
		t.ClaimSlotID = newSlot.ID
		t.ReleaseSlotID = b.SlotID
		t.SetFields["slotId"] = newSlot.ID
		t.SetFields["confirmedStart"] = nil
	case models.EventCancelled:
		t.SetFields["cancelledAt"] = now
		if b.PaymentStatus == models.PaymentStatusCompleted {
			// Money movement happens in the external refund workflow;
			// the record reflects that it has been handed off.
			t.SetFields["paymentStatus"] = models.PaymentStatusRefunded
		}
	case models.EventNoShow:
		// Slot stays consumed, no refund.
	}

	if err := svc.Repo.ApplyTransition(ctx, t); err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrSlotUnavailable):
			return nil, NewError(CodeSlotUnavailable, "timeslot %s is already booked", opts.NewSlotID)
		case errors.Is(err, bookingRepo.ErrStaleStatus):
			fresh, readErr := svc.Repo.GetByID(ctx, b.ID)
			if readErr != nil {
				return nil, readErr
			}
			if fresh.Status == to {
				// Another request applied the same transition first.
				return fresh, nil
			}
			return nil, NewError(CodeIllegalTransition,
				"event %s is not allowed while booking %s is %s", event, b.ID, fresh.Status)
		}
		return nil, err
	}

	svc.Audit.Record(actor, "booking."+string(event), "booking", b.ID, string(b.Status), string(to))
	svc.notifyTransition(b, event, to)

	return svc.Repo.GetByID(ctx, b.ID)
}

func isPaymentEvent(event models.BookingEvent) bool {
	switch event {
	case models.EventPaymentSucceeded, models.EventPaymentFailed, models.EventPaymentTimeout:
		return true
	}
	return false
}

func (svc *DefaultBookingService) notifyTransition(b *models.Booking, event models.BookingEvent, to models.BookingStatus) {
	var title, body string
	switch event {
	case models.EventPaymentSucceeded:
		title = "Payment received"
		body = fmt.Sprintf("Payment for booking %s is confirmed; your advisor will confirm the session shortly.", b.BookingNumber)
	case models.EventAdvisorConfirmed:
		title = "Session confirmed"
		body = fmt.Sprintf("Your consultation %s has been confirmed.", b.BookingNumber)
	case models.EventRescheduled:
		title = "Session rescheduled"
		body = fmt.Sprintf("Your consultation %s was moved to a new time.", b.BookingNumber)
	case models.EventPaymentFailed, models.EventPaymentTimeout, models.EventCancelled:
		title = "Booking cancelled"
		body = fmt.Sprintf("Booking %s has been cancelled.", b.BookingNumber)
	default:
		return
	}
	svc.notifyAsync(b.RequesterID, title, body, b)
}

// notifyAsync sends a push without blocking or failing the transition.
func (svc *DefaultBookingService) notifyAsync(userID, title, body string, b *models.Booking) {
	if svc.Notifier == nil {
		return
	}
	data := map[string]string{
		"bookingId":     b.ID,
		"bookingNumber": b.BookingNumber,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := svc.Notifier.SendUserPushNotification(ctx, userID, title, body, data); err != nil {
			utils.GetLogger().Warn("push notification failed",
				zap.String("userId", userID), zap.Error(err))
		}
	}()
}
