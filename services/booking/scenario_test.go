package booking

import (
	"context"
	"testing"
	"time"

	"istishara/models"
)

// Full lifecycle: reserve, pay, confirm, complete.
func TestBookingLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, db := testService(succeedingGateway())
	seedOffering(svc, true, 0)
	start := time.Now().UTC().Add(48 * time.Hour)
	seedSlot(db, "slot-1", start, true)

	res, err := svc.Reserve(ctx, ReserveRequest{
		RequesterID: "user-1", OfferingID: "off-1", SlotID: "slot-1",
		MeetingMode: models.MeetingModeOnline, PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	id := res.Booking.ID
	if res.Booking.Status != models.BookingStatusPendingConfirmation {
		t.Fatalf("after payment: status = %s, want pending_confirmation", res.Booking.Status)
	}

	b, err := svc.Transition(ctx, id, models.EventAdvisorConfirmed, "admin", TransitionOptions{})
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if b.Status != models.BookingStatusConfirmed || b.ConfirmedStart == nil {
		t.Fatalf("after confirm: status = %s, confirmedStart = %v", b.Status, b.ConfirmedStart)
	}

	b, err = svc.Transition(ctx, id, models.EventSessionCompleted, "admin", TransitionOptions{})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if b.Status != models.BookingStatusCompleted || b.CompletedAt == nil {
		t.Fatalf("after completion: status = %s, completedAt = %v", b.Status, b.CompletedAt)
	}

	// Terminal: nothing else applies.
	if _, err := svc.Transition(ctx, id, models.EventCancelled, "admin", TransitionOptions{}); !IsCode(err, CodeIllegalTransition) {
		t.Fatalf("cancel after completion: err = %v, want code %s", err, CodeIllegalTransition)
	}
}

// A slot released by one requester's cancellation is immediately
// claimable by another.
func TestReleasedSlotIsReclaimable(t *testing.T) {
	ctx := context.Background()
	svc, db := testService(succeedingGateway())
	seedOffering(svc, true, 0)
	seedSlot(db, "slot-1", time.Now().UTC().Add(48*time.Hour), true)

	resA, err := svc.Reserve(ctx, ReserveRequest{
		RequesterID: "user-a", OfferingID: "off-1", SlotID: "slot-1",
		MeetingMode: models.MeetingModeOnline,
	})
	if err != nil {
		t.Fatalf("first reservation failed: %v", err)
	}

	// While A holds the slot, B is rejected.
	if _, err := svc.Reserve(ctx, ReserveRequest{
		RequesterID: "user-b", OfferingID: "off-1", SlotID: "slot-1",
		MeetingMode: models.MeetingModeOnline,
	}); !IsCode(err, CodeSlotUnavailable) {
		t.Fatalf("second reservation: err = %v, want code %s", err, CodeSlotUnavailable)
	}

	if _, err := svc.Cancel(ctx, resA.Booking.ID, "user-a"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	resB, err := svc.Reserve(ctx, ReserveRequest{
		RequesterID: "user-b", OfferingID: "off-1", SlotID: "slot-1",
		MeetingMode: models.MeetingModeOnline,
	})
	if err != nil {
		t.Fatalf("reservation after release failed: %v", err)
	}
	if resB.Booking.SlotID != "slot-1" {
		t.Fatalf("B booked slot %s, want slot-1", resB.Booking.SlotID)
	}
}
