package booking

import (
	"context"
	"testing"
	"time"

	"istishara/models"
)

// seedBooking stores a booking in the given state, holding slotID.
func seedBooking(db *memDB, id string, status models.BookingStatus, slotID string, pay models.PaymentStatus) models.Booking {
	b := models.Booking{
		ID:            id,
		BookingNumber: "CNS-20240201-TEST01",
		RequesterID:   "user-1",
		OfferingID:    "off-1",
		SlotID:        slotID,
		MeetingMode:   models.MeetingModeOnline,
		Amount:        150,
		Currency:      "SAR",
		Status:        status,
		PaymentStatus: pay,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	db.putBooking(b)
	return b
}

func TestTransitionIllegalEvent(t *testing.T) {
	svc, db := testService(succeedingGateway())
	seedSlot(db, "slot-1", time.Now().UTC().Add(24*time.Hour), false)
	seedBooking(db, "b-1", models.BookingStatusPendingPayment, "slot-1", models.PaymentStatusPending)

	_, err := svc.Transition(context.Background(), "b-1", models.EventSessionCompleted, "admin", TransitionOptions{})
	if !IsCode(err, CodeIllegalTransition) {
		t.Fatalf("err = %v, want code %s", err, CodeIllegalTransition)
	}
}

func TestTransitionUnknownBooking(t *testing.T) {
	svc, _ := testService(succeedingGateway())
	_, err := svc.Transition(context.Background(), "missing", models.EventCancelled, "admin", TransitionOptions{})
	if !IsCode(err, CodeNotFound) {
		t.Fatalf("err = %v, want code %s", err, CodeNotFound)
	}
}

func TestCancelReleasesSlotOnce(t *testing.T) {
	svc, db := testService(succeedingGateway())
	seedSlot(db, "slot-1", time.Now().UTC().Add(24*time.Hour), false)
	seedBooking(db, "b-1", models.BookingStatusConfirmed, "slot-1", models.PaymentStatusCompleted)

	b, err := svc.Cancel(context.Background(), "b-1", "user-1")
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if b.Status != models.BookingStatusCancelled {
		t.Fatalf("status = %s, want cancelled", b.Status)
	}
	if b.CancelledAt == nil {
		t.Error("cancelledAt not set")
	}

	slot, _ := svc.SlotRepo.GetByID(context.Background(), "slot-1")
	if !slot.IsAvailable {
		t.Fatal("slot not released on cancel")
	}
	v := slot.Version

	// Cancelling again is a no-op: no error, no second release.
	again, err := svc.Cancel(context.Background(), "b-1", "user-1")
	if err != nil {
		t.Fatalf("second Cancel errored: %v", err)
	}
	if again.Status != models.BookingStatusCancelled {
		t.Errorf("status after replay = %s, want cancelled", again.Status)
	}
	slot, _ = svc.SlotRepo.GetByID(context.Background(), "slot-1")
	if slot.Version != v {
		t.Error("replayed cancel touched the slot again")
	}
}

func TestCancelAfterPaymentMarksRefunded(t *testing.T) {
	svc, db := testService(succeedingGateway())
	seedSlot(db, "slot-1", time.Now().UTC().Add(24*time.Hour), false)
	seedBooking(db, "b-1", models.BookingStatusPendingConfirmation, "slot-1", models.PaymentStatusCompleted)

	b, err := svc.Cancel(context.Background(), "b-1", "user-1")
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if b.PaymentStatus != models.PaymentStatusRefunded {
		t.Errorf("paymentStatus = %s, want %s", b.PaymentStatus, models.PaymentStatusRefunded)
	}
}

func TestAdvisorConfirmSetsStart(t *testing.T) {
	svc, db := testService(succeedingGateway())
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	seedSlot(db, "slot-1", start, false)
	seedBooking(db, "b-1", models.BookingStatusPendingConfirmation, "slot-1", models.PaymentStatusCompleted)

	b, err := svc.Transition(context.Background(), "b-1", models.EventAdvisorConfirmed, "admin", TransitionOptions{})
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if b.Status != models.BookingStatusConfirmed {
		t.Errorf("status = %s, want confirmed", b.Status)
	}
	if b.ConfirmedStart == nil || !b.ConfirmedStart.Equal(start) {
		t.Errorf("confirmedStart = %v, want %v", b.ConfirmedStart, start)
	}
}

func TestCompleteSetsTimestamp(t *testing.T) {
	svc, db := testService(succeedingGateway())
	seedSlot(db, "slot-1", time.Now().UTC().Add(24*time.Hour), false)
	seedBooking(db, "b-1", models.BookingStatusConfirmed, "slot-1", models.PaymentStatusCompleted)

	b, err := svc.Transition(context.Background(), "b-1", models.EventSessionCompleted, "admin", TransitionOptions{})
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if b.Status != models.BookingStatusCompleted {
		t.Errorf("status = %s, want completed", b.Status)
	}
	if b.CompletedAt == nil {
		t.Error("completedAt not set")
	}

	slot, _ := svc.SlotRepo.GetByID(context.Background(), "slot-1")
	if slot.IsAvailable {
		t.Error("completed session released its slot")
	}
}

func TestRescheduleMovesSlot(t *testing.T) {
	svc, db := testService(succeedingGateway())
	start := time.Now().UTC().Add(24 * time.Hour)
	seedSlot(db, "slot-old", start, false)
	seedSlot(db, "slot-new", start.Add(48*time.Hour), true)
	seeded := seedBooking(db, "b-1", models.BookingStatusConfirmed, "slot-old", models.PaymentStatusCompleted)

	b, err := svc.Transition(context.Background(), "b-1", models.EventRescheduled, "admin",
		TransitionOptions{NewSlotID: "slot-new"})
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if b.Status != models.BookingStatusRescheduled {
		t.Errorf("status = %s, want rescheduled", b.Status)
	}
	if b.SlotID != "slot-new" {
		t.Errorf("slotId = %s, want slot-new", b.SlotID)
	}
	if b.ConfirmedStart != nil {
		t.Error("confirmedStart not cleared on reschedule")
	}
	if b.Amount != seeded.Amount {
		t.Errorf("amount changed on reschedule: %.2f -> %.2f", seeded.Amount, b.Amount)
	}

	oldSlot, _ := svc.SlotRepo.GetByID(context.Background(), "slot-old")
	newSlot, _ := svc.SlotRepo.GetByID(context.Background(), "slot-new")
	if !oldSlot.IsAvailable {
		t.Error("old slot not released")
	}
	if newSlot.IsAvailable {
		t.Error("new slot not claimed")
	}
}

func TestRescheduleToClaimedSlotFails(t *testing.T) {
	svc, db := testService(succeedingGateway())
	start := time.Now().UTC().Add(24 * time.Hour)
	seedSlot(db, "slot-old", start, false)
	seedSlot(db, "slot-new", start.Add(48*time.Hour), false)
	seedBooking(db, "b-1", models.BookingStatusConfirmed, "slot-old", models.PaymentStatusCompleted)

	_, err := svc.Transition(context.Background(), "b-1", models.EventRescheduled, "admin",
		TransitionOptions{NewSlotID: "slot-new"})
	if !IsCode(err, CodeSlotUnavailable) {
		t.Fatalf("err = %v, want code %s", err, CodeSlotUnavailable)
	}

	// Booking and old slot must be untouched by the failed attempt.
	b, _ := svc.Repo.GetByID(context.Background(), "b-1")
	if b.Status != models.BookingStatusConfirmed || b.SlotID != "slot-old" {
		t.Errorf("booking mutated by failed reschedule: status=%s slot=%s", b.Status, b.SlotID)
	}
	oldSlot, _ := svc.SlotRepo.GetByID(context.Background(), "slot-old")
	if oldSlot.IsAvailable {
		t.Error("old slot released by failed reschedule")
	}
}

func TestRescheduleRequiresSlot(t *testing.T) {
	svc, db := testService(succeedingGateway())
	seedSlot(db, "slot-1", time.Now().UTC().Add(24*time.Hour), false)
	seedBooking(db, "b-1", models.BookingStatusConfirmed, "slot-1", models.PaymentStatusCompleted)

	_, err := svc.Transition(context.Background(), "b-1", models.EventRescheduled, "admin", TransitionOptions{})
	if !IsCode(err, CodeInvalidInterval) {
		t.Fatalf("err = %v, want code %s", err, CodeInvalidInterval)
	}
}

func TestNoShowKeepsSlotAndPayment(t *testing.T) {
	svc, db := testService(succeedingGateway())
	seedSlot(db, "slot-1", time.Now().UTC().Add(24*time.Hour), false)
	seedBooking(db, "b-1", models.BookingStatusConfirmed, "slot-1", models.PaymentStatusCompleted)

	b, err := svc.Transition(context.Background(), "b-1", models.EventNoShow, "admin", TransitionOptions{})
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if b.Status != models.BookingStatusNoShow {
		t.Errorf("status = %s, want no_show", b.Status)
	}
	if b.PaymentStatus != models.PaymentStatusCompleted {
		t.Errorf("paymentStatus = %s, want completed (no refund on no-show)", b.PaymentStatus)
	}
	slot, _ := svc.SlotRepo.GetByID(context.Background(), "slot-1")
	if slot.IsAvailable {
		t.Error("no-show released the slot")
	}
}
