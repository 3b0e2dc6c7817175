package booking

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingRepo "istishara/database/repository/booking"
	userRepo "istishara/database/repository/user"
	"istishara/models"
	"istishara/utils"
)

// Reserve is the only path by which a slot moves from available to held:
// the slot claim (compare-and-swap on isAvailable) and the booking
// insert are applied as one transaction by the repository. On a lost
// race the result carries the refreshed slot list so the caller can
// offer alternatives immediately.
func (svc *DefaultBookingService) Reserve(ctx context.Context, req ReserveRequest) (*ReserveResult, error) {
	logger := utils.GetLogger()

	offering, err := svc.OfferingRepo.GetByID(ctx, req.OfferingID)
	if err != nil {
		return nil, NewError(CodeNotFound, "offering %s not found", req.OfferingID)
	}
	if !offering.Active {
		return nil, NewError(CodeNotFound, "offering %s is no longer available", req.OfferingID)
	}

	slot, err := svc.SlotRepo.GetByID(ctx, req.SlotID)
	if err != nil {
		return nil, NewError(CodeNotFound, "timeslot %s not found", req.SlotID)
	}
	if slot.OfferingID != offering.ID {
		return nil, NewError(CodeNotFound, "timeslot %s does not belong to offering %s", req.SlotID, req.OfferingID)
	}
	if !slot.IsAvailable {
		return svc.slotUnavailableResult(ctx, offering.ID, slot.ID)
	}

	if offering.MaxPerDay > 0 {
		n, err := svc.Repo.CountActiveForOfferingOn(ctx, offering.ID, slot.Start)
		if err != nil {
			return nil, fmt.Errorf("daily booking count failed: %w", err)
		}
		if n >= int64(offering.MaxPerDay) {
			return nil, NewError(CodeSlotUnavailable,
				"offering %s has reached its daily booking limit", offering.ID)
		}
	}

	now := time.Now().UTC()
	b := &models.Booking{
		ID:             uuid.New().String(),
		BookingNumber:  newBookingNumber(now),
		RequesterID:    req.RequesterID,
		OfferingID:     offering.ID,
		SlotID:         slot.ID,
		RequestedStart: slot.Start,
		MeetingMode:    req.MeetingMode,
		Amount:         offering.Price, // snapshot; never re-derived
		Currency:       offering.Currency,
		Status:         models.BookingStatusPendingPayment,
		PaymentStatus:  models.PaymentStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	svc.snapshotRequester(ctx, b)

	if err := svc.Repo.ReserveWithSlot(ctx, b); err != nil {
		if errors.Is(err, bookingRepo.ErrSlotUnavailable) {
			return svc.slotUnavailableResult(ctx, offering.ID, slot.ID)
		}
		return nil, fmt.Errorf("reservation failed: %w", err)
	}
	logger.Info("slot claimed",
		zap.String("bookingId", b.ID),
		zap.String("bookingNumber", b.BookingNumber),
		zap.String("slotId", slot.ID))

	svc.Audit.Record(req.RequesterID, "booking.reserve", "booking", b.ID, "", string(b.Status))

	if svc.Expiry != nil {
		if err := svc.Expiry.ScheduleExpiry(ctx, b.ID, svc.PaymentGrace); err != nil {
			// The lazy check on read and the overdue sweep still apply
			// the timeout, so this is not fatal.
			logger.Warn("failed to schedule payment expiry", zap.String("bookingId", b.ID), zap.Error(err))
		}
	}

	svc.notifyAsync(b.RequesterID, "Booking received",
		fmt.Sprintf("Your booking %s is awaiting payment.", b.BookingNumber), b)

	outcome, payErr := svc.chargeWithRetry(ctx, models.ChargeRequest{
		BookingID:   b.ID,
		RequesterID: b.RequesterID,
		Amount:      b.Amount,
		Currency:    b.Currency,
		Method:      req.PaymentMethod,
		Description: fmt.Sprintf("%s (%s)", offering.Title, b.BookingNumber),
	})
	if payErr != nil {
		// Exhausted retries: record the failure, which cancels the
		// booking and releases the slot in one transaction.
		if recErr := svc.Reconcile(ctx, b.ID, models.ChargeResult{
			Status:        models.ChargeFailed,
			FailureReason: payErr.Error(),
		}); recErr != nil {
			logger.Error("failed to reconcile gateway failure",
				zap.String("bookingId", b.ID), zap.Error(recErr))
		}
		return nil, NewError(CodePaymentGateway, "payment failed: %v", payErr)
	}

	if err := svc.Reconcile(ctx, b.ID, *outcome); err != nil {
		return nil, fmt.Errorf("payment reconciliation failed: %w", err)
	}

	updated, err := svc.Repo.GetByID(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("reload booking after payment: %w", err)
	}
	return &ReserveResult{Booking: updated}, nil
}

// slotUnavailableResult builds the SlotUnavailable rejection together
// with the refreshed availability list, excluding the slot just lost.
func (svc *DefaultBookingService) slotUnavailableResult(ctx context.Context, offeringID, lostSlotID string) (*ReserveResult, error) {
	slots, err := svc.SlotRepo.ListAvailable(ctx, offeringID, time.Now().UTC())
	if err != nil {
		utils.GetLogger().Warn("failed to refresh slot list", zap.Error(err))
		slots = nil
	}
	filtered := slots[:0]
	for _, s := range slots {
		if s.ID != lostSlotID {
			filtered = append(filtered, s)
		}
	}
	return &ReserveResult{AvailableSlots: filtered},
		NewError(CodeSlotUnavailable, "timeslot %s is already booked", lostSlotID)
}

func (svc *DefaultBookingService) chargeWithRetry(ctx context.Context, req models.ChargeRequest) (*models.ChargeResult, error) {
	logger := utils.GetLogger()
	attempts := svc.PaymentMaxRetries + 1

	var lastErr error
	for i := 0; i < attempts; i++ {
		callCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		outcome, err := svc.Gateway.Charge(callCtx, req)
		cancel()
		if err == nil {
			return outcome, nil
		}
		lastErr = err
		logger.Warn("payment gateway call failed",
			zap.String("bookingId", req.BookingID),
			zap.Int("attempt", i+1),
			zap.Error(err))
	}
	return nil, lastErr
}

// snapshotRequester copies display fields onto the booking so the admin
// free-text search works without joining the users collection.
func (svc *DefaultBookingService) snapshotRequester(ctx context.Context, b *models.Booking) {
	if svc.UserRepo == nil {
		return
	}
	profile, err := svc.UserRepo.GetByID(ctx, b.RequesterID)
	if err != nil {
		if !errors.Is(err, userRepo.ErrNotFound) {
			utils.GetLogger().Warn("requester profile lookup failed",
				zap.String("requesterId", b.RequesterID), zap.Error(err))
		}
		return
	}
	b.RequesterName = profile.Name
	b.RequesterEmail = profile.Email
}

// newBookingNumber builds the human-readable booking number, e.g.
// "CNS-20240201-7F3A21".
func newBookingNumber(t time.Time) string {
	buf := make([]byte, 3)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("CNS-%s-%s", t.Format("20060102"), strings.ToUpper(hex.EncodeToString(buf)))
}
