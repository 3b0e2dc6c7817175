package booking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"istishara/models"
	"istishara/utils"
)

// Reconcile applies an external payment outcome to a booking. Replaying
// an outcome for a booking already past pending_payment is a no-op, so
// gateway callbacks and polls can be retried freely.
func (svc *DefaultBookingService) Reconcile(ctx context.Context, bookingID string, outcome models.ChargeResult) error {
	switch outcome.Status {
	case models.ChargeSucceeded:
		_, err := svc.Transition(ctx, bookingID, models.EventPaymentSucceeded, "payment-gateway",
			TransitionOptions{TransactionID: outcome.TransactionID})
		return err
	case models.ChargeFailed:
		utils.GetLogger().Info("payment failed, cancelling booking",
			zap.String("bookingId", bookingID),
			zap.String("reason", outcome.FailureReason))
		_, err := svc.Transition(ctx, bookingID, models.EventPaymentFailed, "payment-gateway", TransitionOptions{})
		return err
	case models.ChargePending:
		// Nothing to apply yet; the expiry sweep cancels the booking if
		// no confirmation arrives within the grace period.
		return nil
	}
	return fmt.Errorf("unknown charge outcome %q for booking %s", outcome.Status, bookingID)
}

// ExpirePendingPayment cancels a booking that sat in pending_payment
// past the grace period and releases its slot. Bookings that already
// moved on are left untouched.
func (svc *DefaultBookingService) ExpirePendingPayment(ctx context.Context, bookingID string) error {
	b, err := svc.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.Status != models.BookingStatusPendingPayment {
		return nil
	}
	if time.Now().UTC().Before(b.CreatedAt.Add(svc.PaymentGrace)) {
		return nil
	}

	utils.GetLogger().Info("payment grace period elapsed, cancelling booking",
		zap.String("bookingId", b.ID),
		zap.String("bookingNumber", b.BookingNumber))
	_, err = svc.Transition(ctx, b.ID, models.EventPaymentTimeout, "system", TransitionOptions{})
	return err
}

// SweepOverduePayments expires every booking whose grace period has
// elapsed. Safety net behind the per-booking expiry tasks.
func (svc *DefaultBookingService) SweepOverduePayments(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-svc.PaymentGrace)
	overdue, err := svc.Repo.ListPendingPaymentBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, b := range overdue {
		if err := svc.ExpirePendingPayment(ctx, b.ID); err != nil {
			utils.GetLogger().Warn("sweep: failed to expire booking",
				zap.String("bookingId", b.ID), zap.Error(err))
			continue
		}
		expired++
	}
	return expired, nil
}
