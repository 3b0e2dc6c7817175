package booking

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"

	"istishara/models"
)

// PaymentGateway is the opaque external payment collaborator: one charge
// attempt per booking, answered with succeeded/failed/pending.
type PaymentGateway interface {
	Charge(ctx context.Context, req models.ChargeRequest) (*models.ChargeResult, error)
}

// StripeGateway charges through Stripe payment intents.
type StripeGateway struct {
	logger *zap.Logger
}

func NewStripeGateway(logger *zap.Logger) *StripeGateway {
	return &StripeGateway{logger: logger}
}

func (g *StripeGateway) Charge(ctx context.Context, req models.ChargeRequest) (*models.ChargeResult, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("invalid charge amount %.2f", req.Amount)
	}
	if req.Method == "cash" {
		// Cash is settled at the session; treat as pending so the
		// advisor confirms receipt out of band.
		return &models.ChargeResult{Status: models.ChargePending}, nil
	}

	params := &stripe.PaymentIntentParams{
		Params:      stripe.Params{Context: ctx},
		Amount:      stripe.Int64(int64(req.Amount * 100)),
		Currency:    stripe.String(strings.ToLower(req.Currency)),
		Confirm:     stripe.Bool(true),
		Description: stripe.String(req.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
		Metadata: map[string]string{
			"bookingId":   req.BookingID,
			"requesterId": req.RequesterID,
		},
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent failed: %w", err)
	}

	g.logger.Info("stripe payment intent created",
		zap.String("bookingId", req.BookingID),
		zap.String("paymentIntent", pi.ID),
		zap.String("status", string(pi.Status)))

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return &models.ChargeResult{Status: models.ChargeSucceeded, TransactionID: pi.ID}, nil
	case stripe.PaymentIntentStatusProcessing,
		stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresConfirmation:
		return &models.ChargeResult{Status: models.ChargePending, TransactionID: pi.ID}, nil
	default:
		return &models.ChargeResult{
			Status:        models.ChargeFailed,
			TransactionID: pi.ID,
			FailureReason: string(pi.Status),
		}, nil
	}
}
