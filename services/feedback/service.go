package feedback

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingRepo "istishara/database/repository/booking"
	feedbackRepo "istishara/database/repository/feedback"
	"istishara/models"
	"istishara/services/audit"
	"istishara/services/booking"
	"istishara/utils"
)

// CreateRequest is the input for leaving feedback on a booking.
type CreateRequest struct {
	BookingID   string
	RequesterID string
	Rating      int
	Comment     string
}

// FeedbackService gates feedback behind booking completion and
// enforces one feedback per booking.
type FeedbackService interface {
	Create(ctx context.Context, req CreateRequest) (*models.ConsultationFeedback, error)
	Get(ctx context.Context, id string) (*models.ConsultationFeedback, error)
	ListPublicByOffering(ctx context.Context, offeringID string) ([]models.ConsultationFeedback, error)
	SetVisibility(ctx context.Context, id string, isPublic bool, actor string) error
	Delete(ctx context.Context, id, actor string) error
}

type DefaultFeedbackService struct {
	Repo        feedbackRepo.FeedbackRepository
	BookingRepo bookingRepo.BookingRepository
	Audit       *audit.Recorder
}

// Create records feedback for a completed booking. The booking keeps a
// back-reference; claiming that reference atomically is what makes a
// second submission fail even under concurrent attempts.
func (s *DefaultFeedbackService) Create(ctx context.Context, req CreateRequest) (*models.ConsultationFeedback, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, booking.NewError(booking.CodeInvalidInterval, "rating %d out of range 1..5", req.Rating)
	}

	b, err := s.BookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, booking.NewError(booking.CodeNotFound, "booking %s not found", req.BookingID)
		}
		return nil, err
	}
	if b.RequesterID != req.RequesterID {
		return nil, booking.NewError(booking.CodeNotFound, "booking %s not found", req.BookingID)
	}
	if b.Status != models.BookingStatusCompleted {
		return nil, booking.NewError(booking.CodeBookingNotCompleted,
			"booking %s is %s, feedback requires a completed session", b.ID, b.Status)
	}
	if b.FeedbackID != "" {
		return nil, booking.NewError(booking.CodeDuplicateFeedback, "booking %s already has feedback", b.ID)
	}

	fb := &models.ConsultationFeedback{
		ID:          uuid.New().String(),
		BookingID:   b.ID,
		RequesterID: req.RequesterID,
		Rating:      req.Rating,
		Comment:     req.Comment,
		IsPublic:    true,
		CreatedAt:   time.Now().UTC(),
	}

	// Claim the booking's feedback reference first. The update matches
	// only when no reference exists, so a concurrent duplicate loses here.
	claimed, err := s.BookingRepo.SetFeedbackRef(ctx, b.ID, fb.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, booking.NewError(booking.CodeDuplicateFeedback, "booking %s already has feedback", b.ID)
	}

	if err := s.Repo.Create(ctx, fb); err != nil {
		if clearErr := s.BookingRepo.ClearFeedbackRef(ctx, b.ID); clearErr != nil {
			utils.GetLogger().Error("failed to roll back feedback reference",
				zap.String("bookingId", b.ID), zap.Error(clearErr))
		}
		return nil, err
	}

	s.Audit.Record(req.RequesterID, "feedback_created", "feedback", fb.ID, "", "")
	return fb, nil
}

func (s *DefaultFeedbackService) Get(ctx context.Context, id string) (*models.ConsultationFeedback, error) {
	fb, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, feedbackRepo.ErrNotFound) {
		return nil, booking.NewError(booking.CodeNotFound, "feedback %s not found", id)
	}
	return fb, err
}

func (s *DefaultFeedbackService) ListPublicByOffering(ctx context.Context, offeringID string) ([]models.ConsultationFeedback, error) {
	return s.Repo.ListPublicByOffering(ctx, offeringID)
}

// SetVisibility is the moderation toggle; content is immutable.
func (s *DefaultFeedbackService) SetVisibility(ctx context.Context, id string, isPublic bool, actor string) error {
	if err := s.Repo.SetVisibility(ctx, id, isPublic); err != nil {
		if errors.Is(err, feedbackRepo.ErrNotFound) {
			return booking.NewError(booking.CodeNotFound, "feedback %s not found", id)
		}
		return err
	}
	to := "hidden"
	if isPublic {
		to = "public"
	}
	s.Audit.Record(actor, "feedback_visibility", "feedback", id, "", to)
	return nil
}

// Delete removes a feedback record and frees the booking's reference so
// moderation can allow a resubmission.
func (s *DefaultFeedbackService) Delete(ctx context.Context, id, actor string) error {
	fb, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, feedbackRepo.ErrNotFound) {
			return booking.NewError(booking.CodeNotFound, "feedback %s not found", id)
		}
		return err
	}
	if err := s.Repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	if err := s.BookingRepo.ClearFeedbackRef(ctx, fb.BookingID); err != nil {
		utils.GetLogger().Error("failed to clear feedback reference after delete",
			zap.String("bookingId", fb.BookingID), zap.Error(err))
	}
	s.Audit.Record(actor, "feedback_deleted", "feedback", id, "", "")
	return nil
}
