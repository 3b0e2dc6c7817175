package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	timeslotRepo "istishara/database/repository/timeslot"
	"istishara/models"
	"istishara/services/audit"
	"istishara/services/booking"
	"istishara/utils"
)

// ScheduleService manages the advisor's published time slots.
type ScheduleService interface {
	CreateSlot(ctx context.Context, offeringID string, start, end time.Time, actor string) (*models.TimeSlot, error)
	DeleteSlot(ctx context.Context, slotID, actor string) error
	ListAvailable(ctx context.Context, offeringID string, from time.Time) ([]models.TimeSlot, error)
	ListByOffering(ctx context.Context, offeringID string) ([]models.TimeSlot, error)
}

type DefaultScheduleService struct {
	Repo  timeslotRepo.TimeSlotRepository
	Audit *audit.Recorder
}

// CreateSlot publishes a new bookable interval. The interval must be
// non-empty and must not overlap any existing slot of the offering.
func (s *DefaultScheduleService) CreateSlot(ctx context.Context, offeringID string, start, end time.Time, actor string) (*models.TimeSlot, error) {
	start = start.UTC()
	end = end.UTC()
	if !end.After(start) {
		return nil, booking.NewError(booking.CodeInvalidInterval,
			"slot end %s must be after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	slot := &models.TimeSlot{
		ID:          uuid.New().String(),
		OfferingID:  offeringID,
		Start:       start,
		End:         end,
		IsAvailable: true,
		Version:     0,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, slot); err != nil {
		if errors.Is(err, timeslotRepo.ErrOverlap) {
			return nil, booking.NewError(booking.CodeInvalidInterval,
				"slot %s - %s overlaps an existing slot", start.Format(time.RFC3339), end.Format(time.RFC3339))
		}
		return nil, err
	}

	utils.GetLogger().Info("slot published",
		zap.String("slotId", slot.ID),
		zap.String("offeringId", offeringID),
		zap.Time("start", start))
	s.Audit.Record(actor, "slot_created", "timeslot", slot.ID, "", "available")
	return slot, nil
}

// DeleteSlot removes a slot. Slots referenced by a non-cancelled
// booking are protected.
func (s *DefaultScheduleService) DeleteSlot(ctx context.Context, slotID, actor string) error {
	if err := s.Repo.Delete(ctx, slotID); err != nil {
		switch {
		case errors.Is(err, timeslotRepo.ErrNotFound):
			return booking.NewError(booking.CodeNotFound, "slot %s not found", slotID)
		case errors.Is(err, timeslotRepo.ErrSlotInUse):
			return booking.NewError(booking.CodeSlotInUse, "slot %s is referenced by an active booking", slotID)
		}
		return err
	}
	s.Audit.Record(actor, "slot_deleted", "timeslot", slotID, "", "")
	return nil
}

func (s *DefaultScheduleService) ListAvailable(ctx context.Context, offeringID string, from time.Time) ([]models.TimeSlot, error) {
	return s.Repo.ListAvailable(ctx, offeringID, from.UTC())
}

func (s *DefaultScheduleService) ListByOffering(ctx context.Context, offeringID string) ([]models.TimeSlot, error) {
	return s.Repo.ListByOffering(ctx, offeringID)
}
