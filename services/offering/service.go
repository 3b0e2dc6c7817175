package offering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	offeringRepo "istishara/database/repository/offering"
	"istishara/models"
	"istishara/services/audit"
	"istishara/services/booking"
)

// OfferingService is the admin surface for the consultation catalogue.
type OfferingService interface {
	Create(ctx context.Context, offering *models.ConsultationOffering, actor string) (*models.ConsultationOffering, error)
	Get(ctx context.Context, id string) (*models.ConsultationOffering, error)
	List(ctx context.Context, activeOnly bool) ([]models.ConsultationOffering, error)
	Update(ctx context.Context, offering *models.ConsultationOffering, actor string) (*models.ConsultationOffering, error)
	SetActive(ctx context.Context, id string, active bool, actor string) error
}

type DefaultOfferingService struct {
	Repo  offeringRepo.OfferingRepository
	Audit *audit.Recorder
}

func validate(o *models.ConsultationOffering) error {
	if o.Title == "" {
		return fmt.Errorf("offering title is required")
	}
	if o.Price < 0 {
		return fmt.Errorf("offering price must not be negative")
	}
	if o.DurationMinutes <= 0 {
		return fmt.Errorf("offering duration must be positive")
	}
	if o.Currency == "" {
		o.Currency = "SAR"
	}
	return nil
}

func (s *DefaultOfferingService) Create(ctx context.Context, o *models.ConsultationOffering, actor string) (*models.ConsultationOffering, error) {
	if err := validate(o); err != nil {
		return nil, err
	}
	o.ID = uuid.New().String()
	o.Active = true
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	if err := s.Repo.Create(ctx, o); err != nil {
		return nil, err
	}
	s.Audit.Record(actor, "offering_created", "offering", o.ID, "", "active")
	return o, nil
}

func (s *DefaultOfferingService) Get(ctx context.Context, id string) (*models.ConsultationOffering, error) {
	o, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, offeringRepo.ErrNotFound) {
		return nil, booking.NewError(booking.CodeNotFound, "offering %s not found", id)
	}
	return o, err
}

func (s *DefaultOfferingService) List(ctx context.Context, activeOnly bool) ([]models.ConsultationOffering, error) {
	return s.Repo.List(ctx, activeOnly)
}

// Update edits catalogue fields. Bookings carry their own price
// snapshot, so in-flight bookings are unaffected.
func (s *DefaultOfferingService) Update(ctx context.Context, o *models.ConsultationOffering, actor string) (*models.ConsultationOffering, error) {
	if err := validate(o); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, o); err != nil {
		if errors.Is(err, offeringRepo.ErrNotFound) {
			return nil, booking.NewError(booking.CodeNotFound, "offering %s not found", o.ID)
		}
		return nil, err
	}
	s.Audit.Record(actor, "offering_updated", "offering", o.ID, "", "")
	return s.Repo.GetByID(ctx, o.ID)
}

// SetActive toggles visibility. Deactivation blocks new reservations
// only; published slots and existing bookings are untouched.
func (s *DefaultOfferingService) SetActive(ctx context.Context, id string, active bool, actor string) error {
	if err := s.Repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, offeringRepo.ErrNotFound) {
			return booking.NewError(booking.CodeNotFound, "offering %s not found", id)
		}
		return err
	}
	to := "inactive"
	if active {
		to = "active"
	}
	s.Audit.Record(actor, "offering_visibility", "offering", id, "", to)
	return nil
}
