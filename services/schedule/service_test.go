package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	timeslotRepo "istishara/database/repository/timeslot"
	"istishara/models"
	"istishara/services/audit"
	"istishara/services/booking"
)

type stubSlotRepo struct {
	mu    sync.Mutex
	slots map[string]*models.TimeSlot
	inUse map[string]bool
}

func newStubSlotRepo() *stubSlotRepo {
	return &stubSlotRepo{
		slots: make(map[string]*models.TimeSlot),
		inUse: make(map[string]bool),
	}
}

func (r *stubSlotRepo) Create(ctx context.Context, slot *models.TimeSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.slots {
		if s.OfferingID == slot.OfferingID && s.Start.Before(slot.End) && s.End.After(slot.Start) {
			return timeslotRepo.ErrOverlap
		}
	}
	cp := *slot
	r.slots[slot.ID] = &cp
	return nil
}

func (r *stubSlotRepo) GetByID(ctx context.Context, slotID string) (*models.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotID]
	if !ok {
		return nil, timeslotRepo.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSlotRepo) ListAvailable(ctx context.Context, offeringID string, from time.Time) ([]models.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TimeSlot
	for _, s := range r.slots {
		if s.OfferingID == offeringID && s.IsAvailable && s.Start.After(from) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSlotRepo) ListByOffering(ctx context.Context, offeringID string) ([]models.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TimeSlot
	for _, s := range r.slots {
		if s.OfferingID == offeringID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSlotRepo) MarkAvailable(ctx context.Context, slotID string) error   { return nil }
func (r *stubSlotRepo) MarkUnavailable(ctx context.Context, slotID string) error { return nil }

func (r *stubSlotRepo) Delete(ctx context.Context, slotID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slots[slotID]; !ok {
		return timeslotRepo.ErrNotFound
	}
	if r.inUse[slotID] {
		return timeslotRepo.ErrSlotInUse
	}
	delete(r.slots, slotID)
	return nil
}

func (r *stubSlotRepo) EnsureIndexes() error { return nil }

func testScheduleService() (*DefaultScheduleService, *stubSlotRepo) {
	repo := newStubSlotRepo()
	return &DefaultScheduleService{
		Repo:  repo,
		Audit: audit.NewRecorder(nil, zap.NewNop()),
	}, repo
}

func TestCreateSlot(t *testing.T) {
	svc, _ := testScheduleService()
	start := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	slot, err := svc.CreateSlot(context.Background(), "off-1", start, start.Add(time.Hour), "admin")
	if err != nil {
		t.Fatalf("CreateSlot failed: %v", err)
	}
	if !slot.IsAvailable {
		t.Error("new slot not marked available")
	}
	if !slot.Start.Equal(start) || !slot.End.Equal(start.Add(time.Hour)) {
		t.Errorf("slot interval = [%v, %v), want [%v, %v)", slot.Start, slot.End, start, start.Add(time.Hour))
	}
}

func TestCreateSlotRejectsBadInterval(t *testing.T) {
	svc, _ := testScheduleService()
	start := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
	}{
		{"end before start", start.Add(-time.Hour)},
		{"empty interval", start},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSlot(context.Background(), "off-1", start, tt.end, "admin")
			if !booking.IsCode(err, booking.CodeInvalidInterval) {
				t.Fatalf("err = %v, want code %s", err, booking.CodeInvalidInterval)
			}
		})
	}
}

func TestCreateSlotRejectsOverlap(t *testing.T) {
	svc, _ := testScheduleService()
	start := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	if _, err := svc.CreateSlot(context.Background(), "off-1", start, start.Add(time.Hour), "admin"); err != nil {
		t.Fatalf("first CreateSlot failed: %v", err)
	}

	tests := []struct {
		name       string
		start, end time.Time
		wantErr    bool
	}{
		{"identical interval", start, start.Add(time.Hour), true},
		{"starts inside", start.Add(30 * time.Minute), start.Add(90 * time.Minute), true},
		{"ends inside", start.Add(-30 * time.Minute), start.Add(30 * time.Minute), true},
		{"covers entirely", start.Add(-time.Hour), start.Add(2 * time.Hour), true},
		{"back to back after", start.Add(time.Hour), start.Add(2 * time.Hour), false},
		{"back to back before", start.Add(-time.Hour), start, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSlot(context.Background(), "off-1", tt.start, tt.end, "admin")
			if tt.wantErr && !booking.IsCode(err, booking.CodeInvalidInterval) {
				t.Fatalf("err = %v, want code %s", err, booking.CodeInvalidInterval)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("CreateSlot failed: %v", err)
			}
		})
	}
}

func TestDeleteSlot(t *testing.T) {
	svc, repo := testScheduleService()
	start := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	slot, err := svc.CreateSlot(context.Background(), "off-1", start, start.Add(time.Hour), "admin")
	if err != nil {
		t.Fatalf("CreateSlot failed: %v", err)
	}

	if err := svc.DeleteSlot(context.Background(), slot.ID, "admin"); err != nil {
		t.Fatalf("DeleteSlot failed: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), slot.ID); err == nil {
		t.Fatal("slot still present after delete")
	}
}

func TestDeleteSlotInUse(t *testing.T) {
	svc, repo := testScheduleService()
	start := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	slot, err := svc.CreateSlot(context.Background(), "off-1", start, start.Add(time.Hour), "admin")
	if err != nil {
		t.Fatalf("CreateSlot failed: %v", err)
	}
	repo.inUse[slot.ID] = true

	err = svc.DeleteSlot(context.Background(), slot.ID, "admin")
	if !booking.IsCode(err, booking.CodeSlotInUse) {
		t.Fatalf("err = %v, want code %s", err, booking.CodeSlotInUse)
	}
}

func TestDeleteSlotNotFound(t *testing.T) {
	svc, _ := testScheduleService()
	err := svc.DeleteSlot(context.Background(), "missing", "admin")
	if !booking.IsCode(err, booking.CodeNotFound) {
		t.Fatalf("err = %v, want code %s", err, booking.CodeNotFound)
	}
}
