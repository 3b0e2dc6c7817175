package booking

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	bookingRepo "istishara/database/repository/booking"
	offeringRepo "istishara/database/repository/offering"
	timeslotRepo "istishara/database/repository/timeslot"
	"istishara/models"
	"istishara/services/audit"
)

// memDB backs the in-memory repository fakes. Both fakes share one
// instance so slot claims and booking writes stay coupled, mirroring
// the transactional repository.
type memDB struct {
	mu       sync.Mutex
	slots    map[string]*models.TimeSlot
	bookings map[string]*models.Booking
}

func newMemDB() *memDB {
	return &memDB{
		slots:    make(map[string]*models.TimeSlot),
		bookings: make(map[string]*models.Booking),
	}
}

func (db *memDB) putSlot(s models.TimeSlot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	cp := s
	db.slots[s.ID] = &cp
}

func (db *memDB) putBooking(b models.Booking) {
	db.mu.Lock()
	defer db.mu.Unlock()
	cp := b
	db.bookings[b.ID] = &cp
}

type fakeSlotRepo struct{ db *memDB }

func (r *fakeSlotRepo) Create(ctx context.Context, slot *models.TimeSlot) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.slots {
		if s.OfferingID == slot.OfferingID && s.Start.Before(slot.End) && s.End.After(slot.Start) {
			return timeslotRepo.ErrOverlap
		}
	}
	cp := *slot
	r.db.slots[slot.ID] = &cp
	return nil
}

func (r *fakeSlotRepo) GetByID(ctx context.Context, slotID string) (*models.TimeSlot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.slots[slotID]
	if !ok {
		return nil, timeslotRepo.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSlotRepo) ListAvailable(ctx context.Context, offeringID string, from time.Time) ([]models.TimeSlot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.TimeSlot
	for _, s := range r.db.slots {
		if s.OfferingID == offeringID && s.IsAvailable && s.Start.After(from) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSlotRepo) ListByOffering(ctx context.Context, offeringID string) ([]models.TimeSlot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.TimeSlot
	for _, s := range r.db.slots {
		if s.OfferingID == offeringID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSlotRepo) MarkAvailable(ctx context.Context, slotID string) error {
	return r.setAvailability(slotID, true)
}

func (r *fakeSlotRepo) MarkUnavailable(ctx context.Context, slotID string) error {
	return r.setAvailability(slotID, false)
}

func (r *fakeSlotRepo) setAvailability(slotID string, available bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.slots[slotID]
	if !ok {
		return timeslotRepo.ErrNotFound
	}
	if s.IsAvailable != available {
		s.IsAvailable = available
		s.Version++
	}
	return nil
}

func (r *fakeSlotRepo) Delete(ctx context.Context, slotID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.slots[slotID]; !ok {
		return timeslotRepo.ErrNotFound
	}
	for _, b := range r.db.bookings {
		if b.SlotID == slotID && b.Status != models.BookingStatusCancelled {
			return timeslotRepo.ErrSlotInUse
		}
	}
	delete(r.db.slots, slotID)
	return nil
}

func (r *fakeSlotRepo) EnsureIndexes() error { return nil }

type fakeBookingRepo struct{ db *memDB }

func (r *fakeBookingRepo) ReserveWithSlot(ctx context.Context, b *models.Booking) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.slots[b.SlotID]
	if !ok || !s.IsAvailable {
		return bookingRepo.ErrSlotUnavailable
	}
	s.IsAvailable = false
	s.Version++
	cp := *b
	r.db.bookings[b.ID] = &cp
	return nil
}

func (r *fakeBookingRepo) ApplyTransition(ctx context.Context, t bookingRepo.StatusTransition) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b, ok := r.db.bookings[t.BookingID]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if b.Status != t.From {
		return bookingRepo.ErrStaleStatus
	}
	if t.ClaimSlotID != "" {
		s, ok := r.db.slots[t.ClaimSlotID]
		if !ok || !s.IsAvailable {
			return bookingRepo.ErrSlotUnavailable
		}
		s.IsAvailable = false
		s.Version++
	}
	if t.ReleaseSlotID != "" {
		if s, ok := r.db.slots[t.ReleaseSlotID]; ok && !s.IsAvailable {
			s.IsAvailable = true
			s.Version++
		}
	}
	for k, v := range t.SetFields {
		switch k {
		case "paymentStatus":
			b.PaymentStatus = v.(models.PaymentStatus)
		case "transactionId":
			b.TransactionID = v.(string)
		case "slotId":
			b.SlotID = v.(string)
		case "cancelledAt":
			tm := v.(time.Time)
			b.CancelledAt = &tm
		case "completedAt":
			tm := v.(time.Time)
			b.CompletedAt = &tm
		case "confirmedStart":
			if v == nil {
				b.ConfirmedStart = nil
			} else {
				tm := v.(time.Time)
				b.ConfirmedStart = &tm
			}
		}
	}
	b.Status = t.To
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b, ok := r.db.bookings[bookingID]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) ListByRequester(ctx context.Context, requesterID string, page, pageSize int64) ([]models.Booking, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.Booking
	for _, b := range r.db.bookings {
		if b.RequesterID == requesterID {
			out = append(out, *b)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) ListAdmin(ctx context.Context, f bookingRepo.AdminFilter) ([]models.Booking, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.Booking
	for _, b := range r.db.bookings {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(b.BookingNumber, f.Search) &&
			!strings.Contains(b.RequesterName, f.Search) && !strings.Contains(b.RequesterEmail, f.Search) {
			continue
		}
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) SetFeedbackRef(ctx context.Context, bookingID, feedbackID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b, ok := r.db.bookings[bookingID]
	if !ok {
		return false, bookingRepo.ErrNotFound
	}
	if b.FeedbackID != "" {
		return false, nil
	}
	b.FeedbackID = feedbackID
	return true, nil
}

func (r *fakeBookingRepo) ClearFeedbackRef(ctx context.Context, bookingID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if b, ok := r.db.bookings[bookingID]; ok {
		b.FeedbackID = ""
	}
	return nil
}

func (r *fakeBookingRepo) ListPendingPaymentBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.Booking
	for _, b := range r.db.bookings {
		if b.Status == models.BookingStatusPendingPayment && b.CreatedAt.Before(cutoff) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) CountActiveForOfferingOn(ctx context.Context, offeringID string, day time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	y, m, d := day.UTC().Date()
	var n int64
	for _, b := range r.db.bookings {
		if b.OfferingID != offeringID || b.Status == models.BookingStatusCancelled {
			continue
		}
		by, bm, bd := b.RequestedStart.UTC().Date()
		if y == by && m == bm && d == bd {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) EnsureIndexes() error { return nil }

type fakeOfferingRepo struct {
	mu        sync.Mutex
	offerings map[string]*models.ConsultationOffering
}

func newFakeOfferingRepo() *fakeOfferingRepo {
	return &fakeOfferingRepo{offerings: make(map[string]*models.ConsultationOffering)}
}

func (r *fakeOfferingRepo) put(o models.ConsultationOffering) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := o
	r.offerings[o.ID] = &cp
}

func (r *fakeOfferingRepo) Create(ctx context.Context, o *models.ConsultationOffering) error {
	r.put(*o)
	return nil
}

func (r *fakeOfferingRepo) GetByID(ctx context.Context, id string) (*models.ConsultationOffering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.offerings[id]
	if !ok {
		return nil, offeringRepo.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOfferingRepo) List(ctx context.Context, activeOnly bool) ([]models.ConsultationOffering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ConsultationOffering
	for _, o := range r.offerings {
		if activeOnly && !o.Active {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (r *fakeOfferingRepo) Update(ctx context.Context, o *models.ConsultationOffering) error {
	r.put(*o)
	return nil
}

func (r *fakeOfferingRepo) SetActive(ctx context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.offerings[id]
	if !ok {
		return offeringRepo.ErrNotFound
	}
	o.Active = active
	return nil
}

// fakeGateway answers charges from a fixed script, one entry per call,
// repeating the last entry once the script runs out.
type fakeGateway struct {
	mu      sync.Mutex
	script  []chargeStep
	calls   int
	lastReq models.ChargeRequest
}

type chargeStep struct {
	result *models.ChargeResult
	err    error
}

func (g *fakeGateway) Charge(ctx context.Context, req models.ChargeRequest) (*models.ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastReq = req
	i := g.calls
	if i >= len(g.script) {
		i = len(g.script) - 1
	}
	g.calls++
	step := g.script[i]
	return step.result, step.err
}

func succeedingGateway() *fakeGateway {
	return &fakeGateway{script: []chargeStep{
		{result: &models.ChargeResult{Status: models.ChargeSucceeded, TransactionID: "pi_test"}},
	}}
}

type fakeScheduler struct {
	mu        sync.Mutex
	scheduled []string
}

func (s *fakeScheduler) ScheduleExpiry(ctx context.Context, bookingID string, delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, bookingID)
	return nil
}

// testService wires a DefaultBookingService over shared in-memory state.
func testService(gw PaymentGateway) (*DefaultBookingService, *memDB) {
	db := newMemDB()
	svc := &DefaultBookingService{
		Repo:              &fakeBookingRepo{db: db},
		SlotRepo:          &fakeSlotRepo{db: db},
		OfferingRepo:      newFakeOfferingRepo(),
		Gateway:           gw,
		Audit:             audit.NewRecorder(nil, zap.NewNop()),
		Expiry:            &fakeScheduler{},
		PaymentGrace:      15 * time.Minute,
		PaymentMaxRetries: 1,
	}
	return svc, db
}
