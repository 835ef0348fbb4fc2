package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ecavus/wedding-rsvp/internal/domain"
	"github.com/ecavus/wedding-rsvp/internal/phone"
	"github.com/ecavus/wedding-rsvp/pkg/events"
)

// ---------- Fake store ----------

type fakeStore struct {
	nextGuestID int64
	nextRSVPID  int64
	guests      map[string]*domain.Guest       // canonical phone -> guest
	rsvps       map[int64]*domain.RSVPResponse // guest id -> rsvp

	// loseCreateRace makes the next CreateGuest behave as if a concurrent
	// insert won the unique-constraint race.
	loseCreateRace bool
	raceWinner     *domain.Guest

	writes int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextGuestID: 1,
		nextRSVPID:  1,
		guests:      make(map[string]*domain.Guest),
		rsvps:       make(map[int64]*domain.RSVPResponse),
	}
}

func (f *fakeStore) Transaction(_ context.Context, fn func(domain.Store) error) error {
	return fn(f)
}

func (f *fakeStore) GuestByPhone(_ context.Context, phoneNumber string) (*domain.Guest, error) {
	if g, ok := f.guests[phoneNumber]; ok {
		return g, nil
	}
	return nil, nil
}

func (f *fakeStore) CreateGuest(_ context.Context, fullName, phoneNumber, countryCode string) (*domain.Guest, error) {
	f.writes++
	if f.loseCreateRace {
		f.loseCreateRace = false
		f.guests[phoneNumber] = f.raceWinner
		return nil, nil
	}
	if _, ok := f.guests[phoneNumber]; ok {
		return nil, nil
	}
	g := &domain.Guest{
		ID:          f.nextGuestID,
		FullName:    fullName,
		PhoneNumber: phoneNumber,
		CountryCode: countryCode,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.nextGuestID++
	f.guests[phoneNumber] = g
	return g, nil
}

func (f *fakeStore) HasRSVP(_ context.Context, guestID int64) (bool, error) {
	_, ok := f.rsvps[guestID]
	return ok, nil
}

func (f *fakeStore) UpsertRSVP(_ context.Context, guestID int64, req *domain.SubmitRequest) (*domain.RSVPResponse, error) {
	f.writes++
	rel, _ := domain.ParseRelationship(req.GuestRelationship)
	if r, ok := f.rsvps[guestID]; ok {
		r.GuestRelationship = rel
		r.HouseholdCount = int(req.HouseholdCount)
		r.FoodAllergies = req.FoodAllergies
		r.IsVisitingVenue = req.IsVisitingVenue
		r.ArrivalDate = req.ArrivalDate
		r.AdditionalNotes = req.AdditionalNotes
		r.UpdatedAt = time.Now()
		return r, nil
	}
	r := &domain.RSVPResponse{
		ID:                f.nextRSVPID,
		GuestID:           guestID,
		GuestRelationship: rel,
		HouseholdCount:    int(req.HouseholdCount),
		FoodAllergies:     req.FoodAllergies,
		IsVisitingVenue:   req.IsVisitingVenue,
		ArrivalDate:       req.ArrivalDate,
		AdditionalNotes:   req.AdditionalNotes,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	f.nextRSVPID++
	f.rsvps[guestID] = r
	return r, nil
}

func (f *fakeStore) DetailsByGuestID(_ context.Context, guestID int64) (*domain.GuestDetails, error) {
	for _, g := range f.guests {
		if g.ID != guestID {
			continue
		}
		r, ok := f.rsvps[guestID]
		if !ok {
			return nil, nil
		}
		return joinDetails(g, r), nil
	}
	return nil, nil
}

func (f *fakeStore) DetailsByPhoneDigits(ctx context.Context, digits string) (*domain.GuestDetails, error) {
	for _, g := range f.guests {
		if phone.Digits(g.PhoneNumber) == digits {
			return f.DetailsByGuestID(ctx, g.ID)
		}
	}
	return nil, nil
}

func (f *fakeStore) ListDetails(ctx context.Context) ([]domain.GuestDetails, error) {
	var out []domain.GuestDetails
	for _, g := range f.guests {
		if d, _ := f.DetailsByGuestID(ctx, g.ID); d != nil {
			out = append(out, *d)
		}
	}
	return out, nil
}

func joinDetails(g *domain.Guest, r *domain.RSVPResponse) *domain.GuestDetails {
	return &domain.GuestDetails{
		GuestID:           g.ID,
		FullName:          g.FullName,
		PhoneNumber:       g.PhoneNumber,
		CountryCode:       g.CountryCode,
		RSVPID:            r.ID,
		GuestRelationship: r.GuestRelationship,
		HouseholdCount:    r.HouseholdCount,
		FoodAllergies:     r.FoodAllergies,
		IsVisitingVenue:   r.IsVisitingVenue,
		ArrivalDate:       r.ArrivalDate,
		AdditionalNotes:   r.AdditionalNotes,
		RespondedAt:       r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

var _ domain.Store = (*fakeStore)(nil)

// ---------- Tests ----------

func validSubmit() *domain.SubmitRequest {
	return &domain.SubmitRequest{
		FullName:          "John Doe",
		PhoneNumber:       "1234567890",
		CountryCode:       "+1",
		GuestRelationship: "friend",
		HouseholdCount:    2,
	}
}

func newTestService(store domain.Store) RSVPService {
	return New(store, events.NoopPublisher{})
}

func TestSubmit_FirstTime_CreatesGuestAndRSVP(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	rec, err := svc.Submit(context.Background(), validSubmit())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if rec.WasUpdated {
		t.Fatal("expected wasUpdated=false on first submission")
	}
	if rec.PhoneNumber != "+11234567890" {
		t.Fatalf("expected canonical phone, got %q", rec.PhoneNumber)
	}
	if len(store.guests) != 1 || len(store.rsvps) != 1 {
		t.Fatalf("expected 1 guest and 1 rsvp, got %d and %d", len(store.guests), len(store.rsvps))
	}
}

func TestSubmit_Resubmission_OverwritesRSVPOnly(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	if _, err := svc.Submit(context.Background(), validSubmit()); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	second := validSubmit()
	second.FullName = "Johnny Doe" // must NOT rename the guest
	second.HouseholdCount = 5
	second.GuestRelationship = "bride"

	rec, err := svc.Submit(context.Background(), second)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}

	if !rec.WasUpdated {
		t.Fatal("expected wasUpdated=true on resubmission")
	}
	if len(store.guests) != 1 || len(store.rsvps) != 1 {
		t.Fatalf("expected 1 guest and 1 rsvp, got %d and %d", len(store.guests), len(store.rsvps))
	}
	if rec.FullName != "John Doe" {
		t.Fatalf("resubmission renamed the guest to %q", rec.FullName)
	}
	if rec.HouseholdCount != 5 || rec.GuestRelationship != "bride" {
		t.Fatalf("rsvp fields not overwritten: %+v", rec)
	}
}

func TestSubmit_DifferentFormattingSamePhone_IsOneGuest(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	first := validSubmit()
	first.PhoneNumber = "123-456-7890"
	if _, err := svc.Submit(context.Background(), first); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	second := validSubmit()
	second.PhoneNumber = "1234567890"
	rec, err := svc.Submit(context.Background(), second)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}

	if !rec.WasUpdated {
		t.Fatal("expected resubmission to match the existing guest")
	}
	if len(store.guests) != 1 {
		t.Fatalf("expected 1 guest, got %d", len(store.guests))
	}
}

func TestSubmit_ValidationRejectedBeforeStorage(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	req := validSubmit()
	req.GuestRelationship = "cousin"

	_, err := svc.Submit(context.Background(), req)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if store.writes != 0 {
		t.Fatalf("storage touched %d times before validation", store.writes)
	}
}

func TestSubmit_LostInsertRace_ReusesWinner(t *testing.T) {
	store := newFakeStore()
	store.loseCreateRace = true
	store.raceWinner = &domain.Guest{
		ID:          7,
		FullName:    "First Writer",
		PhoneNumber: "+11234567890",
		CountryCode: "+1",
	}
	svc := newTestService(store)

	rec, err := svc.Submit(context.Background(), validSubmit())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec.FullName != "First Writer" {
		t.Fatalf("expected the race winner's row, got %q", rec.FullName)
	}
	if len(store.guests) != 1 {
		t.Fatalf("expected 1 guest, got %d", len(store.guests))
	}
}

func TestFindByPhone_ArbitraryFormatting(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	if _, err := svc.Submit(context.Background(), validSubmit()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	rec, err := svc.FindByPhone(context.Background(), "+1 123 456 7890")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if rec.PhoneNumber != "+11234567890" {
		t.Fatalf("got %q", rec.PhoneNumber)
	}
	if rec.WasUpdated {
		t.Fatal("lookup must not report wasUpdated")
	}
}

func TestFindByPhone_NoDigits_InvalidInput(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.FindByPhone(context.Background(), "not-a-number")
	if !errors.Is(err, domain.ErrInvalidPhone) {
		t.Fatalf("expected ErrInvalidPhone, got %v", err)
	}
}

func TestFindByPhone_Unknown_NotFound(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.FindByPhone(context.Background(), "9998887777")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindByGuestID_Unknown_NotFound(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.FindByGuestID(context.Background(), 999999)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
