package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ecavus/wedding-rsvp/internal/domain"
	"github.com/ecavus/wedding-rsvp/internal/phone"
	"github.com/ecavus/wedding-rsvp/internal/platform/mailer"
	"github.com/ecavus/wedding-rsvp/pkg/events"
	"github.com/ecavus/wedding-rsvp/pkg/logger"
)

type RSVPService interface {
	Submit(ctx context.Context, req *domain.SubmitRequest) (*domain.Record, error)
	FindByPhone(ctx context.Context, rawPhone string) (*domain.Record, error)
	FindByGuestID(ctx context.Context, guestID int64) (*domain.GuestDetails, error)
	ListAll(ctx context.Context) ([]domain.GuestDetails, error)
}

type rsvpService struct {
	store     domain.Store
	publisher events.Publisher
	mailer    mailer.Service
	notifyTo  string
	notifyAs  string
}

type Option func(*rsvpService)

// WithNotifications sends the couple an email after each submission.
func WithNotifications(m mailer.Service, toEmail, toName string) Option {
	return func(s *rsvpService) {
		s.mailer = m
		s.notifyTo = toEmail
		s.notifyAs = toName
	}
}

func New(store domain.Store, publisher events.Publisher, opts ...Option) RSVPService {
	s := &rsvpService{
		store:     store,
		publisher: publisher,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit runs the whole upsert as one unit of work: validation first, then
// guest lookup-or-create keyed by the canonical phone number, then the
// create-or-overwrite of the guest's single RSVP row, then a re-read of the
// joined projection. A failure at any step rolls back every write.
func (s *rsvpService) Submit(ctx context.Context, req *domain.SubmitRequest) (*domain.Record, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	canonical := req.CanonicalPhone()
	fullName := strings.TrimSpace(req.FullName)

	var (
		details    *domain.GuestDetails
		wasUpdated bool
	)
	err := s.store.Transaction(ctx, func(tx domain.Store) error {
		guest, err := tx.GuestByPhone(ctx, canonical)
		if err != nil {
			return fmt.Errorf("guest lookup: %w", err)
		}
		if guest == nil {
			guest, err = tx.CreateGuest(ctx, fullName, canonical, req.CountryCode)
			if err != nil {
				return fmt.Errorf("guest create: %w", err)
			}
			if guest == nil {
				// Lost an insert race; the winning row is the identity.
				guest, err = tx.GuestByPhone(ctx, canonical)
				if err != nil {
					return fmt.Errorf("guest re-read: %w", err)
				}
				if guest == nil {
					return domain.ErrWriteFailed
				}
			}
		}
		// An existing guest keeps its stored name and country code;
		// the phone number is the durable identity.

		wasUpdated, err = tx.HasRSVP(ctx, guest.ID)
		if err != nil {
			return fmt.Errorf("rsvp lookup: %w", err)
		}

		if _, err := tx.UpsertRSVP(ctx, guest.ID, req); err != nil {
			return fmt.Errorf("rsvp write: %w", err)
		}

		// Re-read the joined projection so the response reflects
		// store-maintained columns.
		details, err = tx.DetailsByGuestID(ctx, guest.ID)
		if err != nil {
			return fmt.Errorf("details re-read: %w", err)
		}
		if details == nil {
			return domain.ErrWriteFailed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(details, wasUpdated)

	return details.Record(wasUpdated), nil
}

func (s *rsvpService) FindByPhone(ctx context.Context, rawPhone string) (*domain.Record, error) {
	digits := phone.Digits(rawPhone)
	if digits == "" {
		return nil, domain.ErrInvalidPhone
	}

	details, err := s.store.DetailsByPhoneDigits(ctx, digits)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, domain.ErrNotFound
	}
	return details.Record(false), nil
}

func (s *rsvpService) FindByGuestID(ctx context.Context, guestID int64) (*domain.GuestDetails, error) {
	details, err := s.store.DetailsByGuestID(ctx, guestID)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, domain.ErrNotFound
	}
	return details, nil
}

func (s *rsvpService) ListAll(ctx context.Context) ([]domain.GuestDetails, error) {
	return s.store.ListDetails(ctx)
}

// notify fans out the post-commit side effects. Both are best effort: a
// failed event or email never fails the submission.
func (s *rsvpService) notify(details *domain.GuestDetails, wasUpdated bool) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		event := events.RSVPSubmittedEvent{
			GuestID:        details.GuestID,
			FullName:       details.FullName,
			PhoneNumber:    details.PhoneNumber,
			Relationship:   string(details.GuestRelationship),
			HouseholdCount: details.HouseholdCount,
			WasUpdated:     wasUpdated,
			SubmittedAt:    details.UpdatedAt,
		}
		if err := s.publisher.Publish(ctx, events.RSVPSubmitted, event); err != nil {
			logger.Error("Failed to publish rsvp.submitted event", "error", err, "guest_id", details.GuestID)
		}

		if s.mailer == nil || s.notifyTo == "" {
			return
		}

		verb := "submitted"
		if wasUpdated {
			verb = "updated"
		}
		subject := fmt.Sprintf("RSVP %s: %s", verb, details.FullName)
		text := fmt.Sprintf(
			"%s (%s) %s an RSVP.\nRelationship: %s\nHousehold: %d\nVisiting venue: %t",
			details.FullName, details.PhoneNumber, verb,
			details.GuestRelationship, details.HouseholdCount, details.IsVisitingVenue,
		)
		if _, err := s.mailer.Send(s.notifyTo, s.notifyAs, subject, text, ""); err != nil {
			logger.Error("Failed to send RSVP notification", "error", err, "guest_id", details.GuestID)
		}
	}()
}
