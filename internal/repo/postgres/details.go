package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ecavus/wedding-rsvp/internal/domain"
)

const detailsCols = `guest_id, full_name, phone_number, country_code, rsvp_id,
guest_relationship, household_count, food_allergies, is_visiting_venue,
arrival_date, additional_notes, responded_at, updated_at`

func scanDetails(row pgx.Row, d *domain.GuestDetails) error {
	return row.Scan(
		&d.GuestID, &d.FullName, &d.PhoneNumber, &d.CountryCode, &d.RSVPID,
		&d.GuestRelationship, &d.HouseholdCount, &d.FoodAllergies, &d.IsVisitingVenue,
		&d.ArrivalDate, &d.AdditionalNotes, &d.RespondedAt, &d.UpdatedAt,
	)
}

func (s *Store) DetailsByGuestID(ctx context.Context, guestID int64) (*domain.GuestDetails, error) {
	const q = `SELECT ` + detailsCols + ` FROM guest_rsvp_details WHERE guest_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var d domain.GuestDetails
	err := scanDetails(s.db.QueryRow(ctx, q, guestID), &d)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// DetailsByPhoneDigits matches digit-to-digit: the stored canonical number
// carries a '+' prefix that digit-stripped lookup input never has.
func (s *Store) DetailsByPhoneDigits(ctx context.Context, digits string) (*domain.GuestDetails, error) {
	const q = `SELECT ` + detailsCols + ` FROM guest_rsvp_details
WHERE regexp_replace(phone_number, '\D', '', 'g') = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var d domain.GuestDetails
	err := scanDetails(s.db.QueryRow(ctx, q, digits), &d)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDetails returns the full reporting projection, unbounded.
func (s *Store) ListDetails(ctx context.Context) ([]domain.GuestDetails, error) {
	const q = `SELECT ` + detailsCols + ` FROM guest_rsvp_details ORDER BY guest_id`
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ds := make([]domain.GuestDetails, 0)
	for rows.Next() {
		var d domain.GuestDetails
		if err := rows.Scan(
			&d.GuestID, &d.FullName, &d.PhoneNumber, &d.CountryCode, &d.RSVPID,
			&d.GuestRelationship, &d.HouseholdCount, &d.FoodAllergies, &d.IsVisitingVenue,
			&d.ArrivalDate, &d.AdditionalNotes, &d.RespondedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		ds = append(ds, d)
	}
	return ds, rows.Err()
}
