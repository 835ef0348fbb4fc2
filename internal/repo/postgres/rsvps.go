package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ecavus/wedding-rsvp/internal/domain"
)

const rsvpCols = `id, guest_id, guest_relationship, household_count, food_allergies,
is_visiting_venue, arrival_date, additional_notes, created_at, updated_at`

func (s *Store) HasRSVP(ctx context.Context, guestID int64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM rsvp_responses WHERE guest_id=$1)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var exists bool
	if err := s.db.QueryRow(ctx, q, guestID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// UpsertRSVP writes the single response row for a guest. Resubmission
// overwrites every mutable field and refreshes updated_at; the unique
// constraint on guest_id keeps the relationship 1:1 under concurrency.
func (s *Store) UpsertRSVP(ctx context.Context, guestID int64, req *domain.SubmitRequest) (*domain.RSVPResponse, error) {
	const q = `INSERT INTO rsvp_responses (
    guest_id, guest_relationship, household_count, food_allergies,
    is_visiting_venue, arrival_date, additional_notes
  ) VALUES ($1,$2,$3,$4,$5,$6,$7)
  ON CONFLICT (guest_id) DO UPDATE SET
    guest_relationship = EXCLUDED.guest_relationship,
    household_count    = EXCLUDED.household_count,
    food_allergies     = EXCLUDED.food_allergies,
    is_visiting_venue  = EXCLUDED.is_visiting_venue,
    arrival_date       = EXCLUDED.arrival_date,
    additional_notes   = EXCLUDED.additional_notes,
    updated_at         = NOW()
  RETURNING ` + rsvpCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var r domain.RSVPResponse
	err := s.db.QueryRow(ctx, q, guestID,
		req.GuestRelationship, int(req.HouseholdCount), req.FoodAllergies,
		req.IsVisitingVenue, req.ArrivalDate, req.AdditionalNotes,
	).Scan(
		&r.ID, &r.GuestID, &r.GuestRelationship, &r.HouseholdCount, &r.FoodAllergies,
		&r.IsVisitingVenue, &r.ArrivalDate, &r.AdditionalNotes, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWriteFailed
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRSVPs reads the full table for the backup job.
func (s *Store) ListRSVPs(ctx context.Context) ([]domain.RSVPResponse, error) {
	const q = `SELECT ` + rsvpCols + ` FROM rsvp_responses ORDER BY id`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rs []domain.RSVPResponse
	for rows.Next() {
		var r domain.RSVPResponse
		if err := rows.Scan(
			&r.ID, &r.GuestID, &r.GuestRelationship, &r.HouseholdCount, &r.FoodAllergies,
			&r.IsVisitingVenue, &r.ArrivalDate, &r.AdditionalNotes, &r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, err
		}
		rs = append(rs, r)
	}
	return rs, rows.Err()
}
