package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ecavus/wedding-rsvp/internal/domain"
)

const guestCols = `id, full_name, phone_number, country_code, created_at, updated_at`

func (s *Store) GuestByPhone(ctx context.Context, phoneNumber string) (*domain.Guest, error) {
	const q = `SELECT ` + guestCols + ` FROM guests WHERE phone_number=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var g domain.Guest
	err := s.db.QueryRow(ctx, q, phoneNumber).Scan(
		&g.ID, &g.FullName, &g.PhoneNumber, &g.CountryCode, &g.CreatedAt, &g.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGuest inserts a guest row. The unique constraint on phone_number
// owns the at-most-one-guest-per-phone invariant; a concurrent insert of
// the same number yields (nil, nil) and the caller re-reads the winner.
func (s *Store) CreateGuest(ctx context.Context, fullName, phoneNumber, countryCode string) (*domain.Guest, error) {
	const q = `INSERT INTO guests (full_name, phone_number, country_code)
VALUES ($1,$2,$3)
ON CONFLICT (phone_number) DO NOTHING
RETURNING ` + guestCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var g domain.Guest
	err := s.db.QueryRow(ctx, q, fullName, phoneNumber, countryCode).Scan(
		&g.ID, &g.FullName, &g.PhoneNumber, &g.CountryCode, &g.CreatedAt, &g.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGuests reads the full table for the backup job.
func (s *Store) ListGuests(ctx context.Context) ([]domain.Guest, error) {
	const q = `SELECT ` + guestCols + ` FROM guests ORDER BY id`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gs []domain.Guest
	for rows.Next() {
		var g domain.Guest
		if err := rows.Scan(
			&g.ID, &g.FullName, &g.PhoneNumber, &g.CountryCode, &g.CreatedAt, &g.UpdatedAt,
		); err != nil {
			return nil, err
		}
		gs = append(gs, g)
	}
	return gs, rows.Err()
}
