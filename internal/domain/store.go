package domain

import "context"

// Store is the persistence surface for guests and their RSVPs. Transaction
// runs fn against a store whose operations share one transaction; returning
// an error rolls back every write made through it.
type Store interface {
	Transaction(ctx context.Context, fn func(Store) error) error

	GuestByPhone(ctx context.Context, phoneNumber string) (*Guest, error)
	// CreateGuest inserts a guest keyed by canonical phone number. It
	// returns (nil, nil) when another row already owns the number.
	CreateGuest(ctx context.Context, fullName, phoneNumber, countryCode string) (*Guest, error)

	HasRSVP(ctx context.Context, guestID int64) (bool, error)
	UpsertRSVP(ctx context.Context, guestID int64, req *SubmitRequest) (*RSVPResponse, error)

	DetailsByGuestID(ctx context.Context, guestID int64) (*GuestDetails, error)
	DetailsByPhoneDigits(ctx context.Context, digits string) (*GuestDetails, error)
	ListDetails(ctx context.Context) ([]GuestDetails, error)
}
