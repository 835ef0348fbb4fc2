package domain

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ecavus/wedding-rsvp/internal/phone"
)

type Relationship string

const (
	RelationshipBride  Relationship = "bride"
	RelationshipGroom  Relationship = "groom"
	RelationshipFriend Relationship = "friend"
)

func ParseRelationship(s string) (Relationship, bool) {
	switch Relationship(s) {
	case RelationshipBride, RelationshipGroom, RelationshipFriend:
		return Relationship(s), true
	default:
		return "", false
	}
}

// Guest is one row of the guests table. The canonical phone number is the
// business key; the surrogate id exists for joins.
type Guest struct {
	ID          int64     `json:"id"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number"`
	CountryCode string    `json:"country_code"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RSVPResponse is the single response row kept per guest.
type RSVPResponse struct {
	ID                int64        `json:"id"`
	GuestID           int64        `json:"guest_id"`
	GuestRelationship Relationship `json:"guest_relationship"`
	HouseholdCount    int          `json:"household_count"`
	FoodAllergies     *string      `json:"food_allergies"`
	IsVisitingVenue   bool         `json:"is_visiting_venue"`
	ArrivalDate       *string      `json:"arrival_date"`
	AdditionalNotes   *string      `json:"additional_notes"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// GuestDetails is one row of the guest_rsvp_details reporting view.
type GuestDetails struct {
	GuestID           int64        `json:"guest_id"`
	FullName          string       `json:"full_name"`
	PhoneNumber       string       `json:"phone_number"`
	CountryCode       string       `json:"country_code"`
	RSVPID            int64        `json:"rsvp_id"`
	GuestRelationship Relationship `json:"guest_relationship"`
	HouseholdCount    int          `json:"household_count"`
	FoodAllergies     *string      `json:"food_allergies"`
	IsVisitingVenue   bool         `json:"is_visiting_venue"`
	ArrivalDate       *string      `json:"arrival_date"`
	AdditionalNotes   *string      `json:"additional_notes"`
	RespondedAt       time.Time    `json:"responded_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// Record is the API shape returned by the /rsvp endpoints.
type Record struct {
	ID                int64   `json:"id"`
	FullName          string  `json:"fullName"`
	PhoneNumber       string  `json:"phoneNumber"`
	CountryCode       string  `json:"countryCode"`
	GuestRelationship string  `json:"guest_relationship"`
	HouseholdCount    int     `json:"householdCount"`
	FoodAllergies     *string `json:"foodAllergies"`
	IsVisitingVenue   bool    `json:"isVisitingVenue"`
	ArrivalDate       *string `json:"arrivalDate"`
	AdditionalNotes   *string `json:"additionalNotes"`
	WasUpdated        bool    `json:"wasUpdated"`
}

func (d *GuestDetails) Record(wasUpdated bool) *Record {
	return &Record{
		ID:                d.RSVPID,
		FullName:          d.FullName,
		PhoneNumber:       d.PhoneNumber,
		CountryCode:       d.CountryCode,
		GuestRelationship: string(d.GuestRelationship),
		HouseholdCount:    d.HouseholdCount,
		FoodAllergies:     d.FoodAllergies,
		IsVisitingVenue:   d.IsVisitingVenue,
		ArrivalDate:       d.ArrivalDate,
		AdditionalNotes:   d.AdditionalNotes,
		WasUpdated:        wasUpdated,
	}
}

// HouseholdCount accepts either a JSON number or a numeric string, the way
// web forms tend to send it.
type HouseholdCount int

func (h *HouseholdCount) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*h = HouseholdCount(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return validationErr("householdCount", "must be a valid integer between 1 and 10")
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return validationErr("householdCount", "must be a valid integer between 1 and 10")
	}
	*h = HouseholdCount(n)
	return nil
}

// SubmitRequest is the POST /rsvp/ body.
type SubmitRequest struct {
	FullName          string         `json:"fullName"`
	PhoneNumber       string         `json:"phoneNumber"`
	CountryCode       string         `json:"countryCode"`
	GuestRelationship string         `json:"guest_relationship"`
	HouseholdCount    HouseholdCount `json:"householdCount"`
	FoodAllergies     *string        `json:"foodAllergies"`
	IsVisitingVenue   bool           `json:"isVisitingVenue"`
	ArrivalDate       *string        `json:"arrivalDate"`
	AdditionalNotes   *string        `json:"additionalNotes"`
}

var (
	fullNameRe    = regexp.MustCompile(`^[a-zA-ZÀ-ÿ0-9\s'-]+$`)
	countryCodeRe = regexp.MustCompile(`^\+\d{1,4}$`)
)

// Validate rejects a malformed request before any storage access.
func (r *SubmitRequest) Validate() error {
	name := strings.TrimSpace(r.FullName)
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return validationErr("fullName", "must be between 2 and 100 characters")
	}
	if !fullNameRe.MatchString(name) {
		return validationErr("fullName", "may only contain letters, digits, spaces, apostrophes and hyphens")
	}

	digits := phone.Digits(r.PhoneNumber)
	if len(digits) < 10 || len(digits) > 20 {
		return validationErr("phoneNumber", "must contain between 10 and 20 digits")
	}

	if !countryCodeRe.MatchString(r.CountryCode) {
		return validationErr("countryCode", "must be '+' followed by 1 to 4 digits")
	}

	if _, ok := ParseRelationship(r.GuestRelationship); !ok {
		return validationErr("guest_relationship", "must be one of 'bride', 'groom' or 'friend'")
	}

	if r.HouseholdCount < 1 || r.HouseholdCount > 10 {
		return validationErr("householdCount", "must be a valid integer between 1 and 10")
	}

	return nil
}

// CanonicalPhone derives the guest identity key for this submission.
func (r *SubmitRequest) CanonicalPhone() string {
	return phone.Canonical(r.PhoneNumber, r.CountryCode)
}
