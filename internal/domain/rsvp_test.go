package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func validRequest() *SubmitRequest {
	return &SubmitRequest{
		FullName:          "John Doe",
		PhoneNumber:       "1234567890",
		CountryCode:       "+1",
		GuestRelationship: "friend",
		HouseholdCount:    2,
	}
}

func TestSubmitRequest_Validate(t *testing.T) {
	if err := validRequest().Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*SubmitRequest)
		field  string
	}{
		{"name too short", func(r *SubmitRequest) { r.FullName = "J" }, "fullName"},
		{"name with bad characters", func(r *SubmitRequest) { r.FullName = "John <script>" }, "fullName"},
		{"phone too short", func(r *SubmitRequest) { r.PhoneNumber = "12345" }, "phoneNumber"},
		{"phone all letters", func(r *SubmitRequest) { r.PhoneNumber = "invalid" }, "phoneNumber"},
		{"country code without plus", func(r *SubmitRequest) { r.CountryCode = "1" }, "countryCode"},
		{"country code too long", func(r *SubmitRequest) { r.CountryCode = "+12345" }, "countryCode"},
		{"unknown relationship", func(r *SubmitRequest) { r.GuestRelationship = "cousin" }, "guest_relationship"},
		{"household too small", func(r *SubmitRequest) { r.HouseholdCount = 0 }, "householdCount"},
		{"household too large", func(r *SubmitRequest) { r.HouseholdCount = 11 }, "householdCount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := req.Validate()
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, ve.Field)
			}
		})
	}
}

func TestSubmitRequest_ValidateAccentedName(t *testing.T) {
	req := validRequest()
	req.FullName = "José O'Brien-Núñez"
	if err := req.Validate(); err != nil {
		t.Fatalf("accented name rejected: %v", err)
	}
}

func TestSubmitRequest_ValidateFormattedPhone(t *testing.T) {
	// Formatting characters do not count against the digit range.
	req := validRequest()
	req.PhoneNumber = "123-456-7890"
	if err := req.Validate(); err != nil {
		t.Fatalf("formatted phone rejected: %v", err)
	}
}

func TestHouseholdCount_Coercion(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{"integer", `{"householdCount": 3}`, 3, false},
		{"numeric string", `{"householdCount": "3"}`, 3, false},
		{"padded string", `{"householdCount": " 7 "}`, 7, false},
		{"non-numeric string", `{"householdCount": "abc"}`, 0, true},
		{"boolean", `{"householdCount": true}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req SubmitRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.wantErr {
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if int(req.HouseholdCount) != tt.want {
				t.Fatalf("got %d, want %d", req.HouseholdCount, tt.want)
			}
		})
	}
}

func TestHouseholdCount_RangeAfterCoercion(t *testing.T) {
	// "0" and 11 decode fine but fail validation.
	for _, body := range []string{`"0"`, `11`} {
		var req = validRequest()
		if err := json.Unmarshal([]byte(`{"householdCount": `+body+`}`), &struct {
			HouseholdCount *HouseholdCount `json:"householdCount"`
		}{&req.HouseholdCount}); err != nil {
			t.Fatalf("unmarshal %s: %v", body, err)
		}
		if err := req.Validate(); err == nil {
			t.Fatalf("household count %s passed validation", body)
		}
	}
}

func TestCanonicalPhone(t *testing.T) {
	req := validRequest()
	req.PhoneNumber = "123-456-7890"
	if got := req.CanonicalPhone(); got != "+11234567890" {
		t.Fatalf("got %q, want %q", got, "+11234567890")
	}
}
