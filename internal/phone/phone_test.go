package phone

import "testing"

func TestDigits(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain digits", "1234567890", "1234567890"},
		{"dashes", "123-456-7890", "1234567890"},
		{"spaces and plus", "+1 123 456 7890", "11234567890"},
		{"parentheses", "(123) 456-7890", "1234567890"},
		{"no digits", "not-a-number", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Digits(tt.in); got != tt.want {
				t.Fatalf("Digits(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		name        string
		local       string
		countryCode string
		want        string
	}{
		{"formatted local number", "123-456-7890", "+1", "+11234567890"},
		{"already clean", "5551234567", "+44", "+445551234567"},
		{"all stripped", "abc", "+1", "+1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonical(tt.local, tt.countryCode); got != tt.want {
				t.Fatalf("Canonical(%q, %q) = %q, want %q", tt.local, tt.countryCode, got, tt.want)
			}
		})
	}
}
