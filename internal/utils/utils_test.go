package utils

import "testing"

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "user.name@example.com", "x+tag@sub.example.org"}
	for _, e := range valid {
		if !IsValidEmail(e) {
			t.Errorf("IsValidEmail(%q) = false, want true", e)
		}
	}
	invalid := []string{"", "plain", "@b.co", "a@", "a@b", "a@@b.co", "a b@c.co", "a@b."}
	for _, e := range invalid {
		if IsValidEmail(e) {
			t.Errorf("IsValidEmail(%q) = true, want false", e)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct{ in, want string }{
		{"+1 (415) 555-0123", "+14155550123"},
		{"4155550123", "4155550123"},
		{"555-0123", ""},                   // too short
		{"12345678901234567890", ""},      // too long
		{"+7 912 345 67 89", "+79123456789"},
	}
	for _, tc := range cases {
		if got := NormalizePhone(tc.in); got != tc.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
