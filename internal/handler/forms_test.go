package handler

import (
	"strings"
	"testing"
)

func TestDollarsToCents(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"0", 0},
		{"23500", 2350000},
		{"23500.00", 2350000},
		{"54999.50", 5499950},
		{"0.05", 5},
		{"19.9", 1990},
	}
	for _, tc := range cases {
		got, err := dollarsToCents(tc.in)
		if err != nil {
			t.Fatalf("dollarsToCents(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("dollarsToCents(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
	for _, bad := range []string{"", "-5", "12.345", "abc", "12.x"} {
		if _, err := dollarsToCents(bad); err == nil {
			t.Fatalf("dollarsToCents(%q): expected error", bad)
		}
	}
}

func TestCentsToDollarsRoundTrip(t *testing.T) {
	for _, cents := range []uint64{0, 5, 99, 100, 5499950} {
		back, err := dollarsToCents(centsToDollars(cents))
		if err != nil {
			t.Fatalf("round trip %d: %v", cents, err)
		}
		if back != cents {
			t.Fatalf("round trip %d came back as %d", cents, back)
		}
	}
}

func TestValidateReviewFields(t *testing.T) {
	if errs := validateReviewFields("Great car", "Ten chars minimum met here.", 5); len(errs) != 0 {
		t.Fatalf("valid review rejected: %v", errs)
	}
	if errs := validateReviewFields("", "short", 0); len(errs) != 3 {
		t.Fatalf("expected three errors, got %v", errs)
	}
	if errs := validateReviewFields(strings.Repeat("x", 101), strings.Repeat("y", 1001), 6); len(errs) != 3 {
		t.Fatalf("expected three upper-bound errors, got %v", errs)
	}
	// Boundary values are all accepted.
	if errs := validateReviewFields(strings.Repeat("x", 100), strings.Repeat("y", 1000), 1); len(errs) != 0 {
		t.Fatalf("boundary review rejected: %v", errs)
	}
	if errs := validateReviewFields("t", strings.Repeat("y", 10), 5); len(errs) != 0 {
		t.Fatalf("minimal review rejected: %v", errs)
	}
}

func TestValidateAccountFields(t *testing.T) {
	if errs := validateAccountFields("Ada", "Lovelace", "ada@example.com"); len(errs) != 0 {
		t.Fatalf("valid fields rejected: %v", errs)
	}
	for _, bad := range []string{"", "no-at-sign", "@leading.dot", "trailing@", "missing@tld"} {
		if errs := validateAccountFields("Ada", "Lovelace", bad); len(errs) == 0 {
			t.Fatalf("email %q accepted", bad)
		}
	}
}

func TestValidClassificationName(t *testing.T) {
	for _, ok := range []string{"SUV", "Classic Cars", "4x4"} {
		if !validClassificationName(ok) {
			t.Fatalf("%q rejected", ok)
		}
	}
	for _, bad := range []string{"", "Sport!", "a;b", "<script>"} {
		if validClassificationName(bad) {
			t.Fatalf("%q accepted", bad)
		}
	}
}
