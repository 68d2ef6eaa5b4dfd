package domain

import (
	"errors"
	"testing"
	"time"
)

// TestParsePeriod_Seasons checks the four season codes and their month sets.
func TestParsePeriod_Seasons(t *testing.T) {
	tests := []struct {
		code   string
		months []time.Month
	}{
		{"DJF", []time.Month{time.December, time.January, time.February}},
		{"MAM", []time.Month{time.March, time.April, time.May}},
		{"JJA", []time.Month{time.June, time.July, time.August}},
		{"SON", []time.Month{time.September, time.October, time.November}},
	}

	for _, tt := range tests {
		p, err := ParsePeriod(tt.code)
		if err != nil {
			t.Fatalf("ParsePeriod(%s): %v", tt.code, err)
		}
		if p.Label() != tt.code {
			t.Errorf("label: expected %s, got %s", tt.code, p.Label())
		}
		want := make(map[time.Month]bool, 3)
		for _, m := range tt.months {
			want[m] = true
		}
		for m := time.January; m <= time.December; m++ {
			ts := time.Date(2000, m, 15, 0, 0, 0, 0, time.UTC)
			if p.Contains(ts) != want[m] {
				t.Errorf("%s.Contains(%s): expected %v", tt.code, m, want[m])
			}
		}
	}
}

// TestParsePeriod_Months checks long-form month names, including that
// membership ignores the year.
func TestParsePeriod_Months(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		p, err := ParsePeriod(m.String())
		if err != nil {
			t.Fatalf("ParsePeriod(%s): %v", m, err)
		}
		if !p.Contains(time.Date(1995, m, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("%s should contain 1995-%02d", m, m)
		}
		if !p.Contains(time.Date(2020, m, 28, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("%s should contain 2020-%02d", m, m)
		}
		other := m%12 + 1
		if p.Contains(time.Date(2000, other, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("%s should not contain month %s", m, other)
		}
	}
}

// TestParsePeriod_Invalid checks rejection of unknown strings and
// case-sensitivity of month names.
func TestParsePeriod_Invalid(t *testing.T) {
	for _, s := range []string{"Foobar", "january", "djf", "Jan", ""} {
		if _, err := ParsePeriod(s); !errors.Is(err, ErrInvalidPeriod) {
			t.Errorf("ParsePeriod(%q): expected ErrInvalidPeriod, got %v", s, err)
		}
	}
}
