package domain

import (
	"fmt"
	"time"
)

// ErrInvalidPeriod indicates an unrecognized season code or month name.
var ErrInvalidPeriod = fmt.Errorf("invalid period")

// Period filters observations by calendar month membership. It is either a
// meteorological season (three fixed months, irrespective of year) or a
// single month.
type Period struct {
	label  string
	months [13]bool // Indexed by time.Month (1-12).
}

// seasonMonths maps season codes to their calendar months.
var seasonMonths = map[string][]time.Month{
	"DJF": {time.December, time.January, time.February},
	"MAM": {time.March, time.April, time.May},
	"JJA": {time.June, time.July, time.August},
	"SON": {time.September, time.October, time.November},
}

// ParsePeriod parses a season code (DJF, MAM, JJA, SON) or a long-form
// English month name ("January"). Month names are case-sensitive.
func ParsePeriod(s string) (Period, error) {
	if months, ok := seasonMonths[s]; ok {
		p := Period{label: s}
		for _, m := range months {
			p.months[m] = true
		}
		return p, nil
	}

	for m := time.January; m <= time.December; m++ {
		if m.String() == s {
			p := Period{label: s}
			p.months[m] = true
			return p, nil
		}
	}

	return Period{}, fmt.Errorf("%w: %q is not a season code or month name", ErrInvalidPeriod, s)
}

// Label returns the string the period was parsed from.
func (p Period) Label() string {
	return p.label
}

// Contains reports whether t falls inside the period. Membership is by
// calendar month only.
func (p Period) Contains(t time.Time) bool {
	return p.months[t.Month()]
}
