// Package daterange parses and validates optional reporting windows
package daterange

import (
	"time"

	perr "brandpulse/internal/platform/errors"
)

// Range is a closed reporting window [Start, End]
type Range struct {
	Start time.Time `json:"startDate"`
	End   time.Time `json:"endDate"`
}

// layouts accepted for query-string bounds
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

func parseBound(s string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Parse builds a Range from optional ISO-8601 query bounds. Both empty
// yields (nil, nil) meaning no filter. Start defaults to the epoch, end to
// now. Invalid formats, start after end, and a future start are rejected
// with validation errors.
func Parse(start, end string, now time.Time) (*Range, error) {
	if start == "" && end == "" {
		return nil, nil
	}

	s := time.Unix(0, 0).UTC()
	if start != "" {
		var ok bool
		if s, ok = parseBound(start); !ok {
			return nil, perr.Newf(perr.ErrorCodeValidation,
				"invalid start date format, use ISO 8601 (YYYY-MM-DD or YYYY-MM-DDTHH:mm:ssZ)")
		}
	}

	e := now.UTC()
	if end != "" {
		var ok bool
		if e, ok = parseBound(end); !ok {
			return nil, perr.Newf(perr.ErrorCodeValidation,
				"invalid end date format, use ISO 8601 (YYYY-MM-DD or YYYY-MM-DDTHH:mm:ssZ)")
		}
	}

	if s.After(e) {
		return nil, perr.Newf(perr.ErrorCodeValidation, "start date must be before or equal to end date")
	}
	if s.After(now) {
		return nil, perr.Newf(perr.ErrorCodeValidation, "start date cannot be in the future")
	}

	return &Range{Start: s, End: e}, nil
}

// PreviousPeriod shifts the range back by its own duration for
// period-over-period comparisons
func (r Range) PreviousPeriod() Range {
	d := r.End.Sub(r.Start)
	return Range{Start: r.Start.Add(-d), End: r.Start}
}

// Contains reports whether t falls inside the closed range
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}
