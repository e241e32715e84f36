package daterange

import (
	"testing"
	"time"

	perr "brandpulse/internal/platform/errors"
)

var now = time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)

func TestParse_BothEmpty(t *testing.T) {
	r, err := Parse("", "", now)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r != nil {
		t.Fatalf("got %+v, want nil range for no filter", r)
	}
}

func TestParse_FullRange(t *testing.T) {
	r, err := Parse("2025-06-01", "2025-06-30", now)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.Start != time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("start = %v", r.Start)
	}
	if r.End != time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("end = %v", r.End)
	}
}

func TestParse_Defaults(t *testing.T) {
	r, err := Parse("", "2025-06-30", now)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !r.Start.Equal(time.Unix(0, 0)) {
		t.Fatalf("start = %v, want epoch default", r.Start)
	}

	r, err = Parse("2025-06-01", "", now)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !r.End.Equal(now) {
		t.Fatalf("end = %v, want now default", r.End)
	}
}

func TestParse_RFC3339(t *testing.T) {
	r, err := Parse("2025-06-01T08:30:00Z", "2025-06-01T17:00:00Z", now)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.End.Sub(r.Start) != 8*time.Hour+30*time.Minute {
		t.Fatalf("span = %v", r.End.Sub(r.Start))
	}
}

func TestParse_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
	}{
		{name: "garbage start", start: "notadate", end: ""},
		{name: "garbage end", start: "", end: "06/30/2025"},
		{name: "start after end", start: "2025-06-30", end: "2025-06-01"},
		{name: "future start", start: "2025-08-01", end: ""},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.start, tc.end, now)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !perr.IsCode(err, perr.ErrorCodeValidation) {
				t.Fatalf("code = %v, want validation", perr.CodeOf(err))
			}
		})
	}
}

func TestPreviousPeriod(t *testing.T) {
	r := Range{
		Start: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	}
	prev := r.PreviousPeriod()
	if prev.End != r.Start {
		t.Fatalf("prev.End = %v, want %v", prev.End, r.Start)
	}
	if prev.Start != time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("prev.Start = %v", prev.Start)
	}
}

func TestContains(t *testing.T) {
	r := Range{
		Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	}
	if !r.Contains(r.Start) || !r.Contains(r.End) {
		t.Fatal("range bounds are inclusive")
	}
	if r.Contains(r.End.Add(time.Second)) {
		t.Fatal("past end must be outside")
	}
}
