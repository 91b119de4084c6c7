package availability

import (
	"errors"
	"testing"
	"time"
)

// 2030-01-07 is a Monday.
func monday(hour, minute int) time.Time {
	return time.Date(2030, time.January, 7, hour, minute, 0, 0, time.UTC)
}

func mustParse(t *testing.T, raw map[string][]string) Schedule {
	t.Helper()
	s, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return s
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in      string
		want    Interval
		wantErr bool
	}{
		{in: "09:00-12:00", want: Interval{Start: 540, End: 720}},
		{in: "00:00-23:59", want: Interval{Start: 0, End: 1439}},
		{in: "9:00-12:00", wantErr: true},
		{in: "09:00-24:00", wantErr: true},
		{in: "09:60-10:00", wantErr: true},
		{in: "12:00-09:00", wantErr: true},
		{in: "10:00-10:00", wantErr: true},
		{in: "09:00 - 12:00", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInterval(tt.in)
			if tt.wantErr {
				var malformed *MalformedScheduleError
				if !errors.As(err, &malformed) {
					t.Fatalf("ParseInterval(%q) error = %v, want MalformedScheduleError", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseInterval(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseInterval(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseRejectsOverlapsAndUnknownDays(t *testing.T) {
	cases := map[string]map[string][]string{
		"overlap":      {"monday": {"09:00-12:00", "11:00-13:00"}},
		"unknown day":  {"funday": {"09:00-12:00"}},
		"capitalized":  {"Monday": {"09:00-12:00"}},
		"bad interval": {"tuesday": {"09:00-12:00", "nope"}},
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(raw); err == nil {
				t.Fatalf("Parse(%v) expected error", raw)
			}
		})
	}
}

func TestParseSortsIntervalsAndAllowsTouching(t *testing.T) {
	s := mustParse(t, map[string][]string{"monday": {"13:00-17:00", "09:00-13:00"}})

	got := s.WindowsFor(time.Monday)
	if len(got) != 2 || got[0].String() != "09:00-13:00" || got[1].String() != "13:00-17:00" {
		t.Fatalf("WindowsFor(monday) = %v", got)
	}
	if len(s.WindowsFor(time.Sunday)) != 0 {
		t.Errorf("WindowsFor(sunday) should be empty")
	}
}

func TestParseJSON(t *testing.T) {
	if _, err := ParseJSON(nil); !errors.Is(err, ErrNoSchedule) {
		t.Errorf("ParseJSON(nil) error = %v, want ErrNoSchedule", err)
	}
	if _, err := ParseJSON([]byte("null")); !errors.Is(err, ErrNoSchedule) {
		t.Errorf("ParseJSON(null) error = %v, want ErrNoSchedule", err)
	}

	var malformed *MalformedScheduleError
	if _, err := ParseJSON([]byte(`{"monday": "09:00-12:00"}`)); !errors.As(err, &malformed) {
		t.Errorf("ParseJSON(non-list) error = %v, want MalformedScheduleError", err)
	}

	s, err := ParseJSON([]byte(`{"monday": ["09:00-12:00"], "friday": []}`))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	raw := s.Raw()
	if len(raw["monday"]) != 1 || raw["monday"][0] != "09:00-12:00" {
		t.Errorf("Raw() = %v", raw)
	}
}

func TestIsWithinAvailability(t *testing.T) {
	s := mustParse(t, map[string][]string{
		"monday":  {"09:00-12:00", "14:00-18:00"},
		"tuesday": {"00:00-23:59"},
	})

	tests := []struct {
		name     string
		start    time.Time
		duration int
		want     bool
	}{
		{"window start", monday(9, 0), 30, true},
		{"ends at window close", monday(11, 30), 30, true},
		{"exceeds window close", monday(11, 45), 30, false},
		{"before opening", monday(8, 45), 30, false},
		{"spans lunch gap", monday(11, 30), 180, false},
		{"second window", monday(14, 0), 60, true},
		{"no entry for day", monday(9, 0).AddDate(0, 0, 2), 30, false},
		{"zero duration", monday(9, 0), 0, false},
		{"crosses midnight", monday(23, 50).AddDate(0, 0, 1), 30, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.IsWithinAvailability(tt.start, time.UTC, tt.duration); got != tt.want {
				t.Errorf("IsWithinAvailability(%v, %d) = %v, want %v", tt.start, tt.duration, got, tt.want)
			}
		})
	}
}

func TestIsWithinAvailabilityUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*60*60)
	s := mustParse(t, map[string][]string{"monday": {"09:00-12:00"}})

	// 02:00 UTC is 09:00 local.
	if !s.IsWithinAvailability(monday(2, 0), loc, 30) {
		t.Errorf("expected 09:00 local to be available")
	}
	if s.IsWithinAvailability(monday(9, 0), loc, 30) {
		t.Errorf("09:00 UTC is 16:00 local and should be unavailable")
	}
}

func TestFreeIntervals(t *testing.T) {
	s := mustParse(t, map[string][]string{"monday": {"09:00-12:00", "14:00-16:00"}})

	busy := []Span{
		{Start: monday(10, 0), End: monday(10, 30)},
		{Start: monday(9, 0), End: monday(9, 30)},
		{Start: monday(14, 0), End: monday(16, 0)},
	}
	got := s.FreeIntervals(2030, time.January, 7, time.UTC, busy)

	want := []Span{
		{Start: monday(9, 30), End: monday(10, 0)},
		{Start: monday(10, 30), End: monday(12, 0)},
	}
	if len(got) != len(want) {
		t.Fatalf("FreeIntervals() = %v, want %v", got, want)
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Errorf("FreeIntervals()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
