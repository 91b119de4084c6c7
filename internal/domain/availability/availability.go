// Package availability models a physician's recurring weekly open hours.
//
// A schedule maps lowercase weekday names to half-open local clock intervals
// written as "HH:MM-HH:MM". The package is pure and performs no I/O.
package availability

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrNoSchedule is returned when a physician never configured availability.
var ErrNoSchedule = errors.New("no availability schedule configured")

var intervalPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)-([01]\d|2[0-3]):([0-5]\d)$`)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// MalformedScheduleError reports a schedule that fails validation.
type MalformedScheduleError struct {
	Day    string
	Value  string
	Reason string
}

func (e *MalformedScheduleError) Error() string {
	switch {
	case e.Day != "" && e.Value != "":
		return fmt.Sprintf("malformed schedule: %s %q: %s", e.Day, e.Value, e.Reason)
	case e.Day != "":
		return fmt.Sprintf("malformed schedule: %s: %s", e.Day, e.Reason)
	default:
		return "malformed schedule: " + e.Reason
	}
}

// Clock is a local wall-clock time expressed in minutes after midnight.
type Clock int

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Offset returns the clock as a duration since midnight.
func (c Clock) Offset() time.Duration {
	return time.Duration(c) * time.Minute
}

// Interval is a half-open [Start, End) range of local clock times.
type Interval struct {
	Start Clock
	End   Clock
}

func (i Interval) String() string {
	return i.Start.String() + "-" + i.End.String()
}

// On anchors the interval to a calendar date in loc.
func (i Interval) On(year int, month time.Month, day int, loc *time.Location) Span {
	return Span{
		Start: time.Date(year, month, day, int(i.Start)/60, int(i.Start)%60, 0, 0, loc),
		End:   time.Date(year, month, day, int(i.End)/60, int(i.End)%60, 0, 0, loc),
	}
}

// Span is an absolute half-open time range.
type Span struct {
	Start time.Time
	End   time.Time
}

// Schedule is a validated weekly availability.
type Schedule map[time.Weekday][]Interval

// ParseInterval parses a strict "HH:MM-HH:MM" string with start before end.
func ParseInterval(s string) (Interval, error) {
	m := intervalPattern.FindStringSubmatch(s)
	if m == nil {
		return Interval{}, &MalformedScheduleError{Value: s, Reason: "expected HH:MM-HH:MM"}
	}
	iv := Interval{
		Start: clockOf(m[1], m[2]),
		End:   clockOf(m[3], m[4]),
	}
	if iv.Start >= iv.End {
		return Interval{}, &MalformedScheduleError{Value: s, Reason: "start must be before end"}
	}
	return iv, nil
}

func clockOf(hh, mm string) Clock {
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	return Clock(h*60 + m)
}

// ParseWeekday maps a lowercase weekday name to time.Weekday.
func ParseWeekday(name string) (time.Weekday, bool) {
	d, ok := weekdays[name]
	return d, ok
}

// WeekdayName is the lowercase key used in stored schedules.
func WeekdayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// Parse validates a raw weekday→intervals mapping. Intervals within a day
// are sorted and must not overlap.
func Parse(raw map[string][]string) (Schedule, error) {
	schedule := make(Schedule, len(raw))
	for name, values := range raw {
		day, ok := ParseWeekday(name)
		if !ok {
			return nil, &MalformedScheduleError{Day: name, Reason: "unknown weekday"}
		}

		intervals := make([]Interval, 0, len(values))
		for _, v := range values {
			iv, err := ParseInterval(v)
			if err != nil {
				var malformed *MalformedScheduleError
				if errors.As(err, &malformed) {
					malformed.Day = name
				}
				return nil, err
			}
			intervals = append(intervals, iv)
		}

		sort.Slice(intervals, func(i, j int) bool { return intervals[i].Start < intervals[j].Start })
		for i := 1; i < len(intervals); i++ {
			if intervals[i].Start < intervals[i-1].End {
				return nil, &MalformedScheduleError{
					Day:    name,
					Value:  intervals[i].String(),
					Reason: "overlaps " + intervals[i-1].String(),
				}
			}
		}
		schedule[day] = intervals
	}
	return schedule, nil
}

// ParseJSON decodes a stored schedule document. An empty or null document
// returns ErrNoSchedule.
func ParseJSON(data []byte) (Schedule, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil, ErrNoSchedule
	}

	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedScheduleError{Reason: err.Error()}
	}
	return Parse(raw)
}

// Raw converts the schedule back to its stored representation.
func (s Schedule) Raw() map[string][]string {
	raw := make(map[string][]string, len(s))
	for day, intervals := range s {
		values := make([]string, len(intervals))
		for i, iv := range intervals {
			values[i] = iv.String()
		}
		raw[WeekdayName(day)] = values
	}
	return raw
}

// MarshalJSON encodes the schedule in the stored representation.
func (s Schedule) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Raw())
}

// WindowsFor returns the ordered intervals for a weekday, empty if absent.
func (s Schedule) WindowsFor(day time.Weekday) []Interval {
	intervals := s[day]
	out := make([]Interval, len(intervals))
	copy(out, intervals)
	return out
}

// IsWithinAvailability reports whether [start, start+duration) lies inside a
// single configured interval of start's local weekday in loc. Spans crossing
// local midnight are never available.
func (s Schedule) IsWithinAvailability(start time.Time, loc *time.Location, durationMinutes int) bool {
	if durationMinutes <= 0 || loc == nil {
		return false
	}

	localStart := start.In(loc)
	localEnd := start.Add(time.Duration(durationMinutes) * time.Minute).In(loc)

	sy, sm, sd := localStart.Date()
	ey, em, ed := localEnd.Date()
	if sy != ey || sm != em || sd != ed {
		return false
	}

	startOffset := clockOffset(localStart)
	endOffset := clockOffset(localEnd)
	for _, iv := range s[localStart.Weekday()] {
		if iv.Start.Offset() <= startOffset && endOffset <= iv.End.Offset() {
			return true
		}
	}
	return false
}

// FreeIntervals returns the windows of the given local date minus busy spans,
// in chronological order.
func (s Schedule) FreeIntervals(year int, month time.Month, day int, loc *time.Location, busy []Span) []Span {
	date := time.Date(year, month, day, 0, 0, 0, 0, loc)

	sorted := make([]Span, len(busy))
	copy(sorted, busy)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	var free []Span
	for _, iv := range s[date.Weekday()] {
		window := iv.On(year, month, day, loc)
		cursor := window.Start
		for _, b := range sorted {
			if !b.Start.Before(window.End) || !b.End.After(cursor) {
				continue
			}
			if b.Start.After(cursor) {
				free = append(free, Span{Start: cursor, End: b.Start})
			}
			if b.End.After(cursor) {
				cursor = b.End
			}
		}
		if cursor.Before(window.End) {
			free = append(free, Span{Start: cursor, End: window.End})
		}
	}
	return free
}

func clockOffset(t time.Time) time.Duration {
	h, m, sec := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second + time.Duration(t.Nanosecond())
}
