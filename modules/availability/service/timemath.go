package service

import (
	"fmt"
	"sort"
	"time"
)

// Interval is a half-open [Start, End) span of UTC instants. All interval
// arithmetic in the engine goes through the helpers below so boundary
// behavior stays consistent: touching intervals do not overlap.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) IsEmpty() bool {
	return !iv.Start.Before(iv.End)
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Overlaps reports whether two half-open intervals share any instant.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Contains reports whether the instant falls inside the interval.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// Clock is a wall-clock time of day, minute resolution.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" in 24-hour form.
func ParseClock(s string) (Clock, error) {
	var c Clock
	if len(s) != 5 || s[2] != ':' {
		return c, fmt.Errorf("invalid clock time %q, want HH:MM", s)
	}
	if _, err := fmt.Sscanf(s, "%02d:%02d", &c.Hour, &c.Minute); err != nil {
		return c, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
		return c, fmt.Errorf("clock time %q out of range", s)
	}
	return c, nil
}

func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// LocalDate is an organizer-local calendar day.
type LocalDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseLocalDate parses "YYYY-MM-DD".
func ParseLocalDate(s string) (LocalDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return LocalDate{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", s, err)
	}
	return LocalDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d LocalDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d LocalDate) Next() LocalDate {
	t := time.Date(d.Year, d.Month, d.Day+1, 0, 0, 0, 0, time.UTC)
	return LocalDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d LocalDate) Prev() LocalDate {
	t := time.Date(d.Year, d.Month, d.Day-1, 0, 0, 0, 0, time.UTC)
	return LocalDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// After reports whether d is a later calendar day than other.
func (d LocalDate) After(other LocalDate) bool {
	if d.Year != other.Year {
		return d.Year > other.Year
	}
	if d.Month != other.Month {
		return d.Month > other.Month
	}
	return d.Day > other.Day
}

// Weekday returns the day of week (0=Sunday) of the date in the given zone.
func (d LocalDate) Weekday(loc *time.Location) int {
	return int(time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, loc).Weekday())
}

// LocalDateOf returns the calendar day an instant falls on in the given zone.
func LocalDateOf(t time.Time, loc *time.Location) LocalDate {
	lt := t.In(loc)
	return LocalDate{Year: lt.Year(), Month: lt.Month(), Day: lt.Day()}
}

// InstantOf converts an organizer-local wall-clock time on a calendar day to
// a UTC instant. Times that fall into a DST spring-forward gap normalize to
// the first valid instant after the gap; times repeated by a fall-back
// transition resolve to the first occurrence. Both come from time.Date's
// normalization, so slot instants stay deterministic across transitions.
func InstantOf(d LocalDate, c Clock, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, 0, 0, loc).UTC()
}

// MidnightOf returns the UTC instant of local midnight starting day d.
func MidnightOf(d LocalDate, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc).UTC()
}

// MergeOverlapping sorts intervals by start and coalesces every overlapping
// or touching pair. Empty intervals are dropped. The input is not modified.
func MergeOverlapping(list []Interval) []Interval {
	in := make([]Interval, 0, len(list))
	for _, iv := range list {
		if !iv.IsEmpty() {
			in = append(in, iv)
		}
	}
	if len(in) == 0 {
		return nil
	}
	sort.Slice(in, func(i, j int) bool { return in[i].Start.Before(in[j].Start) })

	out := []Interval{in[0]}
	for _, iv := range in[1:] {
		last := &out[len(out)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// Subtract removes b from a, yielding zero, one or two remaining pieces.
func Subtract(a, b Interval) []Interval {
	if !a.Overlaps(b) {
		if a.IsEmpty() {
			return nil
		}
		return []Interval{a}
	}
	var out []Interval
	if a.Start.Before(b.Start) {
		out = append(out, Interval{Start: a.Start, End: b.Start})
	}
	if b.End.Before(a.End) {
		out = append(out, Interval{Start: b.End, End: a.End})
	}
	return out
}

// SubtractAll removes every removal interval from every base interval.
// The result is sorted and non-overlapping when the base is.
func SubtractAll(base []Interval, removals []Interval) []Interval {
	out := base
	for _, r := range removals {
		if r.IsEmpty() {
			continue
		}
		next := make([]Interval, 0, len(out))
		for _, iv := range out {
			next = append(next, Subtract(iv, r)...)
		}
		out = next
	}
	return out
}

// ClipAll intersects every interval with the given bounds, dropping what
// falls outside.
func ClipAll(base []Interval, bounds Interval) []Interval {
	out := make([]Interval, 0, len(base))
	for _, iv := range base {
		if iv.Start.Before(bounds.Start) {
			iv.Start = bounds.Start
		}
		if iv.End.After(bounds.End) {
			iv.End = bounds.End
		}
		if !iv.IsEmpty() {
			out = append(out, iv)
		}
	}
	return out
}
