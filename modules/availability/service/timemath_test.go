package service

import (
	"testing"
	"time"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%s): %v", name, err)
	}
	return loc
}

func utc(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func iv(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{in: "09:00", want: Clock{Hour: 9}},
		{in: "23:59", want: Clock{Hour: 23, Minute: 59}},
		{in: "00:00", want: Clock{}},
		{in: "24:00", wantErr: true},
		{in: "9:00", wantErr: true},
		{in: "09:60", wantErr: true},
		{in: "0900", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseClock(%q) expected error, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClock(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseClock(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIntervalOverlaps(t *testing.T) {
	a := iv(utc(2026, 3, 2, 9, 0), utc(2026, 3, 2, 10, 0))

	tests := []struct {
		name string
		b    Interval
		want bool
	}{
		{name: "identical", b: a, want: true},
		{name: "touching at end", b: iv(utc(2026, 3, 2, 10, 0), utc(2026, 3, 2, 11, 0)), want: false},
		{name: "touching at start", b: iv(utc(2026, 3, 2, 8, 0), utc(2026, 3, 2, 9, 0)), want: false},
		{name: "one minute overlap", b: iv(utc(2026, 3, 2, 9, 59), utc(2026, 3, 2, 11, 0)), want: true},
		{name: "contained", b: iv(utc(2026, 3, 2, 9, 15), utc(2026, 3, 2, 9, 45)), want: true},
		{name: "disjoint", b: iv(utc(2026, 3, 2, 12, 0), utc(2026, 3, 2, 13, 0)), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInstantOf(t *testing.T) {
	ny := mustLoc(t, "America/New_York")

	// EST is UTC-5, so 09:00 local is 14:00 UTC.
	got := InstantOf(LocalDate{2026, time.January, 5}, Clock{Hour: 9}, ny)
	if want := utc(2026, 1, 5, 14, 0); !got.Equal(want) {
		t.Errorf("EST 09:00 = %v, want %v", got, want)
	}

	// EDT is UTC-4.
	got = InstantOf(LocalDate{2026, time.June, 1}, Clock{Hour: 9}, ny)
	if want := utc(2026, 6, 1, 13, 0); !got.Equal(want) {
		t.Errorf("EDT 09:00 = %v, want %v", got, want)
	}

	// 2026-03-08 02:30 does not exist in New York (spring forward at 02:00).
	// The instant normalizes forward past the gap.
	got = InstantOf(LocalDate{2026, time.March, 8}, Clock{Hour: 2, Minute: 30}, ny)
	if want := utc(2026, 3, 8, 7, 30); !got.Equal(want) {
		t.Errorf("DST gap 02:30 = %v, want %v", got, want)
	}
}

func TestLocalDateHelpers(t *testing.T) {
	d := LocalDate{2026, time.February, 28}
	if got := d.Next(); got != (LocalDate{2026, time.March, 1}) {
		t.Errorf("Next across month = %v", got)
	}
	if got := (LocalDate{2026, time.March, 1}).Prev(); got != d {
		t.Errorf("Prev across month = %v", got)
	}
	if got := (LocalDate{2024, time.February, 28}).Next(); got != (LocalDate{2024, time.February, 29}) {
		t.Errorf("Next leap day = %v", got)
	}

	ny := mustLoc(t, "America/New_York")
	// 2026-03-02 is a Monday.
	if got := (LocalDate{2026, time.March, 2}).Weekday(ny); got != 1 {
		t.Errorf("Weekday = %d, want 1", got)
	}

	// 2026-03-03 01:30 UTC is still 2026-03-02 in New York.
	if got := LocalDateOf(utc(2026, 3, 3, 1, 30), ny); got != (LocalDate{2026, time.March, 2}) {
		t.Errorf("LocalDateOf = %v", got)
	}
}

func TestMergeOverlapping(t *testing.T) {
	tests := []struct {
		name string
		in   []Interval
		want []Interval
	}{
		{
			name: "empty",
			in:   nil,
			want: nil,
		},
		{
			name: "disjoint stay separate",
			in: []Interval{
				iv(utc(2026, 3, 2, 9, 0), utc(2026, 3, 2, 10, 0)),
				iv(utc(2026, 3, 2, 11, 0), utc(2026, 3, 2, 12, 0)),
			},
			want: []Interval{
				iv(utc(2026, 3, 2, 9, 0), utc(2026, 3, 2, 10, 0)),
				iv(utc(2026, 3, 2, 11, 0), utc(2026, 3, 2, 12, 0)),
			},
		},
		{
			name: "overlapping merge",
			in: []Interval{
				iv(utc(2026, 3, 2, 9, 0), utc(2026, 3, 2, 11, 0)),
				iv(utc(2026, 3, 2, 10, 0), utc(2026, 3, 2, 12, 0)),
			},
			want: []Interval{
				iv(utc(2026, 3, 2, 9, 0), utc(2026, 3, 2, 12, 0)),
			},
		},
		{
			name: "touching merge",
			in: []Interval{
				iv(utc(2026, 3, 2, 9, 0), utc(2026, 3, 2, 10, 0)),
				iv(utc(2026, 3, 2, 10, 0), utc(2026, 3, 2, 11, 0)),
			},
			want: []Interval{
				iv(utc(2026, 3, 2, 9, 0), utc(2026, 3, 2, 11, 0)),
			},
		},
		{
			name: "unsorted input with empty interval",
			in: []Interval{
				iv(utc(2026, 3, 2, 11, 0), utc(2026, 3, 2, 12, 0)),
				iv(utc(2026, 3, 2, 9, 0), utc(2026, 3, 2, 9, 0)),
				iv(utc(2026, 3, 2, 8, 0), utc(2026, 3, 2, 11, 30)),
			},
			want: []Interval{
				iv(utc(2026, 3, 2, 8, 0), utc(2026, 3, 2, 12, 0)),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeOverlapping(tt.in)
			assertIntervals(t, got, tt.want)
		})
	}
}

func TestSubtract(t *testing.T) {
	a := iv(utc(2026, 3, 2, 9, 0), utc(2026, 3, 2, 17, 0))

	tests := []struct {
		name string
		b    Interval
		want []Interval
	}{
		{
			name: "disjoint leaves base",
			b:    iv(utc(2026, 3, 2, 18, 0), utc(2026, 3, 2, 19, 0)),
			want: []Interval{a},
		},
		{
			name: "middle splits in two",
			b:    iv(utc(2026, 3, 2, 12, 0), utc(2026, 3, 2, 13, 0)),
			want: []Interval{
				iv(utc(2026, 3, 2, 9, 0), utc(2026, 3, 2, 12, 0)),
				iv(utc(2026, 3, 2, 13, 0), utc(2026, 3, 2, 17, 0)),
			},
		},
		{
			name: "leading edge trims start",
			b:    iv(utc(2026, 3, 2, 8, 0), utc(2026, 3, 2, 10, 0)),
			want: []Interval{iv(utc(2026, 3, 2, 10, 0), utc(2026, 3, 2, 17, 0))},
		},
		{
			name: "trailing edge trims end",
			b:    iv(utc(2026, 3, 2, 16, 0), utc(2026, 3, 2, 20, 0)),
			want: []Interval{iv(utc(2026, 3, 2, 9, 0), utc(2026, 3, 2, 16, 0))},
		},
		{
			name: "covering removes everything",
			b:    iv(utc(2026, 3, 2, 0, 0), utc(2026, 3, 3, 0, 0)),
			want: nil,
		},
		{
			name: "touching at boundary removes nothing",
			b:    iv(utc(2026, 3, 2, 17, 0), utc(2026, 3, 2, 18, 0)),
			want: []Interval{a},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Subtract(a, tt.b)
			assertIntervals(t, got, tt.want)
		})
	}
}

func TestSubtractAll(t *testing.T) {
	base := []Interval{
		iv(utc(2026, 3, 2, 9, 0), utc(2026, 3, 2, 12, 0)),
		iv(utc(2026, 3, 2, 13, 0), utc(2026, 3, 2, 17, 0)),
	}
	removals := []Interval{
		iv(utc(2026, 3, 2, 10, 0), utc(2026, 3, 2, 10, 30)),
		iv(utc(2026, 3, 2, 11, 30), utc(2026, 3, 2, 13, 30)),
	}
	want := []Interval{
		iv(utc(2026, 3, 2, 9, 0), utc(2026, 3, 2, 10, 0)),
		iv(utc(2026, 3, 2, 10, 30), utc(2026, 3, 2, 11, 30)),
		iv(utc(2026, 3, 2, 13, 30), utc(2026, 3, 2, 17, 0)),
	}
	assertIntervals(t, SubtractAll(base, removals), want)
}

func TestClipAll(t *testing.T) {
	base := []Interval{
		iv(utc(2026, 3, 2, 8, 0), utc(2026, 3, 2, 10, 0)),
		iv(utc(2026, 3, 2, 12, 0), utc(2026, 3, 2, 14, 0)),
		iv(utc(2026, 3, 2, 17, 0), utc(2026, 3, 2, 19, 0)),
	}
	bounds := iv(utc(2026, 3, 2, 9, 0), utc(2026, 3, 2, 18, 0))
	want := []Interval{
		iv(utc(2026, 3, 2, 9, 0), utc(2026, 3, 2, 10, 0)),
		iv(utc(2026, 3, 2, 12, 0), utc(2026, 3, 2, 14, 0)),
		iv(utc(2026, 3, 2, 17, 0), utc(2026, 3, 2, 18, 0)),
	}
	assertIntervals(t, ClipAll(base, bounds), want)
}

func assertIntervals(t *testing.T, got, want []Interval) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d intervals, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Errorf("interval %d = [%v, %v), want [%v, %v)",
				i, got[i].Start, got[i].End, want[i].Start, want[i].End)
		}
	}
}
