package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"schedulr-api/modules/availability/entity"
)

func slotStarts(slots []entity.TimeSlot) []time.Time {
	out := make([]time.Time, len(slots))
	for i, s := range slots {
		out[i] = s.StartTime
	}
	return out
}

func assertSlotStarts(t *testing.T, slots []entity.TimeSlot, want []time.Time) {
	t.Helper()
	got := slotStarts(slots)
	if len(got) != len(want) {
		t.Fatalf("got %d slots, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("slot %d starts %v, want %v", i, got[i], want[i])
		}
	}
}

func TestGenerateSlotsMondayMorning(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()
	snap := testSnapshot(weeklyRule(1, "09:00", "12:00"))

	day := LocalDate{2026, time.March, 2}
	free := FreeIntervals(snap, et, day, day, ny)
	slots := GenerateSlots(snap, et, free, ny)

	// 09:00-12:00 EST local, 30 minute duration on a 30 minute grid.
	want := []time.Time{
		utc(2026, 3, 2, 14, 0),
		utc(2026, 3, 2, 14, 30),
		utc(2026, 3, 2, 15, 0),
		utc(2026, 3, 2, 15, 30),
		utc(2026, 3, 2, 16, 0),
		utc(2026, 3, 2, 16, 30),
	}
	assertSlotStarts(t, slots, want)

	for _, s := range slots {
		if s.EndTime.Sub(s.StartTime) != 30*time.Minute {
			t.Errorf("slot %v has duration %v", s.StartTime, s.EndTime.Sub(s.StartTime))
		}
		if s.EndTime.After(utc(2026, 3, 2, 17, 0)) {
			t.Errorf("slot %v crosses the end of the window", s.StartTime)
		}
		if s.AvailableSpots != nil {
			t.Errorf("one-on-one slot %v carries spot counts", s.StartTime)
		}
	}
}

func TestGenerateSlotsGridAlignment(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()
	snap := testSnapshot(weeklyRule(1, "09:10", "11:00"))

	day := LocalDate{2026, time.March, 2}
	free := FreeIntervals(snap, et, day, day, ny)
	slots := GenerateSlots(snap, et, free, ny)

	// The window opens at 09:10 local; the first slot rounds up to 09:30.
	want := []time.Time{
		utc(2026, 3, 2, 14, 30),
		utc(2026, 3, 2, 15, 0),
		utc(2026, 3, 2, 15, 30),
	}
	assertSlotStarts(t, slots, want)
}

func TestGenerateSlotsDeduplicatesAcrossIntervals(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()
	snap := testSnapshot()

	// Two raw overlapping intervals covering the same 10:00 slot.
	free := []Interval{
		iv(utc(2026, 3, 2, 15, 0), utc(2026, 3, 2, 16, 0)),
		iv(utc(2026, 3, 2, 15, 0), utc(2026, 3, 2, 15, 30)),
	}
	slots := GenerateSlots(snap, et, free, ny)
	want := []time.Time{
		utc(2026, 3, 2, 15, 0),
		utc(2026, 3, 2, 15, 30),
	}
	assertSlotStarts(t, slots, want)
}

func TestGenerateSlotsAscendingOrder(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()
	snap := testSnapshot(
		weeklyRule(1, "09:00", "10:00"),
		weeklyRule(1, "14:00", "15:00"),
	)

	day := LocalDate{2026, time.March, 2}
	free := FreeIntervals(snap, et, day, day, ny)
	slots := GenerateSlots(snap, et, free, ny)
	for i := 1; i < len(slots); i++ {
		if !slots[i-1].StartTime.Before(slots[i].StartTime) {
			t.Errorf("slots out of order at %d: %v then %v", i, slots[i-1].StartTime, slots[i].StartTime)
		}
	}
}

func TestGenerateSlotsMaxBookingsPerDay(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()
	et.MaxBookingsPerDay = intPtr(3)

	snap := testSnapshot(weeklyRule(1, "09:00", "12:00"))
	day := LocalDate{2026, time.March, 2}
	free := FreeIntervals(snap, et, day, day, ny)

	slots := GenerateSlots(snap, et, free, ny)
	if len(slots) != 3 {
		t.Fatalf("got %d slots, want 3", len(slots))
	}

	// A confirmed booking that day shrinks the remaining quota.
	snap.Bookings = []entity.BookingHold{{
		BookingID:     uuid.New(),
		EventTypeID:   testEventTypeID,
		StartTime:     utc(2026, 3, 2, 14, 0),
		EndTime:       utc(2026, 3, 2, 14, 30),
		AttendeeCount: 1,
	}}
	free = FreeIntervals(snap, et, day, day, ny)
	slots = GenerateSlots(snap, et, free, ny)
	if len(slots) != 2 {
		t.Fatalf("after one booking got %d slots, want 2", len(slots))
	}
}

func TestGenerateSlotsGroupCapacity(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()
	et.MaxAttendees = 5

	snap := testSnapshot(weeklyRule(1, "09:00", "10:00"))
	// Three attendees already confirmed on the 09:00 slot.
	snap.Bookings = []entity.BookingHold{{
		BookingID:     uuid.New(),
		EventTypeID:   testEventTypeID,
		StartTime:     utc(2026, 3, 2, 14, 0),
		EndTime:       utc(2026, 3, 2, 14, 30),
		AttendeeCount: 3,
	}}

	day := LocalDate{2026, time.March, 2}
	free := FreeIntervals(snap, et, day, day, ny)
	slots := GenerateSlots(snap, et, free, ny)

	want := []time.Time{
		utc(2026, 3, 2, 14, 0),
		utc(2026, 3, 2, 14, 30),
	}
	assertSlotStarts(t, slots, want)

	if slots[0].AvailableSpots == nil || *slots[0].AvailableSpots != 2 {
		t.Errorf("booked slot spots = %v, want 2", slots[0].AvailableSpots)
	}
	if slots[0].TotalSpots == nil || *slots[0].TotalSpots != 5 {
		t.Errorf("booked slot total = %v, want 5", slots[0].TotalSpots)
	}
	if slots[1].AvailableSpots == nil || *slots[1].AvailableSpots != 5 {
		t.Errorf("open slot spots = %v, want 5", slots[1].AvailableSpots)
	}
}

func TestGenerateSlotsGroupFullSlot(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()
	et.MaxAttendees = 2

	full := entity.BookingHold{
		BookingID:     uuid.New(),
		EventTypeID:   testEventTypeID,
		StartTime:     utc(2026, 3, 2, 14, 0),
		EndTime:       utc(2026, 3, 2, 14, 30),
		AttendeeCount: 2,
	}

	snap := testSnapshot(weeklyRule(1, "09:00", "10:00"))
	snap.Bookings = []entity.BookingHold{full}

	day := LocalDate{2026, time.March, 2}
	free := FreeIntervals(snap, et, day, day, ny)

	// Waitlist off: the full slot disappears.
	slots := GenerateSlots(snap, et, free, ny)
	assertSlotStarts(t, slots, []time.Time{utc(2026, 3, 2, 14, 30)})

	// Waitlist on: the full slot is kept with zero spots.
	et.EnableWaitlist = true
	slots = GenerateSlots(snap, et, free, ny)
	assertSlotStarts(t, slots, []time.Time{
		utc(2026, 3, 2, 14, 0),
		utc(2026, 3, 2, 14, 30),
	})
	if *slots[0].AvailableSpots != 0 {
		t.Errorf("waitlisted slot spots = %d, want 0", *slots[0].AvailableSpots)
	}
}

func TestGenerateSlotsGroupMisalignedHoldBlocks(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()
	et.MaxAttendees = 5

	// A same-type hold at 09:15 local does not line up with any grid slot,
	// so it blocks rather than contributes capacity.
	snap := testSnapshot(weeklyRule(1, "09:00", "11:00"))
	snap.Bookings = []entity.BookingHold{{
		BookingID:     uuid.New(),
		EventTypeID:   testEventTypeID,
		StartTime:     utc(2026, 3, 2, 14, 15),
		EndTime:       utc(2026, 3, 2, 14, 45),
		AttendeeCount: 1,
	}}

	day := LocalDate{2026, time.March, 2}
	free := FreeIntervals(snap, et, day, day, ny)
	slots := GenerateSlots(snap, et, free, ny)
	want := []time.Time{
		utc(2026, 3, 2, 15, 0),
		utc(2026, 3, 2, 15, 30),
	}
	assertSlotStarts(t, slots, want)
}

func TestGenerateSlotsDSTSpringForward(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()
	// Sunday 01:00-04:00 local across the 2026-03-08 spring-forward, where
	// 02:00-03:00 does not exist.
	snap := testSnapshot(weeklyRule(0, "01:00", "04:00"))

	day := LocalDate{2026, time.March, 8}
	free := FreeIntervals(snap, et, day, day, ny)
	slots := GenerateSlots(snap, et, free, ny)

	// 01:00 EST = 06:00 UTC, 01:30 EST = 06:30 UTC, then the clock jumps to
	// 03:00 EDT = 07:00 UTC.
	want := []time.Time{
		utc(2026, 3, 8, 6, 0),
		utc(2026, 3, 8, 6, 30),
		utc(2026, 3, 8, 7, 0),
		utc(2026, 3, 8, 7, 30),
	}
	assertSlotStarts(t, slots, want)
}

func TestGenerateSlotsDSTFallBack(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()
	snap := testSnapshot()
	snap.Now = utc(2025, 11, 1, 0, 0)

	// A free interval starting at the second 01:00 on the 2025-11-02
	// fall-back night: 06:00 UTC is 01:00 EST, after the clocks have gone
	// back. Aligning its start must not resolve the repeated wall minutes
	// to the earlier 01:00 EDT and emit slots inside the hour before.
	free := []Interval{iv(utc(2025, 11, 2, 6, 0), utc(2025, 11, 2, 8, 0))}
	slots := GenerateSlots(snap, et, free, ny)

	for _, s := range slots {
		if s.StartTime.Before(free[0].Start) {
			t.Errorf("slot %v starts before the free interval at %v", s.StartTime, free[0].Start)
		}
	}

	// The repeated hour is skipped as ambiguous; the grid resumes at the
	// first unambiguous wall time, 02:00 EST.
	want := []time.Time{
		utc(2025, 11, 2, 7, 0),
		utc(2025, 11, 2, 7, 30),
	}
	assertSlotStarts(t, slots, want)
}

func TestGenerateSlotsRechecksNotice(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()
	snap := testSnapshot()
	snap.Now = utc(2026, 3, 2, 14, 15)

	// Raw interval that was never clipped upstream.
	free := []Interval{iv(utc(2026, 3, 2, 14, 0), utc(2026, 3, 2, 17, 0))}
	slots := GenerateSlots(snap, et, free, ny)

	earliest := snap.Now.Add(time.Hour)
	for _, s := range slots {
		if s.StartTime.Before(earliest) {
			t.Errorf("slot %v starts before minimum notice", s.StartTime)
		}
	}
	if len(slots) == 0 {
		t.Fatal("expected slots after the notice boundary")
	}
}
