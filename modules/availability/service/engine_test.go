package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	coreEntity "schedulr-api/core/entity"
	"schedulr-api/modules/availability/entity"
	etEntity "schedulr-api/modules/eventtype/entity"
)

var (
	testOrganizerID = uuid.MustParse("6f1d8f8e-0000-4000-8000-000000000001")
	testEventTypeID = uuid.MustParse("6f1d8f8e-0000-4000-8000-000000000002")
)

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

// testEventType is a 30 minute one-on-one with generous notice/horizon so
// tests control bounds through snap.Now.
func testEventType() *etEntity.EventType {
	return &etEntity.EventType{
		OrganizerID:          testOrganizerID,
		Name:                 "Intro Call",
		Slug:                 "intro-call",
		DurationMinutes:      30,
		MaxAttendees:         1,
		MinSchedulingNotice:  60,
		MaxSchedulingHorizon: 60,
		SlotIntervalMinutes:  intPtr(30),
		IsActive:             true,
		BaseEntity:           coreEntity.BaseEntity{ID: testEventTypeID},
	}
}

func weeklyRule(day int, start, end string) entity.AvailabilityRule {
	return entity.AvailabilityRule{
		OrganizerID: testOrganizerID,
		DayOfWeek:   day,
		StartTime:   start,
		EndTime:     end,
		IsActive:    true,
		BaseEntity:  coreEntity.BaseEntity{ID: uuid.New()},
	}
}

// testSnapshot sets Now to 2026-02-23 00:00 UTC, a Monday, well before the
// dates the tests query.
func testSnapshot(rules ...entity.AvailabilityRule) *entity.AvailabilitySnapshot {
	return &entity.AvailabilitySnapshot{
		Organizer: entity.OrganizerSettings{
			OrganizerID: testOrganizerID,
			Slug:        "dana",
			Timezone:    "America/New_York",
		},
		Rules: rules,
		Now:   utc(2026, 2, 23, 0, 0),
	}
}

func TestFreeIntervalsSkipsMalformedRule(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()
	// The first rule's start is missing its leading zero and cannot parse;
	// it degrades alone while the second rule still opens its window.
	snap := testSnapshot(
		weeklyRule(1, "9:00", "12:00"),
		weeklyRule(1, "13:00", "14:00"),
	)

	day := LocalDate{2026, time.March, 2}
	got := FreeIntervals(snap, et, day, day, ny)
	want := []Interval{iv(utc(2026, 3, 2, 18, 0), utc(2026, 3, 2, 19, 0))}
	assertIntervals(t, got, want)
}

func TestFreeIntervalsWeeklyRule(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()
	// Monday 09:00-12:00 local, EST is UTC-5.
	snap := testSnapshot(weeklyRule(1, "09:00", "12:00"))

	day := LocalDate{2026, time.March, 2} // a Monday
	got := FreeIntervals(snap, et, day, day, ny)
	want := []Interval{iv(utc(2026, 3, 2, 14, 0), utc(2026, 3, 2, 17, 0))}
	assertIntervals(t, got, want)

	// A Tuesday in the same range yields nothing.
	tue := LocalDate{2026, time.March, 3}
	if got := FreeIntervals(snap, et, tue, tue, ny); len(got) != 0 {
		t.Errorf("Tuesday intervals = %v, want none", got)
	}
}

func TestFreeIntervalsDeterministic(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()
	snap := testSnapshot(
		weeklyRule(1, "09:00", "12:00"),
		weeklyRule(1, "10:00", "14:00"),
	)
	day := LocalDate{2026, time.March, 2}

	first := FreeIntervals(snap, et, day, day, ny)
	second := FreeIntervals(snap, et, day, day, ny)
	assertIntervals(t, second, first)

	// Overlapping rules merge into one non-overlapping interval.
	want := []Interval{iv(utc(2026, 3, 2, 14, 0), utc(2026, 3, 2, 19, 0))}
	assertIntervals(t, first, want)
}

func TestFreeIntervalsMidnightSpanningRule(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()
	// Friday 22:00-02:00 spans into Saturday.
	snap := testSnapshot(weeklyRule(5, "22:00", "02:00"))

	fri := LocalDate{2026, time.March, 6}
	sat := LocalDate{2026, time.March, 7}

	got := FreeIntervals(snap, et, fri, sat, ny)
	// Friday 22:00 EST = 03:00 UTC Saturday; the window runs through to
	// Saturday 02:00 local = 07:00 UTC as one merged interval.
	want := []Interval{iv(utc(2026, 3, 7, 3, 0), utc(2026, 3, 7, 7, 0))}
	assertIntervals(t, got, want)

	// Querying Saturday alone still surfaces the carried-in tail.
	got = FreeIntervals(snap, et, sat, sat, ny)
	want = []Interval{iv(utc(2026, 3, 7, 5, 0), utc(2026, 3, 7, 7, 0))}
	assertIntervals(t, got, want)
}

func TestFreeIntervalsOverridePrecedence(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()

	closed := entity.DateOverrideRule{
		OrganizerID: testOrganizerID,
		Date:        time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		IsAvailable: false,
		Reason:      "public holiday",
		IsActive:    true,
		BaseEntity:  coreEntity.BaseEntity{ID: uuid.New()},
	}
	shortened := entity.DateOverrideRule{
		OrganizerID: testOrganizerID,
		Date:        time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		IsAvailable: true,
		StartTime:   strPtr("10:00"),
		EndTime:     strPtr("11:00"),
		IsActive:    true,
		BaseEntity:  coreEntity.BaseEntity{ID: uuid.New()},
	}

	snap := testSnapshot(weeklyRule(1, "09:00", "12:00"))
	snap.Overrides = []entity.DateOverrideRule{closed, shortened}

	// Closed day yields nothing despite the weekly rule.
	day := LocalDate{2026, time.March, 2}
	if got := FreeIntervals(snap, et, day, day, ny); len(got) != 0 {
		t.Errorf("closed day intervals = %v, want none", got)
	}

	// Shortened day replaces the weekly window entirely.
	day = LocalDate{2026, time.March, 9}
	got := FreeIntervals(snap, et, day, day, ny)
	want := []Interval{iv(utc(2026, 3, 9, 14, 0), utc(2026, 3, 9, 15, 0))}
	assertIntervals(t, got, want)
}

func TestFreeIntervalsOverrideCutsCarriedTail(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()

	snap := testSnapshot(weeklyRule(5, "22:00", "02:00"))
	snap.Overrides = []entity.DateOverrideRule{{
		OrganizerID: testOrganizerID,
		Date:        time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), // Saturday
		IsAvailable: false,
		IsActive:    true,
		BaseEntity:  coreEntity.BaseEntity{ID: uuid.New()},
	}}

	fri := LocalDate{2026, time.March, 6}
	sat := LocalDate{2026, time.March, 7}
	got := FreeIntervals(snap, et, fri, sat, ny)
	// Friday keeps 22:00-24:00; Saturday's closed override removes the tail.
	want := []Interval{iv(utc(2026, 3, 7, 3, 0), utc(2026, 3, 7, 5, 0))}
	assertIntervals(t, got, want)
}

func TestFreeIntervalsBlockedTime(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()

	snap := testSnapshot(weeklyRule(1, "09:00", "12:00"))
	snap.Blocked = []entity.BlockedTime{
		{
			OrganizerID:   testOrganizerID,
			StartDatetime: utc(2026, 3, 2, 15, 0), // 10:00-11:00 local
			EndDatetime:   utc(2026, 3, 2, 16, 0),
			Source:        entity.SourceGoogleCalendar,
			IsActive:      true,
		},
		{
			OrganizerID:   testOrganizerID,
			StartDatetime: utc(2026, 3, 2, 16, 30),
			EndDatetime:   utc(2026, 3, 2, 17, 30),
			Source:        entity.SourceManual,
			IsActive:      false, // inactive entries are ignored
		},
	}

	day := LocalDate{2026, time.March, 2}
	got := FreeIntervals(snap, et, day, day, ny)
	want := []Interval{
		iv(utc(2026, 3, 2, 14, 0), utc(2026, 3, 2, 15, 0)),
		iv(utc(2026, 3, 2, 16, 0), utc(2026, 3, 2, 17, 0)),
	}
	assertIntervals(t, got, want)
}

func TestFreeIntervalsBookingBuffers(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()

	otherType := uuid.New()
	snap := testSnapshot(weeklyRule(1, "09:00", "12:00"))
	// Booking 10:00-10:30 local with 15 minutes of buffer after.
	snap.Bookings = []entity.BookingHold{{
		BookingID:     uuid.New(),
		EventTypeID:   otherType,
		StartTime:     utc(2026, 3, 2, 15, 0),
		EndTime:       utc(2026, 3, 2, 15, 30),
		AttendeeCount: 1,
		BufferAfter:   15,
	}}

	day := LocalDate{2026, time.March, 2}
	got := FreeIntervals(snap, et, day, day, ny)
	want := []Interval{
		iv(utc(2026, 3, 2, 14, 0), utc(2026, 3, 2, 15, 0)),
		iv(utc(2026, 3, 2, 15, 45), utc(2026, 3, 2, 17, 0)),
	}
	assertIntervals(t, got, want)
}

func TestFreeIntervalsMinimumGapFloor(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()

	snap := testSnapshot(weeklyRule(1, "09:00", "12:00"))
	snap.Buffer = &entity.BufferTime{
		OrganizerID: testOrganizerID,
		MinimumGap:  20,
	}
	snap.Bookings = []entity.BookingHold{{
		BookingID:     uuid.New(),
		EventTypeID:   uuid.New(),
		StartTime:     utc(2026, 3, 2, 15, 0),
		EndTime:       utc(2026, 3, 2, 15, 30),
		AttendeeCount: 1,
		BufferBefore:  5, // below the 20 minute floor
		BufferAfter:   15,
	}}

	day := LocalDate{2026, time.March, 2}
	got := FreeIntervals(snap, et, day, day, ny)
	want := []Interval{
		iv(utc(2026, 3, 2, 14, 0), utc(2026, 3, 2, 14, 40)),
		iv(utc(2026, 3, 2, 15, 50), utc(2026, 3, 2, 17, 0)),
	}
	assertIntervals(t, got, want)
}

func TestFreeIntervalsNoticeAndHorizon(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()
	et.MinSchedulingNotice = 120
	et.MaxSchedulingHorizon = 7

	snap := testSnapshot(weeklyRule(1, "09:00", "12:00"))
	// Now is Monday 2026-03-02 13:00 UTC (08:00 local); notice pushes the
	// earliest bookable instant to 15:00 UTC.
	snap.Now = utc(2026, 3, 2, 13, 0)

	from := LocalDate{2026, time.March, 2}
	to := LocalDate{2026, time.March, 16}
	got := FreeIntervals(snap, et, from, to, ny)

	// The horizon ends 2026-03-09 13:00 UTC. That Monday's window is
	// 13:00-16:00 UTC (EDT after the spring-forward) and clips to nothing,
	// so only the first Monday survives.
	want := []Interval{iv(utc(2026, 3, 2, 15, 0), utc(2026, 3, 2, 17, 0))}
	assertIntervals(t, got, want)

	for _, ivl := range got {
		if ivl.Start.Before(snap.Now.Add(2 * time.Hour)) {
			t.Errorf("interval %v starts before minimum notice", ivl)
		}
		if ivl.End.After(snap.Now.Add(7 * 24 * time.Hour)) {
			t.Errorf("interval %v ends past horizon", ivl)
		}
	}
}

func TestFreeIntervalsNonOverlapping(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()
	snap := testSnapshot(
		weeklyRule(1, "09:00", "12:00"),
		weeklyRule(1, "11:00", "15:00"),
		weeklyRule(1, "08:00", "09:30"),
	)
	snap.Blocked = []entity.BlockedTime{{
		OrganizerID:   testOrganizerID,
		StartDatetime: utc(2026, 3, 2, 15, 0),
		EndDatetime:   utc(2026, 3, 2, 15, 30),
		IsActive:      true,
	}}

	day := LocalDate{2026, time.March, 2}
	got := FreeIntervals(snap, et, day, day, ny)
	for i := 1; i < len(got); i++ {
		if got[i].Start.Before(got[i-1].End) {
			t.Errorf("intervals %d and %d overlap: %v, %v", i-1, i, got[i-1], got[i])
		}
	}
}

func TestFreeIntervalsEventTypeScopedRule(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	et := testEventType()

	scoped := weeklyRule(1, "09:00", "10:00")
	scoped.EventTypeIDs = entity.UUIDList{uuid.New()} // different event type
	general := weeklyRule(1, "13:00", "14:00")

	snap := testSnapshot(scoped, general)
	day := LocalDate{2026, time.March, 2}
	got := FreeIntervals(snap, et, day, day, ny)
	want := []Interval{iv(utc(2026, 3, 2, 18, 0), utc(2026, 3, 2, 19, 0))}
	assertIntervals(t, got, want)
}
