package service

import (
	"time"

	"schedulr-api/modules/availability/entity"
	etEntity "schedulr-api/modules/eventtype/entity"
)

// alignToGrid rounds an instant up to the next wall-clock grid point. The
// grid is anchored at organizer-local midnight so slots land on the
// familiar :00/:15/:30 marks regardless of where a free interval begins.
func alignToGrid(t time.Time, intervalMin int, loc *time.Location) time.Time {
	lt := t.In(loc)
	mins := lt.Hour()*60 + lt.Minute()
	if lt.Second() > 0 || lt.Nanosecond() > 0 {
		mins++
	}
	if rem := mins % intervalMin; rem != 0 {
		mins += intervalMin - rem
	}
	aligned := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, mins, 0, 0, loc).UTC()
	// During a fall-back hour the wall clock repeats and time.Date resolves
	// the repeated minutes to their first occurrence, which can sit before t.
	// Step forward until the grid point is inside the interval again.
	for aligned.Before(t) {
		aligned = gridNext(aligned, intervalMin, loc)
	}
	return aligned
}

// gridNext advances one grid step in wall-clock minutes. Stepping through
// wall minutes and renormalizing keeps the grid stable across DST
// transitions.
func gridNext(t time.Time, intervalMin int, loc *time.Location) time.Time {
	lt := t.In(loc)
	mins := lt.Hour()*60 + lt.Minute() + intervalMin
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, mins, 0, 0, loc).UTC()
}

// GenerateSlots quantizes free intervals into bookable slots for one event
// type. Slots are deduplicated on (start, end), emitted in ascending start
// order, and capped per organizer-local day when the event type sets
// max_bookings_per_day. For group event types each slot carries remaining
// capacity; fully booked slots are kept only when the waitlist is enabled.
func GenerateSlots(snap *entity.AvailabilitySnapshot, et *etEntity.EventType, free []Interval, loc *time.Location) []entity.TimeSlot {
	if et.DurationMinutes <= 0 {
		return nil
	}
	duration := time.Duration(et.DurationMinutes) * time.Minute
	interval := effectiveSlotInterval(et, snap.Buffer)

	// The engine already clips free intervals to these bounds; re-checking
	// here keeps the generator safe when called with raw intervals.
	earliest := snap.Now.Add(effectiveNotice(et))
	horizon := snap.Now.Add(effectiveHorizon(et))

	// Remaining per-day quota: the cap minus confirmed bookings that day.
	var quota map[LocalDate]int
	if et.MaxBookingsPerDay != nil {
		quota = make(map[LocalDate]int)
	}
	quotaLeft := func(d LocalDate) int {
		if quota == nil {
			return 1
		}
		left, ok := quota[d]
		if !ok {
			left = *et.MaxBookingsPerDay
			for _, h := range snap.Bookings {
				if h.EventTypeID == et.ID && LocalDateOf(h.StartTime, loc) == d {
					left--
				}
			}
			quota[d] = left
		}
		return left
	}

	minGap := snap.MinimumGap()
	var groupHolds []entity.BookingHold
	if et.IsGroup() {
		for _, h := range snap.Bookings {
			if h.EventTypeID == et.ID {
				groupHolds = append(groupHolds, h)
			}
		}
	}

	seen := make(map[[2]int64]struct{})
	slots := make([]entity.TimeSlot, 0)

	for _, fr := range free {
		for start := alignToGrid(fr.Start, interval, loc); !start.Add(duration).After(fr.End); start = gridNext(start, interval, loc) {
			end := start.Add(duration)
			if start.Before(earliest) || !start.Before(horizon) {
				continue
			}

			key := [2]int64{start.Unix(), end.Unix()}
			if _, dup := seen[key]; dup {
				continue
			}

			day := LocalDateOf(start, loc)
			if quotaLeft(day) <= 0 {
				continue
			}

			slot := entity.TimeSlot{StartTime: start, EndTime: end}
			if et.IsGroup() {
				spots := et.MaxAttendees
				blocked := false
				cand := Interval{Start: start, End: end}
				for _, h := range groupHolds {
					if h.StartTime.Equal(start) && h.EndTime.Equal(end) {
						spots -= h.AttendeeCount
						continue
					}
					if expandedHold(h, minGap).Overlaps(cand) {
						blocked = true
						break
					}
				}
				if blocked {
					continue
				}
				if spots < 0 {
					spots = 0
				}
				if spots == 0 && !et.EnableWaitlist {
					continue
				}
				total := et.MaxAttendees
				slot.AvailableSpots = &spots
				slot.TotalSpots = &total
			}

			seen[key] = struct{}{}
			slots = append(slots, slot)
			if quota != nil {
				quota[day]--
			}
		}
	}
	return slots
}
