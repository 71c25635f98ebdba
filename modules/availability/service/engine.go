package service

import (
	"time"

	"schedulr-api/core/constants"
	"schedulr-api/core/logger"
	"schedulr-api/modules/availability/entity"
	etEntity "schedulr-api/modules/eventtype/entity"
)

// The engine turns an AvailabilitySnapshot into free intervals for one
// event type over a range of organizer-local calendar days. It is pure:
// no store access, no clock reads, everything comes in via the snapshot.
//
// Precedence per calendar day: a date override replaces the weekly rules
// entirely, including the tail of a midnight-spanning rule from the
// previous day. Blocked times and confirmed bookings are then subtracted,
// bookings expanded by their buffers.

// effectiveBuffers resolves buffer minutes for an event type, falling back
// to the organizer-wide defaults.
func effectiveBuffers(et *etEntity.EventType, buf *entity.BufferTime) (before, after int) {
	if buf != nil {
		before, after = buf.DefaultBufferBefore, buf.DefaultBufferAfter
	}
	if et.BufferBefore != nil {
		before = *et.BufferBefore
	}
	if et.BufferAfter != nil {
		after = *et.BufferAfter
	}
	return before, after
}

// effectiveSlotInterval resolves the slot grid step in minutes.
func effectiveSlotInterval(et *etEntity.EventType, buf *entity.BufferTime) int {
	if et.SlotIntervalMinutes != nil && *et.SlotIntervalMinutes > 0 {
		return *et.SlotIntervalMinutes
	}
	if buf != nil && buf.SlotIntervalMinutes > 0 {
		return buf.SlotIntervalMinutes
	}
	return constants.DefaultSlotIntervalMinutes
}

func effectiveNotice(et *etEntity.EventType) time.Duration {
	minutes := et.MinSchedulingNotice
	if minutes <= 0 {
		minutes = constants.DefaultMinNoticeMinutes
	}
	return time.Duration(minutes) * time.Minute
}

func effectiveHorizon(et *etEntity.EventType) time.Duration {
	days := et.MaxSchedulingHorizon
	if days <= 0 {
		days = constants.DefaultHorizonDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// overrideFor returns the active override governing the given calendar day
// for the event type, or nil. An override scoped to specific event types
// wins over a catch-all; ties break on most recently updated.
func overrideFor(snap *entity.AvailabilitySnapshot, et *etEntity.EventType, d LocalDate) *entity.DateOverrideRule {
	var best *entity.DateOverrideRule
	bestSpecific := false
	for i := range snap.Overrides {
		o := &snap.Overrides[i]
		if !o.IsActive {
			continue
		}
		if o.Date.Year() != d.Year || o.Date.Month() != d.Month || o.Date.Day() != d.Day {
			continue
		}
		if !o.EventTypeIDs.Matches(et.ID) {
			continue
		}
		specific := len(o.EventTypeIDs) > 0
		switch {
		case best == nil:
			best, bestSpecific = o, specific
		case specific && !bestSpecific:
			best, bestSpecific = o, specific
		case specific == bestSpecific && o.UpdatedAt.After(best.UpdatedAt):
			best = o
		}
	}
	return best
}

// ruleWindowsOn returns the open windows contributed by the weekly rules to
// calendar day d. A rule on d whose window spans midnight contributes
// [start, next local midnight); its remainder lands on d+1 as carry-in,
// which is produced when this function runs for d+1.
func ruleWindowsOn(snap *entity.AvailabilitySnapshot, et *etEntity.EventType, d LocalDate, loc *time.Location) []Interval {
	var out []Interval

	weekday := d.Weekday(loc)
	for i := range snap.Rules {
		r := &snap.Rules[i]
		if !r.IsActive || r.DayOfWeek != weekday || !r.EventTypeIDs.Matches(et.ID) {
			continue
		}
		start, err := ParseClock(r.StartTime)
		if err != nil {
			logger.Warn("AvailabilityEngine:RuleWindows:SkipMalformedRule",
				"rule_id", r.ID, "start_time", r.StartTime, "error", err)
			continue
		}
		end, err := ParseClock(r.EndTime)
		if err != nil {
			logger.Warn("AvailabilityEngine:RuleWindows:SkipMalformedRule",
				"rule_id", r.ID, "end_time", r.EndTime, "error", err)
			continue
		}
		if start == end {
			continue
		}
		if r.SpansMidnight() {
			out = append(out, Interval{
				Start: InstantOf(d, start, loc),
				End:   MidnightOf(d.Next(), loc),
			})
		} else {
			out = append(out, Interval{
				Start: InstantOf(d, start, loc),
				End:   InstantOf(d, end, loc),
			})
		}
	}

	// Carry-in: the tail of a midnight-spanning rule from the previous day.
	// Suppressed when the previous day is governed by an override, since the
	// override replaces that day's rules wholesale.
	prev := d.Prev()
	if overrideFor(snap, et, prev) == nil {
		prevWeekday := prev.Weekday(loc)
		for i := range snap.Rules {
			r := &snap.Rules[i]
			if !r.IsActive || r.DayOfWeek != prevWeekday || !r.EventTypeIDs.Matches(et.ID) {
				continue
			}
			if !r.SpansMidnight() {
				continue
			}
			end, err := ParseClock(r.EndTime)
			if err != nil {
				logger.Warn("AvailabilityEngine:RuleWindows:SkipMalformedRule",
					"rule_id", r.ID, "end_time", r.EndTime, "error", err)
				continue
			}
			out = append(out, Interval{
				Start: MidnightOf(d, loc),
				End:   InstantOf(d, end, loc),
			})
		}
	}

	return out
}

// baseWindowsOn computes the open windows for one calendar day after
// override precedence.
func baseWindowsOn(snap *entity.AvailabilitySnapshot, et *etEntity.EventType, d LocalDate, loc *time.Location) []Interval {
	if o := overrideFor(snap, et, d); o != nil {
		if !o.IsAvailable || o.StartTime == nil || o.EndTime == nil {
			return nil
		}
		start, err1 := ParseClock(*o.StartTime)
		end, err2 := ParseClock(*o.EndTime)
		if err1 != nil || err2 != nil {
			logger.Warn("AvailabilityEngine:BaseWindows:SkipMalformedOverride",
				"override_id", o.ID, "start_time", *o.StartTime, "end_time", *o.EndTime)
			return nil
		}
		if start.Minutes() >= end.Minutes() {
			return nil
		}
		return []Interval{{
			Start: InstantOf(d, start, loc),
			End:   InstantOf(d, end, loc),
		}}
	}
	return ruleWindowsOn(snap, et, d, loc)
}

// expandedHold returns the interval a confirmed booking occupies once its
// buffers are applied. The organizer's minimum gap acts as a floor on both
// sides.
func expandedHold(h entity.BookingHold, minGap int) Interval {
	before := h.BufferBefore
	if minGap > before {
		before = minGap
	}
	after := h.BufferAfter
	if minGap > after {
		after = minGap
	}
	return Interval{
		Start: h.StartTime.Add(-time.Duration(before) * time.Minute),
		End:   h.EndTime.Add(time.Duration(after) * time.Minute),
	}
}

// FreeIntervals computes the bookable free intervals for an event type over
// [from, to] organizer-local days. The result is sorted, non-overlapping
// and clipped to the minimum-notice / maximum-horizon window around
// snap.Now.
//
// Bookings block across every event type of the organizer, with one
// exception: for group event types, holds of the same event type are left
// in place so the slot generator can surface remaining capacity instead of
// hiding the slot.
func FreeIntervals(snap *entity.AvailabilitySnapshot, et *etEntity.EventType, from, to LocalDate, loc *time.Location) []Interval {
	var windows []Interval
	for d := from; !d.After(to); d = d.Next() {
		windows = append(windows, baseWindowsOn(snap, et, d, loc)...)
	}
	free := MergeOverlapping(windows)
	if len(free) == 0 {
		return nil
	}

	var removals []Interval
	for i := range snap.Blocked {
		b := &snap.Blocked[i]
		if !b.IsActive {
			continue
		}
		removals = append(removals, Interval{Start: b.StartDatetime, End: b.EndDatetime})
	}
	minGap := snap.MinimumGap()
	for _, h := range snap.Bookings {
		if et.IsGroup() && h.EventTypeID == et.ID {
			continue
		}
		removals = append(removals, expandedHold(h, minGap))
	}
	free = SubtractAll(free, removals)

	bounds := Interval{
		Start: snap.Now.Add(effectiveNotice(et)),
		End:   snap.Now.Add(effectiveHorizon(et)),
	}
	return ClipAll(free, bounds)
}
