package service

import (
	"time"

	"schedulr-api/core/errors"
	availEntity "schedulr-api/modules/availability/entity"
	"schedulr-api/modules/booking/entity"
	etEntity "schedulr-api/modules/eventtype/entity"
)

// ValidateSlot re-checks a requested slot against a freshly computed slot
// list at submission time, closing the race between slot display and
// booking. It is a pure check: the returned status is what the booking
// should be created with (waitlisted when the slot is full and the event
// type allows a waitlist), and it persists nothing.
func ValidateSlot(slots []availEntity.TimeSlot, start, end time.Time, attendeeCount int, et *etEntity.EventType) (string, *errors.AppError) {
	if attendeeCount < 1 {
		return "", errors.NewAppError(errors.ErrValidation, "attendee_count must be at least 1", nil)
	}
	if attendeeCount > et.MaxAttendees {
		return "", errors.NewAppError(errors.ErrCapacityExceeded, "attendee_count exceeds the event type capacity", nil)
	}

	var match *availEntity.TimeSlot
	for i := range slots {
		if slots[i].StartTime.Equal(start) && slots[i].EndTime.Equal(end) {
			match = &slots[i]
			break
		}
	}
	if match == nil {
		return "", errors.NewAppError(errors.ErrSlotUnavailable, "The requested slot is no longer available", nil)
	}

	if !et.IsGroup() {
		return entity.StatusConfirmed, nil
	}

	spots := et.MaxAttendees
	if match.AvailableSpots != nil {
		spots = *match.AvailableSpots
	}
	if attendeeCount <= spots {
		return entity.StatusConfirmed, nil
	}
	if et.EnableWaitlist {
		return entity.StatusWaitlisted, nil
	}
	return "", errors.NewAppError(errors.ErrCapacityExceeded, "Not enough spots left on the requested slot", nil)
}
