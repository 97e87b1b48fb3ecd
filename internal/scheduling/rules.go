package scheduling

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-scheduling/internal/config"
)

// BookingRequest is the logical contract behind POST /appointments.
type BookingRequest struct {
	PatientID      uuid.UUID
	ProfessionalID uuid.UUID
	Date           string // YYYY-MM-DD
	Time           string // HH:MM
	Type           AppointmentType
	Notes          string
}

// ValidateBookingTime runs the temporal checks of the rule engine, in order,
// failing fast on the first violation:
//
//  1. format validity and global working hours
//  2. weekday restriction (Sunday closed unless configured open)
//  3. slot-granularity alignment, anchored at the covering rule's start time
//     (workday start when no rule covers the time)
//  4. minimum lead time, per appointment type, in wall-clock hours
//  5. maximum horizon
//
// The availability check itself (advisory for bookings, hard for reschedules)
// and the storage conflict checks live in the service, which has the
// repository at hand.
func ValidateBookingTime(date, clock string, typ AppointmentType, rules []AvailabilityRule, now time.Time, pol config.SchedulingPolicy) error {
	day, err := ParseDate(date)
	if err != nil {
		return err
	}
	clockMin, err := ParseClock(clock)
	if err != nil {
		return err
	}
	if !typ.Valid() {
		return ErrBadType
	}
	if !WithinWorkingHours(clockMin, pol) {
		return ErrOutsideWorkingHours
	}

	if closedWeekday(day.Weekday(), pol) {
		return ErrClosedWeekday
	}

	anchor, err := ParseClock(pol.WorkdayStart)
	if err != nil {
		return ErrOutsideWorkingHours
	}
	if rule, ok := coveringRule(rules, day.Weekday(), clockMin); ok {
		if ruleStart, perr := ParseClock(rule.StartTime); perr == nil {
			anchor = ruleStart
		}
	}
	if !alignedTo(clockMin, anchor, pol.SlotMinutes) {
		return ErrMisalignedTime
	}

	at := day.Add(time.Duration(clockMin) * time.Minute)
	lead := at.Sub(now)

	// Wall-clock hours, not calendar days: a same-day-but-too-soon request
	// (and any past date) fails here.
	if lead < minLeadFor(typ, pol) {
		return ErrTooSoon
	}

	if lead > time.Duration(pol.MaxHorizonDays)*24*time.Hour {
		return ErrBeyondHorizon
	}

	return nil
}

func minLeadFor(typ AppointmentType, pol config.SchedulingPolicy) time.Duration {
	if typ == TypeOnline {
		return pol.MinLeadOnline
	}
	return pol.MinLeadInPerson
}

// availableAt evaluates the professional-availability check. A professional
// with zero configured rules is treated as always available when the
// permissive fallback is on; otherwise the requested time must fall inside
// some active rule window.
func availableAt(rules []AvailabilityRule, date string, clock string, pol config.SchedulingPolicy) bool {
	if len(rules) == 0 {
		return pol.OpenWhenUnconfigured
	}
	day, err := ParseDate(date)
	if err != nil {
		return false
	}
	clockMin, err := ParseClock(clock)
	if err != nil {
		return false
	}
	_, ok := coveringRule(rules, day.Weekday(), clockMin)
	return ok
}
