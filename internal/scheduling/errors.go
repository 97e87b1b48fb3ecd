package scheduling

import "errors"

// Rule and policy violations. All of these are client input errors and are
// never retried by the service itself.
var (
	ErrBadDate             = errors.New("date must be a valid YYYY-MM-DD")
	ErrBadTime             = errors.New("time must be a valid HH:MM")
	ErrBadType             = errors.New("type must be in_person or online")
	ErrOutsideWorkingHours = errors.New("time is outside clinic working hours")
	ErrClosedWeekday       = errors.New("clinic is closed on this weekday")
	ErrMisalignedTime      = errors.New("time does not align to the slot grid")
	ErrTooSoon             = errors.New("appointment is below the minimum lead time")
	ErrBeyondHorizon       = errors.New("appointment exceeds the booking horizon")
	ErrInvalidRule         = errors.New("availability rule must have valid HH:MM bounds with start before end")
	ErrInvalidTransition   = errors.New("invalid status transition")

	ErrSlotTaken           = errors.New("slot already has a live appointment")
	ErrPatientDayTaken     = errors.New("patient already has an appointment with this professional that day")
	ErrRuleOverlap         = errors.New("availability rule overlaps an existing active rule")
	ErrOutsideAvailability = errors.New("professional does not attend at this time")
	ErrSlotBusy            = errors.New("slot is currently being booked, please retry")

	ErrNotAppointmentOwner = errors.New("only the owning patient may do this")
	ErrRoleNotAllowed      = errors.New("role is not allowed to perform this transition")
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindForbidden
)

// KindOf buckets sentinel errors for the HTTP layer: validation 400,
// forbidden 403, not found 404, conflict 409.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrBadDate),
		errors.Is(err, ErrBadTime),
		errors.Is(err, ErrBadType),
		errors.Is(err, ErrOutsideWorkingHours),
		errors.Is(err, ErrClosedWeekday),
		errors.Is(err, ErrMisalignedTime),
		errors.Is(err, ErrTooSoon),
		errors.Is(err, ErrBeyondHorizon),
		errors.Is(err, ErrInvalidRule),
		errors.Is(err, ErrInvalidTransition):
		return KindValidation
	case errors.Is(err, ErrSlotTaken),
		errors.Is(err, ErrPatientDayTaken),
		errors.Is(err, ErrRuleOverlap),
		errors.Is(err, ErrOutsideAvailability),
		errors.Is(err, ErrSlotBusy):
		return KindConflict
	case errors.Is(err, ErrPatientNotFound),
		errors.Is(err, ErrProfessionalNotFound),
		errors.Is(err, ErrAppointmentNotFound):
		return KindNotFound
	case errors.Is(err, ErrNotAppointmentOwner),
		errors.Is(err, ErrRoleNotAllowed):
		return KindForbidden
	}
	return KindUnknown
}
