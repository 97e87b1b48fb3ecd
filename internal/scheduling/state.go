package scheduling

import "github.com/google/uuid"

// transitions is the appointment lifecycle:
// scheduled -> confirmed -> in_progress -> completed, with cancel/no-show
// side branches off the two pre-visit states. rescheduled is applied only by
// the clinic reschedule-and-relabel flow; a patient reschedule moves the same
// row instead.
var transitions = map[Status][]Status{
	StatusScheduled: {
		StatusConfirmed,
		StatusCancelledByPatient,
		StatusCancelledByClinic,
		StatusNoShow,
		StatusRescheduled,
	},
	StatusConfirmed: {
		StatusInProgress,
		StatusCancelledByPatient,
		StatusCancelledByClinic,
		StatusNoShow,
		StatusRescheduled,
	},
	StatusInProgress: {
		StatusCompleted,
	},
}

// CanTransition reports whether from -> to is a legal lifecycle move.
// Terminal states have no outgoing edges.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// authorizeTransition enforces who may move an appointment to a given status.
// Everything except cancel is restricted to clinic staff; cancel is also open
// to the owning patient.
func authorizeTransition(appt *Appointment, to Status, requesterID uuid.UUID, role Role) error {
	if to == StatusCancelledByPatient || to == StatusCancelledByClinic {
		if role.Staff() {
			return nil
		}
		if role == RolePatient && appt.PatientID == requesterID {
			return nil
		}
		return ErrNotAppointmentOwner
	}

	if !role.Staff() {
		return ErrRoleNotAllowed
	}
	return nil
}

// cancelStatusFor picks the cancellation status recorded for the actor.
func cancelStatusFor(role Role) Status {
	if role == RolePatient {
		return StatusCancelledByPatient
	}
	return StatusCancelledByClinic
}
