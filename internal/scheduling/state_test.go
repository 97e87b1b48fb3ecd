package scheduling

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusScheduled, StatusConfirmed},
		{StatusScheduled, StatusCancelledByPatient},
		{StatusScheduled, StatusCancelledByClinic},
		{StatusScheduled, StatusNoShow},
		{StatusScheduled, StatusRescheduled},
		{StatusConfirmed, StatusInProgress},
		{StatusConfirmed, StatusCancelledByPatient},
		{StatusConfirmed, StatusNoShow},
		{StatusConfirmed, StatusRescheduled},
		{StatusInProgress, StatusCompleted},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to Status }{
		{StatusScheduled, StatusInProgress}, // must confirm first
		{StatusScheduled, StatusCompleted},
		{StatusConfirmed, StatusCompleted}, // must check in first
		{StatusInProgress, StatusCancelledByPatient},
		{StatusInProgress, StatusNoShow},
		{StatusCompleted, StatusConfirmed},
		{StatusCancelledByPatient, StatusScheduled},
		{StatusNoShow, StatusCompleted},
		{StatusRescheduled, StatusConfirmed},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be denied", tc.from, tc.to)
		}
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	terminals := []Status{StatusCompleted, StatusCancelledByPatient, StatusCancelledByClinic, StatusNoShow, StatusRescheduled}
	all := []Status{
		StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted,
		StatusCancelledByPatient, StatusCancelledByClinic, StatusNoShow, StatusRescheduled,
	}
	for _, from := range terminals {
		for _, to := range all {
			if CanTransition(from, to) {
				t.Errorf("terminal state %s has an exit to %s", from, to)
			}
		}
	}
}

func TestAuthorizeTransition(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	appt := &Appointment{ID: uuid.New(), PatientID: owner, Status: StatusScheduled}

	// Owning patient may cancel.
	if err := authorizeTransition(appt, StatusCancelledByPatient, owner, RolePatient); err != nil {
		t.Errorf("owner cancel denied: %v", err)
	}
	// Another patient may not.
	if err := authorizeTransition(appt, StatusCancelledByPatient, stranger, RolePatient); !errors.Is(err, ErrNotAppointmentOwner) {
		t.Errorf("stranger cancel: got %v, want ErrNotAppointmentOwner", err)
	}
	// Staff may cancel anyone's appointment.
	for _, role := range []Role{RoleProfessional, RoleReceptionist, RoleAdmin} {
		if err := authorizeTransition(appt, StatusCancelledByClinic, stranger, role); err != nil {
			t.Errorf("%s cancel denied: %v", role, err)
		}
	}

	// Non-cancel transitions are staff only, even for the owner.
	for _, to := range []Status{StatusConfirmed, StatusInProgress, StatusCompleted, StatusNoShow} {
		if err := authorizeTransition(appt, to, owner, RolePatient); !errors.Is(err, ErrRoleNotAllowed) {
			t.Errorf("patient -> %s: got %v, want ErrRoleNotAllowed", to, err)
		}
		if err := authorizeTransition(appt, to, stranger, RoleReceptionist); err != nil {
			t.Errorf("receptionist -> %s denied: %v", to, err)
		}
	}
}

func TestCancelStatusFor(t *testing.T) {
	if got := cancelStatusFor(RolePatient); got != StatusCancelledByPatient {
		t.Errorf("patient cancel recorded as %s", got)
	}
	for _, role := range []Role{RoleProfessional, RoleReceptionist, RoleAdmin} {
		if got := cancelStatusFor(role); got != StatusCancelledByClinic {
			t.Errorf("%s cancel recorded as %s", role, got)
		}
	}
}
