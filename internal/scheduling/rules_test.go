package scheduling

import (
	"errors"
	"testing"
	"time"
)

// Reference clock for the rule-engine tests: Monday 2026-03-02 at 09:00.
var bookingNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

func TestValidateBookingTimeAccepts(t *testing.T) {
	// Tuesday next day, well inside working hours, aligned to the workday grid.
	err := ValidateBookingTime("2026-03-03", "08:50", TypeInPerson, nil, bookingNow, testPolicy())
	if err != nil {
		t.Fatalf("valid booking rejected: %v", err)
	}
}

func TestValidateBookingTimeRejections(t *testing.T) {
	pol := testPolicy()

	cases := []struct {
		name  string
		date  string
		clock string
		typ   AppointmentType
		want  error
	}{
		{"garbage date", "03/02/2026", "09:40", TypeInPerson, ErrBadDate},
		{"garbage time", "2026-03-03", "9h40", TypeInPerson, ErrBadTime},
		{"unknown type", "2026-03-03", "08:50", AppointmentType("home_visit"), ErrBadType},
		{"before opening", "2026-03-03", "07:00", TypeInPerson, ErrOutsideWorkingHours},
		{"at closing", "2026-03-03", "18:00", TypeInPerson, ErrOutsideWorkingHours},
		{"sunday", "2026-03-08", "09:40", TypeInPerson, ErrClosedWeekday},
		{"off the grid", "2026-03-03", "09:15", TypeInPerson, ErrMisalignedTime},
		{"yesterday", "2026-03-01", "09:40", TypeOnline, ErrClosedWeekday},
		{"past weekday", "2026-02-27", "09:40", TypeOnline, ErrTooSoon},
		{"past horizon", "2026-06-10", "09:40", TypeInPerson, ErrBeyondHorizon},
	}

	for _, tc := range cases {
		err := ValidateBookingTime(tc.date, tc.clock, tc.typ, nil, bookingNow, pol)
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestValidateBookingTimeLeadPerType(t *testing.T) {
	pol := testPolicy()

	// Same day at 10:30 leaves 90 minutes of lead. That clears the online
	// minimum of one hour but not the in-person minimum of two.
	if err := ValidateBookingTime("2026-03-02", "10:30", TypeOnline, nil, bookingNow, pol); err != nil {
		t.Errorf("online with 90m lead rejected: %v", err)
	}
	if err := ValidateBookingTime("2026-03-02", "10:30", TypeInPerson, nil, bookingNow, pol); !errors.Is(err, ErrTooSoon) {
		t.Errorf("in_person with 90m lead: got %v, want ErrTooSoon", err)
	}
}

func TestValidateBookingTimeAnchorsAtCoveringRule(t *testing.T) {
	pol := testPolicy()
	rules := []AvailabilityRule{{
		DayOfWeek: 1,
		StartTime: "09:00",
		EndTime:   "12:00",
		IsActive:  true,
	}}

	// With a covering rule starting at 09:00, the grid shifts: 09:50 lines up,
	// the workday-grid 09:40 no longer does.
	if err := ValidateBookingTime("2026-03-09", "09:50", TypeInPerson, rules, bookingNow, pol); err != nil {
		t.Errorf("rule-aligned time rejected: %v", err)
	}
	if err := ValidateBookingTime("2026-03-09", "09:40", TypeInPerson, rules, bookingNow, pol); !errors.Is(err, ErrMisalignedTime) {
		t.Errorf("off-rule-grid time: got %v, want ErrMisalignedTime", err)
	}
}

func TestValidateBookingTimeSundayOpenPolicy(t *testing.T) {
	pol := testPolicy()
	pol.SundayBookings = true

	if err := ValidateBookingTime("2026-03-08", "09:40", TypeInPerson, nil, bookingNow, pol); err != nil {
		t.Fatalf("sunday booking rejected with SundayBookings on: %v", err)
	}
}

func TestAvailableAt(t *testing.T) {
	pol := testPolicy()
	rules := []AvailabilityRule{{
		DayOfWeek: 1,
		StartTime: "08:00",
		EndTime:   "12:00",
		IsActive:  true,
	}}

	// Monday inside the window.
	if !availableAt(rules, "2026-03-09", "09:00", pol) {
		t.Error("time inside the rule window reported unavailable")
	}
	// Monday past the window end.
	if availableAt(rules, "2026-03-09", "12:00", pol) {
		t.Error("window end is exclusive, 12:00 should be unavailable")
	}
	// Tuesday, no rule.
	if availableAt(rules, "2026-03-10", "09:00", pol) {
		t.Error("day without a rule reported available")
	}
}

func TestAvailableAtZeroRulesFollowsPolicy(t *testing.T) {
	pol := testPolicy()

	pol.OpenWhenUnconfigured = true
	if !availableAt(nil, "2026-03-09", "09:00", pol) {
		t.Error("permissive fallback should accept any time")
	}

	pol.OpenWhenUnconfigured = false
	if availableAt(nil, "2026-03-09", "09:00", pol) {
		t.Error("strict fallback should reject when no rules exist")
	}
}
