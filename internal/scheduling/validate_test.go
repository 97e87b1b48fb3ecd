package scheduling

import (
	"errors"
	"testing"
	"time"

	"github.com/clinicore/clinic-scheduling/internal/config"
)

func testPolicy() config.SchedulingPolicy {
	return config.SchedulingPolicy{
		SlotMinutes:          50,
		WorkdayStart:         "08:00",
		WorkdayEnd:           "18:00",
		SundayBookings:       false,
		MinLeadInPerson:      2 * time.Hour,
		MinLeadOnline:        time.Hour,
		MaxHorizonDays:       90,
		RescheduleFreeWindow: 24 * time.Hour,
		OpenWhenUnconfigured: true,
		DefaultDaysAhead:     7,
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2026-03-02"); err != nil {
		t.Fatalf("valid date rejected: %v", err)
	}

	for _, bad := range []string{"2026-02-30", "02-03-2026", "2026/03/02", "tomorrow", ""} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrBadDate) {
			t.Errorf("ParseDate(%q) = %v, want ErrBadDate", bad, err)
		}
	}
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("09:40")
	if err != nil {
		t.Fatalf("valid time rejected: %v", err)
	}
	if m != 9*60+40 {
		t.Errorf("ParseClock(09:40) = %d, want %d", m, 9*60+40)
	}

	for _, bad := range []string{"25:00", "09:61", "9h30", "0940", ""} {
		if _, err := ParseClock(bad); !errors.Is(err, ErrBadTime) {
			t.Errorf("ParseClock(%q) = %v, want ErrBadTime", bad, err)
		}
	}
}

func TestWithinWorkingHours(t *testing.T) {
	pol := testPolicy()

	cases := []struct {
		clock string
		want  bool
	}{
		{"08:00", true},
		{"17:59", true},
		{"18:00", false}, // closing time itself is not bookable
		{"07:59", false},
		{"00:00", false},
	}
	for _, tc := range cases {
		m, err := ParseClock(tc.clock)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", tc.clock, err)
		}
		if got := WithinWorkingHours(m, pol); got != tc.want {
			t.Errorf("WithinWorkingHours(%s) = %v, want %v", tc.clock, got, tc.want)
		}
	}
}

func TestAlignedTo(t *testing.T) {
	cases := []struct {
		clock, anchor, step int
		want                bool
	}{
		{480, 480, 50, true},  // exactly the anchor
		{530, 480, 50, true},  // one step later
		{630, 480, 50, true},  // three steps later
		{500, 480, 50, false}, // arbitrary offset
		{470, 480, 50, false}, // before the anchor
		{480, 480, 0, false},  // degenerate granularity
	}
	for _, tc := range cases {
		if got := alignedTo(tc.clock, tc.anchor, tc.step); got != tc.want {
			t.Errorf("alignedTo(%d, %d, %d) = %v, want %v", tc.clock, tc.anchor, tc.step, got, tc.want)
		}
	}
}

func TestValidateRule(t *testing.T) {
	good := AvailabilityRule{DayOfWeek: 1, StartTime: "08:00", EndTime: "12:00"}
	if err := ValidateRule(good); err != nil {
		t.Fatalf("valid rule rejected: %v", err)
	}

	bad := []AvailabilityRule{
		{DayOfWeek: 7, StartTime: "08:00", EndTime: "12:00"},  // weekday out of range
		{DayOfWeek: -1, StartTime: "08:00", EndTime: "12:00"}, // weekday out of range
		{DayOfWeek: 1, StartTime: "12:00", EndTime: "08:00"},  // inverted window
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "09:00"},  // empty window
		{DayOfWeek: 1, StartTime: "8am", EndTime: "12:00"},
		{DayOfWeek: 1, StartTime: "08:00", EndTime: "noon"},
	}
	for i, r := range bad {
		if err := ValidateRule(r); !errors.Is(err, ErrInvalidRule) {
			t.Errorf("case %d: ValidateRule = %v, want ErrInvalidRule", i, err)
		}
	}
}

func TestRulesOverlap(t *testing.T) {
	base := AvailabilityRule{DayOfWeek: 1, StartTime: "08:00", EndTime: "12:00"}

	cases := []struct {
		name  string
		other AvailabilityRule
		want  bool
	}{
		{"identical", AvailabilityRule{DayOfWeek: 1, StartTime: "08:00", EndTime: "12:00"}, true},
		{"partial", AvailabilityRule{DayOfWeek: 1, StartTime: "11:00", EndTime: "14:00"}, true},
		{"contained", AvailabilityRule{DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"}, true},
		{"touching end to start", AvailabilityRule{DayOfWeek: 1, StartTime: "12:00", EndTime: "14:00"}, false},
		{"different weekday", AvailabilityRule{DayOfWeek: 2, StartTime: "08:00", EndTime: "12:00"}, false},
	}
	for _, tc := range cases {
		if got := rulesOverlap(base, tc.other); got != tc.want {
			t.Errorf("%s: rulesOverlap = %v, want %v", tc.name, got, tc.want)
		}
	}
}
