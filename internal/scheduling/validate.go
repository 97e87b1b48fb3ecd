package scheduling

import (
	"fmt"
	"time"

	"github.com/clinicore/clinic-scheduling/internal/config"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ParseDate parses a calendar-valid YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return d, nil
}

// ParseClock parses HH:MM into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return 0, ErrBadTime
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// CombineDateTime resolves a date and clock string into a local wall-clock instant.
func CombineDateTime(date, clock string) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(time.Duration(m) * time.Minute), nil
}

// WithinWorkingHours checks the global working-hour bounds; the upper bound is
// exclusive in the slot sense (a slot may not start at closing time).
func WithinWorkingHours(clockMin int, pol config.SchedulingPolicy) bool {
	start, err := ParseClock(pol.WorkdayStart)
	if err != nil {
		return false
	}
	end, err := ParseClock(pol.WorkdayEnd)
	if err != nil {
		return false
	}
	return clockMin >= start && clockMin < end
}

// closedWeekday reports whether the clinic does not take bookings on this weekday.
func closedWeekday(wd time.Weekday, pol config.SchedulingPolicy) bool {
	return wd == time.Sunday && !pol.SundayBookings
}

// alignedTo reports whether clockMin is reachable from anchorMin by whole
// granularity steps. Bookings at arbitrary minute offsets are rejected with this.
func alignedTo(clockMin, anchorMin, slotMinutes int) bool {
	if clockMin < anchorMin || slotMinutes <= 0 {
		return false
	}
	return (clockMin-anchorMin)%slotMinutes == 0
}

// coveringRule finds an active rule for the weekday whose [start, end) window
// contains the clock minute.
func coveringRule(rules []AvailabilityRule, weekday time.Weekday, clockMin int) (AvailabilityRule, bool) {
	for _, r := range rules {
		if !r.IsActive || r.DayOfWeek != int(weekday) {
			continue
		}
		start, err := ParseClock(r.StartTime)
		if err != nil {
			continue
		}
		end, err := ParseClock(r.EndTime)
		if err != nil {
			continue
		}
		if clockMin >= start && clockMin < end {
			return r, true
		}
	}
	return AvailabilityRule{}, false
}

// ValidateRule checks a single availability rule's shape at the storage
// boundary: weekday range, HH:MM formats, start strictly before end.
func ValidateRule(r AvailabilityRule) error {
	if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
		return ErrInvalidRule
	}
	start, err := ParseClock(r.StartTime)
	if err != nil {
		return ErrInvalidRule
	}
	end, err := ParseClock(r.EndTime)
	if err != nil {
		return ErrInvalidRule
	}
	if start >= end {
		return ErrInvalidRule
	}
	return nil
}

// rulesOverlap reports whether two rules for the same professional collide.
// Windows are half-open, so touching end-to-start is not an overlap.
func rulesOverlap(a, b AvailabilityRule) bool {
	if a.DayOfWeek != b.DayOfWeek {
		return false
	}
	aStart, _ := ParseClock(a.StartTime)
	aEnd, _ := ParseClock(a.EndTime)
	bStart, _ := ParseClock(b.StartTime)
	bEnd, _ := ParseClock(b.EndTime)
	return aStart < bEnd && bStart < aEnd
}
