package scheduling

import (
	"sort"
	"time"

	"github.com/clinicore/clinic-scheduling/internal/config"
)

// GenerateSlots expands recurring weekly rules into concrete dated slots over
// daysAhead days starting at from. Within each rule's [start, end) window the
// slot starts step by the configured granularity anchored at the rule's start;
// a trailing slot that would cross end is dropped, never rounded. Overlapping
// rules may yield duplicate candidates, so the result is deduplicated by
// (date, time) and ordered the same way. Every slot comes back available;
// occupancy is the reconciler's job.
func GenerateSlots(rules []AvailabilityRule, from time.Time, daysAhead int, pol config.SchedulingPolicy) []Slot {
	if daysAhead <= 0 || pol.SlotMinutes <= 0 {
		return nil
	}

	byWeekday := make(map[int][]AvailabilityRule)
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		byWeekday[r.DayOfWeek] = append(byWeekday[r.DayOfWeek], r)
	}

	seen := make(map[string]struct{})
	var slots []Slot

	for offset := 0; offset < daysAhead; offset++ {
		day := from.AddDate(0, 0, offset)
		dateStr := day.Format(dateLayout)

		for _, r := range byWeekday[int(day.Weekday())] {
			start, err := ParseClock(r.StartTime)
			if err != nil {
				continue
			}
			end, err := ParseClock(r.EndTime)
			if err != nil {
				continue
			}

			for t := start; t+pol.SlotMinutes <= end; t += pol.SlotMinutes {
				timeStr := formatClock(t)
				key := dateStr + "T" + timeStr
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				slots = append(slots, Slot{Date: dateStr, Time: timeStr, Available: true})
			}
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		return slots[i].Time < slots[j].Time
	})

	return slots
}

// Reconcile marks slots taken by appointments that still occupy them.
// Pure function: the appointment list is supplied by the caller, already
// fetched for the relevant professional and date range.
func Reconcile(slots []Slot, appointments []Appointment) []Slot {
	occupied := make(map[string]struct{}, len(appointments))
	for _, a := range appointments {
		if a.Status.Occupies() {
			occupied[a.Date+"T"+a.Time] = struct{}{}
		}
	}

	out := make([]Slot, len(slots))
	for i, s := range slots {
		if _, taken := occupied[s.Date+"T"+s.Time]; taken {
			s.Available = false
		}
		out[i] = s
	}
	return out
}
