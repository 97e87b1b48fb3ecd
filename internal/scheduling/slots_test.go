package scheduling

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
)

// 2026-03-02 is a Monday.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

func mondayMorningRule() AvailabilityRule {
	return AvailabilityRule{
		ID:             uuid.New(),
		ProfessionalID: uuid.New(),
		DayOfWeek:      1,
		StartTime:      "08:00",
		EndTime:        "10:00",
		IsActive:       true,
	}
}

func TestGenerateSlotsDropsPartialTrailingSlot(t *testing.T) {
	// A 08:00-10:00 window at 50-minute granularity holds exactly two whole
	// slots; the third would run past 10:00 and must not appear.
	slots := GenerateSlots([]AvailabilityRule{mondayMorningRule()}, monday, 1, testPolicy())

	want := []Slot{
		{Date: "2026-03-02", Time: "08:00", Available: true},
		{Date: "2026-03-02", Time: "08:50", Available: true},
	}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("GenerateSlots = %+v, want %+v", slots, want)
	}
}

func TestGenerateSlotsIsDeterministic(t *testing.T) {
	rules := []AvailabilityRule{mondayMorningRule()}
	a := GenerateSlots(rules, monday, 14, testPolicy())
	b := GenerateSlots(rules, monday, 14, testPolicy())
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same rules and range produced different slots")
	}
}

func TestGenerateSlotsMultipleWeeks(t *testing.T) {
	slots := GenerateSlots([]AvailabilityRule{mondayMorningRule()}, monday, 14, testPolicy())

	// Two Mondays fall inside 14 days starting on a Monday.
	if len(slots) != 4 {
		t.Fatalf("got %d slots, want 4: %+v", len(slots), slots)
	}
	if slots[2].Date != "2026-03-09" {
		t.Errorf("second week starts at %s, want 2026-03-09", slots[2].Date)
	}
}

func TestGenerateSlotsDedupesOverlappingRules(t *testing.T) {
	r1 := mondayMorningRule()
	r2 := mondayMorningRule()
	r2.StartTime = "08:00"
	r2.EndTime = "12:00"

	slots := GenerateSlots([]AvailabilityRule{r1, r2}, monday, 1, testPolicy())

	seen := make(map[string]int)
	for _, s := range slots {
		seen[s.Date+"T"+s.Time]++
	}
	for key, n := range seen {
		if n > 1 {
			t.Errorf("slot %s appears %d times", key, n)
		}
	}
}

func TestGenerateSlotsSkipsInactiveRules(t *testing.T) {
	r := mondayMorningRule()
	r.IsActive = false

	if slots := GenerateSlots([]AvailabilityRule{r}, monday, 7, testPolicy()); len(slots) != 0 {
		t.Fatalf("inactive rule produced %d slots", len(slots))
	}
}

func TestGenerateSlotsOrdering(t *testing.T) {
	afternoon := mondayMorningRule()
	afternoon.StartTime = "13:00"
	afternoon.EndTime = "15:00"
	morning := mondayMorningRule()

	// Afternoon rule listed first; output must still come back sorted.
	slots := GenerateSlots([]AvailabilityRule{afternoon, morning}, monday, 8, testPolicy())

	for i := 1; i < len(slots); i++ {
		prev, cur := slots[i-1], slots[i]
		if cur.Date < prev.Date || (cur.Date == prev.Date && cur.Time < prev.Time) {
			t.Fatalf("slots out of order at %d: %+v before %+v", i, prev, cur)
		}
	}
}

func TestReconcileMarksOccupiedSlots(t *testing.T) {
	slots := []Slot{
		{Date: "2026-03-02", Time: "08:00", Available: true},
		{Date: "2026-03-02", Time: "08:50", Available: true},
	}

	appts := []Appointment{
		{Date: "2026-03-02", Time: "08:00", Status: StatusScheduled},
	}

	out := Reconcile(slots, appts)
	if out[0].Available {
		t.Error("slot with a scheduled appointment still available")
	}
	if !out[1].Available {
		t.Error("free slot marked unavailable")
	}
}

func TestReconcileCancelledAppointmentFreesSlot(t *testing.T) {
	slots := []Slot{{Date: "2026-03-02", Time: "08:00", Available: true}}

	for _, st := range []Status{StatusCancelledByPatient, StatusCancelledByClinic, StatusNoShow, StatusRescheduled} {
		out := Reconcile(slots, []Appointment{{Date: "2026-03-02", Time: "08:00", Status: st}})
		if !out[0].Available {
			t.Errorf("status %s should not occupy the slot", st)
		}
	}

	for _, st := range []Status{StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted} {
		out := Reconcile(slots, []Appointment{{Date: "2026-03-02", Time: "08:00", Status: st}})
		if out[0].Available {
			t.Errorf("status %s should occupy the slot", st)
		}
	}
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	slots := []Slot{{Date: "2026-03-02", Time: "08:00", Available: true}}
	_ = Reconcile(slots, []Appointment{{Date: "2026-03-02", Time: "08:00", Status: StatusScheduled}})
	if !slots[0].Available {
		t.Fatal("Reconcile mutated its input slice")
	}
}
