package scheduling

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusScheduled          Status = "scheduled"
	StatusConfirmed          Status = "confirmed"
	StatusInProgress         Status = "in_progress"
	StatusCompleted          Status = "completed"
	StatusCancelledByPatient Status = "cancelled_by_patient"
	StatusCancelledByClinic  Status = "cancelled_by_clinic"
	StatusNoShow             Status = "no_show"
	StatusRescheduled        Status = "rescheduled"
)

// Occupies reports whether an appointment in this status still holds its slot.
// Cancelled, no-show and superseded records free the slot for rebooking.
func (s Status) Occupies() bool {
	switch s {
	case StatusCancelledByPatient, StatusCancelledByClinic, StatusNoShow, StatusRescheduled:
		return false
	}
	return true
}

func (s Status) Cancelled() bool {
	return s == StatusCancelledByPatient || s == StatusCancelledByClinic
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type AppointmentType string

const (
	TypeInPerson AppointmentType = "in_person"
	TypeOnline   AppointmentType = "online"
)

func (t AppointmentType) Valid() bool {
	return t == TypeInPerson || t == TypeOnline
}

type Role string

const (
	RolePatient      Role = "patient"
	RoleProfessional Role = "professional"
	RoleReceptionist Role = "receptionist"
	RoleAdmin        Role = "admin"
)

// Staff reports whether the role belongs to clinic personnel.
func (r Role) Staff() bool {
	return r == RoleProfessional || r == RoleReceptionist || r == RoleAdmin
}

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Professional struct {
	ID        uuid.UUID
	Name      string
	Specialty *string
	Price     float64 // current consultation rate, frozen onto appointments at booking
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AvailabilityRule is a recurring weekly window during which a professional
// accepts bookings. Deactivated rather than deleted in normal flows.
type AvailabilityRule struct {
	ID             uuid.UUID
	ProfessionalID uuid.UUID
	DayOfWeek      int    // 0=Sunday .. 6=Saturday
	StartTime      string // HH:MM
	EndTime        string // HH:MM, exclusive
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Appointment struct {
	ID                 uuid.UUID
	PatientID          uuid.UUID
	ProfessionalID     uuid.UUID
	Date               string // YYYY-MM-DD
	Time               string // HH:MM
	DurationMinutes    int
	Type               AppointmentType
	Status             Status
	Price              float64
	PaymentStatus      PaymentStatus
	Notes              *string
	CancellationReason *string
	CancelledBy        *uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Slot is derived, never persisted: regenerated per request from the rules.
type Slot struct {
	Date      string
	Time      string
	Available bool
}

type AppointmentEvent struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
