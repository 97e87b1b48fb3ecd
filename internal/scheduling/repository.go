package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrProfessionalNotFound = errors.New("professional not found")
	ErrAppointmentNotFound  = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetProfessionalByID(ctx context.Context, id uuid.UUID) (*Professional, error)

	// Availability rules
	ListActiveRules(ctx context.Context, professionalID uuid.UUID) ([]AvailabilityRule, error)
	CreateRules(ctx context.Context, rules []AvailabilityRule) ([]AvailabilityRule, error)

	// Reads for the reconciler and listings
	ListAppointmentsInRange(ctx context.Context, professionalID uuid.UUID, fromDate, toDate string) ([]Appointment, error)
	ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error)
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// Conflict checks inside the booking critical section
	LiveAppointmentAt(ctx context.Context, professionalID uuid.UUID, date, timeOfDay string) (*Appointment, error)
	PatientAppointmentOn(ctx context.Context, patientID, professionalID uuid.UUID, date string) (*Appointment, error)

	// Creation and updates
	CreateAppointment(ctx context.Context, appt Appointment) (*Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error)
	CancelAppointment(ctx context.Context, id uuid.UUID, from, to Status, reason string, cancelledBy uuid.UUID) (*Appointment, error)
	RescheduleAppointment(ctx context.Context, id uuid.UUID, newDate, newTime string) (*Appointment, error)

	// No-show worker
	FindOverdue(ctx context.Context, endedBefore time.Time) ([]Appointment, error)

	// Audit trail
	InsertEvent(ctx context.Context, ev AppointmentEvent) error
}
