package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-scheduling/internal/scheduling"
)

type BookAppointmentRequest struct {
	PatientID      string `json:"patient_id"`
	ProfessionalID string `json:"professional_id"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Type           string `json:"type"`
	Notes          string `json:"notes,omitempty"`
}

// ActionRequest covers the status-transition and reschedule endpoints. Auth
// is external, so the requester arrives as plain fields.
type ActionRequest struct {
	RequesterID   string `json:"requester_id"`
	RequesterRole string `json:"requester_role"`
	Date          string `json:"date,omitempty"`
	Time          string `json:"time,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

type RuleInput struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type CreateAvailabilityRequest struct {
	Rules []RuleInput `json:"rules"`
}

type SlotResponse struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	IsAvailable bool   `json:"is_available"`
}

type RuleResponse struct {
	ID             uuid.UUID `json:"id"`
	ProfessionalID uuid.UUID `json:"professional_id"`
	DayOfWeek      int       `json:"day_of_week"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`
	IsActive       bool      `json:"is_active"`
}

type AppointmentResponse struct {
	ID                 uuid.UUID  `json:"id"`
	PatientID          uuid.UUID  `json:"patient_id"`
	ProfessionalID     uuid.UUID  `json:"professional_id"`
	Date               string     `json:"date"`
	Time               string     `json:"time"`
	DurationMinutes    int        `json:"duration_minutes"`
	Type               string     `json:"type"`
	Status             string     `json:"status"`
	Price              float64    `json:"price"`
	PaymentStatus      string     `json:"payment_status"`
	Notes              *string    `json:"notes,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	CancelledBy        *uuid.UUID `json:"cancelled_by,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toSlotResponses(slots []scheduling.Slot) []SlotResponse {
	out := make([]SlotResponse, len(slots))
	for i, s := range slots {
		out[i] = SlotResponse{Date: s.Date, Time: s.Time, IsAvailable: s.Available}
	}
	return out
}

func toRuleResponses(rules []scheduling.AvailabilityRule) []RuleResponse {
	out := make([]RuleResponse, len(rules))
	for i, r := range rules {
		out[i] = RuleResponse{
			ID:             r.ID,
			ProfessionalID: r.ProfessionalID,
			DayOfWeek:      r.DayOfWeek,
			StartTime:      r.StartTime,
			EndTime:        r.EndTime,
			IsActive:       r.IsActive,
		}
	}
	return out
}

func toAppointmentResponse(a *scheduling.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:                 a.ID,
		PatientID:          a.PatientID,
		ProfessionalID:     a.ProfessionalID,
		Date:               a.Date,
		Time:               a.Time,
		DurationMinutes:    a.DurationMinutes,
		Type:               string(a.Type),
		Status:             string(a.Status),
		Price:              a.Price,
		PaymentStatus:      string(a.PaymentStatus),
		Notes:              a.Notes,
		CancellationReason: a.CancellationReason,
		CancelledBy:        a.CancelledBy,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}
