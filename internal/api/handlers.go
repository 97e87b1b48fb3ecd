package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicore/clinic-scheduling/internal/scheduling"
)

// SchedulingService is what the handlers need from the scheduling core.
type SchedulingService interface {
	ListAvailability(ctx context.Context, professionalID uuid.UUID, daysAhead int) ([]scheduling.Slot, error)
	CreateAvailabilityRules(ctx context.Context, professionalID uuid.UUID, rules []scheduling.AvailabilityRule) ([]scheduling.AvailabilityRule, error)
	ScheduleAppointment(ctx context.Context, req scheduling.BookingRequest) (*scheduling.Appointment, error)
	Reschedule(ctx context.Context, requesterID uuid.UUID, role scheduling.Role, appointmentID uuid.UUID, newDate, newTime string) (*scheduling.Appointment, error)
	ClinicReschedule(ctx context.Context, requesterID uuid.UUID, role scheduling.Role, appointmentID uuid.UUID, newDate, newTime string) (*scheduling.Appointment, error)
	Confirm(ctx context.Context, requesterID uuid.UUID, role scheduling.Role, appointmentID uuid.UUID) (*scheduling.Appointment, error)
	CheckIn(ctx context.Context, requesterID uuid.UUID, role scheduling.Role, appointmentID uuid.UUID) (*scheduling.Appointment, error)
	Complete(ctx context.Context, requesterID uuid.UUID, role scheduling.Role, appointmentID uuid.UUID) (*scheduling.Appointment, error)
	MarkNoShow(ctx context.Context, requesterID uuid.UUID, role scheduling.Role, appointmentID uuid.UUID) (*scheduling.Appointment, error)
	Cancel(ctx context.Context, requesterID uuid.UUID, role scheduling.Role, appointmentID uuid.UUID, reason string) (*scheduling.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error)
	ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]scheduling.Appointment, error)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// writeServiceError maps scheduling sentinels onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch scheduling.KindOf(err) {
	case scheduling.KindValidation:
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case scheduling.KindForbidden:
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case scheduling.KindNotFound:
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case scheduling.KindConflict:
		writeError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func listAvailabilityHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		professionalID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_professional_id", "id must be a valid UUID")
			return
		}

		days := 0
		if v := r.URL.Query().Get("days"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "invalid_days", "days must be a non-negative integer")
				return
			}
			days = n
		}

		slots, err := svc.ListAvailability(r.Context(), professionalID, days)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toSlotResponses(slots))
	}
}

func createAvailabilityHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		professionalID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_professional_id", "id must be a valid UUID")
			return
		}

		var req CreateAvailabilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		rules := make([]scheduling.AvailabilityRule, len(req.Rules))
		for i, in := range req.Rules {
			rules[i] = scheduling.AvailabilityRule{
				DayOfWeek: in.DayOfWeek,
				StartTime: in.StartTime,
				EndTime:   in.EndTime,
			}
		}

		created, err := svc.CreateAvailabilityRules(r.Context(), professionalID, rules)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toRuleResponses(created))
	}
}

func bookAppointmentHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}
		professionalID, err := uuid.Parse(req.ProfessionalID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_professional_id", "professional_id must be a valid UUID")
			return
		}

		appt, err := svc.ScheduleAppointment(r.Context(), scheduling.BookingRequest{
			PatientID:      patientID,
			ProfessionalID: professionalID,
			Date:           req.Date,
			Time:           req.Time,
			Type:           scheduling.AppointmentType(req.Type),
			Notes:          req.Notes,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func getAppointmentHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func listAppointmentsHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := uuid.Parse(r.URL.Query().Get("patient_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		appts, err := svc.ListAppointmentsByPatient(r.Context(), patientID, limit, offset)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]AppointmentResponse, len(appts))
		for i := range appts {
			out[i] = toAppointmentResponse(&appts[i])
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// parseAction reads the shared requester envelope for transition endpoints.
func parseAction(w http.ResponseWriter, r *http.Request) (uuid.UUID, scheduling.Role, uuid.UUID, *ActionRequest, bool) {
	appointmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return uuid.Nil, "", uuid.Nil, nil, false
	}

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return uuid.Nil, "", uuid.Nil, nil, false
	}

	requesterID, err := uuid.Parse(req.RequesterID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_requester_id", "requester_id must be a valid UUID")
		return uuid.Nil, "", uuid.Nil, nil, false
	}

	return requesterID, scheduling.Role(req.RequesterRole), appointmentID, &req, true
}

func rescheduleHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requesterID, role, appointmentID, req, ok := parseAction(w, r)
		if !ok {
			return
		}

		appt, err := svc.Reschedule(r.Context(), requesterID, role, appointmentID, req.Date, req.Time)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func clinicRescheduleHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requesterID, role, appointmentID, req, ok := parseAction(w, r)
		if !ok {
			return
		}

		appt, err := svc.ClinicReschedule(r.Context(), requesterID, role, appointmentID, req.Date, req.Time)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func cancelHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requesterID, role, appointmentID, req, ok := parseAction(w, r)
		if !ok {
			return
		}

		appt, err := svc.Cancel(r.Context(), requesterID, role, appointmentID, req.Reason)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

type transitionFunc func(ctx context.Context, requesterID uuid.UUID, role scheduling.Role, appointmentID uuid.UUID) (*scheduling.Appointment, error)

func transitionHandler(fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requesterID, role, appointmentID, _, ok := parseAction(w, r)
		if !ok {
			return
		}

		appt, err := fn(r.Context(), requesterID, role, appointmentID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}
