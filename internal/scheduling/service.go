package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-scheduling/internal/config"
	redisclient "github.com/clinicore/clinic-scheduling/internal/redis"
)

const (
	EventBooked            = "APPOINTMENT_BOOKED"
	EventConfirmed         = "APPOINTMENT_CONFIRMED"
	EventCheckedIn         = "APPOINTMENT_CHECKED_IN"
	EventCompleted         = "APPOINTMENT_COMPLETED"
	EventCancelled         = "APPOINTMENT_CANCELLED"
	EventNoShow            = "APPOINTMENT_NO_SHOW"
	EventRescheduled       = "APPOINTMENT_RESCHEDULED"
	EventClinicRescheduled = "APPOINTMENT_CLINIC_RESCHEDULED"
	EventLateFeeFlagged    = "LATE_RESCHEDULE_FEE_FLAGGED"
)

type Service struct {
	repo   Repository
	locker redisclient.Locker
	policy config.SchedulingPolicy
	log    zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, locker redisclient.Locker, policy config.SchedulingPolicy, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		policy: policy,
		log:    log,
		now:    time.Now,
	}
}

// ListAvailability generates the professional's bookable slots over daysAhead
// days and reconciles them against existing live appointments. A professional
// with no rules yields an empty list, not an error.
func (s *Service) ListAvailability(ctx context.Context, professionalID uuid.UUID, daysAhead int) ([]Slot, error) {
	if daysAhead <= 0 {
		daysAhead = s.policy.DefaultDaysAhead
	}
	if daysAhead > s.policy.MaxHorizonDays {
		daysAhead = s.policy.MaxHorizonDays
	}

	if _, err := s.repo.GetProfessionalByID(ctx, professionalID); err != nil {
		return nil, err
	}

	rules, err := s.repo.ListActiveRules(ctx, professionalID)
	if err != nil {
		return nil, fmt.Errorf("list availability rules: %w", err)
	}

	today := s.today()
	slots := GenerateSlots(rules, today, daysAhead, s.policy)
	if len(slots) == 0 {
		return []Slot{}, nil
	}

	fromDate := today.Format(dateLayout)
	toDate := today.AddDate(0, 0, daysAhead-1).Format(dateLayout)
	appts, err := s.repo.ListAppointmentsInRange(ctx, professionalID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("list appointments in range: %w", err)
	}

	return Reconcile(slots, appts), nil
}

// CreateAvailabilityRules creates a batch of recurring weekly rules for one
// professional. Rejects malformed windows and overlaps with existing active
// rules or with other rules in the same batch.
func (s *Service) CreateAvailabilityRules(ctx context.Context, professionalID uuid.UUID, rules []AvailabilityRule) ([]AvailabilityRule, error) {
	if len(rules) == 0 {
		return nil, ErrInvalidRule
	}

	if _, err := s.repo.GetProfessionalByID(ctx, professionalID); err != nil {
		return nil, err
	}

	existing, err := s.repo.ListActiveRules(ctx, professionalID)
	if err != nil {
		return nil, fmt.Errorf("list availability rules: %w", err)
	}

	for i := range rules {
		rules[i].ID = uuid.New()
		rules[i].ProfessionalID = professionalID
		rules[i].IsActive = true

		if err := ValidateRule(rules[i]); err != nil {
			return nil, err
		}
		for _, ex := range existing {
			if rulesOverlap(rules[i], ex) {
				return nil, ErrRuleOverlap
			}
		}
		for j := 0; j < i; j++ {
			if rulesOverlap(rules[i], rules[j]) {
				return nil, ErrRuleOverlap
			}
		}
	}

	created, err := s.repo.CreateRules(ctx, rules)
	if err != nil {
		return nil, fmt.Errorf("create availability rules: %w", err)
	}

	s.log.Info().
		Str("professional_id", professionalID.String()).
		Int("rules", len(created)).
		Msg("availability rules created")

	return created, nil
}

// ScheduleAppointment validates a booking request against the full rule chain
// and persists it with the professional's current price frozen on. The
// critical section between the conflict checks and the insert runs under a
// per-slot Redis lock; the partial unique indexes in storage remain the final
// backstop and surface as the same conflict errors.
func (s *Service) ScheduleAppointment(ctx context.Context, req BookingRequest) (*Appointment, error) {
	if _, err := s.repo.GetPatientByID(ctx, req.PatientID); err != nil {
		return nil, err
	}
	prof, err := s.repo.GetProfessionalByID(ctx, req.ProfessionalID)
	if err != nil {
		return nil, err
	}

	rules, err := s.repo.ListActiveRules(ctx, req.ProfessionalID)
	if err != nil {
		return nil, fmt.Errorf("list availability rules: %w", err)
	}

	if err := ValidateBookingTime(req.Date, req.Time, req.Type, rules, s.now(), s.policy); err != nil {
		return nil, err
	}

	// Advisory for bookings: a time outside the professional's windows is
	// logged, not rejected. Zero configured rules fall through to the
	// permissive default unless policy says otherwise.
	if !availableAt(rules, req.Date, req.Time, s.policy) {
		if len(rules) == 0 {
			return nil, ErrOutsideAvailability
		}
		s.log.Warn().
			Str("professional_id", req.ProfessionalID.String()).
			Str("date", req.Date).
			Str("time", req.Time).
			Msg("booking outside configured availability")
	}

	var created *Appointment

	err = s.locker.WithSlotLock(ctx, req.ProfessionalID, req.Date, req.Time, func(lockCtx context.Context) error {
		// Re-check conflicts inside the critical section.
		if _, err := s.repo.PatientAppointmentOn(lockCtx, req.PatientID, req.ProfessionalID, req.Date); err == nil {
			return ErrPatientDayTaken
		} else if !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check patient day conflict: %w", err)
		}

		if _, err := s.repo.LiveAppointmentAt(lockCtx, req.ProfessionalID, req.Date, req.Time); err == nil {
			return ErrSlotTaken
		} else if !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check slot conflict: %w", err)
		}

		appt := Appointment{
			ID:              uuid.New(),
			PatientID:       req.PatientID,
			ProfessionalID:  req.ProfessionalID,
			Date:            req.Date,
			Time:            req.Time,
			DurationMinutes: s.policy.SlotMinutes,
			Type:            req.Type,
			Status:          StatusScheduled,
			Price:           prof.Price,
			PaymentStatus:   PaymentPending,
		}
		if req.Notes != "" {
			notes := req.Notes
			appt.Notes = &notes
		}

		result, err := s.repo.CreateAppointment(lockCtx, appt)
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		created = result

		s.logEvent(lockCtx, result.ID, EventBooked, map[string]any{
			"patient_id":      req.PatientID.String(),
			"professional_id": req.ProfessionalID.String(),
			"date":            req.Date,
			"time":            req.Time,
			"price":           prof.Price,
		})
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBusy
		}
		return nil, err
	}

	return created, nil
}

// Reschedule moves an existing appointment to a new date and time. Only the
// owning patient may self-serve reschedule; staff use ClinicReschedule. The
// new slot passes the same temporal rules as a fresh booking, and the
// professional must actually attend then (hard check here, unlike booking).
// When the original slot was inside the free-reschedule window the move still
// succeeds but a fee is flagged.
func (s *Service) Reschedule(ctx context.Context, requesterID uuid.UUID, role Role, appointmentID uuid.UUID, newDate, newTime string) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if role != RolePatient || appt.PatientID != requesterID {
		return nil, ErrNotAppointmentOwner
	}

	if appt.Status != StatusScheduled && appt.Status != StatusConfirmed {
		return nil, ErrInvalidTransition
	}

	rules, err := s.repo.ListActiveRules(ctx, appt.ProfessionalID)
	if err != nil {
		return nil, fmt.Errorf("list availability rules: %w", err)
	}

	now := s.now()
	if err := ValidateBookingTime(newDate, newTime, appt.Type, rules, now, s.policy); err != nil {
		return nil, err
	}

	if !availableAt(rules, newDate, newTime, s.policy) {
		return nil, ErrOutsideAvailability
	}

	var updated *Appointment

	err = s.locker.WithSlotLock(ctx, appt.ProfessionalID, newDate, newTime, func(lockCtx context.Context) error {
		if other, err := s.repo.LiveAppointmentAt(lockCtx, appt.ProfessionalID, newDate, newTime); err == nil && other.ID != appt.ID {
			return ErrSlotTaken
		} else if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check slot conflict: %w", err)
		}

		result, err := s.repo.RescheduleAppointment(lockCtx, appt.ID, newDate, newTime)
		if err != nil {
			return fmt.Errorf("reschedule appointment: %w", err)
		}
		updated = result
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBusy
		}
		return nil, err
	}

	s.logEvent(ctx, appt.ID, EventRescheduled, map[string]any{
		"from_date": appt.Date,
		"from_time": appt.Time,
		"to_date":   newDate,
		"to_time":   newTime,
	})

	// Late-change penalty: flagged against the ORIGINAL slot's lead time,
	// never a hard failure.
	if originalAt, derr := CombineDateTime(appt.Date, appt.Time); derr == nil {
		if originalAt.Sub(now) < s.policy.RescheduleFreeWindow {
			s.log.Warn().
				Str("appointment_id", appt.ID.String()).
				Str("original_date", appt.Date).
				Str("original_time", appt.Time).
				Msg("late reschedule, fee applies")
			s.logEvent(ctx, appt.ID, EventLateFeeFlagged, map[string]any{
				"original_date": appt.Date,
				"original_time": appt.Time,
			})
		}
	}

	return updated, nil
}

// ClinicReschedule is the staff-initiated reschedule-and-relabel flow: the
// old record keeps its history under status rescheduled and a replacement row
// is created at the new slot.
func (s *Service) ClinicReschedule(ctx context.Context, requesterID uuid.UUID, role Role, appointmentID uuid.UUID, newDate, newTime string) (*Appointment, error) {
	if !role.Staff() {
		return nil, ErrRoleNotAllowed
	}

	appt, err := s.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(appt.Status, StatusRescheduled) {
		return nil, ErrInvalidTransition
	}

	rules, err := s.repo.ListActiveRules(ctx, appt.ProfessionalID)
	if err != nil {
		return nil, fmt.Errorf("list availability rules: %w", err)
	}

	if err := ValidateBookingTime(newDate, newTime, appt.Type, rules, s.now(), s.policy); err != nil {
		return nil, err
	}

	var replacement *Appointment

	err = s.locker.WithSlotLock(ctx, appt.ProfessionalID, newDate, newTime, func(lockCtx context.Context) error {
		if _, err := s.repo.LiveAppointmentAt(lockCtx, appt.ProfessionalID, newDate, newTime); err == nil {
			return ErrSlotTaken
		} else if !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check slot conflict: %w", err)
		}

		if _, err := s.repo.UpdateAppointmentStatus(lockCtx, appt.ID, appt.Status, StatusRescheduled); err != nil {
			return fmt.Errorf("relabel appointment: %w", err)
		}

		next := *appt
		next.ID = uuid.New()
		next.Date = newDate
		next.Time = newTime
		next.Status = StatusScheduled

		result, err := s.repo.CreateAppointment(lockCtx, next)
		if err != nil {
			return fmt.Errorf("create replacement appointment: %w", err)
		}
		replacement = result

		s.logEvent(lockCtx, appt.ID, EventClinicRescheduled, map[string]any{
			"replacement_id": result.ID.String(),
			"to_date":        newDate,
			"to_time":        newTime,
			"requested_by":   requesterID.String(),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBusy
		}
		return nil, err
	}

	return replacement, nil
}

// Confirm moves a scheduled appointment to confirmed. Staff only.
func (s *Service) Confirm(ctx context.Context, requesterID uuid.UUID, role Role, appointmentID uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, requesterID, role, appointmentID, StatusConfirmed, EventConfirmed)
}

// CheckIn marks a confirmed appointment as in progress. Staff only.
func (s *Service) CheckIn(ctx context.Context, requesterID uuid.UUID, role Role, appointmentID uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, requesterID, role, appointmentID, StatusInProgress, EventCheckedIn)
}

// Complete closes out an in-progress appointment. Staff only.
func (s *Service) Complete(ctx context.Context, requesterID uuid.UUID, role Role, appointmentID uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, requesterID, role, appointmentID, StatusCompleted, EventCompleted)
}

// MarkNoShow flags a missed appointment. Staff only.
func (s *Service) MarkNoShow(ctx context.Context, requesterID uuid.UUID, role Role, appointmentID uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, requesterID, role, appointmentID, StatusNoShow, EventNoShow)
}

// Cancel cancels a pre-visit appointment. The owning patient or staff may
// cancel; the recorded status reflects who did it. Cancelling a completed or
// already-cancelled appointment is invalid.
func (s *Service) Cancel(ctx context.Context, requesterID uuid.UUID, role Role, appointmentID uuid.UUID, reason string) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	to := cancelStatusFor(role)

	if err := authorizeTransition(appt, to, requesterID, role); err != nil {
		return nil, err
	}
	if !CanTransition(appt.Status, to) {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repo.CancelAppointment(ctx, appt.ID, appt.Status, to, reason, requesterID)
	if err != nil {
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	s.logEvent(ctx, updated.ID, EventCancelled, map[string]any{
		"status":       string(to),
		"reason":       reason,
		"cancelled_by": requesterID.String(),
	})

	return updated, nil
}

func (s *Service) transition(ctx context.Context, requesterID uuid.UUID, role Role, appointmentID uuid.UUID, to Status, eventType string) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if err := authorizeTransition(appt, to, requesterID, role); err != nil {
		return nil, err
	}
	if !CanTransition(appt.Status, to) {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, appt.Status, to)
	if err != nil {
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	s.logEvent(ctx, updated.ID, eventType, map[string]any{})

	return updated, nil
}

// GetAppointment retrieves a single appointment by ID.
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetAppointmentByID(ctx, id)
}

// ListAppointmentsByPatient retrieves a patient's appointments, newest first.
func (s *Service) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	if limit <= 0 {
		limit = 20 // default
	}
	if limit > 100 {
		limit = 100 // max
	}
	if offset < 0 {
		offset = 0
	}

	appointments, err := s.repo.ListAppointmentsByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return appointments, nil
}

// ExpireOverdueAppointments is called periodically by the no-show worker: any
// scheduled or confirmed appointment whose slot ended more than the grace
// period ago is marked no_show.
func (s *Service) ExpireOverdueAppointments(ctx context.Context, grace time.Duration) error {
	cutoff := s.now().Add(-grace)
	overdue, err := s.repo.FindOverdue(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("find overdue appointments: %w", err)
	}

	for _, appt := range overdue {
		if _, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, appt.Status, StatusNoShow); err != nil {
			if errors.Is(err, ErrAppointmentNotFound) {
				continue
			}
			s.log.Error().Err(err).Str("appointment_id", appt.ID.String()).Msg("failed to mark no-show")
			continue
		}
		s.logEvent(ctx, appt.ID, EventNoShow, map[string]any{
			"reason": "worker",
		})
	}

	return nil
}

func (s *Service) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		data = nil
	}

	apptID := appointmentID

	ev := AppointmentEvent{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     s.now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.log.Error().Err(err).
			Str("event_type", eventType).
			Str("appointment_id", appointmentID.String()).
			Msg("failed to insert appointment event")
	}
}
