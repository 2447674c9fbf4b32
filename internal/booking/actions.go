package booking

import (
	"context"

	"clinicdesk/internal/metrics"
	"clinicdesk/internal/models"
)

// Actions are the one-shot operations of the appointment detail panel.
type Actions struct {
	deps Deps
}

// NewActions creates the detail panel actions over deps.
func NewActions(deps Deps) *Actions {
	return &Actions{deps: deps}
}

// Cancel cancels appt by booking id, falling back to id. Without either no
// call is made.
func (a *Actions) Cancel(ctx context.Context, appt models.Appointment) error {
	return a.run(ctx, "cancel", appt, appt.Key(), a.deps.API.CancelAppointment)
}

// Complete marks appt completed. The backend looks it up by document id, so
// id goes first and booking id is the fallback.
func (a *Actions) Complete(ctx context.Context, appt models.Appointment) error {
	key := appt.ID
	if key == "" {
		key = appt.BookingID
	}
	return a.run(ctx, "complete", appt, key, a.deps.API.CompleteAppointment)
}

func (a *Actions) run(ctx context.Context, action string, appt models.Appointment, key string, call func(context.Context, string) error) error {
	if key == "" {
		metrics.IncWorkflowOutcome(action, "invalid")
		return ErrMissingBookingID
	}
	logger := a.deps.Logger.With().Str("component", "booking").Str("action", action).Str("booking_id", key).Logger()
	if err := call(ctx, key); err != nil {
		metrics.IncWorkflowOutcome(action, "failed")
		logger.Warn().Err(err).Msg("appointment action failed")
		return err
	}
	metrics.IncWorkflowOutcome(action, "success")
	logger.Info().Msg("appointment updated")
	a.deps.publish(action, appt)
	return nil
}
