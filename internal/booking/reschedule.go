package booking

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"clinicdesk/internal/metrics"
	"clinicdesk/internal/models"
	"clinicdesk/internal/slots"
)

// Reschedule moves one existing appointment to another date or time.
type Reschedule struct {
	machine
	deps   Deps
	logger zerolog.Logger

	appt     models.Appointment
	date     string
	slots    []string
	taken    slots.Taken
	selected string
	lastErr  error
	result   *models.Appointment
}

// NewReschedule opens the dialog on the appointment's own date, or today
// when the appointment carries none.
func NewReschedule(deps Deps, appt models.Appointment) *Reschedule {
	date := appt.ISODate()
	if date == "" {
		date = deps.now().Format(models.ISODateLayout)
	}
	return &Reschedule{
		machine: machine{fsm: NewFSM(), state: StateIdle},
		deps:    deps,
		logger: deps.Logger.With().
			Str("component", "booking").
			Str("workflow", "reschedule").
			Str("booking_id", appt.Key()).
			Logger(),
		appt:  appt,
		date:  date,
		taken: slots.Taken{},
	}
}

// Load fetches the current date's slots and appointments.
func (r *Reschedule) Load(ctx context.Context) error {
	r.mu.Lock()
	date := r.date
	r.mu.Unlock()
	return r.SetDate(ctx, date)
}

// SetDate switches to date and re-fetches both the slot list and the day's
// appointments for the appointment's doctor and location, then recomputes
// the taken set. The current time stays selected only if it is offered.
func (r *Reschedule) SetDate(ctx context.Context, date string) error {
	iso := models.NormalizeDate(date)
	if iso == "" {
		return ErrMissingDate
	}
	if r.appt.DoctorID == "" {
		return ErrMissingDoctor
	}
	if r.appt.LocationID == "" {
		return ErrMissingLocation
	}

	r.mu.Lock()
	if r.state == StateSubmitting {
		r.mu.Unlock()
		return ErrSubmitting
	}
	if !r.transition(StateListsLoading) {
		st := r.state
		r.mu.Unlock()
		return fmt.Errorf("%w: cannot load in state %s", ErrNotReady, st)
	}
	r.date = iso
	r.selected = ""
	r.mu.Unlock()

	var (
		rawSlots []string
		dayAppts []models.Appointment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rawSlots, err = r.deps.API.FetchSlots(gctx, iso, r.appt.DoctorID, r.appt.LocationID)
		return err
	})
	g.Go(func() error {
		var err error
		dayAppts, err = r.deps.API.FetchAppointmentsByDate(gctx, iso)
		return err
	})
	err := g.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.slots = nil
		r.taken = slots.Taken{}
		r.lastErr = err
		r.transition(StateIdle)
		r.logger.Warn().Err(err).Str("date", iso).Msg("failed to load slots")
		return err
	}
	r.slots = slots.NormalizeSlots(rawSlots)
	r.taken = slots.TakenTimes(dayAppts, r.appt, iso)
	r.lastErr = nil
	for _, s := range r.slots {
		if s == r.appt.Time {
			r.selected = s
			break
		}
	}
	r.transition(StateReady)
	return nil
}

// Date returns the target date.
func (r *Reschedule) Date() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.date
}

// Slots returns the offered times for the target date.
func (r *Reschedule) Slots() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.slots...)
}

// Taken returns the times held by other confirmed appointments.
func (r *Reschedule) Taken() slots.Taken {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(slots.Taken, len(r.taken))
	for k, v := range r.taken {
		out[k] = v
	}
	return out
}

// Selected returns the chosen time, or "".
func (r *Reschedule) Selected() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selected
}

// Err returns the last failure, for display.
func (r *Reschedule) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Select chooses a time. It must be offered on the target date or be the
// appointment's current time. Taken times can be selected but not saved.
func (r *Reschedule) Select(raw string) error {
	t, ok := models.NormalizeTime(raw)
	if !ok {
		return ErrInvalidTime
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateSubmitting {
		return ErrSubmitting
	}
	if t != r.appt.Time && !contains(r.slots, t) {
		return ErrSlotUnavailable
	}
	r.selected = t
	return nil
}

// CanSave reports whether Save is enabled.
func (r *Reschedule) CanSave() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.checkSave() == nil
}

// checkSave must be called with mu held.
func (r *Reschedule) checkSave() error {
	switch r.state {
	case StateReady, StateFailed:
	case StateSubmitting:
		return ErrSubmitting
	default:
		return ErrNotReady
	}
	if r.selected == "" {
		return ErrMissingSlot
	}
	if !r.taken.Allows(r.selected, r.appt.Time) {
		return ErrSlotTaken
	}
	return nil
}

// Save submits the move. The appointment is sent with only date and time
// overwritten. The backend's answer is returned for the caller to merge.
func (r *Reschedule) Save(ctx context.Context) (*models.Appointment, error) {
	r.mu.Lock()
	if err := r.checkSave(); err != nil {
		r.mu.Unlock()
		if err == ErrSlotTaken || err == ErrMissingSlot {
			metrics.IncWorkflowOutcome("reschedule", "invalid")
		}
		return nil, err
	}
	if r.state == StateFailed {
		r.transition(StateReady)
	}
	payload := r.appt
	payload.Date = r.date
	payload.Time = r.selected
	r.transition(StateSubmitting)
	r.mu.Unlock()

	moved, err := r.deps.API.RescheduleAppointment(ctx, payload)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.transition(StateFailed)
		r.lastErr = err
		metrics.IncWorkflowOutcome("reschedule", "failed")
		r.logger.Warn().Err(err).Str("date", payload.Date).Str("time", payload.Time).Msg("reschedule failed")
		return nil, err
	}
	r.transition(StateSuccess)
	r.lastErr = nil
	r.result = moved
	metrics.IncWorkflowOutcome("reschedule", "success")
	r.logger.Info().Str("date", payload.Date).Str("time", payload.Time).Msg("appointment rescheduled")
	r.deps.publish("reschedule", *moved)
	return moved, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
