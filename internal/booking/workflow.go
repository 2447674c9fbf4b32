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

// Draft is what the creation dialog has collected. PatientID is the patient
// record id as picked from the list.
type Draft struct {
	DoctorID   string
	LocationID string
	Date       string // YYYY-MM-DD
	Slot       string // any accepted time form
	PatientID  string
}

// Validate checks the five required selections in dialog order.
func (d Draft) Validate() error {
	switch {
	case d.DoctorID == "":
		return ErrMissingDoctor
	case d.LocationID == "":
		return ErrMissingLocation
	case d.Date == "":
		return ErrMissingDate
	case d.Slot == "":
		return ErrMissingSlot
	case d.PatientID == "":
		return ErrMissingPatient
	}
	return nil
}

// Lists are the pick lists of the creation dialog.
type Lists struct {
	Doctors   []models.UserSummary
	Patients  []models.Patient
	Locations []models.Location
}

// Create is the new-appointment dialog.
type Create struct {
	machine
	deps   Deps
	logger zerolog.Logger

	draft   Draft
	lists   Lists
	lastErr error
	result  *models.Appointment
}

// NewCreate opens a creation dialog pre-filled from a slot click.
func NewCreate(deps Deps, prefill slots.CreateParams) *Create {
	return &Create{
		machine: machine{fsm: NewFSM(), state: StateIdle},
		deps:    deps,
		logger:  deps.Logger.With().Str("component", "booking").Str("workflow", "create").Logger(),
		draft: Draft{
			DoctorID:   prefill.DoctorID,
			LocationID: prefill.LocationID,
			Date:       models.NormalizeDate(prefill.Date),
			Slot:       prefill.Time,
		},
	}
}

// LoadLists fetches doctors, patients and locations together and defaults
// doctor and location to the first entries when not pre-filled. Nothing is
// applied unless all three succeed.
func (c *Create) LoadLists(ctx context.Context) error {
	c.mu.Lock()
	if !c.transition(StateListsLoading) {
		st := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot load lists in state %s", ErrNotReady, st)
	}
	c.mu.Unlock()

	var lists Lists
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lists.Doctors, err = c.deps.Doctors.ByRole(gctx, models.RoleDoctor, false)
		return err
	})
	g.Go(func() error {
		var err error
		lists.Patients, err = c.deps.Patients.List(gctx, false)
		return err
	})
	g.Go(func() error {
		var err error
		lists.Locations, err = c.deps.Locations.List(gctx, false)
		return err
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.transition(StateIdle)
		c.lastErr = err
		c.logger.Warn().Err(err).Msg("failed to load lists")
		return err
	}
	c.lists = lists
	if c.draft.DoctorID == "" && len(lists.Doctors) > 0 {
		c.draft.DoctorID = lists.Doctors[0].ID
	}
	if c.draft.LocationID == "" && len(lists.Locations) > 0 {
		c.draft.LocationID = lists.Locations[0].ID
	}
	c.transition(StateReady)
	return nil
}

// Draft returns a copy of the current selections.
func (c *Create) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Lists returns the loaded pick lists.
func (c *Create) Lists() Lists {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lists
}

// Err returns the last failure, for display.
func (c *Create) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Result returns the created appointment after success.
func (c *Create) Result() *models.Appointment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Update changes selections. It is refused while a submission is running.
func (c *Create) Update(fn func(d *Draft)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return ErrSubmitting
	}
	fn(&c.draft)
	c.draft.Date = models.NormalizeDate(c.draft.Date)
	return nil
}

// CanSubmit reports whether Submit would reach the backend.
func (c *Create) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return (c.state == StateReady || c.state == StateFailed) && c.draft.Validate() == nil
}

// Submit validates the draft and books it. From failed it re-enters ready
// first. On success the created appointment is returned for the caller to
// merge, and an appointments-changed event is published.
func (c *Create) Submit(ctx context.Context) (*models.Appointment, error) {
	c.mu.Lock()
	switch c.state {
	case StateSubmitting:
		c.mu.Unlock()
		return nil, ErrSubmitting
	case StateFailed:
		c.transition(StateReady)
	case StateReady:
	default:
		st := c.state
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: state %s", ErrNotReady, st)
	}

	payload, err := c.payload()
	if err != nil {
		c.mu.Unlock()
		metrics.IncWorkflowOutcome("book", "invalid")
		return nil, err
	}
	c.transition(StateSubmitting)
	c.mu.Unlock()

	created, err := c.deps.API.CreateAppointment(ctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.transition(StateFailed)
		c.lastErr = err
		metrics.IncWorkflowOutcome("book", "failed")
		c.logger.Warn().Err(err).Str("date", payload.Date).Str("time", payload.Time).Msg("create failed")
		return nil, err
	}
	c.transition(StateSuccess)
	c.lastErr = nil
	c.result = created
	metrics.IncWorkflowOutcome("book", "success")
	c.logger.Info().Str("booking_id", created.Key()).Str("date", payload.Date).Str("time", payload.Time).Msg("appointment created")
	c.deps.publish("book", *created)
	return created, nil
}

// payload must be called with mu held.
func (c *Create) payload() (models.Appointment, error) {
	d := c.draft
	if err := d.Validate(); err != nil {
		return models.Appointment{}, err
	}
	tm, ok := models.NormalizeTime(d.Slot)
	if !ok {
		return models.Appointment{}, ErrInvalidTime
	}
	appt := models.Appointment{
		DoctorID:   d.DoctorID,
		LocationID: d.LocationID,
		Date:       d.Date,
		Time:       tm,
		PatientID:  d.PatientID,
	}
	for _, p := range c.lists.Patients {
		if p.ID == d.PatientID {
			appt.PatientID = p.AppointmentPatientID()
			appt.Phone = p.Phone
			break
		}
	}
	return appt, nil
}

// Close returns a finished dialog to idle.
func (c *Create) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transition(StateIdle)
}
