// Package calendar is the day view: a doctor, location and date selection,
// the reconciled slot rows for it, and the clicks that open booking panels.
package calendar

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"clinicdesk/internal/booking"
	"clinicdesk/internal/directory"
	"clinicdesk/internal/events"
	"clinicdesk/internal/models"
	"clinicdesk/internal/slots"
)

// ErrClosed is returned by operations on a closed calendar.
var ErrClosed = errors.New("calendar closed")

// DayAPI fetches the two inputs of a day view.
type DayAPI interface {
	FetchSlots(ctx context.Context, date, doctorID, locationID string) ([]string, error)
	FetchAppointmentsByDate(ctx context.Context, date string) ([]models.Appointment, error)
}

// Deps are the calendar's collaborators.
type Deps struct {
	API       DayAPI
	Doctors   booking.DoctorSource
	Locations booking.LocationSource
	Patients  booking.PatientSource
	Bus       *events.EventBus
	Logger    zerolog.Logger
	Now       func() time.Time
}

// Calendar holds the state of one open day view. Results of a load that
// was overtaken by a newer selection, or that lands after Close, are
// discarded.
type Calendar struct {
	deps   Deps
	logger zerolog.Logger

	mu        sync.Mutex
	gen       uint64
	closed    bool
	sel       slots.Selection
	doctors   []models.UserSummary
	locations []models.Location
	patients  []models.Patient
	appts     []models.Appointment
	rawSlots  []string
	view      *slots.View
	search    string

	changes     chan events.Event
	unsubscribe func()
}

// New creates a calendar and subscribes it to appointment changes. Call Close when done.
func New(deps Deps) *Calendar {
	c := &Calendar{
		deps:    deps,
		logger:  deps.Logger.With().Str("component", "calendar").Logger(),
		changes: make(chan events.Event, 1),
		view:    slots.Build(slots.Selection{}, nil, nil),
	}
	if deps.Bus != nil {
		c.unsubscribe = deps.Bus.Subscribe(events.AppointmentsChanged, c.onChange)
	}
	return c
}

func (c *Calendar) now() time.Time {
	if c.deps.Now != nil {
		return c.deps.Now()
	}
	return time.Now()
}

// onChange queues a change notification without blocking the publisher. A
// pending notification already covers any later one.
func (c *Calendar) onChange(e events.Event) error {
	select {
	case c.changes <- e:
	default:
	}
	return nil
}

// Changes delivers appointments-changed notifications. The owner decides
// whether to Refresh.
func (c *Calendar) Changes() <-chan events.Event {
	return c.changes
}

// Init loads doctors, locations and patients together, defaults the
// selection to the first doctor, the first location and today, and loads
// the day. sel fields that are set win over the defaults.
func (c *Calendar) Init(ctx context.Context, sel slots.Selection) error {
	var (
		doctors   []models.UserSummary
		locations []models.Location
		patients  []models.Patient
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		doctors, err = c.deps.Doctors.ByRole(gctx, models.RoleDoctor, false)
		return err
	})
	g.Go(func() error {
		var err error
		locations, err = c.deps.Locations.List(gctx, false)
		return err
	})
	g.Go(func() error {
		var err error
		patients, err = c.deps.Patients.List(gctx, false)
		return err
	})
	if err := g.Wait(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to load lists")
		return err
	}

	if sel.DoctorID == "" && len(doctors) > 0 {
		sel.DoctorID = doctors[0].ID
	}
	if sel.LocationID == "" && len(locations) > 0 {
		sel.LocationID = locations[0].ID
	}
	if sel.Date == "" {
		sel.Date = c.now().Format(models.ISODateLayout)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.doctors = doctors
	c.locations = locations
	c.patients = patients
	c.mu.Unlock()

	return c.SetSelection(ctx, sel)
}

// SetSelection switches the view and loads the new day.
func (c *Calendar) SetSelection(ctx context.Context, sel slots.Selection) error {
	sel.Date = models.NormalizeDate(sel.Date)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.sel = sel
	c.mu.Unlock()
	return c.load(ctx)
}

// Next moves the selection one day forward.
func (c *Calendar) Next(ctx context.Context) error { return c.shift(ctx, 1) }

// Prev moves the selection one day back.
func (c *Calendar) Prev(ctx context.Context) error { return c.shift(ctx, -1) }

func (c *Calendar) shift(ctx context.Context, days int) error {
	sel := c.Selection()
	date, err := models.ShiftDate(sel.Date, days)
	if err != nil {
		return err
	}
	sel.Date = date
	return c.SetSelection(ctx, sel)
}

// load fetches the slot list and the day's appointments together and
// rebuilds the view when both arrive. Without a doctor or location there is
// no slot list to ask for; appointments still show on the fallback axis.
func (c *Calendar) load(ctx context.Context) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	sel := c.sel
	c.mu.Unlock()

	var (
		raw   []string
		appts []models.Appointment
	)
	g, gctx := errgroup.WithContext(ctx)
	if sel.DoctorID != "" && sel.LocationID != "" {
		g.Go(func() error {
			var err error
			raw, err = c.deps.API.FetchSlots(gctx, sel.Date, sel.DoctorID, sel.LocationID)
			return err
		})
	}
	g.Go(func() error {
		var err error
		appts, err = c.deps.API.FetchAppointmentsByDate(gctx, sel.Date)
		return err
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if gen != c.gen {
		return nil
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("date", sel.Date).Msg("failed to load day")
		return err
	}
	c.rawSlots = raw
	c.appts = appts
	c.rebuild()
	return nil
}

// rebuild must be called with mu held.
func (c *Calendar) rebuild() {
	c.view = slots.Build(c.sel, c.rawSlots, c.appts)
}

// Refresh re-fetches the current day and the patient list in the
// background path, bypassing the patient cache. A failure keeps the
// previous view.
func (c *Calendar) Refresh(ctx context.Context) error {
	if err := c.load(ctx); err != nil {
		return err
	}
	patients, err := c.deps.Patients.List(ctx, true)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to refresh patients")
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.patients = patients
	}
	return nil
}

// Apply merges a mutation result into the in-memory day and rebuilds. It is
// the optimistic path after a booking or reschedule succeeds.
func (c *Calendar) Apply(appt models.Appointment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.appts = booking.Merge(c.appts, appt)
	c.rebuild()
}

// Close discards the view and stops listening for changes.
func (c *Calendar) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.appts = nil
	c.rawSlots = nil
	c.view = slots.Build(slots.Selection{}, nil, nil)
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

func (c *Calendar) Selection() slots.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel
}

// View returns the reconciled day. It is rebuilt, not mutated, so callers
// may keep it.
func (c *Calendar) View() *slots.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Appointments returns the appointments shown for the selection, narrowed
// by the search term when one is set.
func (c *Calendar) Appointments() []models.Appointment {
	c.mu.Lock()
	defer c.mu.Unlock()
	var shown []models.Appointment
	for _, row := range c.view.Rows {
		shown = append(shown, c.view.ByTime[row.Time]...)
	}
	if c.search == "" {
		return shown
	}
	return slots.Search(shown, c.search, directory.NameResolver(c.patients))
}

// SetSearch sets the search term.
func (c *Calendar) SetSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = term
}

// BookedCount counts the appointments on the displayed rows.
func (c *Calendar) BookedCount() int {
	return c.View().BookedCount()
}

// PatientName resolves a patient reference from the loaded patient list.
func (c *Calendar) PatientName(patientID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return directory.NameResolver(c.patients)(patientID)
}

// Doctors returns the loaded doctor list.
func (c *Calendar) Doctors() []models.UserSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doctors
}

// Locations returns the loaded location list.
func (c *Calendar) Locations() []models.Location {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locations
}

// Click resolves a click on t against the current view.
func (c *Calendar) Click(t string) slots.Action {
	return c.View().Click(t)
}

// Open opens one appointment of a double-booked time.
func (c *Calendar) Open(t, key string) (slots.Action, bool) {
	return c.View().Select(t, key)
}
