// Package dashboard is the front page: one day's appointments with counts
// per status, a status filter and a free-text search.
package dashboard

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"clinicdesk/internal/booking"
	"clinicdesk/internal/directory"
	"clinicdesk/internal/models"
	"clinicdesk/internal/slots"
)

// AppointmentAPI lists a day's appointments.
type AppointmentAPI interface {
	FetchAppointmentsByDate(ctx context.Context, date string) ([]models.Appointment, error)
}

// KPIs are the headline counts of the day.
type KPIs struct {
	Total    int
	ByStatus map[models.Status]int
}

// Dashboard holds one loaded day.
type Dashboard struct {
	api      AppointmentAPI
	patients booking.PatientSource
	logger   zerolog.Logger
	now      func() time.Time

	mu       sync.Mutex
	date     string
	appts    []models.Appointment
	patList  []models.Patient
	filter   models.Status
	search   string
	loadedAt time.Time
}

// New creates an empty dashboard. now defaults to time.Now.
func New(api AppointmentAPI, patients booking.PatientSource, logger zerolog.Logger, now func() time.Time) *Dashboard {
	if now == nil {
		now = time.Now
	}
	return &Dashboard{
		api:      api,
		patients: patients,
		logger:   logger.With().Str("component", "dashboard").Logger(),
		now:      now,
	}
}

// Load fetches the appointments of date (today when empty) together with
// the patient list. Nothing changes unless both succeed.
func (d *Dashboard) Load(ctx context.Context, date string) error {
	return d.load(ctx, date, false)
}

// Refresh reloads the current day, re-fetching patients past the cache.
func (d *Dashboard) Refresh(ctx context.Context) error {
	return d.load(ctx, d.Date(), true)
}

func (d *Dashboard) load(ctx context.Context, date string, refreshPatients bool) error {
	if date == "" {
		date = d.now().Format(models.ISODateLayout)
	}
	date = models.NormalizeDate(date)

	var (
		appts    []models.Appointment
		patients []models.Patient
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		appts, err = d.api.FetchAppointmentsByDate(gctx, date)
		return err
	})
	g.Go(func() error {
		var err error
		patients, err = d.patients.List(gctx, refreshPatients)
		return err
	})
	if err := g.Wait(); err != nil {
		d.logger.Warn().Err(err).Str("date", date).Msg("failed to load dashboard")
		return err
	}

	sort.SliceStable(appts, func(i, j int) bool { return appts[i].Time < appts[j].Time })

	d.mu.Lock()
	defer d.mu.Unlock()
	d.date = date
	d.appts = appts
	d.patList = patients
	d.loadedAt = d.now()
	return nil
}

func (d *Dashboard) Date() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.date
}

// LoadedAt is when the current data arrived.
func (d *Dashboard) LoadedAt() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadedAt
}

// KPIs counts the whole day, ignoring filter and search.
func (d *Dashboard) KPIs() KPIs {
	d.mu.Lock()
	defer d.mu.Unlock()
	return KPIs{Total: len(d.appts), ByStatus: slots.StatusCounts(d.appts)}
}

// SetFilter narrows the list to one status. The empty status shows all.
func (d *Dashboard) SetFilter(s models.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filter = s
}

// SetSearch sets the search term.
func (d *Dashboard) SetSearch(term string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.search = term
}

// Appointments returns the day after filter and search, ordered by time.
func (d *Dashboard) Appointments() []models.Appointment {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := slots.FilterStatus(append([]models.Appointment(nil), d.appts...), d.filter)
	return slots.Search(out, d.search, directory.NameResolver(d.patList))
}

// PatientName resolves a patient reference.
func (d *Dashboard) PatientName(patientID string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return directory.NameResolver(d.patList)(patientID)
}

// Apply merges a mutation result into the loaded day.
func (d *Dashboard) Apply(appt models.Appointment) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if appt.ISODate() != "" && appt.ISODate() != d.date {
		return
	}
	d.appts = booking.Merge(d.appts, appt)
}
