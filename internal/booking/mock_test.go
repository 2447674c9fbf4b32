package booking

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"clinicdesk/internal/events"
	"clinicdesk/internal/models"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) FetchSlots(ctx context.Context, date, doctorID, locationID string) ([]string, error) {
	args := m.Called(ctx, date, doctorID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAPI) FetchAppointmentsByDate(ctx context.Context, date string) ([]models.Appointment, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Appointment), args.Error(1)
}

func (m *MockAPI) CreateAppointment(ctx context.Context, appt models.Appointment) (*models.Appointment, error) {
	args := m.Called(ctx, appt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockAPI) RescheduleAppointment(ctx context.Context, appt models.Appointment) (*models.Appointment, error) {
	args := m.Called(ctx, appt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockAPI) CancelAppointment(ctx context.Context, bookingID string) error {
	return m.Called(ctx, bookingID).Error(0)
}

func (m *MockAPI) CompleteAppointment(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) ByRole(ctx context.Context, role string, refresh bool) ([]models.UserSummary, error) {
	args := m.Called(ctx, role, refresh)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserSummary), args.Error(1)
}

type MockPatients struct {
	mock.Mock
}

func (m *MockPatients) List(ctx context.Context, refresh bool) ([]models.Patient, error) {
	args := m.Called(ctx, refresh)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Patient), args.Error(1)
}

type MockLocations struct {
	mock.Mock
}

func (m *MockLocations) List(ctx context.Context, refresh bool) ([]models.Location, error) {
	args := m.Called(ctx, refresh)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Location), args.Error(1)
}

type fixture struct {
	api       *MockAPI
	doctors   *MockDirectory
	patients  *MockPatients
	locations *MockLocations
	bus       *events.EventBus
	deps      Deps
}

func newFixture() *fixture {
	f := &fixture{
		api:       &MockAPI{},
		doctors:   &MockDirectory{},
		patients:  &MockPatients{},
		locations: &MockLocations{},
	}
	logger := zerolog.New(io.Discard)
	f.bus = events.NewEventBus(logger)
	f.deps = Deps{
		API:       f.api,
		Doctors:   f.doctors,
		Patients:  f.patients,
		Locations: f.locations,
		Bus:       f.bus,
		Logger:    logger,
		Now:       func() time.Time { return time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC) },
	}
	return f
}

// record subscribes to appointment changes and returns the captured events.
func (f *fixture) record() *[]events.Event {
	var got []events.Event
	f.bus.Subscribe(events.AppointmentsChanged, func(e events.Event) error {
		got = append(got, e)
		return nil
	})
	return &got
}
