package dashboard

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clinicdesk/internal/models"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) FetchAppointmentsByDate(ctx context.Context, date string) ([]models.Appointment, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Appointment), args.Error(1)
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

var today = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func day() []models.Appointment {
	return []models.Appointment{
		{BookingID: "B3", PatientID: "P2", DoctorID: "D2", Time: "11:00", Status: "completed"},
		{BookingID: "B1", PatientID: "P1", DoctorID: "D1", Time: "09:00", Status: "BOOKED", Phone: "555-0100"},
		{BookingID: "B2", PatientID: "P1", DoctorID: "D1", Time: "10:00", Status: "pending"},
		{BookingID: "B4", PatientID: "P3", DoctorID: "D1", Time: "10:30", Status: "no_show"},
	}
}

func newLoaded(t *testing.T) (*Dashboard, *MockAPI) {
	t.Helper()
	api, patients := &MockAPI{}, &MockPatients{}
	api.On("FetchAppointmentsByDate", mock.Anything, "2025-01-15").Return(day(), nil)
	patients.On("List", mock.Anything, false).Return([]models.Patient{
		{ID: "x1", PatientID: "P1", Name: "Ann Lee"},
		{ID: "x2", PatientID: "P2", Name: "Bob Stone"},
	}, nil)

	d := New(api, patients, zerolog.New(io.Discard), func() time.Time { return today })
	require.NoError(t, d.Load(context.Background(), ""))
	return d, api
}

func TestDashboard_KPIs(t *testing.T) {
	d, _ := newLoaded(t)
	assert.Equal(t, "2025-01-15", d.Date())
	assert.Equal(t, today, d.LoadedAt())

	k := d.KPIs()
	assert.Equal(t, 4, k.Total)
	assert.Equal(t, 1, k.ByStatus[models.StatusConfirmed])
	assert.Equal(t, 1, k.ByStatus[models.StatusWaitlisted])
	assert.Equal(t, 1, k.ByStatus[models.StatusCompleted])
	assert.Equal(t, 1, k.ByStatus[models.StatusUnknown])
	assert.Equal(t, 0, k.ByStatus[models.StatusCancelled])
}

func TestDashboard_FilterAndSearch(t *testing.T) {
	d, _ := newLoaded(t)

	var times []string
	for _, a := range d.Appointments() {
		times = append(times, a.Time)
	}
	assert.Equal(t, []string{"09:00", "10:00", "10:30", "11:00"}, times)

	d.SetFilter(models.StatusWaitlisted)
	got := d.Appointments()
	require.Len(t, got, 1)
	assert.Equal(t, "B2", got[0].BookingID)

	d.SetFilter("")
	d.SetSearch("ANN")
	assert.Len(t, d.Appointments(), 2)

	d.SetSearch("bob")
	assert.Equal(t, "B3", d.Appointments()[0].BookingID)

	d.SetSearch("0100")
	assert.Equal(t, "B1", d.Appointments()[0].BookingID)

	d.SetFilter(models.StatusCompleted)
	assert.Empty(t, d.Appointments(), "filter and search combine")

	assert.Equal(t, 4, d.KPIs().Total, "KPIs ignore the filter")
	assert.Equal(t, "Ann Lee", d.PatientName("P1"))
}

func TestDashboard_Apply(t *testing.T) {
	d, _ := newLoaded(t)
	d.Apply(models.Appointment{BookingID: "B1", Date: "20250115", Time: "09:00", Status: "CANCELLED"})
	assert.Equal(t, 1, d.KPIs().ByStatus[models.StatusCancelled])

	d.Apply(models.Appointment{BookingID: "B9", Date: "2025-01-16", Time: "09:00"})
	assert.Equal(t, 4, d.KPIs().Total, "other days are ignored")
}

func TestDashboard_FailedRefreshKeepsData(t *testing.T) {
	api, patients := &MockAPI{}, &MockPatients{}
	api.On("FetchAppointmentsByDate", mock.Anything, "2025-01-15").Return(day(), nil).Once()
	api.On("FetchAppointmentsByDate", mock.Anything, "2025-01-15").Return(nil, errors.New("down"))
	patients.On("List", mock.Anything, false).Return([]models.Patient{}, nil)
	patients.On("List", mock.Anything, true).Return([]models.Patient{}, nil)

	d := New(api, patients, zerolog.New(io.Discard), func() time.Time { return today })
	ctx := context.Background()
	require.NoError(t, d.Load(ctx, "20250115"))
	require.Error(t, d.Refresh(ctx))
	assert.Equal(t, 4, d.KPIs().Total)
}

func TestDashboard_RefreshBypassesPatientCache(t *testing.T) {
	api, patients := &MockAPI{}, &MockPatients{}
	api.On("FetchAppointmentsByDate", mock.Anything, "2025-01-15").Return(day(), nil)
	patients.On("List", mock.Anything, false).Return([]models.Patient{{ID: "x1", PatientID: "P1", Name: "Ann Lee"}}, nil).Once()
	patients.On("List", mock.Anything, true).Return([]models.Patient{{ID: "x1", PatientID: "P1", Name: "Ann Lee-Park"}}, nil).Once()

	d := New(api, patients, zerolog.New(io.Discard), func() time.Time { return today })
	ctx := context.Background()
	require.NoError(t, d.Load(ctx, ""))
	assert.Equal(t, "Ann Lee", d.PatientName("P1"))

	require.NoError(t, d.Refresh(ctx))
	assert.Equal(t, "Ann Lee-Park", d.PatientName("P1"))
	patients.AssertExpectations(t)
}
