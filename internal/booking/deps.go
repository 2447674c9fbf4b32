package booking

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"clinicdesk/internal/events"
	"clinicdesk/internal/models"
)

// AppointmentAPI is the appointment part of the backend client.
type AppointmentAPI interface {
	FetchSlots(ctx context.Context, date, doctorID, locationID string) ([]string, error)
	FetchAppointmentsByDate(ctx context.Context, date string) ([]models.Appointment, error)
	CreateAppointment(ctx context.Context, appt models.Appointment) (*models.Appointment, error)
	RescheduleAppointment(ctx context.Context, appt models.Appointment) (*models.Appointment, error)
	CancelAppointment(ctx context.Context, bookingID string) error
	CompleteAppointment(ctx context.Context, id string) error
}

// DoctorSource lists users of a role.
type DoctorSource interface {
	ByRole(ctx context.Context, role string, refresh bool) ([]models.UserSummary, error)
}

// PatientSource lists patients.
type PatientSource interface {
	List(ctx context.Context, refresh bool) ([]models.Patient, error)
}

// LocationSource lists locations.
type LocationSource interface {
	List(ctx context.Context, refresh bool) ([]models.Location, error)
}

// Deps are the collaborators shared by the workflows.
type Deps struct {
	API       AppointmentAPI
	Doctors   DoctorSource
	Patients  PatientSource
	Locations LocationSource
	Bus       *events.EventBus
	Logger    zerolog.Logger
	Now       func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) publish(action string, appt models.Appointment) {
	if d.Bus == nil {
		return
	}
	d.Bus.Publish(events.Event{
		Type:          events.AppointmentsChanged,
		Action:        action,
		AppointmentID: appt.Key(),
		Date:          appt.ISODate(),
	})
}

// Merge applies a mutation result to an in-memory appointment list: the
// entry with the same key is replaced, otherwise appt is appended.
func Merge(list []models.Appointment, appt models.Appointment) []models.Appointment {
	key := appt.Key()
	out := make([]models.Appointment, 0, len(list)+1)
	replaced := false
	for _, a := range list {
		if key != "" && a.Key() == key {
			out = append(out, appt)
			replaced = true
			continue
		}
		out = append(out, a)
	}
	if !replaced {
		out = append(out, appt)
	}
	return out
}
