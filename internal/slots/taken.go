package slots

import (
	"strings"

	"clinicdesk/internal/models"
)

// Taken maps an occupied time to what holds it (booking id, patient id, or
// "booked").
type Taken map[string]string

// TakenTimes computes, for rescheduling appt to date, the times held by other
// confirmed appointments of the same doctor and location. appt itself never
// counts.
func TakenTimes(appts []models.Appointment, appt models.Appointment, date string) Taken {
	target := models.NormalizeDate(date)
	out := make(Taken)
	for _, a := range appts {
		t := strings.TrimSpace(a.Time)
		if t == "" {
			continue
		}
		if d := a.ISODate(); d != "" && d != target {
			continue
		}
		if a.DoctorID != appt.DoctorID || a.LocationID != appt.LocationID {
			continue
		}
		if sameAppointment(a, appt) {
			continue
		}
		if !a.IsConfirmed() {
			continue
		}
		holder := a.BookingID
		if holder == "" {
			holder = a.PatientID
		}
		if holder == "" {
			holder = "booked"
		}
		out[t] = holder
	}
	return out
}

func sameAppointment(a, b models.Appointment) bool {
	if a.ID != "" && a.ID == b.ID {
		return true
	}
	return a.BookingID != "" && a.BookingID == b.BookingID
}

// Allows reports whether t may be chosen: it is free, or it is the
// appointment's own current time.
func (tk Taken) Allows(t, currentTime string) bool {
	if t == currentTime {
		return true
	}
	_, held := tk[t]
	return !held
}
