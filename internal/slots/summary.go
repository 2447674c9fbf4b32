package slots

import (
	"sort"
	"strings"

	"clinicdesk/internal/models"
)

// DefaultCapacity is the number of bookings a slot takes.
const DefaultCapacity = 1

// Occupancy labels used in slot summaries.
const (
	OccupancyFree    = "free"
	OccupancyPartial = "partially booked"
	OccupancyBooked  = "booked"
)

// StatusCounts counts appointments per normalized status. Every status is
// present in the result.
func StatusCounts(appts []models.Appointment) map[models.Status]int {
	out := make(map[models.Status]int, len(models.Statuses))
	for _, s := range models.Statuses {
		out[s] = 0
	}
	for i := range appts {
		out[appts[i].NormalizedStatus()]++
	}
	return out
}

// FilterStatus keeps appointments with the given normalized status. An empty
// status keeps everything.
func FilterStatus(appts []models.Appointment, status models.Status) []models.Appointment {
	if status == "" {
		return appts
	}
	out := make([]models.Appointment, 0, len(appts))
	for i := range appts {
		if appts[i].NormalizedStatus() == status {
			out = append(out, appts[i])
		}
	}
	return out
}

// Search keeps appointments whose patient id, booking id, phone, doctor id
// or resolved patient name contains term, case-insensitively.
func Search(appts []models.Appointment, term string, patientName func(patientID string) string) []models.Appointment {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return appts
	}
	out := make([]models.Appointment, 0, len(appts))
	for _, a := range appts {
		fields := []string{a.PatientID, a.BookingID, a.Phone, a.DoctorID}
		if patientName != nil && a.PatientID != "" {
			fields = append(fields, patientName(a.PatientID))
		}
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), term) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// SlotSummary describes the occupancy of one displayed time.
type SlotSummary struct {
	Date          string
	Time          string
	Occupancy     string
	BookedCount   int
	Capacity      int
	BookingIDs    []string
	PatientNames  []string
	PatientPhones []string
	FirstBooking  int64 // createdTs, 0 when unknown
	LastBooking   int64
}

// Summaries returns one summary per row. Every appointment in the bucket
// counts toward occupancy. Names and phones are de-duplicated.
func (v *View) Summaries(patientName func(patientID string) string) []SlotSummary {
	out := make([]SlotSummary, 0, len(v.Rows))
	for _, r := range v.Rows {
		appts := v.ByTime[r.Time]
		s := SlotSummary{
			Date:        v.Selection.Date,
			Time:        r.Time,
			BookedCount: len(appts),
			Capacity:    DefaultCapacity,
		}
		switch {
		case s.BookedCount == 0:
			s.Occupancy = OccupancyFree
		case s.BookedCount < s.Capacity:
			s.Occupancy = OccupancyPartial
		default:
			s.Occupancy = OccupancyBooked
		}

		names := map[string]struct{}{}
		phones := map[string]struct{}{}
		var created []int64
		for _, a := range appts {
			if a.BookingID != "" {
				s.BookingIDs = append(s.BookingIDs, a.BookingID)
			}
			name := a.PatientID
			if patientName != nil {
				if n := patientName(a.PatientID); n != "" {
					name = n
				}
			}
			if _, dup := names[name]; name != "" && !dup {
				names[name] = struct{}{}
				s.PatientNames = append(s.PatientNames, name)
			}
			if _, dup := phones[a.Phone]; a.Phone != "" && !dup {
				phones[a.Phone] = struct{}{}
				s.PatientPhones = append(s.PatientPhones, a.Phone)
			}
			if a.CreatedTs > 0 {
				created = append(created, a.CreatedTs)
			}
		}
		if len(created) > 0 {
			sort.Slice(created, func(i, j int) bool { return created[i] < created[j] })
			s.FirstBooking = created[0]
			s.LastBooking = created[len(created)-1]
		}
		out = append(out, s)
	}
	return out
}
