// Package slots merges the backend slot list with the day's appointments into
// the per-time view the calendar renders.
package slots

import (
	"sort"
	"strings"

	"clinicdesk/internal/models"
)

// State classifies one time on the axis.
type State string

const (
	// StateBooked has at least one confirmed appointment.
	StateBooked State = "booked"
	// StateAvailable is in the slot list with no confirmed appointment.
	StateAvailable State = "available"
	// StateInformational is off the slot list and holds only non-confirmed
	// appointments. It is not actionable.
	StateInformational State = "informational"
)

// Selection is the date, doctor and location a view is built for.
type Selection struct {
	Date       string // YYYY-MM-DD
	DoctorID   string
	LocationID string
}

// Row is one time on the rendered axis.
type Row struct {
	Time       string
	State      State
	InSlotList bool
	// Confirmed holds every confirmed appointment at Time in fetch order.
	// More than one is a double booking that is shown as is.
	Confirmed []models.Appointment
	// Others holds the remaining appointments at Time.
	Others []models.Appointment
}

// DoubleBooked reports more than one confirmed appointment at the time.
func (r Row) DoubleBooked() bool { return len(r.Confirmed) > 1 }

// Unlisted reports a booked time the slot list did not return.
func (r Row) Unlisted() bool { return r.State == StateBooked && !r.InSlotList }

// View is the reconciled day for one selection.
type View struct {
	Selection Selection
	Slots     []string
	ByTime    map[string][]models.Appointment
	Rows      []Row

	index map[string]int
}

// NormalizeSlots trims entries, drops blanks and duplicates, and sorts.
// Zero-padded 24h labels sort chronologically.
func NormalizeSlots(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// GroupAppointments buckets appointments by time. An appointment is skipped
// when its time is blank, when it carries a date other than sel.Date, or when
// it names a doctor other than sel.DoctorID while a doctor is selected.
// Bucket order follows input order.
func GroupAppointments(appts []models.Appointment, sel Selection) map[string][]models.Appointment {
	target := models.NormalizeDate(sel.Date)
	out := make(map[string][]models.Appointment)
	for _, a := range appts {
		t := strings.TrimSpace(a.Time)
		if t == "" {
			continue
		}
		if d := a.ISODate(); d != "" && d != target {
			continue
		}
		if sel.DoctorID != "" && a.DoctorID != "" && a.DoctorID != sel.DoctorID {
			continue
		}
		out[t] = append(out[t], a)
	}
	return out
}

// Axis returns the times to display: the slot list when it is non-empty,
// otherwise the sorted times that hold appointments.
func Axis(slots []string, byTime map[string][]models.Appointment) []string {
	if len(slots) > 0 {
		return slots
	}
	times := make([]string, 0, len(byTime))
	for t := range byTime {
		times = append(times, t)
	}
	sort.Strings(times)
	return times
}

// Build reconciles a raw slot list with the appointments of the day.
func Build(sel Selection, rawSlots []string, appts []models.Appointment) *View {
	sel.Date = models.NormalizeDate(sel.Date)
	slots := NormalizeSlots(rawSlots)
	byTime := GroupAppointments(appts, sel)

	listed := make(map[string]struct{}, len(slots))
	for _, s := range slots {
		listed[s] = struct{}{}
	}

	axis := Axis(slots, byTime)
	v := &View{
		Selection: sel,
		Slots:     slots,
		ByTime:    byTime,
		Rows:      make([]Row, 0, len(axis)),
		index:     make(map[string]int, len(axis)),
	}
	for _, t := range axis {
		_, inList := listed[t]
		row := Row{Time: t, InSlotList: inList}
		for _, a := range byTime[t] {
			if a.IsConfirmed() {
				row.Confirmed = append(row.Confirmed, a)
			} else {
				row.Others = append(row.Others, a)
			}
		}
		switch {
		case len(row.Confirmed) > 0:
			row.State = StateBooked
		case inList:
			row.State = StateAvailable
		default:
			row.State = StateInformational
		}
		v.index[t] = len(v.Rows)
		v.Rows = append(v.Rows, row)
	}
	return v
}

// Axis returns the displayed times in order.
func (v *View) Axis() []string {
	out := make([]string, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = r.Time
	}
	return out
}

// Row returns the row at a time.
func (v *View) Row(t string) (Row, bool) {
	i, ok := v.index[t]
	if !ok {
		return Row{}, false
	}
	return v.Rows[i], true
}

// BookedCount counts every appointment placed on a time bucket.
func (v *View) BookedCount() int {
	n := 0
	for _, appts := range v.ByTime {
		n += len(appts)
	}
	return n
}

// Count returns how many rows are in a state.
func (v *View) Count(s State) int {
	n := 0
	for _, r := range v.Rows {
		if r.State == s {
			n++
		}
	}
	return n
}
