// Package export writes a day of appointments and its slot occupancy as an
// xlsx workbook with ExportMetadata, Appointments and Slots sheets.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clinicdesk/internal/models"
	"clinicdesk/internal/slots"
)

// Sheet names.
const (
	SheetMetadata     = "ExportMetadata"
	SheetAppointments = "Appointments"
	SheetSlots        = "Slots"
)

var appointmentColumns = []string{
	"date", "time", "status", "bookingId", "patientId", "patientName", "phone",
	"doctorId", "doctorName", "locationId", "locationName", "notes", "createdAt", "updatedAt",
}

var slotColumns = []string{
	"date", "time", "slotStatus", "bookedCount", "capacity", "bookingIds", "patientNames",
	"patientPhones", "doctorId", "doctorName", "locationId", "locationName",
	"firstBookingAt", "lastBookingAt",
}

// Day is everything one export covers.
type Day struct {
	View         *slots.View
	Appointments []models.Appointment
	DoctorNames  map[string]string
	Locations    map[string]string
	PatientName  func(patientID string) string
	ExportedAt   time.Time
	ExportedBy   string
}

// FileName is the workbook name for a date.
func FileName(date string) string {
	return fmt.Sprintf("appointments-%s.xlsx", models.NormalizeDate(date))
}

// Exporter renders days into workbooks.
type Exporter struct {
	logger    zerolog.Logger
	newWriter func() SheetWriter
}

// NewExporter creates an exporter writing xlsx workbooks.
func NewExporter(logger zerolog.Logger) *Exporter {
	return &Exporter{
		logger:    logger.With().Str("component", "export").Logger(),
		newWriter: func() SheetWriter { return NewExcelWriter() },
	}
}

// ToFile writes the workbook into dir and returns its path.
func (e *Exporter) ToFile(dir string, d Day) (string, error) {
	w := e.newWriter()
	defer w.Close()

	id, err := Write(w, d)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(d.View.Selection.Date))
	if err := w.SaveToFile(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	e.logger.Info().Str("export_id", id).Str("path", path).
		Int("appointments", len(d.Appointments)).Int("slots", len(d.View.Rows)).
		Msg("export written")
	return path, nil
}

// Write fills w with the three sheets and returns the export id.
func Write(w SheetWriter, d Day) (string, error) {
	if d.View == nil {
		return "", fmt.Errorf("export: no view")
	}
	if d.ExportedAt.IsZero() {
		d.ExportedAt = time.Now()
	}
	id := uuid.NewString()
	sel := d.View.Selection

	if err := w.AddSheet(SheetMetadata); err != nil {
		return "", err
	}
	if err := w.WriteHeader([]string{"key", "value"}); err != nil {
		return "", err
	}
	meta := [][2]string{
		{"exportId", id},
		{"exportedAt", d.ExportedAt.UTC().Format(time.RFC3339)},
		{"exportedForDate", sel.Date},
		{"selectedDoctor", sel.DoctorID},
		{"selectedLocation", sel.LocationID},
		{"exportedBy", d.ExportedBy},
	}
	for _, kv := range meta {
		if err := w.WriteRow([]any{kv[0], kv[1]}); err != nil {
			return "", err
		}
	}

	if err := w.AddSheet(SheetAppointments); err != nil {
		return "", err
	}
	if err := w.WriteHeader(appointmentColumns); err != nil {
		return "", err
	}
	for _, a := range d.Appointments {
		if err := w.WriteRow(d.appointmentRow(a)); err != nil {
			return "", err
		}
	}

	if err := w.AddSheet(SheetSlots); err != nil {
		return "", err
	}
	if err := w.WriteHeader(slotColumns); err != nil {
		return "", err
	}
	for _, s := range d.View.Summaries(d.PatientName) {
		if err := w.WriteRow(d.slotRow(s)); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (d Day) appointmentRow(a models.Appointment) []any {
	sel := d.View.Selection
	date := a.ISODate()
	if date == "" {
		date = sel.Date
	}
	doctorID := firstNonEmpty(a.DoctorID, sel.DoctorID)
	locationID := firstNonEmpty(a.LocationID, sel.LocationID)
	name := ""
	if d.PatientName != nil {
		name = d.PatientName(a.PatientID)
	}
	return []any{
		date, a.Time, a.Status, a.BookingID, a.PatientID, name, a.Phone,
		doctorID, d.DoctorNames[doctorID], locationID, d.Locations[locationID],
		"", formatTs(a.CreatedTs), "",
	}
}

func (d Day) slotRow(s slots.SlotSummary) []any {
	sel := d.View.Selection
	return []any{
		s.Date, s.Time, s.Occupancy, s.BookedCount, s.Capacity,
		strings.Join(s.BookingIDs, ", "),
		strings.Join(s.PatientNames, ", "),
		strings.Join(s.PatientPhones, ", "),
		sel.DoctorID, d.DoctorNames[sel.DoctorID],
		sel.LocationID, d.Locations[sel.LocationID],
		formatTs(s.FirstBooking), formatTs(s.LastBooking),
	}
}

// formatTs renders a millisecond epoch, or "" when unknown.
func formatTs(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
