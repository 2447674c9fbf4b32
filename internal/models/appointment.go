package models

import "strings"

// Status is the canonical appointment status.
type Status string

const (
	StatusConfirmed  Status = "confirmed"
	StatusWaitlisted Status = "waitlisted"
	StatusCancelled  Status = "cancelled"
	StatusCompleted  Status = "completed"
	StatusWalkIn     Status = "walkin"
	StatusUnknown    Status = "unknown"
)

// Statuses lists every canonical status in display order.
var Statuses = []Status{
	StatusConfirmed,
	StatusWaitlisted,
	StatusCancelled,
	StatusCompleted,
	StatusWalkIn,
	StatusUnknown,
}

// NormalizeStatus maps a free-form backend status onto the closed set.
// This is the only place status variants are interpreted.
func NormalizeStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "booked", "confirmed":
		return StatusConfirmed
	case "waitlisted", "pending", "in_progress":
		return StatusWaitlisted
	case "cancelled", "canceled":
		return StatusCancelled
	case "completed", "done":
		return StatusCompleted
	case "walkin", "walk-in", "walk_in":
		return StatusWalkIn
	default:
		return StatusUnknown
	}
}

// Appointment mirrors the backend appointment record.
type Appointment struct {
	ID         string `json:"id,omitempty"`
	BookingID  string `json:"bookingId,omitempty"`
	PatientID  string `json:"patientId,omitempty"`
	DoctorID   string `json:"doctorId,omitempty"`
	LocationID string `json:"locationId,omitempty"`
	Date       string `json:"date"` // YYYYMMDD or YYYY-MM-DD
	Time       string `json:"time"` // HH:mm
	Status     string `json:"status,omitempty"`
	Phone      string `json:"phone,omitempty"`
	CreatedTs  int64  `json:"createdTs,omitempty"`
}

// Key returns the identity used for matching: bookingId, falling back to id.
func (a *Appointment) Key() string {
	if a.BookingID != "" {
		return a.BookingID
	}
	return a.ID
}

// NormalizedStatus returns the canonical status of the appointment.
func (a *Appointment) NormalizedStatus() Status {
	return NormalizeStatus(a.Status)
}

// IsConfirmed reports whether the appointment occupies its slot.
func (a *Appointment) IsConfirmed() bool {
	return a.NormalizedStatus() == StatusConfirmed
}

// ISODate returns the appointment date in YYYY-MM-DD form.
func (a *Appointment) ISODate() string {
	return NormalizeDate(a.Date)
}
