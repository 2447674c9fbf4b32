package clinicapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"clinicdesk/internal/models"
)

// FetchSlots returns the backend slot labels for a date (any accepted form)
// and optional doctor and location. Entries are returned as the backend sent
// them, in order; nothing is cached.
func (c *Client) FetchSlots(ctx context.Context, date, doctorID, locationID string) ([]string, error) {
	q := url.Values{}
	q.Set("date", models.CompactDate(date))
	q.Set("doctorId", doctorID)
	q.Set("locationId", locationID)

	var entries []models.SlotEntry
	if err := c.doGet(ctx, "slots", "/appointments/slots", q, &entries); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Time)
	}
	return out, nil
}

// FetchAppointmentsByDate returns every appointment on the date, across all
// doctors and locations.
func (c *Client) FetchAppointmentsByDate(ctx context.Context, date string) ([]models.Appointment, error) {
	q := url.Values{}
	q.Set("date", models.NormalizeDate(date))

	var appts []models.Appointment
	if err := c.doGet(ctx, "appointments_by_date", "/appointments/byDate", q, &appts); err != nil {
		return nil, err
	}
	if appts == nil {
		appts = []models.Appointment{}
	}
	return appts, nil
}

// CreateAppointment books an appointment. The date is sent in compact form.
func (c *Client) CreateAppointment(ctx context.Context, appt models.Appointment) (*models.Appointment, error) {
	return c.sendAppointment(ctx, "book", http.MethodPost, "/appointments/book", appt)
}

// RescheduleAppointment moves an appointment to the date and time set on appt.
func (c *Client) RescheduleAppointment(ctx context.Context, appt models.Appointment) (*models.Appointment, error) {
	return c.sendAppointment(ctx, "reschedule", http.MethodPut, "/appointments/reschedule", appt)
}

func (c *Client) sendAppointment(ctx context.Context, op, method, path string, appt models.Appointment) (*models.Appointment, error) {
	appt.Date = models.CompactDate(appt.Date)
	var out models.Appointment
	if err := c.doSend(ctx, op, method, path, nil, appt, &out); err != nil {
		return nil, err
	}
	// some deployments answer with an empty body
	if out == (models.Appointment{}) {
		out = appt
	}
	return &out, nil
}

// CancelAppointment cancels by booking id.
func (c *Client) CancelAppointment(ctx context.Context, bookingID string) error {
	if bookingID == "" {
		return errors.New("cancel: booking id is required")
	}
	q := url.Values{}
	q.Set("bookingId", bookingID)
	return c.doSend(ctx, "cancel", http.MethodPut, "/appointments/cancel", q, nil, nil)
}

// CompleteAppointment marks an appointment completed (checked in).
func (c *Client) CompleteAppointment(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("complete: appointment id is required")
	}
	q := url.Values{}
	q.Set("id", id)
	return c.doSend(ctx, "complete", http.MethodPut, "/appointments/complete", q, nil, nil)
}
