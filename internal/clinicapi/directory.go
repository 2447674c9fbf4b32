package clinicapi

import (
	"context"
	"net/http"
	"net/url"

	"clinicdesk/internal/models"
)

// ListPatients returns every patient record.
func (c *Client) ListPatients(ctx context.Context) ([]models.Patient, error) {
	var out []models.Patient
	if err := c.doGet(ctx, "patients_list", "/api/patients", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreatePatient(ctx context.Context, p models.Patient) (*models.Patient, error) {
	var out models.Patient
	if err := c.doSend(ctx, "patients_create", http.MethodPost, "/api/patients", nil, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePatient(ctx context.Context, id string, p models.Patient) (*models.Patient, error) {
	var out models.Patient
	if err := c.doSend(ctx, "patients_update", http.MethodPut, "/api/patients/"+url.PathEscape(id), nil, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePatient(ctx context.Context, id string) error {
	return c.doSend(ctx, "patients_delete", http.MethodDelete, "/api/patients/"+url.PathEscape(id), nil, nil, nil)
}

// ListLocations returns every clinic location.
func (c *Client) ListLocations(ctx context.Context) ([]models.Location, error) {
	var out []models.Location
	if err := c.doGet(ctx, "locations_list", "/locations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateLocation(ctx context.Context, l models.Location) (*models.Location, error) {
	var out models.Location
	if err := c.doSend(ctx, "locations_create", http.MethodPost, "/locations", nil, l, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateLocation(ctx context.Context, id string, l models.Location) (*models.Location, error) {
	var out models.Location
	if err := c.doSend(ctx, "locations_update", http.MethodPut, "/locations/"+url.PathEscape(id), nil, l, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLocation(ctx context.Context, id string) error {
	return c.doSend(ctx, "locations_delete", http.MethodDelete, "/locations/"+url.PathEscape(id), nil, nil, nil)
}

// FetchDoctorSchedule returns the availability record of a doctor.
func (c *Client) FetchDoctorSchedule(ctx context.Context, doctorID string) (*models.DoctorSchedule, error) {
	q := url.Values{}
	q.Set("doctorId", doctorID)
	var out models.DoctorSchedule
	if err := c.doGet(ctx, "schedule_get", "/api/doctor/schedule", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveDoctorSchedule stores a full availability record and returns the saved one.
func (c *Client) SaveDoctorSchedule(ctx context.Context, s models.DoctorSchedule) (*models.DoctorSchedule, error) {
	var out models.DoctorSchedule
	if err := c.doSend(ctx, "schedule_save", http.MethodPut, "/api/doctor/schedule", nil, s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
