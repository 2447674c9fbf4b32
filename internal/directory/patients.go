package directory

import (
	"context"
	"errors"

	"clinicdesk/internal/cache"
	"clinicdesk/internal/models"
)

// ErrPatientNotFound is returned when a lookup misses both the cache and a
// fresh list.
var ErrPatientNotFound = errors.New("patient not found")

// PatientAPI is the backend surface for patients.
type PatientAPI interface {
	ListPatients(ctx context.Context) ([]models.Patient, error)
	CreatePatient(ctx context.Context, p models.Patient) (*models.Patient, error)
	UpdatePatient(ctx context.Context, id string, p models.Patient) (*models.Patient, error)
	DeletePatient(ctx context.Context, id string) error
}

// Patients is the cached patient list.
type Patients struct {
	api   PatientAPI
	cache *cache.Resource[models.Patient]
}

// NewPatients creates the patient directory over api, cached in c.
func NewPatients(api PatientAPI, c *cache.Resource[models.Patient]) *Patients {
	return &Patients{api: api, cache: c}
}

// List returns every patient, from the cache while it is valid.
func (p *Patients) List(ctx context.Context, refresh bool) ([]models.Patient, error) {
	return p.cache.Get(ctx, cache.AllKey, refresh, p.api.ListPatients)
}

// Get looks a patient up by record id. A valid cache is searched first; a
// miss forces a full refresh.
func (p *Patients) Get(ctx context.Context, id string, refresh bool) (*models.Patient, error) {
	if !refresh {
		if items, ok := p.cache.Peek(ctx, cache.AllKey); ok {
			if found := findPatient(items, id); found != nil {
				return found, nil
			}
		}
	}
	items, err := p.List(ctx, true)
	if err != nil {
		return nil, err
	}
	if found := findPatient(items, id); found != nil {
		return found, nil
	}
	return nil, ErrPatientNotFound
}

func findPatient(items []models.Patient, id string) *models.Patient {
	for i := range items {
		if items[i].ID == id {
			found := items[i]
			return &found
		}
	}
	return nil
}

func (p *Patients) Create(ctx context.Context, patient models.Patient) (*models.Patient, error) {
	created, err := p.api.CreatePatient(ctx, patient)
	if err != nil {
		return nil, err
	}
	p.cache.Add(ctx, cache.AllKey, *created)
	return created, nil
}

func (p *Patients) Update(ctx context.Context, id string, patient models.Patient) (*models.Patient, error) {
	updated, err := p.api.UpdatePatient(ctx, id, patient)
	if err != nil {
		return nil, err
	}
	p.cache.Replace(ctx, id, *updated)
	return updated, nil
}

func (p *Patients) Delete(ctx context.Context, id string) error {
	if err := p.api.DeletePatient(ctx, id); err != nil {
		return err
	}
	p.cache.Remove(ctx, id)
	return nil
}

func (p *Patients) Clear(ctx context.Context) error {
	return p.cache.Clear(ctx)
}

// NameResolver maps a patient reference on an appointment to a display
// name. Both the record id and the clinic patient number resolve.
func NameResolver(patients []models.Patient) func(patientID string) string {
	names := make(map[string]string, 2*len(patients))
	for _, p := range patients {
		if p.ID != "" {
			names[p.ID] = p.Name
		}
		if p.PatientID != "" {
			names[p.PatientID] = p.Name
		}
	}
	return func(patientID string) string {
		return names[patientID]
	}
}
