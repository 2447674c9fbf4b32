package directory

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"clinicdesk/internal/cache"
	"clinicdesk/internal/models"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) ListLocations(ctx context.Context) ([]models.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Location), args.Error(1)
}

func (m *MockAPI) CreateLocation(ctx context.Context, l models.Location) (*models.Location, error) {
	args := m.Called(ctx, l)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockAPI) UpdateLocation(ctx context.Context, id string, l models.Location) (*models.Location, error) {
	args := m.Called(ctx, id, l)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockAPI) DeleteLocation(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAPI) ListPatients(ctx context.Context) ([]models.Patient, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Patient), args.Error(1)
}

func (m *MockAPI) CreatePatient(ctx context.Context, p models.Patient) (*models.Patient, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Patient), args.Error(1)
}

func (m *MockAPI) UpdatePatient(ctx context.Context, id string, p models.Patient) (*models.Patient, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Patient), args.Error(1)
}

func (m *MockAPI) DeletePatient(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAPI) UsersByRole(ctx context.Context, role string) ([]models.UserSummary, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserSummary), args.Error(1)
}

func (m *MockAPI) FetchUser(ctx context.Context, id string) (*models.UserDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserDetails), args.Error(1)
}

func (m *MockAPI) UpdateUser(ctx context.Context, id string, u models.UserSummary) (*models.UserSummary, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSummary), args.Error(1)
}

func (m *MockAPI) DeleteUser(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAPI) RegisterUser(ctx context.Context, u models.NewUser) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockAPI) UpdatePassword(ctx context.Context, change models.PasswordChange) error {
	return m.Called(ctx, change).Error(0)
}

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func newTestDirectory(api *MockAPI) (*Directory, *testClock) {
	clock := &testClock{now: time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)}
	return New(api, cache.Config{Now: clock.Now, Logger: zerolog.Nop()}, Stores{}), clock
}
