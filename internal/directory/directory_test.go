package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clinicdesk/internal/cache"
	"clinicdesk/internal/models"
)

func TestLocations_ListUsesCache(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	dir, clock := newTestDirectory(api)

	api.On("ListLocations", mock.Anything).Return([]models.Location{{ID: "L1", Name: "Main"}}, nil).Twice()

	first, err := dir.Locations.List(ctx, false)
	require.NoError(t, err)
	second, err := dir.Locations.List(ctx, false)
	require.NoError(t, err)
	assert.Same(t, &first[0], &second[0])
	api.AssertNumberOfCalls(t, "ListLocations", 1)

	clock.now = clock.now.Add(cache.DefaultTTL)
	_, err = dir.Locations.List(ctx, false)
	require.NoError(t, err)
	api.AssertNumberOfCalls(t, "ListLocations", 2)
}

func TestLocations_Mutations(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	dir, _ := newTestDirectory(api)

	api.On("ListLocations", mock.Anything).Return([]models.Location{{ID: "L1", Name: "Main"}}, nil).Once()
	api.On("CreateLocation", mock.Anything, models.Location{Name: "Annex"}).Return(&models.Location{ID: "L2", Name: "Annex"}, nil)
	api.On("UpdateLocation", mock.Anything, "L1", models.Location{Name: "Central"}).Return(&models.Location{ID: "L1", Name: "Central"}, nil)
	api.On("DeleteLocation", mock.Anything, "L2").Return(nil)
	api.On("DeleteLocation", mock.Anything, "L1").Return(errors.New("in use"))

	_, err := dir.Locations.List(ctx, false)
	require.NoError(t, err)

	_, err = dir.Locations.Create(ctx, models.Location{Name: "Annex"})
	require.NoError(t, err)
	got, _ := dir.Locations.List(ctx, false)
	assert.Equal(t, []models.Location{{ID: "L2", Name: "Annex"}, {ID: "L1", Name: "Main"}}, got)

	_, err = dir.Locations.Update(ctx, "L1", models.Location{Name: "Central"})
	require.NoError(t, err)
	require.NoError(t, dir.Locations.Delete(ctx, "L2"))

	err = dir.Locations.Delete(ctx, "L1")
	assert.EqualError(t, err, "in use")

	names, err := dir.Locations.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"L1": "Central"}, names)
	api.AssertNumberOfCalls(t, "ListLocations", 1)
}

func TestLocations_CreateSeedsEmptyCache(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	dir, _ := newTestDirectory(api)

	api.On("CreateLocation", mock.Anything, mock.Anything).Return(&models.Location{ID: "L9"}, nil)
	_, err := dir.Locations.Create(ctx, models.Location{Name: "New"})
	require.NoError(t, err)

	got, err := dir.Locations.List(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []models.Location{{ID: "L9"}}, got)
	api.AssertNotCalled(t, "ListLocations", mock.Anything)
}

func TestPatients_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("served from valid cache", func(t *testing.T) {
		api := new(MockAPI)
		dir, _ := newTestDirectory(api)
		api.On("ListPatients", mock.Anything).Return([]models.Patient{{ID: "p1", Name: "Asha"}}, nil)

		_, err := dir.Patients.List(ctx, false)
		require.NoError(t, err)
		p, err := dir.Patients.Get(ctx, "p1", false)
		require.NoError(t, err)
		assert.Equal(t, "Asha", p.Name)
		api.AssertNumberOfCalls(t, "ListPatients", 1)
	})

	t.Run("cache miss forces refresh", func(t *testing.T) {
		api := new(MockAPI)
		dir, _ := newTestDirectory(api)
		api.On("ListPatients", mock.Anything).Return([]models.Patient{{ID: "p1"}}, nil).Once()
		api.On("ListPatients", mock.Anything).Return([]models.Patient{{ID: "p1"}, {ID: "p2", Name: "Ravi"}}, nil).Once()

		_, err := dir.Patients.List(ctx, false)
		require.NoError(t, err)
		p, err := dir.Patients.Get(ctx, "p2", false)
		require.NoError(t, err)
		assert.Equal(t, "Ravi", p.Name)
		api.AssertNumberOfCalls(t, "ListPatients", 2)
	})

	t.Run("absent returns not found", func(t *testing.T) {
		api := new(MockAPI)
		dir, _ := newTestDirectory(api)
		api.On("ListPatients", mock.Anything).Return([]models.Patient{{ID: "p1"}}, nil)

		_, err := dir.Patients.Get(ctx, "nope", false)
		assert.ErrorIs(t, err, ErrPatientNotFound)
		assert.EqualError(t, err, "patient not found")
	})

	t.Run("fetch error propagates", func(t *testing.T) {
		api := new(MockAPI)
		dir, _ := newTestDirectory(api)
		boom := errors.New("offline")
		api.On("ListPatients", mock.Anything).Return(nil, boom)

		_, err := dir.Patients.Get(ctx, "p1", false)
		assert.ErrorIs(t, err, boom)
	})
}

func TestUsers_RoleBuckets(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	dir, _ := newTestDirectory(api)

	api.On("UsersByRole", mock.Anything, models.RoleDoctor).Return([]models.UserSummary{{ID: "U1", Name: "Dr. Rao"}, {ID: "U2"}}, nil).Once()
	api.On("UsersByRole", mock.Anything, models.RoleReceptionist).Return([]models.UserSummary{{ID: "U3"}}, nil).Once()
	api.On("UpdateUser", mock.Anything, "U1", mock.Anything).Return(&models.UserSummary{ID: "U1", Name: "Dr. S. Rao"}, nil)
	api.On("DeleteUser", mock.Anything, "U3").Return(nil)
	api.On("RegisterUser", mock.Anything, mock.Anything).Return(nil)

	_, err := dir.Users.ByRole(ctx, models.RoleDoctor, false)
	require.NoError(t, err)
	_, err = dir.Users.ByRole(ctx, models.RoleReceptionist, false)
	require.NoError(t, err)

	_, err = dir.Users.Update(ctx, "U1", models.UserSummary{Name: "Dr. S. Rao"})
	require.NoError(t, err)
	require.NoError(t, dir.Users.Delete(ctx, "U3"))
	require.NoError(t, dir.Users.Register(ctx, models.NewUser{Name: "New", Role: models.RoleDoctor}))

	docs, err := dir.Users.ByRole(ctx, models.RoleDoctor, false)
	require.NoError(t, err)
	assert.Equal(t, []models.UserSummary{{ID: "U1", Name: "Dr. S. Rao"}, {ID: "U2"}}, docs)

	recs, err := dir.Users.ByRole(ctx, models.RoleReceptionist, false)
	require.NoError(t, err)
	assert.Empty(t, recs)

	api.AssertNumberOfCalls(t, "UsersByRole", 2)
}

func TestUsers_Current(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	dir, clock := newTestDirectory(api)

	api.On("FetchUser", mock.Anything, "U1").Return(&models.UserDetails{ID: "U1", Role: models.RoleAdmin}, nil)

	u, err := dir.Users.Current(ctx, "U1", false)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	clock.now = clock.now.Add(2 * cache.DefaultTTL)
	_, err = dir.Users.Current(ctx, "U1", false)
	require.NoError(t, err)
	api.AssertNumberOfCalls(t, "FetchUser", 1)

	_, err = dir.Users.Current(ctx, "U1", true)
	require.NoError(t, err)
	api.AssertNumberOfCalls(t, "FetchUser", 2)
}

func TestDirectory_Clear(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	dir, _ := newTestDirectory(api)

	api.On("ListLocations", mock.Anything).Return([]models.Location{{ID: "L1"}}, nil)
	api.On("ListPatients", mock.Anything).Return([]models.Patient{{ID: "p1"}}, nil)
	api.On("UsersByRole", mock.Anything, models.RoleDoctor).Return([]models.UserSummary{{ID: "U1"}}, nil)
	api.On("FetchUser", mock.Anything, "U1").Return(&models.UserDetails{ID: "U1"}, nil)

	_, _ = dir.Locations.List(ctx, false)
	_, _ = dir.Patients.List(ctx, false)
	_, _ = dir.Users.ByRole(ctx, models.RoleDoctor, false)
	_, _ = dir.Users.Current(ctx, "U1", false)

	require.NoError(t, dir.Clear(ctx))

	_, _ = dir.Locations.List(ctx, false)
	_, _ = dir.Patients.List(ctx, false)
	_, _ = dir.Users.ByRole(ctx, models.RoleDoctor, false)
	_, _ = dir.Users.Current(ctx, "U1", false)

	api.AssertNumberOfCalls(t, "ListLocations", 2)
	api.AssertNumberOfCalls(t, "ListPatients", 2)
	api.AssertNumberOfCalls(t, "UsersByRole", 2)
	api.AssertNumberOfCalls(t, "FetchUser", 2)
}

func TestNameResolver(t *testing.T) {
	name := NameResolver([]models.Patient{
		{ID: "x1", PatientID: "P-100", Name: "Ann"},
		{ID: "x2", Name: "Bob"},
	})
	assert.Equal(t, "Ann", name("x1"))
	assert.Equal(t, "Ann", name("P-100"))
	assert.Equal(t, "Bob", name("x2"))
	assert.Empty(t, name("nobody"))
	assert.Empty(t, name(""))
}
