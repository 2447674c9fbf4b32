// Package directory holds the cached reference data every screen shares:
// locations, patients and staff users.
package directory

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"clinicdesk/internal/cache"
	"clinicdesk/internal/models"
)

// Stores selects the backing store of each resource cache. Nil fields mean
// in-memory.
type Stores struct {
	Locations cache.Store[models.Location]
	Patients  cache.Store[models.Patient]
	Users     cache.Store[models.UserSummary]
}

// RedisStores keeps all three caches in Redis under prefix.
func RedisStores(client *redis.Client, prefix string) Stores {
	return Stores{
		Locations: cache.NewRedisStore[models.Location](client, prefix+":locations"),
		Patients:  cache.NewRedisStore[models.Patient](client, prefix+":patients"),
		Users:     cache.NewRedisStore[models.UserSummary](client, prefix+":users"),
	}
}

// API is the part of the backend client the directory needs.
type API interface {
	LocationAPI
	PatientAPI
	UserAPI
}

// Directory bundles the resource services. One instance per process.
type Directory struct {
	Locations *Locations
	Patients  *Patients
	Users     *Users
}

// New builds the services over one client and cache configuration.
func New(api API, cfg cache.Config, stores Stores) *Directory {
	return &Directory{
		Locations: NewLocations(api, cache.New[models.Location]("locations", stores.Locations, cfg)),
		Patients:  NewPatients(api, cache.New[models.Patient]("patients", stores.Patients, cfg)),
		Users:     NewUsers(api, cache.New[models.UserSummary]("users", stores.Users, cfg)),
	}
}

// Clear invalidates every cache, including the current user.
func (d *Directory) Clear(ctx context.Context) error {
	return errors.Join(
		d.Locations.Clear(ctx),
		d.Patients.Clear(ctx),
		d.Users.Clear(ctx),
	)
}
