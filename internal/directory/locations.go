package directory

import (
	"context"

	"clinicdesk/internal/cache"
	"clinicdesk/internal/models"
)

// LocationAPI is the backend surface for locations.
type LocationAPI interface {
	ListLocations(ctx context.Context) ([]models.Location, error)
	CreateLocation(ctx context.Context, l models.Location) (*models.Location, error)
	UpdateLocation(ctx context.Context, id string, l models.Location) (*models.Location, error)
	DeleteLocation(ctx context.Context, id string) error
}

// Locations is the cached location list.
type Locations struct {
	api   LocationAPI
	cache *cache.Resource[models.Location]
}

// NewLocations creates the location directory over api, cached in c.
func NewLocations(api LocationAPI, c *cache.Resource[models.Location]) *Locations {
	return &Locations{api: api, cache: c}
}

// List returns all locations, from cache unless refresh is set or the cache expired.
func (l *Locations) List(ctx context.Context, refresh bool) ([]models.Location, error) {
	return l.cache.Get(ctx, cache.AllKey, refresh, l.api.ListLocations)
}

func (l *Locations) Create(ctx context.Context, loc models.Location) (*models.Location, error) {
	created, err := l.api.CreateLocation(ctx, loc)
	if err != nil {
		return nil, err
	}
	l.cache.Add(ctx, cache.AllKey, *created)
	return created, nil
}

func (l *Locations) Update(ctx context.Context, id string, loc models.Location) (*models.Location, error) {
	updated, err := l.api.UpdateLocation(ctx, id, loc)
	if err != nil {
		return nil, err
	}
	l.cache.Replace(ctx, id, *updated)
	return updated, nil
}

func (l *Locations) Delete(ctx context.Context, id string) error {
	if err := l.api.DeleteLocation(ctx, id); err != nil {
		return err
	}
	l.cache.Remove(ctx, id)
	return nil
}

func (l *Locations) Clear(ctx context.Context) error {
	return l.cache.Clear(ctx)
}

// Names maps location id to name.
func (l *Locations) Names(ctx context.Context) (map[string]string, error) {
	locs, err := l.List(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(locs))
	for _, loc := range locs {
		out[loc.ID] = loc.Name
	}
	return out, nil
}
