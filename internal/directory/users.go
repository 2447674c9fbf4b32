package directory

import (
	"context"
	"sync"

	"clinicdesk/internal/cache"
	"clinicdesk/internal/models"
)

// UserAPI is the backend surface for staff users.
type UserAPI interface {
	UsersByRole(ctx context.Context, role string) ([]models.UserSummary, error)
	FetchUser(ctx context.Context, id string) (*models.UserDetails, error)
	UpdateUser(ctx context.Context, id string, u models.UserSummary) (*models.UserSummary, error)
	DeleteUser(ctx context.Context, id string) error
	RegisterUser(ctx context.Context, u models.NewUser) error
	UpdatePassword(ctx context.Context, change models.PasswordChange) error
}

// Users caches users per role bucket, plus the logged-in user record.
type Users struct {
	api   UserAPI
	cache *cache.Resource[models.UserSummary]

	mu      sync.Mutex
	current *models.UserDetails
}

// NewUsers creates the user directory over api, cached in c.
func NewUsers(api UserAPI, c *cache.Resource[models.UserSummary]) *Users {
	return &Users{api: api, cache: c}
}

// ByRole returns the users of one role. Each role has its own TTL window.
func (u *Users) ByRole(ctx context.Context, role string, refresh bool) ([]models.UserSummary, error) {
	return u.cache.Get(ctx, role, refresh, func(ctx context.Context) ([]models.UserSummary, error) {
		return u.api.UsersByRole(ctx, role)
	})
}

// Current returns the logged-in user's record. It is fetched once per
// session and kept until refresh or Clear.
func (u *Users) Current(ctx context.Context, userID string, refresh bool) (*models.UserDetails, error) {
	u.mu.Lock()
	cached := u.current
	u.mu.Unlock()
	if cached != nil && !refresh {
		return cached, nil
	}

	user, err := u.api.FetchUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	u.current = user
	u.mu.Unlock()
	return user, nil
}

// Update applies to every role bucket holding the user.
func (u *Users) Update(ctx context.Context, id string, payload models.UserSummary) (*models.UserSummary, error) {
	updated, err := u.api.UpdateUser(ctx, id, payload)
	if err != nil {
		return nil, err
	}
	u.cache.Replace(ctx, id, *updated)
	return updated, nil
}

// Delete removes the user from every role bucket.
func (u *Users) Delete(ctx context.Context, id string) error {
	if err := u.api.DeleteUser(ctx, id); err != nil {
		return err
	}
	u.cache.Remove(ctx, id)
	return nil
}

// Register creates an account. Role buckets are left alone; the new user
// shows up on the next refresh.
func (u *Users) Register(ctx context.Context, payload models.NewUser) error {
	return u.api.RegisterUser(ctx, payload)
}

func (u *Users) UpdatePassword(ctx context.Context, change models.PasswordChange) error {
	return u.api.UpdatePassword(ctx, change)
}

// Clear drops all role buckets and the current user.
func (u *Users) Clear(ctx context.Context) error {
	u.mu.Lock()
	u.current = nil
	u.mu.Unlock()
	return u.cache.Clear(ctx)
}

// Names maps user id to name for a role.
func (u *Users) Names(ctx context.Context, role string) (map[string]string, error) {
	users, err := u.ByRole(ctx, role, false)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(users))
	for _, usr := range users {
		out[usr.ID] = usr.Name
	}
	return out, nil
}
