// Package admin backs the roster screens (doctors, receptionists, patients,
// locations). Edits show immediately and are rolled back if the backend
// refuses them.
package admin

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"clinicdesk/internal/cache"
	"clinicdesk/internal/metrics"
	"clinicdesk/internal/models"
)

// ErrNotFound is returned for an id that is not on the roster.
var ErrNotFound = errors.New("not on roster")

// Backend is the cached resource behind a roster.
type Backend[T cache.Identifiable] interface {
	List(ctx context.Context, refresh bool) ([]T, error)
	Update(ctx context.Context, id string, item T) (*T, error)
	Delete(ctx context.Context, id string) error
}

// Roster is the displayed list of one resource.
type Roster[T cache.Identifiable] struct {
	name    string
	backend Backend[T]
	logger  zerolog.Logger

	mu    sync.Mutex
	items []T
}

// NewRoster creates an empty roster over backend. name labels its logs and metrics.
func NewRoster[T cache.Identifiable](name string, backend Backend[T], logger zerolog.Logger) *Roster[T] {
	return &Roster[T]{
		name:    name,
		backend: backend,
		logger:  logger.With().Str("component", "admin").Str("roster", name).Logger(),
	}
}

// Load fills the roster from the backend.
func (r *Roster[T]) Load(ctx context.Context, refresh bool) error {
	items, err := r.backend.List(ctx, refresh)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append([]T(nil), items...)
	return nil
}

// Items returns the roster as displayed.
func (r *Roster[T]) Items() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.items...)
}

// Update shows item in place of id at once, then saves it. On failure the
// roster returns to what it showed before the edit.
func (r *Roster[T]) Update(ctx context.Context, id string, item T) (*T, error) {
	r.mu.Lock()
	idx := r.indexOf(id)
	if idx < 0 {
		r.mu.Unlock()
		return nil, ErrNotFound
	}
	snapshot := append([]T(nil), r.items...)
	r.items[idx] = item
	r.mu.Unlock()

	saved, err := r.backend.Update(ctx, id, item)
	if err != nil {
		r.rollback(snapshot, "update", id, err)
		return nil, err
	}

	r.mu.Lock()
	if i := r.indexOf(id); i >= 0 {
		r.items[i] = *saved
	}
	r.mu.Unlock()
	metrics.IncWorkflowOutcome(r.name+"_update", "success")
	return saved, nil
}

// Delete hides id at once, then deletes it. On failure it reappears.
func (r *Roster[T]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	idx := r.indexOf(id)
	if idx < 0 {
		r.mu.Unlock()
		return ErrNotFound
	}
	snapshot := append([]T(nil), r.items...)
	r.items = append(r.items[:idx:idx], r.items[idx+1:]...)
	r.mu.Unlock()

	if err := r.backend.Delete(ctx, id); err != nil {
		r.rollback(snapshot, "delete", id, err)
		return err
	}
	metrics.IncWorkflowOutcome(r.name+"_delete", "success")
	return nil
}

func (r *Roster[T]) rollback(snapshot []T, op, id string, err error) {
	r.mu.Lock()
	r.items = snapshot
	r.mu.Unlock()
	metrics.IncWorkflowOutcome(r.name+"_"+op, "failed")
	r.logger.Warn().Err(err).Str("op", op).Str("id", id).Msg("roster change rolled back")
}

// indexOf must be called with mu held.
func (r *Roster[T]) indexOf(id string) int {
	for i, it := range r.items {
		if it.CacheID() == id {
			return i
		}
	}
	return -1
}

// UserSource is the users-by-role part of the directory.
type UserSource interface {
	ByRole(ctx context.Context, role string, refresh bool) ([]models.UserSummary, error)
	Update(ctx context.Context, id string, payload models.UserSummary) (*models.UserSummary, error)
	Delete(ctx context.Context, id string) error
}

// RoleBackend narrows a user directory to one role.
type RoleBackend struct {
	Users UserSource
	Role  string
}

func (b RoleBackend) List(ctx context.Context, refresh bool) ([]models.UserSummary, error) {
	return b.Users.ByRole(ctx, b.Role, refresh)
}

func (b RoleBackend) Update(ctx context.Context, id string, u models.UserSummary) (*models.UserSummary, error) {
	return b.Users.Update(ctx, id, u)
}

func (b RoleBackend) Delete(ctx context.Context, id string) error {
	return b.Users.Delete(ctx, id)
}
