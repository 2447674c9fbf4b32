// Package access gates dashboard workflows by the logged-in user's role.
package access

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"clinicdesk/internal/models"
)

// Permission names one gated workflow.
type Permission string

const (
	ViewAppointments Permission = "view_appointments"
	Book             Permission = "book"
	Reschedule       Permission = "reschedule"
	Cancel           Permission = "cancel"
	Complete         Permission = "complete"
	Export           Permission = "export"
	ManagePatients   Permission = "manage_patients"
	ManageLocations  Permission = "manage_locations"
	ManageUsers      Permission = "manage_users"
	EditOwnSchedule  Permission = "edit_own_schedule"
	EditAnySchedule  Permission = "edit_any_schedule"
)

var common = []Permission{ViewAppointments, Book, Reschedule, Cancel, Complete, Export}

var policy = map[string]map[Permission]bool{
	models.RoleAdmin:        set(append(common, ManagePatients, ManageLocations, ManageUsers, EditOwnSchedule, EditAnySchedule)...),
	models.RoleDoctor:       set(append(common, EditOwnSchedule)...),
	models.RoleReceptionist: set(append(common, ManagePatients)...),
}

func set(perms ...Permission) map[Permission]bool {
	out := make(map[Permission]bool, len(perms))
	for _, p := range perms {
		out[p] = true
	}
	return out
}

// Principal is who is asking.
type Principal struct {
	UserID   string
	Role     string
	DoctorID string
}

// Service checks permissions for principals.
type Service struct {
	logger zerolog.Logger
}

// NewService creates a new access control service.
func NewService(logger zerolog.Logger) *Service {
	return &Service{logger: logger.With().Str("component", "access").Logger()}
}

// Allowed reports whether role grants perm. Unknown roles get nothing.
func Allowed(role string, perm Permission) bool {
	return policy[strings.ToUpper(role)][perm]
}

// Check returns an AccessDeniedError when p may not use perm.
func (s *Service) Check(p Principal, perm Permission) error {
	if p.Role == "" {
		return &AccessDeniedError{Reason: "login required"}
	}
	if !Allowed(p.Role, perm) {
		s.logger.Debug().Str("user_id", p.UserID).Str("role", p.Role).Str("permission", string(perm)).Msg("access denied")
		return &AccessDeniedError{Reason: fmt.Sprintf("role %s may not %s", p.Role, strings.ReplaceAll(string(perm), "_", " "))}
	}
	return nil
}

// CheckSchedule gates editing doctorID's schedule: admins edit any, doctors
// only their own.
func (s *Service) CheckSchedule(p Principal, doctorID string) error {
	if err := s.Check(p, EditAnySchedule); err == nil {
		return nil
	}
	if err := s.Check(p, EditOwnSchedule); err != nil {
		return err
	}
	own := p.DoctorID
	if own == "" {
		own = p.UserID
	}
	if doctorID != own {
		return &AccessDeniedError{Reason: "doctors may only edit their own schedule"}
	}
	return nil
}

// AccessDeniedError is returned when user access is denied.
type AccessDeniedError struct {
	Reason string
}

func (e *AccessDeniedError) Error() string {
	return e.Reason
}

// IsAccessDenied checks if error is access denied.
func IsAccessDenied(err error) bool {
	var denied *AccessDeniedError
	return errors.As(err, &denied)
}
