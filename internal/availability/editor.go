// Package availability edits a doctor's weekly availability. Working days
// are shown as the days that are not marked unavailable.
package availability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/rs/zerolog"

	"clinicdesk/internal/clinicapi"
	"clinicdesk/internal/models"
)

var (
	ErrMissingDoctor = errors.New("select doctor")
	ErrInvalidRange  = errors.New("end time must be after start time")
	ErrInvalidDate   = errors.New("invalid date; use YYYY-MM-DD")
)

// ScheduleAPI is the schedule part of the backend client.
type ScheduleAPI interface {
	FetchDoctorSchedule(ctx context.Context, doctorID string) (*models.DoctorSchedule, error)
	SaveDoctorSchedule(ctx context.Context, s models.DoctorSchedule) (*models.DoctorSchedule, error)
}

// Editor is the in-progress edit of one schedule. Fields it does not edit
// are carried through from the loaded record untouched.
type Editor struct {
	base             models.DoctorSchedule
	available        []models.DayKey
	unavailableDates []string
	startTime        string
	endTime          string
	locationID       string
}

// NewEditor starts an edit from a stored schedule.
func NewEditor(s models.DoctorSchedule) *Editor {
	return &Editor{
		base:             s,
		available:        models.ComplementDays(models.MapBackendDaysToUI(s.UnavailableDaysOfWeek)),
		unavailableDates: normalizeDates(s.UnavailableDates),
		startTime:        s.StartTime,
		endTime:          s.EndTime,
		locationID:       s.LocationID,
	}
}

// AvailableDays returns the working days in week order.
func (e *Editor) AvailableDays() []models.DayKey {
	return append([]models.DayKey(nil), e.available...)
}

// SetAvailableDays replaces the working days.
func (e *Editor) SetAvailableDays(days []models.DayKey) {
	// round-trip through the complement to drop duplicates and reorder
	e.available = models.ComplementDays(models.ComplementDays(days))
}

// UnavailableDates returns the blocked dates, sorted.
func (e *Editor) UnavailableDates() []string {
	return append([]string(nil), e.unavailableDates...)
}

// AddUnavailableDate blocks a date.
func (e *Editor) AddUnavailableDate(date string) error {
	iso := models.NormalizeDate(date)
	if _, err := models.ParseDate(iso); err != nil {
		return ErrInvalidDate
	}
	e.unavailableDates = normalizeDates(append(e.unavailableDates, iso))
	return nil
}

// RemoveUnavailableDate unblocks a date.
func (e *Editor) RemoveUnavailableDate(date string) {
	iso := models.NormalizeDate(date)
	out := e.unavailableDates[:0]
	for _, d := range e.unavailableDates {
		if d != iso {
			out = append(out, d)
		}
	}
	e.unavailableDates = out
}

// SetRange sets the daily working hours.
func (e *Editor) SetRange(start, end string) error {
	s, ok := models.NormalizeTime(start)
	if !ok {
		return fmt.Errorf("start time: %w", ErrInvalidRange)
	}
	en, ok := models.NormalizeTime(end)
	if !ok {
		return fmt.Errorf("end time: %w", ErrInvalidRange)
	}
	if en <= s {
		return ErrInvalidRange
	}
	e.startTime, e.endTime = s, en
	return nil
}

// SetLocation sets the schedule's location.
func (e *Editor) SetLocation(id string) { e.locationID = id }

// Schedule assembles the record to save.
func (e *Editor) Schedule() (models.DoctorSchedule, error) {
	if e.base.DoctorID == "" {
		return models.DoctorSchedule{}, ErrMissingDoctor
	}
	if e.startTime != "" || e.endTime != "" {
		if e.endTime <= e.startTime {
			return models.DoctorSchedule{}, ErrInvalidRange
		}
	}
	out := e.base
	out.UnavailableDaysOfWeek = models.MapUIDaysToBackend(models.ComplementDays(e.available))
	out.UnavailableDates = append([]string(nil), e.unavailableDates...)
	out.StartTime = e.startTime
	out.EndTime = e.endTime
	out.LocationID = e.locationID
	return out, nil
}

// Service loads and saves schedules.
type Service struct {
	api    ScheduleAPI
	logger zerolog.Logger
}

// NewService creates the schedule service over api.
func NewService(api ScheduleAPI, logger zerolog.Logger) *Service {
	return &Service{api: api, logger: logger.With().Str("component", "availability").Logger()}
}

// Load opens an editor for doctorID. A doctor without a stored schedule
// starts with every day available.
func (s *Service) Load(ctx context.Context, doctorID string) (*Editor, error) {
	if doctorID == "" {
		return nil, ErrMissingDoctor
	}
	sched, err := s.api.FetchDoctorSchedule(ctx, doctorID)
	if clinicapi.StatusCode(err) == http.StatusNotFound {
		return NewEditor(models.DoctorSchedule{DoctorID: doctorID}), nil
	}
	if err != nil {
		return nil, err
	}
	if sched.DoctorID == "" {
		sched.DoctorID = doctorID
	}
	return NewEditor(*sched), nil
}

// Save stores the edit and returns the stored record. An empty response
// body means the payload was stored as sent.
func (s *Service) Save(ctx context.Context, e *Editor) (*models.DoctorSchedule, error) {
	payload, err := e.Schedule()
	if err != nil {
		return nil, err
	}
	saved, err := s.api.SaveDoctorSchedule(ctx, payload)
	if err != nil {
		s.logger.Warn().Err(err).Str("doctor_id", payload.DoctorID).Msg("failed to save schedule")
		return nil, err
	}
	if saved == nil || saved.DoctorID == "" {
		saved = &payload
	}
	s.logger.Info().Str("doctor_id", saved.DoctorID).Int("unavailable_days", len(saved.UnavailableDaysOfWeek)).Msg("schedule saved")
	return saved, nil
}

// normalizeDates returns ISO dates, sorted and de-duplicated, without blanks.
func normalizeDates(dates []string) []string {
	seen := make(map[string]struct{}, len(dates))
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		iso := models.NormalizeDate(d)
		if iso == "" {
			continue
		}
		if _, ok := seen[iso]; ok {
			continue
		}
		seen[iso] = struct{}{}
		out = append(out, iso)
	}
	sort.Strings(out)
	return out
}
