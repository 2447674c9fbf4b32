package models

import "fmt"

// BackendDay is a weekday name as the backend stores it.
type BackendDay string

const (
	Monday    BackendDay = "MONDAY"
	Tuesday   BackendDay = "TUESDAY"
	Wednesday BackendDay = "WEDNESDAY"
	Thursday  BackendDay = "THURSDAY"
	Friday    BackendDay = "FRIDAY"
	Saturday  BackendDay = "SATURDAY"
	Sunday    BackendDay = "SUNDAY"
)

// DayKey is the short weekday key used on screen.
type DayKey string

const (
	DayM  DayKey = "M"
	DayT  DayKey = "T"
	DayW  DayKey = "W"
	DayTh DayKey = "Th"
	DayF  DayKey = "F"
	DayS  DayKey = "S"
	DaySu DayKey = "Su"
)

// Week lists the short keys in display order.
var Week = []DayKey{DayM, DayT, DayW, DayTh, DayF, DayS, DaySu}

var (
	uiToBackend = map[DayKey]BackendDay{
		DayM:  Monday,
		DayT:  Tuesday,
		DayW:  Wednesday,
		DayTh: Thursday,
		DayF:  Friday,
		DayS:  Saturday,
		DaySu: Sunday,
	}
	backendToUI = map[BackendDay]DayKey{
		Monday:    DayM,
		Tuesday:   DayT,
		Wednesday: DayW,
		Thursday:  DayTh,
		Friday:    DayF,
		Saturday:  DayS,
		Sunday:    DaySu,
	}
)

// ParseDayKey validates a short key.
func ParseDayKey(s string) (DayKey, error) {
	k := DayKey(s)
	if _, ok := uiToBackend[k]; !ok {
		return "", fmt.Errorf("unknown day key %q; expected one of M,T,W,Th,F,S,Su", s)
	}
	return k, nil
}

// ToBackend converts a short key to the backend weekday name.
func (k DayKey) ToBackend() BackendDay { return uiToBackend[k] }

// ToUI converts a backend weekday name to the short key.
func (d BackendDay) ToUI() DayKey { return backendToUI[d] }

// MapUIDaysToBackend converts short keys, preserving order.
func MapUIDaysToBackend(days []DayKey) []BackendDay {
	out := make([]BackendDay, 0, len(days))
	for _, d := range days {
		out = append(out, d.ToBackend())
	}
	return out
}

// MapBackendDaysToUI converts backend names, preserving order.
func MapBackendDaysToUI(days []BackendDay) []DayKey {
	out := make([]DayKey, 0, len(days))
	for _, d := range days {
		out = append(out, d.ToUI())
	}
	return out
}

// ComplementDays returns the days of Week not present in selected, in Week order.
func ComplementDays(selected []DayKey) []DayKey {
	set := make(map[DayKey]struct{}, len(selected))
	for _, d := range selected {
		set[d] = struct{}{}
	}
	out := make([]DayKey, 0, len(Week))
	for _, d := range Week {
		if _, ok := set[d]; !ok {
			out = append(out, d)
		}
	}
	return out
}

// CustomDateSlot overrides the daily range for one date.
type CustomDateSlot struct {
	Date                string `json:"date"`      // YYYY-MM-DD
	StartTime           string `json:"startTime"` // HH:mm
	EndTime             string `json:"endTime"`   // HH:mm
	SlotDurationMinutes int    `json:"slotDurationMinutes"`
}

// DoctorSchedule is the availability record of one doctor.
type DoctorSchedule struct {
	ID                    string           `json:"id"`
	DoctorID              string           `json:"doctorId"`
	DoctorName            string           `json:"doctorName,omitempty"`
	LocationID            string           `json:"locationId"`
	DaysOfWeek            []BackendDay     `json:"daysOfWeek"`
	StartTime             string           `json:"startTime"`
	EndTime               string           `json:"endTime"`
	UnavailableDaysOfWeek []BackendDay     `json:"unavailableDaysOfWeek"`
	UnavailableDates      []string         `json:"unavailableDates"`
	AvailableOnlyDates    []string         `json:"availableOnlyDates"`
	CustomDateSlots       []CustomDateSlot `json:"customDateSlots"`
}
