package booking

import "errors"

// Validation failures. They are returned before any remote call and leave
// the workflow state unchanged.
var (
	ErrMissingDoctor    = errors.New("select doctor")
	ErrMissingLocation  = errors.New("select location")
	ErrMissingDate      = errors.New("missing date")
	ErrMissingSlot      = errors.New("missing slot")
	ErrMissingPatient   = errors.New("select patient")
	ErrInvalidTime      = errors.New("invalid time; use HH:mm or h:mm AM/PM")
	ErrMissingBookingID = errors.New("cannot proceed: no bookingId available")
	ErrSlotTaken        = errors.New("selected slot is already booked")
	ErrSlotUnavailable  = errors.New("selected slot is not offered on this date")
)

// State errors.
var (
	ErrNotReady   = errors.New("workflow is not ready")
	ErrSubmitting = errors.New("submission already in progress")
)
