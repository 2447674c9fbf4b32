package slots

import "clinicdesk/internal/models"

// ActionKind is what a click on a time opens.
type ActionKind string

const (
	OpenDetail ActionKind = "detail"
	OpenCreate ActionKind = "create"
)

// CreateParams pre-fills the creation dialog.
type CreateParams struct {
	DoctorID   string
	LocationID string
	Date       string
	Time       string
}

// Action is the result of clicking a time on the axis.
type Action struct {
	Kind        ActionKind
	Appointment *models.Appointment // set for OpenDetail
	Create      *CreateParams       // set for OpenCreate
}

// Click resolves a click on a time. Exactly one confirmed appointment opens
// its detail panel; anything else opens the creation dialog pre-filled with
// the selection and time. A double-booked time is opened per appointment
// through Select.
func (v *View) Click(t string) Action {
	if row, ok := v.Row(t); ok && len(row.Confirmed) == 1 {
		appt := row.Confirmed[0]
		return Action{Kind: OpenDetail, Appointment: &appt}
	}
	return Action{
		Kind: OpenCreate,
		Create: &CreateParams{
			DoctorID:   v.Selection.DoctorID,
			LocationID: v.Selection.LocationID,
			Date:       v.Selection.Date,
			Time:       t,
		},
	}
}

// Select opens the detail panel of one appointment shown at t, matched by key.
func (v *View) Select(t, key string) (Action, bool) {
	for _, a := range v.ByTime[t] {
		if a.Key() == key {
			appt := a
			return Action{Kind: OpenDetail, Appointment: &appt}, true
		}
	}
	return Action{}, false
}
