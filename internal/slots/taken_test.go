package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clinicdesk/internal/models"
)

func TestTakenTimes_RescheduleCheck(t *testing.T) {
	a := models.Appointment{ID: "A", BookingID: "BA", DoctorID: "D1", LocationID: "L1", Date: "20250115", Time: "09:00", Status: "CONFIRMED"}
	b := models.Appointment{ID: "B", BookingID: "BB", DoctorID: "D1", LocationID: "L1", Date: "20250115", Time: "09:30", Status: "CONFIRMED"}

	taken := TakenTimes([]models.Appointment{a, b}, a, "2025-01-15")

	assert.Equal(t, Taken{"09:30": "BB"}, taken)
	assert.False(t, taken.Allows("09:30", a.Time))
	assert.True(t, taken.Allows("09:00", a.Time))
	assert.True(t, taken.Allows("10:00", a.Time))
}

func TestTakenTimes_Filters(t *testing.T) {
	self := models.Appointment{ID: "A", DoctorID: "D1", LocationID: "L1", Time: "09:00"}
	appts := []models.Appointment{
		{ID: "A", DoctorID: "D1", LocationID: "L1", Time: "09:00", Status: "BOOKED"},
		{ID: "x1", DoctorID: "D2", LocationID: "L1", Time: "10:00", Status: "BOOKED"},
		{ID: "x2", DoctorID: "D1", LocationID: "L2", Time: "10:30", Status: "BOOKED"},
		{ID: "x3", DoctorID: "D1", LocationID: "L1", Time: "11:00", Status: "PENDING"},
		{ID: "x4", DoctorID: "D1", LocationID: "L1", Time: "", Status: "BOOKED"},
		{ID: "x5", DoctorID: "D1", LocationID: "L1", Date: "2025-02-01", Time: "11:30", Status: "BOOKED"},
		{ID: "x6", PatientID: "P6", DoctorID: "D1", LocationID: "L1", Time: "12:00", Status: "confirmed"},
		{ID: "x7", DoctorID: "D1", LocationID: "L1", Time: "12:30", Status: "BOOKED"},
	}

	taken := TakenTimes(appts, self, "2025-01-15")
	assert.Equal(t, Taken{"12:00": "P6", "12:30": "booked"}, taken)
}
