package slots

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicdesk/internal/models"
)

func TestStatusCounts(t *testing.T) {
	counts := StatusCounts([]models.Appointment{
		{Status: "BOOKED"}, {Status: "confirmed"}, {Status: "pending"},
		{Status: "canceled"}, {Status: "DONE"}, {Status: "walk_in"}, {Status: "??"},
	})
	assert.Equal(t, 2, counts[models.StatusConfirmed])
	assert.Equal(t, 1, counts[models.StatusWaitlisted])
	assert.Equal(t, 1, counts[models.StatusCancelled])
	assert.Equal(t, 1, counts[models.StatusCompleted])
	assert.Equal(t, 1, counts[models.StatusWalkIn])
	assert.Equal(t, 1, counts[models.StatusUnknown])
	assert.Len(t, StatusCounts(nil), len(models.Statuses))
}

func TestFilterAndSearch(t *testing.T) {
	appts := []models.Appointment{
		{BookingID: "BK-1", PatientID: "P1", Phone: "555-0101", DoctorID: "D1", Status: "BOOKED"},
		{BookingID: "BK-2", PatientID: "P2", Phone: "555-0202", DoctorID: "D2", Status: "CANCELLED"},
	}
	names := map[string]string{"P1": "Asha Verma", "P2": "Ravi Kumar"}
	lookup := func(id string) string { return names[id] }

	assert.Len(t, FilterStatus(appts, ""), 2)
	assert.Equal(t, "BK-2", FilterStatus(appts, models.StatusCancelled)[0].BookingID)

	assert.Len(t, Search(appts, "  ", lookup), 2)
	assert.Equal(t, "BK-1", Search(appts, "asha", lookup)[0].BookingID)
	assert.Equal(t, "BK-2", Search(appts, "0202", lookup)[0].BookingID)
	assert.Equal(t, "BK-2", Search(appts, "d2", nil)[0].BookingID)
	assert.Empty(t, Search(appts, "kumar", nil))
}

func TestView_Summaries(t *testing.T) {
	appts := []models.Appointment{
		{BookingID: "B1", PatientID: "P1", Phone: "111", Time: "09:00", Status: "BOOKED", CreatedTs: 300},
		{BookingID: "B2", PatientID: "P1", Phone: "111", Time: "09:00", Status: "PENDING", CreatedTs: 100},
	}
	v := Build(sel, []string{"09:00", "09:30"}, appts)
	sums := v.Summaries(func(id string) string { return strings.ToUpper(id) + "-name" })
	require.Len(t, sums, 2)

	assert.Equal(t, SlotSummary{
		Date:          "2025-01-15",
		Time:          "09:00",
		Occupancy:     OccupancyBooked,
		BookedCount:   2,
		Capacity:      1,
		BookingIDs:    []string{"B1", "B2"},
		PatientNames:  []string{"P1-name"},
		PatientPhones: []string{"111"},
		FirstBooking:  100,
		LastBooking:   300,
	}, sums[0])
	assert.Equal(t, OccupancyFree, sums[1].Occupancy)
	assert.Zero(t, sums[1].BookedCount)
}
