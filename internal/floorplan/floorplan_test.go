package floorplan_test

import (
	"bytes"
	"strings"
	"testing"

	"tablebook/internal/domains/booking/model"
	"tablebook/internal/floorplan"

	"github.com/stretchr/testify/assert"
)

func bookings() []model.Booking {
	return []model.Booking{
		{ID: "1", Date: "2024-07-01", TimeSlot: "19:00", TableNumber: 2},
		{ID: "2", Date: "2024-07-01", TimeSlot: "19:00", TableNumber: 3},
		{ID: "3", Date: "2024-07-01", TimeSlot: "21:00", TableNumber: 1},
		{ID: "4", Date: "2024-07-02", TimeSlot: "19:00", TableNumber: 1},
	}
}

func TestBuild(t *testing.T) {
	plan := floorplan.Build("2024-07-01", []string{"19:00"}, 4, bookings())

	assert.Equal(t, []string{"19:00", "21:00"}, plan.Slots)
	assert.True(t, plan.Booked("19:00", 2))
	assert.False(t, plan.Booked("19:00", 1))
	assert.True(t, plan.Booked("21:00", 1))
	assert.Equal(t, 2, plan.Free("19:00"))
	assert.Equal(t, 3, plan.Free("21:00"))
	assert.Equal(t, 4, plan.Free("23:00"))
}

func TestBuild_OtherDateIgnored(t *testing.T) {
	plan := floorplan.Build("2024-07-02", nil, 2, bookings())

	assert.Equal(t, []string{"19:00"}, plan.Slots)
	assert.Equal(t, 1, plan.Free("19:00"))
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer

	floorplan.Build("2024-07-01", []string{"19:00", "21:00"}, 3, bookings()).Render(&buf, false)

	out := buf.String()
	assert.Contains(t, out, "19:00")
	assert.Contains(t, out, "21:00")
	assert.Equal(t, 3, strings.Count(out, "booked"))
	assert.Equal(t, 3, strings.Count(out, "free"))
	assert.Contains(t, out, "Free")
}
