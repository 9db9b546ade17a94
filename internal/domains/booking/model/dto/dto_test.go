package dto_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"tablebook/config"
	"tablebook/internal/domains/booking/model"
	"tablebook/internal/domains/booking/model/dto"
	"tablebook/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableNumber_Validate(t *testing.T) {
	cfg := &config.Config{}
	cfg.Booking.TableCount = 4

	assert.NoError(t, dto.TableNumber(1).Validate(cfg))
	assert.NoError(t, dto.TableNumber(4).Validate(cfg))
	assert.EqualError(t, dto.TableNumber(0).Validate(cfg), "table_number must be between 1 and 4")
	assert.EqualError(t, dto.TableNumber(5).Validate(cfg), "table_number must be between 1 and 4")
}

func TestTimeSlot_Validate(t *testing.T) {
	cfg := &config.Config{}

	assert.NoError(t, dto.TimeSlot("lunch").Validate(cfg))

	cfg.Booking.TimeSlots = []string{"12:00", "19:00"}

	assert.NoError(t, dto.TimeSlot("19:00").Validate(cfg))
	assert.EqualError(t, dto.TimeSlot("lunch").Validate(cfg), "time_slot must be one of 12:00 19:00")
}

func TestCreateBookingRequest_Validate_TimeSlotLength(t *testing.T) {
	cfg := &config.Config{}

	req := dto.CreateBookingRequest{Date: "2025-06-01", TimeSlot: dto.TimeSlot(strings.Repeat("x", 32)), TableNumber: 1, Phone: "555"}
	assert.NoError(t, req.Validate(cfg))

	req.TimeSlot = dto.TimeSlot(strings.Repeat("x", 33))
	err := req.Validate(cfg)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	assert.Equal(t, "time_slot must be at most 32 characters", err.Error())

	update := dto.UpdateBookingRequest{Date: "2025-06-01", TimeSlot: req.TimeSlot, TableNumber: 1, Phone: "555"}
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(update.Validate(cfg)))
	assert.EqualError(t, req.TimeSlot.Validate(cfg), "time_slot must be at most 32 characters")
}

func TestAvailabilityRequest_Validate(t *testing.T) {
	cfg := &config.Config{}

	tests := []struct {
		name    string
		req     dto.AvailabilityRequest
		wantErr string
	}{
		{name: "valid", req: dto.AvailabilityRequest{Date: "2025-06-01", TimeSlot: "18:00"}},
		{name: "missing date", req: dto.AvailabilityRequest{TimeSlot: "18:00"}, wantErr: "date is required"},
		{name: "missing slot", req: dto.AvailabilityRequest{Date: "2025-06-01"}, wantErr: "time_slot is required"},
		{name: "malformed date", req: dto.AvailabilityRequest{Date: "01/06/2025", TimeSlot: "18:00"}, wantErr: "date must match the layout 2006-01-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestCreateBookingRequest_ToModel(t *testing.T) {
	req := dto.CreateBookingRequest{Date: "2025-06-01", TimeSlot: "18:00", TableNumber: 2, Phone: "555"}

	got := req.ToModel("u1")

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "u1", got.OwnerID)
	assert.Equal(t, "u1", got.CreatedBy)
	assert.Equal(t, got.CreatedAt, got.ModifiedAt)
	assert.Equal(t, 2, got.TableNumber)
	assert.NotEqual(t, got.ID, req.ToModel("u1").ID)
}

func TestUpdateBookingRequest_Apply(t *testing.T) {
	current := model.Booking{ID: "b1", Date: "2025-06-01", TimeSlot: "18:00", TableNumber: 3, Phone: "555", OwnerID: "u1"}
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	req := dto.UpdateBookingRequest{Date: "2025-06-02", TimeSlot: "20:00", TableNumber: 5, Phone: "556"}
	got := req.Apply(current, "u2", at)

	assert.Equal(t, "b1", got.ID)
	assert.Equal(t, "u1", got.OwnerID)
	assert.Equal(t, "2025-06-02", got.Date)
	assert.Equal(t, 5, got.TableNumber)
	assert.Equal(t, "u2", got.ModifiedBy)
	assert.Equal(t, at, got.ModifiedAt)
}

func TestTableFilter(t *testing.T) {
	where, args := dto.TableFilter("2025-06-01", "18:00", 3, "").GetWhereClause()

	assert.Equal(t, "(bookings.booking_date = :booking_date AND bookings.time_slot = :time_slot AND bookings.table_number = :table_number)", where)
	assert.Equal(t, 3, args["table_number"])

	excluding := dto.TableFilter("2025-06-01", "18:00", 3, "b1")
	where, args = excluding.GetWhereClause()

	assert.Contains(t, where, "bookings.id != :not_id")
	assert.Equal(t, "b1", args["not_id"])
}

func TestBookingFilter_ToFilterGroup(t *testing.T) {
	where, _ := dto.BookingFilter{}.ToFilterGroup().GetWhereClause()
	assert.Empty(t, where)

	where, args := dto.BookingFilter{Date: "2025-06-01", OwnerID: "u1"}.ToFilterGroup().GetWhereClause()
	assert.Equal(t, "(bookings.booking_date = :booking_date AND bookings.owner_id = :owner_id)", where)
	assert.Len(t, args, 2)

	where, args = dto.BookingFilter{DateFrom: "2025-06-01", DateTo: "2025-06-07", Tables: []int{2, 5}}.ToFilterGroup().GetWhereClause()
	assert.Equal(t, "(bookings.booking_date >= :from_booking_date AND bookings.booking_date <= :to_booking_date"+
		" AND bookings.table_number IN (:in_table_number_0, :in_table_number_1))", where)
	assert.Equal(t, "2025-06-01", args["from_booking_date"])
	assert.Equal(t, "2025-06-07", args["to_booking_date"])
	assert.Equal(t, 5, args["in_table_number_1"])
}

func TestNewGetBookingsResponse(t *testing.T) {
	res := dto.NewGetBookingsResponse([]model.Booking{{ID: "a"}, {ID: "b"}}, 25, 10)

	require.Len(t, res.Bookings, 2)
	assert.Equal(t, "a", res.Bookings[0].ID)
	assert.Equal(t, 3, res.TotalPage)
	assert.Equal(t, 25, res.TotalData)
}

func TestNewBookingEvent(t *testing.T) {
	event := dto.NewBookingEvent(dto.EventCreated, model.Booking{ID: "b1", TableNumber: 2, OwnerID: "u1"}, "API_USER")

	assert.Equal(t, "booking.created", event.Type)
	assert.Equal(t, "b1", event.BookingID)
	assert.Equal(t, "API_USER", event.Actor)
	assert.False(t, event.OccurredAt.IsZero())
}
