package model

import (
	"fmt"

	"tablebook/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	// SlotTableIndex is the unique index over (booking_date, time_slot, table_number).
	SlotTableIndex = "bookings_slot_table_key"

	FieldID          = "id"
	FieldDate        = "booking_date"
	FieldTimeSlot    = "time_slot"
	FieldTableNumber = "table_number"
	FieldPhone       = "phone"
	FieldOwnerID     = "owner_id"
)

// Booking reserves one table for one time slot on one date. Date and TimeSlot
// are compared as opaque tokens.
type Booking struct {
	ID          string `db:"id"`
	Date        string `db:"booking_date"`
	TimeSlot    string `db:"time_slot"`
	TableNumber int    `db:"table_number"`
	Phone       string `db:"phone"`
	OwnerID     string `db:"owner_id"`
	model.Metadata
}

func (b Booking) Exists() bool {
	return b.ID != ""
}

func ConflictMessage(date, timeSlot string, tableNumber int) string {
	return fmt.Sprintf("Table %d is already booked at %s on %s.", tableNumber, timeSlot, date)
}
