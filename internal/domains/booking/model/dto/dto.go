package dto

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"tablebook/config"
	"tablebook/internal/domains/booking/model"
	"tablebook/shared"
	gDto "tablebook/shared/dto"
	gModel "tablebook/shared/model"
	"tablebook/shared/timezone"
	"tablebook/shared/validator"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	EventCreated = "booking.created"
	EventUpdated = "booking.updated"
	EventDeleted = "booking.deleted"

	// MaxTimeSlotLength matches the width of bookings.time_slot.
	MaxTimeSlotLength = 32
)

// TableNumber is a table on the floor, numbered from 1.
type TableNumber int

func (n TableNumber) Validate(cfg *config.Config) error {
	if tables := cfg.Booking.Tables(); n < 1 || int(n) > tables {
		return fmt.Errorf("table_number must be between 1 and %d", tables)
	}

	return nil
}

// TimeSlot is any non-empty token unless BOOKING_TIME_SLOTS restricts it.
type TimeSlot string

func (t TimeSlot) Validate(cfg *config.Config) error {
	if len(t) > MaxTimeSlotLength {
		return fmt.Errorf("time_slot must be at most %d characters", MaxTimeSlotLength)
	}

	slots := cfg.Booking.TimeSlots
	if len(slots) > 0 && !slices.Contains(slots, string(t)) {
		return fmt.Errorf("time_slot must be one of %s", strings.Join(slots, " "))
	}

	return nil
}

type CreateBookingRequest struct {
	Date        string      `json:"date"         validate:"required,datetime=2006-01-02" example:"2025-06-01"`
	TimeSlot    TimeSlot    `json:"time_slot"    validate:"required,max=32,tablebook"     example:"18:00"`
	TableNumber TableNumber `json:"table_number" validate:"required,tablebook"            example:"3"`
	Phone       string      `json:"phone"        validate:"required,max=32"               example:"+39 055 123456"`
}

func (c *CreateBookingRequest) Validate(cfg *config.Config) error {
	return validator.ValidateStructWith(cfg, c) //nolint:wrapcheck
}

func (c *CreateBookingRequest) ToModel(owner string) model.Booking {
	return model.Booking{
		ID:          uuid.NewString(),
		Date:        c.Date,
		TimeSlot:    string(c.TimeSlot),
		TableNumber: int(c.TableNumber),
		Phone:       c.Phone,
		OwnerID:     owner,
		Metadata:    gModel.NewMetadata(owner, timezone.Now()),
	}
}

// UpdateBookingRequest replaces every field of a booking except its owner.
type UpdateBookingRequest struct {
	Date        string      `db:"booking_date" json:"date"         validate:"required,datetime=2006-01-02" example:"2025-06-01"`
	TimeSlot    TimeSlot    `db:"time_slot"    json:"time_slot"    validate:"required,max=32,tablebook"     example:"20:00"`
	TableNumber TableNumber `db:"table_number" json:"table_number" validate:"required,tablebook"            example:"4"`
	Phone       string      `db:"phone"        json:"phone"        validate:"required,max=32"               example:"+39 055 123456"`
}

func (u *UpdateBookingRequest) Validate(cfg *config.Config) error {
	return validator.ValidateStructWith(cfg, u) //nolint:wrapcheck
}

// Apply returns current with the requested fields replaced.
func (u *UpdateBookingRequest) Apply(current model.Booking, by string, at time.Time) model.Booking {
	current.Date = u.Date
	current.TimeSlot = string(u.TimeSlot)
	current.TableNumber = int(u.TableNumber)
	current.Phone = u.Phone
	current.ModifiedBy = by
	current.ModifiedAt = at

	return current
}

type BookingResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	TimeSlot    string `json:"time_slot"`
	TableNumber int    `json:"table_number"`
	Phone       string `json:"phone"`
	OwnerID     string `json:"owner_id"`
	gDto.Metadata
}

func NewBookingResponse(m model.Booking) BookingResponse {
	return BookingResponse{
		ID:          m.ID,
		Date:        m.Date,
		TimeSlot:    m.TimeSlot,
		TableNumber: m.TableNumber,
		Phone:       m.Phone,
		OwnerID:     m.OwnerID,
		Metadata:    gDto.NewMetadata(m.Metadata),
	}
}

// BookingResult is the `{success, message, booking}` body of REST writes.
type BookingResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Booking *BookingResponse `json:"booking,omitempty"`
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func NewGetBookingsResponse(models []model.Booking, totalData, limit int) GetBookingsResponse {
	return GetBookingsResponse{
		Bookings:  lo.Map(models, func(m model.Booking, _ int) BookingResponse { return NewBookingResponse(m) }),
		TotalPage: shared.CalculateTotalPage(totalData, limit),
		TotalData: totalData,
	}
}

// BookingFilter narrows listings. Zero fields do not filter.
type BookingFilter struct {
	Date        string `json:"date"         validate:"omitempty,datetime=2006-01-02"`
	DateFrom    string `json:"from"         validate:"omitempty,datetime=2006-01-02"`
	DateTo      string `json:"to"           validate:"omitempty,datetime=2006-01-02"`
	TimeSlot    string `json:"time_slot"    validate:"omitempty,max=32"`
	TableNumber int    `json:"table_number" validate:"omitempty,gte=1"`
	Tables      []int  `json:"tables"       validate:"omitempty,dive,gte=1"`
	OwnerID     string `json:"owner_id"     validate:"omitempty"`
}

func (f BookingFilter) ToFilterGroup() gDto.FilterGroup {
	group := gDto.And()

	if f.Date != "" {
		group.Add(gDto.Eq(model.TableName, model.FieldDate, f.Date))
	}

	if f.DateFrom != "" {
		group.Add(gDto.GreaterEq(model.TableName, model.FieldDate, f.DateFrom))
	}

	if f.DateTo != "" {
		group.Add(gDto.LessEq(model.TableName, model.FieldDate, f.DateTo))
	}

	if f.TimeSlot != "" {
		group.Add(gDto.Eq(model.TableName, model.FieldTimeSlot, f.TimeSlot))
	}

	if f.TableNumber > 0 {
		group.Add(gDto.Eq(model.TableName, model.FieldTableNumber, f.TableNumber))
	}

	if len(f.Tables) > 0 {
		group.Add(gDto.In(model.TableName, model.FieldTableNumber, f.Tables))
	}

	if f.OwnerID != "" {
		group.Add(gDto.Eq(model.TableName, model.FieldOwnerID, f.OwnerID))
	}

	return group
}

// SlotFilter matches every booking of (date, timeSlot).
func SlotFilter(date, timeSlot string) gDto.FilterGroup {
	return gDto.And(
		gDto.Eq(model.TableName, model.FieldDate, date),
		gDto.Eq(model.TableName, model.FieldTimeSlot, timeSlot),
	)
}

// TableFilter matches the booking holding table n at (date, timeSlot). When
// excludeID is set that booking is ignored.
func TableFilter(date, timeSlot string, tableNumber int, excludeID string) gDto.FilterGroup {
	group := SlotFilter(date, timeSlot)
	group.Add(gDto.Eq(model.TableName, model.FieldTableNumber, tableNumber))

	if excludeID != "" {
		group.Add(gDto.NotEq(model.TableName, model.FieldID, excludeID))
	}

	return group
}

type AvailabilityRequest struct {
	Date     string `json:"date"      validate:"required,datetime=2006-01-02"`
	TimeSlot string `json:"time_slot" validate:"required,max=32"`
}

func (a *AvailabilityRequest) Validate(cfg *config.Config) error {
	return validator.ValidateStructWith(cfg, a) //nolint:wrapcheck
}

type AvailabilityResponse struct {
	Date            string `json:"date"`
	TimeSlot        string `json:"time_slot"`
	AvailableTables []int  `json:"available_tables"`
	BookedTables    []int  `json:"booked_tables"`
}

type SlotsResponse struct {
	TimeSlots  []string `json:"time_slots"`
	TableCount int      `json:"table_count"`
}

// BookingEvent is published after every successful write.
type BookingEvent struct {
	Type        string    `json:"type"`
	BookingID   string    `json:"booking_id"`
	Date        string    `json:"date"`
	TimeSlot    string    `json:"time_slot"`
	TableNumber int       `json:"table_number"`
	OwnerID     string    `json:"owner_id"`
	Actor       string    `json:"actor"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, m model.Booking, actor string) BookingEvent {
	return BookingEvent{
		Type:        eventType,
		BookingID:   m.ID,
		Date:        m.Date,
		TimeSlot:    m.TimeSlot,
		TableNumber: m.TableNumber,
		OwnerID:     m.OwnerID,
		Actor:       actor,
		OccurredAt:  timezone.Now(),
	}
}
