package booking

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"tablebook/infras/otel"
	"tablebook/internal/domains/booking/model/dto"
	"tablebook/internal/domains/booking/service"
	"tablebook/shared/constant"
	gDto "tablebook/shared/dto"
	"tablebook/shared/failure"
	"tablebook/shared/validator"
	"tablebook/transport/http/middleware"
	"tablebook/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	MessageCreated = "Booking created"
	MessageUpdated = "Booking updated"
)

type Handler struct {
	service    service.Booking
	middleware middleware.AuthRole
	otel       otel.Otel
}

func New(service service.Booking, middleware middleware.AuthRole, otel otel.Otel) Handler {
	return Handler{
		service:    service,
		middleware: middleware,
		otel:       otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.With(handler.middleware.Auth, handler.middleware.RBAC).Get("/", handler.GetBookings)
		routerGroup.With(handler.middleware.Auth).Get("/mine", handler.GetMyBookings)

		routerGroup.Group(func(optional chi.Router) {
			optional.Use(handler.middleware.OptionalAuth)

			optional.Post("/", handler.CreateBooking)
			optional.Get("/{id}", handler.GetBookingByID)
			optional.Put("/{id}", handler.UpdateBooking)
			optional.Delete("/{id}", handler.DeleteBooking)
		})
	})
}

// CreateBooking reserves a table.
// @Summary Create a booking
// @Description Reserve one table for one time slot on one date. Fails with 409 when the table is taken.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} dto.BookingResult
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings [post]
// @Security BearerAuth
func (handler *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	req := dto.CreateBookingRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	booking, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Debug().Err(err).Msg("failed to create booking")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking created")

	response.WithBody(w, http.StatusCreated, dto.BookingResult{Success: true, Message: MessageCreated, Booking: &booking})
}

// GetBookings lists every booking.
// @Summary List bookings
// @Description Paginated list of all bookings, filterable by date, time slot and table. Admins and internal callers only.
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Param time_slot query string false "Filter by time slot"
// @Param table_number query int false "Filter by table number"
// @Param tables query string false "Filter by any of these tables, comma separated"
// @Param from query string false "Bookings on or after this date (YYYY-MM-DD)"
// @Param to query string false "Bookings on or before this date (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.GetBookingsResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings [get]
// @Security BearerAuth
func (handler *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filter, err := filterFromRequest(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	bookings, err := handler.service.GetAll(ctx, queryParams, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetMyBookings lists the caller's bookings.
// @Summary List my bookings
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetBookingsResponse]
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/mine [get]
// @Security BearerAuth
func (handler *Handler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	bookings, err := handler.service.GetMine(ctx, queryParams)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetBookingByID returns one booking as a plain record.
// @Summary Get a booking
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} dto.BookingResponse
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id} [get]
func (handler *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithBody(w, http.StatusOK, booking)
}

// UpdateBooking replaces a booking's date, slot, table and phone.
// @Summary Update a booking
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.UpdateBookingRequest true "Update Booking Request"
// @Success 200 {object} dto.BookingResult
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateBooking")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	req := dto.UpdateBookingRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	booking, err := handler.service.Update(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Debug().Err(err).Str("id", id).Msg("failed to update booking")

		response.WithError(w, err)

		return
	}

	response.WithBody(w, http.StatusOK, dto.BookingResult{Success: true, Message: MessageUpdated, Booking: &booking})
}

// DeleteBooking cancels a booking.
// @Summary Delete a booking
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} dto.BookingResult
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteBooking")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithBody(w, http.StatusOK, dto.BookingResult{
		Success: true,
		Message: fmt.Sprintf("Booking with ID %s deleted successfully", id),
	})
}

func filterFromRequest(r *http.Request) (dto.BookingFilter, error) {
	query := r.URL.Query()

	filter := dto.BookingFilter{
		Date:     query.Get(constant.RequestParamDate),
		DateFrom: query.Get(constant.RequestParamFrom),
		DateTo:   query.Get(constant.RequestParamTo),
		TimeSlot: query.Get(constant.RequestParamTimeSlot),
	}

	if raw := query.Get(constant.RequestParamTable); raw != "" {
		table, err := strconv.Atoi(raw)
		if err != nil {
			return filter, failure.BadRequestFromString("table_number must be a number") // nolint:wrapcheck
		}

		filter.TableNumber = table
	}

	if raw := query.Get(constant.RequestParamTables); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			table, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return filter, failure.BadRequestFromString("tables must be a comma separated list of numbers") // nolint:wrapcheck
			}

			filter.Tables = append(filter.Tables, table)
		}
	}

	if err := validator.ValidateStruct(&filter); err != nil {
		return filter, err //nolint:wrapcheck
	}

	return filter, nil
}
