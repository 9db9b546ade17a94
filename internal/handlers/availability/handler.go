package availability

import (
	"net/http"

	"tablebook/infras/otel"
	"tablebook/internal/domains/booking/service"
	"tablebook/shared/constant"
	"tablebook/transport/http/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service service.Booking
	otel    otel.Otel
}

func New(service service.Booking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/availability", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetAvailableTables)
		routerGroup.Get("/slots", handler.GetSlots)
	})
}

// GetAvailableTables lists the free tables of a slot.
// @Summary Available tables
// @Description Tables of the floor with no booking at the given date and time slot, in ascending order.
// @Tags Availability
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param time_slot query string true "Time slot"
// @Success 200 {object} response.Data[dto.AvailabilityResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/availability [get]
func (handler *Handler) GetAvailableTables(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailableTables")
	defer scope.End()

	query := r.URL.Query()

	res, err := handler.service.AvailableTables(ctx, query.Get(constant.RequestParamDate), query.Get(constant.RequestParamTimeSlot))
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetSlots describes the floor.
// @Summary Bookable slots
// @Tags Availability
// @Produce json
// @Success 200 {object} response.Data[dto.SlotsResponse]
// @Router /v1/availability/slots [get]
func (handler *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	response.WithJSON(w, http.StatusOK, handler.service.Slots(r.Context()))
}
