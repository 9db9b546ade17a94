package availability_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tablebook/infras/otel/mocks"
	"tablebook/internal/domains/booking/model/dto"
	serviceMocks "tablebook/internal/domains/booking/service/mocks"
	"tablebook/internal/handlers/availability"
	"tablebook/shared/failure"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newRouter(t *testing.T) (*serviceMocks.MockBooking, http.Handler) {
	t.Helper()

	service := serviceMocks.NewMockBooking(gomock.NewController(t))
	handler := availability.New(service, mocks.NewOtel())

	router := chi.NewRouter()
	router.Route("/v1", handler.Router)

	return service, router
}

func TestHandler_GetAvailableTables(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		setupMock  func(service *serviceMocks.MockBooking)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "free tables of a slot",
			target: "/v1/availability?date=2025-06-01&time_slot=18:00",
			setupMock: func(service *serviceMocks.MockBooking) {
				service.EXPECT().AvailableTables(gomock.Any(), "2025-06-01", "18:00").Return(dto.AvailabilityResponse{
					Date:            "2025-06-01",
					TimeSlot:        "18:00",
					AvailableTables: []int{1, 2, 4},
					BookedTables:    []int{3},
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"data":{"date":"2025-06-01","time_slot":"18:00","available_tables":[1,2,4],"booked_tables":[3]}}`,
		},
		{
			name:   "missing slot",
			target: "/v1/availability?date=2025-06-01",
			setupMock: func(service *serviceMocks.MockBooking) {
				service.EXPECT().AvailableTables(gomock.Any(), "2025-06-01", "").
					Return(dto.AvailabilityResponse{}, failure.BadRequestFromString("date and time_slot are required"))
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"date and time_slot are required"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, router := newRouter(t)
			tt.setupMock(service)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.JSONEq(t, tt.wantBody, recorder.Body.String())
		})
	}
}

func TestHandler_GetSlots(t *testing.T) {
	service, router := newRouter(t)

	service.EXPECT().Slots(gomock.Any()).Return(dto.SlotsResponse{TimeSlots: []string{"18:00", "20:00"}, TableCount: 10})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/availability/slots", nil))

	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data dto.SlotsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	assert.Equal(t, []string{"18:00", "20:00"}, body.Data.TimeSlots)
	assert.Equal(t, 10, body.Data.TableCount)
}
