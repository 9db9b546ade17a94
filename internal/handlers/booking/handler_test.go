package booking_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tablebook/config"
	"tablebook/infras/jwt"
	jwtMocks "tablebook/infras/jwt/mocks"
	"tablebook/infras/otel/mocks"
	"tablebook/internal/domains/booking/model/dto"
	serviceMocks "tablebook/internal/domains/booking/service/mocks"
	"tablebook/internal/handlers/booking"
	"tablebook/permissions"
	"tablebook/shared/constant"
	gDto "tablebook/shared/dto"
	"tablebook/shared/failure"
	"tablebook/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const apiKey = "internal-key"

type notRevoked struct{}

func (notRevoked) IsRevoked(context.Context, string) bool { return false }

type fixture struct {
	service *serviceMocks.MockBooking
	router  http.Handler
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	service := serviceMocks.NewMockBooking(ctrl)
	jwtService := jwtMocks.NewMockJWT(ctrl)

	jwtService.EXPECT().ValidateToken(gomock.Any(), jwt.AccessToken).DoAndReturn(
		func(token string, _ jwt.TokenType) (*jwt.Claims, error) {
			switch token {
			case "admin-token":
				return &jwt.Claims{UserID: "admin-1", Username: "admin", Role: constant.RoleAdmin, TokenID: "t1"}, nil
			case "user-token":
				return &jwt.Claims{UserID: "user-1", Username: "alice", Role: constant.RoleUser, TokenID: "t2"}, nil
			default:
				return nil, jwt.ErrInvalidToken
			}
		},
	).AnyTimes()

	cfg := &config.Config{}
	cfg.App.APIKey = apiKey

	otel := mocks.NewOtel()
	auth := middleware.NewAuthRoleMiddleware(jwtService, notRevoked{}, otel, permissions.Get(), cfg)
	handler := booking.New(service, auth, otel)

	router := chi.NewRouter()
	router.Use(auth.APIKey)
	router.Route("/v1", handler.Router)

	return fixture{service: service, router: router}
}

func (f fixture) do(method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, target, nil)
	} else {
		request = httptest.NewRequest(method, target, strings.NewReader(body))
	}

	for key, value := range headers {
		request.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, request)

	return recorder
}

func bearer(token string) map[string]string {
	return map[string]string{constant.RequestHeaderAuthorization: "Bearer " + token}
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	body := map[string]any{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	return body
}

func sample() dto.BookingResponse {
	return dto.BookingResponse{
		ID:          "b1",
		Date:        "2025-06-01",
		TimeSlot:    "18:00",
		TableNumber: 3,
		Phone:       "555-0101",
		OwnerID:     "user-1",
	}
}

const createBody = `{"date":"2025-06-01","time_slot":"18:00","table_number":3,"phone":"555-0101"}`

func createRequest() dto.CreateBookingRequest {
	return dto.CreateBookingRequest{Date: "2025-06-01", TimeSlot: "18:00", TableNumber: 3, Phone: "555-0101"}
}

func TestHandler_CreateBooking(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		headers    map[string]string
		setupMock  func(f fixture)
		wantStatus int
		wantError  string
	}{
		{
			name:    "session booking",
			body:    createBody,
			headers: bearer("user-token"),
			setupMock: func(f fixture) {
				f.service.EXPECT().Create(gomock.Any(), createRequest()).DoAndReturn(
					func(ctx context.Context, _ dto.CreateBookingRequest) (dto.BookingResponse, error) {
						assert.Equal(t, "user-1", ctx.Value(constant.ContextKeyUserID))

						return sample(), nil
					},
				)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "anonymous booking",
			body: createBody,
			setupMock: func(f fixture) {
				f.service.EXPECT().Create(gomock.Any(), createRequest()).DoAndReturn(
					func(ctx context.Context, _ dto.CreateBookingRequest) (dto.BookingResponse, error) {
						assert.Nil(t, ctx.Value(constant.ContextKeyUserID))

						return sample(), nil
					},
				)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "table out of range",
			body:       `{"date":"2025-06-01","time_slot":"18:00","table_number":11,"phone":"555-0101"}`,
			setupMock:  func(fixture) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "table_number must be between 1 and 10",
		},
		{
			name:       "missing phone",
			body:       `{"date":"2025-06-01","time_slot":"18:00","table_number":2}`,
			setupMock:  func(fixture) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "phone is required",
		},
		{
			name:       "malformed json",
			body:       `{"date":`,
			setupMock:  func(fixture) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid token is rejected",
			body:       createBody,
			headers:    bearer("forged"),
			setupMock:  func(fixture) {},
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid token",
		},
		{
			name: "table taken",
			body: createBody,
			setupMock: func(f fixture) {
				f.service.EXPECT().Create(gomock.Any(), createRequest()).
					Return(dto.BookingResponse{}, failure.Conflict("Table 3 is already booked at 18:00 on 2025-06-01."))
			},
			wantStatus: http.StatusConflict,
			wantError:  "Table 3 is already booked at 18:00 on 2025-06-01.",
		},
		{
			name: "store failure is masked",
			body: createBody,
			setupMock: func(f fixture) {
				f.service.EXPECT().Create(gomock.Any(), createRequest()).
					Return(dto.BookingResponse{}, errors.New("connection reset"))
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			recorder := f.do(http.MethodPost, "/v1/bookings", tt.body, tt.headers)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			body := decode(t, recorder)

			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, true, body["success"])
				assert.Equal(t, booking.MessageCreated, body["message"])
				assert.Equal(t, "b1", body["booking"].(map[string]any)["id"])

				return
			}

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
			} else {
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

func TestHandler_GetBookings(t *testing.T) {
	list := dto.GetBookingsResponse{Bookings: []dto.BookingResponse{sample()}, TotalData: 1, TotalPage: 1}

	tests := []struct {
		name       string
		target     string
		headers    map[string]string
		setupMock  func(f fixture)
		wantStatus int
	}{
		{
			name:       "no token",
			target:     "/v1/bookings",
			setupMock:  func(fixture) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "user role is forbidden",
			target:     "/v1/bookings",
			headers:    bearer("user-token"),
			setupMock:  func(fixture) {},
			wantStatus: http.StatusForbidden,
		},
		{
			name:    "admin lists with filter",
			target:  "/v1/bookings?date=2025-06-01&table_number=3",
			headers: bearer("admin-token"),
			setupMock: func(f fixture) {
				f.service.EXPECT().GetAll(gomock.Any(), gomock.Any(), dto.BookingFilter{Date: "2025-06-01", TableNumber: 3}).Return(list, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:    "internal caller",
			target:  "/v1/bookings",
			headers: map[string]string{constant.RequestHeaderAPIKey: apiKey},
			setupMock: func(f fixture) {
				f.service.EXPECT().GetAll(gomock.Any(), gomock.Any(), dto.BookingFilter{}).Return(list, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong api key",
			target:     "/v1/bookings",
			headers:    map[string]string{constant.RequestHeaderAPIKey: "guess"},
			setupMock:  func(fixture) {},
			wantStatus: http.StatusForbidden,
		},
		{
			name:    "admin lists a date range of some tables",
			target:  "/v1/bookings?from=2025-06-01&to=2025-06-07&tables=2,%205",
			headers: bearer("admin-token"),
			setupMock: func(f fixture) {
				f.service.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), dto.BookingFilter{DateFrom: "2025-06-01", DateTo: "2025-06-07", Tables: []int{2, 5}}).
					Return(list, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "tables filter is not a list of numbers",
			target:     "/v1/bookings?tables=2,x",
			headers:    bearer("admin-token"),
			setupMock:  func(fixture) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "range bound is not a date",
			target:     "/v1/bookings?from=yesterday",
			headers:    bearer("admin-token"),
			setupMock:  func(fixture) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "table filter is not a number",
			target:     "/v1/bookings?table_number=three",
			headers:    bearer("admin-token"),
			setupMock:  func(fixture) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			recorder := f.do(http.MethodGet, tt.target, "", tt.headers)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantStatus == http.StatusOK {
				data := decode(t, recorder)["data"].(map[string]any)
				assert.Len(t, data["bookings"], 1)
			}
		})
	}
}

func TestHandler_GetMyBookings(t *testing.T) {
	f := newFixture(t)

	f.service.EXPECT().GetMine(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ gDto.QueryParams) (dto.GetBookingsResponse, error) {
			assert.Equal(t, "user-1", ctx.Value(constant.ContextKeyUserID))

			return dto.GetBookingsResponse{Bookings: []dto.BookingResponse{sample()}, TotalData: 1, TotalPage: 1}, nil
		},
	)

	recorder := f.do(http.MethodGet, "/v1/bookings/mine", "", bearer("user-token"))
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = f.do(http.MethodGet, "/v1/bookings/mine", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestHandler_GetBookingByID(t *testing.T) {
	f := newFixture(t)

	f.service.EXPECT().Get(gomock.Any(), "b1").Return(sample(), nil)
	f.service.EXPECT().Get(gomock.Any(), "missing").Return(dto.BookingResponse{}, failure.NotFound("Booking not found"))

	recorder := f.do(http.MethodGet, "/v1/bookings/b1", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decode(t, recorder)
	assert.Equal(t, "b1", body["id"])
	assert.NotContains(t, body, "data")

	recorder = f.do(http.MethodGet, "/v1/bookings/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "Booking not found", decode(t, recorder)["error"])
}

func TestHandler_UpdateBooking(t *testing.T) {
	f := newFixture(t)

	req := dto.UpdateBookingRequest{Date: "2025-06-02", TimeSlot: "20:00", TableNumber: 4, Phone: "555-0102"}
	updated := sample()
	updated.Date, updated.TimeSlot, updated.TableNumber = "2025-06-02", "20:00", 4

	f.service.EXPECT().Update(gomock.Any(), "b1", req).Return(updated, nil)

	recorder := f.do(http.MethodPut, "/v1/bookings/b1",
		`{"date":"2025-06-02","time_slot":"20:00","table_number":4,"phone":"555-0102"}`, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decode(t, recorder)
	assert.Equal(t, booking.MessageUpdated, body["message"])
	assert.InDelta(t, 4, body["booking"].(map[string]any)["table_number"], 0)

	recorder = f.do(http.MethodPut, "/v1/bookings/b1", `{"date":"06/02/2025","time_slot":"20:00","table_number":4,"phone":"1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandler_DeleteBooking(t *testing.T) {
	f := newFixture(t)

	f.service.EXPECT().Delete(gomock.Any(), "b1").Return(nil)
	f.service.EXPECT().Delete(gomock.Any(), "gone").Return(failure.NotFound("Booking not found"))

	recorder := f.do(http.MethodDelete, "/v1/bookings/b1", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decode(t, recorder)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Booking with ID b1 deleted successfully", body["message"])

	recorder = f.do(http.MethodDelete, "/v1/bookings/gone", "", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
