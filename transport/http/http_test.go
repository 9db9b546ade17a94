package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tablebook/config"
	jwtMocks "tablebook/infras/jwt/mocks"
	"tablebook/infras/otel/mocks"
	authServiceMocks "tablebook/internal/domains/auth/service/mocks"
	bookingServiceMocks "tablebook/internal/domains/booking/service/mocks"
	"tablebook/internal/handlers/auth"
	"tablebook/internal/handlers/availability"
	"tablebook/internal/handlers/booking"
	"tablebook/permissions"
	"tablebook/transport/http/middleware"
	"tablebook/transport/http/router"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newServer(t *testing.T) *HTTP {
	t.Helper()

	ctrl := gomock.NewController(t)
	otel := mocks.NewOtel()
	authService := authServiceMocks.NewMockAuth(ctrl)
	bookingService := bookingServiceMocks.NewMockBooking(ctrl)

	cfg := &config.Config{}
	cfg.App.Name = "tablebook"

	authRole := middleware.NewAuthRoleMiddleware(jwtMocks.NewMockJWT(ctrl), authService, otel, permissions.Get(), cfg)

	routes := router.New(router.DomainHandlers{
		Auth:         auth.New(authService, authRole, otel),
		Availability: availability.New(bookingService, otel),
		Booking:      booking.New(bookingService, authRole, otel),
	})

	return New(cfg, routes, middleware.NewAppMiddleware(otel, cfg, nil), authRole, nil)
}

func TestHTTP_Health(t *testing.T) {
	server := newServer(t)

	tests := []struct {
		name       string
		state      ServerState
		wantStatus int
		wantBody   string
	}{
		{name: "ready", state: ServerStateReady, wantStatus: http.StatusOK, wantBody: `{"message":"OK"}`},
		{name: "grace period", state: ServerStateInGracePeriod, wantStatus: http.StatusServiceUnavailable, wantBody: `{"message":"SERVER PREPARING TO SHUT DOWN"}`},
		{name: "cleanup period", state: ServerStateInCleanupPeriod, wantStatus: http.StatusServiceUnavailable, wantBody: `{"message":"SERVER UNHEALTHY"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server.setup()
			server.setState(tt.state)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.JSONEq(t, tt.wantBody, recorder.Body.String())
		})
	}
}

func TestHTTP_Fallbacks(t *testing.T) {
	server := newServer(t)

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v2/anything", nil))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, recorder.Body.String())

	recorder = httptest.NewRecorder()
	server.ServeHTTP(recorder, httptest.NewRequest(http.MethodPatch, "/v1/availability/slots", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, recorder.Body.String())
}

func TestCleanups_Run(t *testing.T) {
	var order []string

	cleanups := Cleanups{
		{Name: "broker", Fn: func(context.Context) error {
			order = append(order, "broker")

			return errors.New("already closed")
		}},
		{Name: "postgres", Fn: func(context.Context) error {
			order = append(order, "postgres")

			return nil
		}},
	}

	cleanups.Run(context.Background())

	assert.Equal(t, []string{"broker", "postgres"}, order)
}
