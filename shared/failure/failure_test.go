package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"tablebook/shared/failure"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{name: "bad request", err: failure.BadRequest(errors.New("phone is required")), code: http.StatusBadRequest, message: "phone is required"},
		{name: "bad request from string", err: failure.BadRequestFromString("date is required"), code: http.StatusBadRequest, message: "date is required"},
		{name: "unauthorized", err: failure.Unauthorized("token expired"), code: http.StatusUnauthorized, message: "token expired"},
		{name: "forbidden", err: failure.Forbidden("nope"), code: http.StatusForbidden, message: "nope"},
		{name: "not found", err: failure.NotFound("Booking not found"), code: http.StatusNotFound, message: "Booking not found"},
		{
			name:    "conflict",
			err:     failure.Conflict("Table 3 is already booked at 18:00 on 2025-06-01."),
			code:    http.StatusConflict,
			message: "Table 3 is already booked at 18:00 on 2025-06-01.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, failure.GetCode(tt.err))
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}

func TestNilErrors(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
}

func TestGetCode(t *testing.T) {
	wrapped := fmt.Errorf("failed to create booking: %w", failure.Conflict("taken"))

	assert.Equal(t, http.StatusConflict, failure.GetCode(wrapped))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(errors.New("plain")))
	assert.Equal(t, http.StatusTooManyRequests, failure.GetCode(failure.TooManyRequestsError))
}
