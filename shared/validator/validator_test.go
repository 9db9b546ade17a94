package validator_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"tablebook/config"
	"tablebook/shared/failure"
	"tablebook/shared/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seats int

func (s seats) Validate(_ *config.Config) error {
	if s < 1 || s > 4 {
		return fmt.Errorf("seats must be between 1 and 4")
	}

	return nil
}

type request struct {
	Name  string `json:"name"  validate:"required,alphanum,min=3"`
	Date  string `json:"date"  validate:"required,datetime=2006-01-02"`
	Seats seats  `json:"seats" validate:"tablebook"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		data    request
		wantErr string
	}{
		{
			name: "valid",
			data: request{Name: "alice", Date: "2025-06-01", Seats: 2},
		},
		{
			name:    "missing name uses json field name",
			data:    request{Date: "2025-06-01", Seats: 2},
			wantErr: "name is required",
		},
		{
			name:    "bad date layout",
			data:    request{Name: "alice", Date: "01/06/2025", Seats: 2},
			wantErr: "date must match the layout 2006-01-02",
		},
		{
			name:    "custom rule message",
			data:    request{Name: "alice", Date: "2025-06-01", Seats: 9},
			wantErr: "seats must be between 1 and 4",
		},
		{
			name:    "min length",
			data:    request{Name: "al", Date: "2025-06-01", Seats: 1},
			wantErr: "name must be at least 3 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.data)
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		})
	}
}

func TestValidate(t *testing.T) {
	var req request

	err := validator.Validate(strings.NewReader(`{"name":"bob42","date":"2025-06-01","seats":1}`), &req)
	require.NoError(t, err)
	assert.Equal(t, "bob42", req.Name)

	err = validator.Validate(strings.NewReader(`{"name":`), &req)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	assert.Contains(t, err.Error(), "failed to decode request body")
}

type floorTable int

func (f floorTable) Validate(cfg *config.Config) error {
	if int(f) > cfg.Booking.Tables() {
		return fmt.Errorf("table must be at most %d", cfg.Booking.Tables())
	}

	return nil
}

type tableRequest struct {
	Table floorTable `json:"table" validate:"tablebook"`
}

func TestValidateStructWith(t *testing.T) {
	small := &config.Config{}
	small.Booking.TableCount = 4

	large := &config.Config{}
	large.Booking.TableCount = 40

	req := tableRequest{Table: 12}

	err := validator.ValidateStructWith(small, &req)
	require.Error(t, err)
	assert.Equal(t, "table must be at most 4", err.Error())

	assert.NoError(t, validator.ValidateStructWith(large, &req))
}
