package shared_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tablebook/shared"
	"tablebook/shared/cache/mocks"
	"tablebook/shared/constant"
	"tablebook/shared/dto"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name  string
		total int
		limit int
		want  int
	}{
		{name: "no data", total: 0, limit: 10, want: 1},
		{name: "exact", total: 20, limit: 10, want: 2},
		{name: "remainder", total: 21, limit: 10, want: 3},
		{name: "invalid limit", total: 5, limit: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shared.CalculateTotalPage(tt.total, tt.limit))
		})
	}
}

type bookingChange struct {
	Date        string `db:"booking_date"`
	TableNumber int    `db:"table_number"`
	Phone       string `db:"phone"  update:"always"`
	Note        string
}

func TestTransformFields(t *testing.T) {
	got := shared.TransformFields(bookingChange{Date: "2025-06-01", Note: "ignored"}, "alice")

	assert.Equal(t, "2025-06-01", got["booking_date"])
	assert.NotContains(t, got, "table_number")
	assert.Contains(t, got, "phone")
	assert.Equal(t, "", got["phone"])
	assert.NotContains(t, got, "Note")
	assert.Equal(t, "alice", got[constant.FieldModifiedBy])
	assert.Contains(t, got, constant.FieldModifiedAt)
}

func TestFilterByID(t *testing.T) {
	where, args := shared.FilterByID("abc", "id", "bookings").GetWhereClause()

	assert.Equal(t, "(bookings.id = :id)", where)
	assert.Equal(t, map[string]any{"id": "abc"}, args)
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "booking", shared.BuildCacheKey("booking"))
	assert.Equal(t, "booking:mine:u1", shared.BuildCacheKey("booking", "mine", "u1"))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10}
	slot := dto.And(dto.Eq("bookings", "time_slot", "18:00"))
	other := dto.And(dto.Eq("bookings", "time_slot", "20:00"))

	key := shared.BuildCacheKeyWithQuery("booking:list", params, slot)

	assert.True(t, strings.HasPrefix(key, "booking:list:"))
	assert.Equal(t, key, shared.BuildCacheKeyWithQuery("booking:list", params, slot))
	assert.NotEqual(t, key, shared.BuildCacheKeyWithQuery("booking:list", params, other))
	assert.NotEqual(t, key, shared.BuildCacheKeyWithQuery("booking:list", dto.QueryParams{Page: 2, Limit: 10}, slot))
}

func TestInvalidateCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	redisCache := mocks.NewMockRedisCache(ctrl)

	redisCache.EXPECT().Clear(gomock.Any(), "booking:*").Return(nil)
	shared.InvalidateCaches(context.Background(), redisCache, "booking")

	redisCache.EXPECT().Clear(gomock.Any(), "booking:*").Return(errors.New("redis down"))
	shared.InvalidateCaches(context.Background(), redisCache, "booking")
}
