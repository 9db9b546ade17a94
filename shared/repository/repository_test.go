package repository

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"tablebook/shared/dto"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

type audit struct {
	CreatedAt time.Time `db:"created_at"`
	CreatedBy string    `db:"created_by"`
}

type row struct {
	ID     string `db:"id"`
	Name   string `db:"name"`
	Label  string `db:"label"  column:"title"`
	Skip   string
	Hidden string `db:"-"`
	audit
}

func TestGetColumns(t *testing.T) {
	columns, insert := getColumns("rows", reflect.TypeOf(row{}))

	assert.Equal(t, []string{"id", "name", "label", "created_at", "created_by"}, insert)
	assert.Len(t, columns, 5)
	assert.Equal(t, column{name: "title", table: "rows", alias: "label"}, columns[2])
}

func TestRepository_getSelectQuery(t *testing.T) {
	repo := NewRepository[row]("row", "rows", "id", nil, nil)

	tests := []struct {
		name    string
		columns []string
		want    string
	}{
		{
			name: "all columns",
			want: "rows.id, rows.name, rows.title AS label, rows.created_at, rows.created_by",
		},
		{
			name:    "projection",
			columns: []string{"name"},
			want:    "rows.name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repo.getSelectQuery(tt.columns...))
		})
	}
}

func TestRepository_BuildWhereClause(t *testing.T) {
	repo := NewRepository[row]("row", "rows", "id", nil, nil)

	where, args := repo.BuildWhereClause(dto.FilterGroup{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = repo.BuildWhereClause(dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: "name", Operator: dto.FilterOperatorEq, Value: "a", Table: "rows"},
			dto.Filter{Field: "id", Operator: dto.FilterOperatorNotEq, Value: "x", Table: "rows"},
		},
	})

	assert.Equal(t, " WHERE (rows.name = :name AND rows.id != :id) ", where)
	assert.Equal(t, map[string]any{"name": "a", "id": "x"}, args)
}

func TestRepository_hasColumn(t *testing.T) {
	repo := NewRepository[row]("row", "rows", "id", nil, nil)

	assert.True(t, repo.hasColumn("created_at"))
	assert.False(t, repo.hasColumn("created_at; DROP TABLE rows"))
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "unique violation", err: &pq.Error{Code: "23505"}, want: true},
		{name: "wrapped unique violation", err: fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), want: true},
		{name: "foreign key violation", err: &pq.Error{Code: "23503"}},
		{name: "plain error", err: errors.New("boom")},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}
