package postgres_test

import (
	"testing"

	"tablebook/config"
	"tablebook/infras/postgres"

	"github.com/stretchr/testify/assert"
)

func TestEndpoint_DSN(t *testing.T) {
	tests := []struct {
		name     string
		endpoint postgres.Endpoint
		want     string
	}{
		{
			name:     "with ssl mode",
			endpoint: postgres.Endpoint{Username: "book", Password: "p@ss", Host: "db", Port: "5432", Database: "tablebook", SSLMode: "disable"},
			want:     "postgres://book:p%40ss@db:5432/tablebook?sslmode=disable",
		},
		{
			name:     "without ssl mode",
			endpoint: postgres.Endpoint{Username: "book", Password: "x", Host: "db", Port: "5432", Database: "tablebook"},
			want:     "postgres://book:x@db:5432/tablebook",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.endpoint.DSN())
		})
	}
}

func TestEndpoints_UsePrefix(t *testing.T) {
	cfg := &config.Config{}
	cfg.DB.Postgres.Prefix = "test_"
	cfg.DB.Postgres.Read.Name = "tablebook"
	cfg.DB.Postgres.Write.Name = "tablebook"

	assert.Equal(t, "test_tablebook", postgres.ReadEndpoint(cfg).Database)
	assert.Equal(t, "write", postgres.WriteEndpoint(cfg).Name)
}

func TestConnection_CloseEmpty(t *testing.T) {
	assert.NoError(t, (&postgres.Connection{}).Close())
}
