package postgres

//nolint:revive
import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"tablebook/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	postgresMaxIdleConnection = 10
	postgresMaxOpenConnection = 10
	postgresConnMaxLifetime   = 30 * time.Minute
)

// Connection keeps the read replica and the primary apart. Writes and the
// unique index that guards bookings live on Write.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

// Endpoint is one side of the connection pair.
type Endpoint struct {
	Name     string
	Username string
	Password string
	Host     string
	Port     string
	Database string
	SSLMode  string
}

func (e Endpoint) DSN() string {
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(e.Username, e.Password),
		Host:   net.JoinHostPort(e.Host, e.Port),
		Path:   e.Database,
	}

	if e.SSLMode != "" {
		dsn.RawQuery = url.Values{"sslmode": {e.SSLMode}}.Encode()
	}

	return dsn.String()
}

func New(cfg *config.Config) *Connection {
	pg := cfg.DB.Postgres

	return &Connection{
		Read:  Connect(ReadEndpoint(cfg), pg.MaxRetry, pg.RetryWaitTime),
		Write: Connect(WriteEndpoint(cfg), pg.MaxRetry, pg.RetryWaitTime),
	}
}

func ReadEndpoint(cfg *config.Config) Endpoint {
	read := cfg.DB.Postgres.Read

	return Endpoint{
		Name:     "read",
		Username: read.Username,
		Password: read.Password,
		Host:     read.Host,
		Port:     read.Port,
		Database: cfg.DB.Postgres.Prefix + read.Name,
		SSLMode:  read.SSLMode,
	}
}

func WriteEndpoint(cfg *config.Config) Endpoint {
	write := cfg.DB.Postgres.Write

	return Endpoint{
		Name:     "write",
		Username: write.Username,
		Password: write.Password,
		Host:     write.Host,
		Port:     write.Port,
		Database: cfg.DB.Postgres.Prefix + write.Name,
		SSLMode:  write.SSLMode,
	}
}

// Connect retries up to maxRetry times, sleeping waitTime seconds between
// attempts, and returns nil when every attempt failed.
func Connect(endpoint Endpoint, maxRetry, waitTime int) *sqlx.DB {
	for attempt := range max(maxRetry, 1) {
		db, err := sqlx.Connect("postgres", endpoint.DSN())
		if err == nil {
			log.Info().
				Str("name", endpoint.Name).
				Str("host", endpoint.Host).
				Str("dbName", endpoint.Database).
				Msg("Connected to database")

			db.SetMaxIdleConns(postgresMaxIdleConnection)
			db.SetMaxOpenConns(postgresMaxOpenConnection)
			db.SetConnMaxLifetime(postgresConnMaxLifetime)

			return db
		}

		log.Error().
			Err(err).
			Str("name", endpoint.Name).
			Str("host", endpoint.Host).
			Str("dbName", endpoint.Database).
			Int("attempt", attempt+1).
			Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(waitTime) * time.Second)
	}

	return nil
}

func (c *Connection) Close() error {
	var errs []error

	for _, db := range []*sqlx.DB{c.Read, c.Write} {
		if db == nil {
			continue
		}

		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to close postgres: %w", err)
	}

	return nil
}
