// Command floor prints the floor plan of one date.
//
//	floor -date 2024-07-01
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"tablebook/config"
	"tablebook/infras/otel"
	"tablebook/infras/postgres"
	"tablebook/internal/domains/booking/model/dto"
	"tablebook/internal/domains/booking/repository"
	"tablebook/internal/floorplan"
	gDto "tablebook/shared/dto"
	"tablebook/shared/logger"
	"tablebook/shared/timezone"

	"github.com/gookit/color"
	"github.com/rs/zerolog/log"
)

const queryTimeout = 30 * time.Second

func main() {
	date := flag.String("date", "", "date to print, YYYY-MM-DD (default today)")
	plain := flag.Bool("plain", false, "disable colors")
	flag.Parse()

	cfg := config.Get()

	logger.InitLogger()
	logger.Configure(cfg)

	if err := run(cfg, *date, !*plain); err != nil {
		log.Fatal().Err(err).Msg("Failed to print floor plan")
	}
}

func run(cfg *config.Config, date string, colored bool) error {
	date, err := resolveDate(date)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	db := postgres.New(cfg)
	defer db.Close()

	repo := repository.New(db, otel.New(cfg))

	bookings, err := repo.GetAll(ctx, gDto.QueryParams{}, dto.BookingFilter{Date: date}.ToFilterGroup())
	if err != nil {
		return fmt.Errorf("failed to load bookings of %s: %w", date, err)
	}

	plan := floorplan.Build(date, cfg.Booking.TimeSlots, cfg.Booking.Tables(), bookings)

	color.Bold.Printf("Floor plan for %s\n", plan.Date)
	plan.Render(os.Stdout, colored)

	return nil
}

// resolveDate defaults to today and rejects anything but YYYY-MM-DD.
func resolveDate(raw string) (string, error) {
	if raw == "" {
		return timezone.Today(), nil
	}

	if _, err := time.Parse(time.DateOnly, raw); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", raw, err)
	}

	return raw, nil
}
