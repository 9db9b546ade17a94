// Package event consumes the booking events published after every write.
package event

import (
	"context"
	"encoding/json"
	"fmt"

	"tablebook/infras/otel"
	"tablebook/internal/domains/booking/model/dto"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var ErrUnknownEvent = errors.New("unknown booking event")

type Handler struct {
	Otel otel.Otel
}

func New(otel otel.Otel) Handler {
	return Handler{Otel: otel}
}

// Handle decodes one event body and writes it to the audit log. Malformed
// bodies and unknown event types are returned as errors so the broker does
// not acknowledge them.
func (handler Handler) Handle(ctx context.Context, body []byte) (err error) {
	_, scope := handler.Otel.NewScope(ctx, "event", "event.handler.Handle")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	var event dto.BookingEvent
	if err = json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decoding booking event: %w", err)
	}

	switch event.Type {
	case dto.EventCreated, dto.EventUpdated, dto.EventDeleted:
	default:
		return errors.Wrapf(ErrUnknownEvent, "type %q", event.Type)
	}

	scope.SetAttributes(map[string]any{
		"event.type": event.Type,
		"booking.id": event.BookingID,
	})

	log.Info().
		Str("type", event.Type).
		Str("booking_id", event.BookingID).
		Str("date", event.Date).
		Str("time_slot", event.TimeSlot).
		Int("table_number", event.TableNumber).
		Str("owner_id", event.OwnerID).
		Str("actor", event.Actor).
		Time("occurred_at", event.OccurredAt).
		Msg("booking event")

	return nil
}
