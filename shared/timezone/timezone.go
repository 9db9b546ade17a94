// Package timezone pins every timestamp the service produces to APP_TIMEZONE
// (an IANA name such as "Europe/Rome"). It falls back to UTC when the value is
// missing or unknown.
package timezone

import (
	"time"

	"tablebook/config"
	"tablebook/shared/constant"

	"github.com/rs/zerolog/log"
)

var appLocation = time.UTC

func init() {
	name := config.Get().App.Timezone
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC")

		return
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("failed to load timezone, falling back to UTC")

		return
	}

	appLocation = loc
}

func Now() time.Time {
	return time.Now().In(appLocation)
}

// Today returns the current date in the booking date layout.
func Today() string {
	return Now().Format(constant.BookingLayout)
}

func ToAppTime(t time.Time) time.Time {
	return t.In(appLocation)
}

func GetLocation() *time.Location {
	return appLocation
}

// Parse parses value in the application timezone.
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, appLocation) //nolint:wrapcheck
}

func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}
