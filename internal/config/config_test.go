package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"flight-price-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "DB_PATH", "DATABASE_URL", "LOG_LEVEL", "SCHEDULE_AT", "SWEEP_PACING",
		"AMADEUS_CLIENT_ID", "AMADEUS_CLIENT_SECRET", "AMADEUS_BASE_URL",
		"SEND_EMAIL", "SENDER_EMAIL", "SENDER_EMAIL_PASSWORD", "RECIPIENT_EMAIL",
		"SMTP_HOST", "SMTP_PORT", "PDF_ENABLED", "SEARCH_CONFIG",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "search.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "data/flight_data.db", cfg.DBPath)
	assert.Equal(t, time.Second, cfg.Pacing)
	assert.Equal(t, 30*time.Second, cfg.Amadeus.Timeout)
	assert.Equal(t, 587, cfg.Email.SMTPPort)
	assert.False(t, cfg.Email.Enabled)
	assert.Equal(t, []string{"SHA", "NKG"}, cfg.Search.Origins)
	trip, err := cfg.Search.Trip()
	require.NoError(t, err)
	assert.True(t, trip.DepartureDate.After(time.Now()))
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "abc")
	t.Setenv("SWEEP_PACING", "soon")
	t.Setenv("SCHEDULE_AT", "25:99")

	_, err := Load()
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "SWEEP_PACING")
	assert.Contains(t, err.Error(), "SCHEDULE_AT")
}

func TestLoad_PacingBelowMinimum(t *testing.T) {
	for _, v := range []string{"0s", "500ms", "-1s"} {
		t.Run(v, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("SWEEP_PACING", v)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "SWEEP_PACING")
		})
	}
}

func TestLoad_PacingAtMinimum(t *testing.T) {
	clearEnv(t)
	t.Setenv("SWEEP_PACING", "1s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, MinPacing, cfg.Pacing)
}

func TestLoad_SearchConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEND_EMAIL", "TRUE")
	t.Setenv("SEARCH_CONFIG", writeFile(t, `
origins: [PVG]
destinations: [LHR, CDG]
trip_type: one_way
departure_date: "2026-03-01"
cabin_class: E
currency: EUR
`))

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Email.Enabled)

	m, err := cfg.Search.Matrix()
	require.NoError(t, err)
	assert.Equal(t, 2, m.Size())

	trip, err := cfg.Search.Trip()
	require.NoError(t, err)
	assert.False(t, trip.RoundTrip())
	assert.Equal(t, domain.CabinEconomy, trip.Cabin)
	assert.Equal(t, 1, trip.Adults)
	assert.Equal(t, 1, trip.MaxOffers)
}

func TestLoadSearchConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"empty origins": `
origins: []
destinations: [DXB]
departure_date: "2026-03-01"
return_date: "2026-03-05"
cabin_class: B
currency: CNY
`,
		"round trip without return": `
origins: [SHA]
destinations: [DXB]
trip_type: round_trip
departure_date: "2026-03-01"
cabin_class: B
currency: CNY
`,
		"unknown cabin": `
origins: [SHA]
destinations: [DXB]
trip_type: one_way
departure_date: "2026-03-01"
cabin_class: Z
currency: CNY
`,
		"bad date": `
origins: [SHA]
destinations: [DXB]
trip_type: one_way
departure_date: "01/03/2026"
cabin_class: B
currency: CNY
`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadSearchConfig(writeFile(t, content))
			var cfgErr *ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestDefaultSearchConfigIsValid(t *testing.T) {
	today := time.Date(2026, 10, 19, 15, 4, 0, 0, time.Local)
	cfg := DefaultSearchConfig(today)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "2026-11-18", cfg.DepartureDate)
	assert.Equal(t, "2026-11-23", cfg.ReturnDate)

	trip, err := cfg.Trip()
	require.NoError(t, err)
	assert.True(t, trip.RoundTrip())
	assert.Equal(t, domain.CabinBusiness, trip.Cabin)
}

func TestDefaultSearchConfigMovesWithToday(t *testing.T) {
	a := DefaultSearchConfig(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	b := DefaultSearchConfig(time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "2026-01-31", a.DepartureDate)
	assert.Equal(t, "2027-01-30", b.DepartureDate)
	assert.Equal(t, "2027-02-04", b.ReturnDate)
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 30, m)

	_, _, err = ParseClock("9am")
	assert.Error(t, err)
}
