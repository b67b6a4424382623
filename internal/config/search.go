package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"flight-price-service/internal/domain"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	TripRoundTrip = "round_trip"
	TripOneWay    = "one_way"
)

// Default trip window, counted from the day the config is loaded.
const (
	DefaultDepartureLeadDays = 30
	DefaultStayDays          = 5
)

// SearchConfig is the YAML description of the route matrix and trip.
type SearchConfig struct {
	Origins       []string `yaml:"origins" validate:"required,min=1,dive,len=3,alpha"`
	Destinations  []string `yaml:"destinations" validate:"required,min=1,dive,len=3,alpha"`
	TripType      string   `yaml:"trip_type" validate:"required,oneof=round_trip one_way"`
	DepartureDate string   `yaml:"departure_date" validate:"required,datetime=2006-01-02"`
	ReturnDate    string   `yaml:"return_date" validate:"omitempty,datetime=2006-01-02"`
	CabinClass    string   `yaml:"cabin_class" validate:"required"`
	Currency      string   `yaml:"currency" validate:"required,len=3,alpha"`
	Adults        int      `yaml:"adults" validate:"min=1,max=9"`
	MaxOffers     int      `yaml:"max_offers" validate:"min=1,max=250"`
	NonStop       bool     `yaml:"non_stop"`
}

// DefaultSearchConfig is used when no SEARCH_CONFIG file is configured.
// Its dates are relative to today so the default never searches the past.
func DefaultSearchConfig(today time.Time) SearchConfig {
	dep := time.Date(today.Year(), today.Month(), today.Day()+DefaultDepartureLeadDays, 0, 0, 0, 0, time.UTC)
	ret := dep.AddDate(0, 0, DefaultStayDays)

	return SearchConfig{
		Origins:       []string{"SHA", "NKG"},
		Destinations:  []string{"DXB", "YVR"},
		TripType:      TripRoundTrip,
		DepartureDate: dep.Format(domain.DateLayout),
		ReturnDate:    ret.Format(domain.DateLayout),
		CabinClass:    "B",
		Currency:      "CNY",
		Adults:        1,
		MaxOffers:     1,
		NonStop:       false,
	}
}

// LoadSearchConfig reads and validates a YAML search file.
// Unset numeric fields take the defaults.
func LoadSearchConfig(path string) (*SearchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read search config %s: %w", path, err)
	}

	cfg := SearchConfig{Adults: 1, MaxOffers: 1, TripType: TripRoundTrip}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse search config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s SearchConfig) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return &ConfigError{Field: "search", Message: strings.Join(msgs, "; ")}
		}
		return err
	}

	if s.TripType == TripRoundTrip && s.ReturnDate == "" {
		return &ConfigError{Field: "search.return_date", Message: "required for round_trip"}
	}
	if _, err := domain.ParseCabinClass(s.CabinClass); err != nil {
		return &ConfigError{Field: "search.cabin_class", Message: err.Error()}
	}
	if _, err := s.Trip(); err != nil {
		return &ConfigError{Field: "search", Message: err.Error()}
	}
	return nil
}

func (s SearchConfig) Matrix() (domain.RouteMatrix, error) {
	return domain.NewRouteMatrix(s.Origins, s.Destinations)
}

// Trip converts the config into the immutable trip spec for a sweep.
// The return date is ignored for one-way trips.
func (s SearchConfig) Trip() (domain.TripSpec, error) {
	dep, err := time.Parse(domain.DateLayout, s.DepartureDate)
	if err != nil {
		return domain.TripSpec{}, fmt.Errorf("departure_date: %w", err)
	}

	cabin, err := domain.ParseCabinClass(s.CabinClass)
	if err != nil {
		return domain.TripSpec{}, err
	}

	trip := domain.TripSpec{
		DepartureDate: dep,
		Cabin:         cabin,
		Currency:      strings.ToUpper(s.Currency),
		Adults:        s.Adults,
		MaxOffers:     s.MaxOffers,
		NonStop:       s.NonStop,
	}

	if s.TripType == TripRoundTrip && s.ReturnDate != "" {
		ret, err := time.Parse(domain.DateLayout, s.ReturnDate)
		if err != nil {
			return domain.TripSpec{}, fmt.Errorf("return_date: %w", err)
		}
		trip.ReturnDate = &ret
	}

	if err := trip.Validate(); err != nil {
		return domain.TripSpec{}, err
	}
	return trip, nil
}
