package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyMatrix = errors.New("route matrix: origins and destinations must be non-empty")

// Represents a single ordered (origin, destination) airport-code combination.
type RoutePair struct {
	Origin      string
	Destination string
}

// SameAirport reports whether the pair is degenerate and must not be quoted.
func (p RoutePair) SameAirport() bool {
	return p.Origin == p.Destination
}

// Label is the human-readable form shown in progress updates.
func (p RoutePair) Label() string {
	return fmt.Sprintf("%s → %s", p.Origin, p.Destination)
}

// Ordered list of origin codes crossed with an ordered list of destination codes.
// The order of both lists is preserved in sweep processing and in reports.
type RouteMatrix struct {
	Origins      []string
	Destinations []string
}

func NewRouteMatrix(origins, destinations []string) (RouteMatrix, error) {
	m := RouteMatrix{
		Origins:      normalizeCodes(origins),
		Destinations: normalizeCodes(destinations),
	}
	if err := m.Validate(); err != nil {
		return RouteMatrix{}, err
	}
	return m, nil
}

func (m RouteMatrix) Validate() error {
	if len(m.Origins) == 0 || len(m.Destinations) == 0 {
		return ErrEmptyMatrix
	}
	for _, code := range append(append([]string{}, m.Origins...), m.Destinations...) {
		if strings.TrimSpace(code) == "" {
			return fmt.Errorf("route matrix: airport code must be non-empty")
		}
	}
	return nil
}

// Size returns the number of ordered pairs in the matrix.
func (m RouteMatrix) Size() int {
	return len(m.Origins) * len(m.Destinations)
}

// Pairs lists every ordered pair, origins in the outer loop and destinations
// in the inner loop.
func (m RouteMatrix) Pairs() []RoutePair {
	pairs := make([]RoutePair, 0, m.Size())
	for _, o := range m.Origins {
		for _, d := range m.Destinations {
			pairs = append(pairs, RoutePair{Origin: o, Destination: d})
		}
	}
	return pairs
}

func normalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		out = append(out, strings.ToUpper(strings.TrimSpace(c)))
	}
	return out
}
