package measurement

import (
	"fmt"
	"strings"
)

// FeetPerMeter is the length conversion factor applied to every magnitude
// returned by the water level service.
const FeetPerMeter = 3.28084

type Unit string

const (
	Metric   Unit = "metric"
	Imperial Unit = "imperial"
)

const (
	SymbolMeter = "m"
	SymbolFoot  = "ft"
)

var ErrUnknownUnit = fmt.Errorf("unknown measurement unit")

// ParseUnit accepts the unit name ("metric", "imperial") or its symbol ("m", "ft").
// An empty string selects Metric.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "metric", SymbolMeter, "meter", "meters", "metre", "metres":
		return Metric, nil
	case "imperial", SymbolFoot, "foot", "feet":
		return Imperial, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
}

func (u Unit) IsValid() bool {
	return u == Metric || u == Imperial
}

// Symbol returns the short form used by the service for a declared unit.
func (u Unit) Symbol() string {
	if u == Imperial {
		return SymbolFoot
	}
	return SymbolMeter
}

func (u Unit) String() string {
	return string(u)
}

// Convert converts a length between units. Converting to the same unit is a no-op.
func Convert(value float64, from, to Unit) float64 {
	if from == to {
		return value
	}

	if to == Imperial {
		return value * FeetPerMeter
	}

	return value / FeetPerMeter
}
