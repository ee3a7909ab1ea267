package conditions

import (
	"strings"
	"time"

	"github.com/timgluz/chstides/iwls"
)

// SteadyThreshold is the smallest change in metres between the two latest
// observations that counts as rising or falling.
const SteadyThreshold = 0.005

type Trend string

const (
	Rising  Trend = "rising"
	Falling Trend = "falling"
	Steady  Trend = "steady"
)

// ParseTrend reads a service-provided status in either language.
func ParseTrend(s string) (Trend, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rising", "montante", "montant", "flood", "flot":
		return Rising, true
	case "falling", "descendante", "descendant", "baissante", "ebb", "jusant":
		return Falling, true
	case "steady", "stable", "étale", "etale", "slack":
		return Steady, true
	default:
		return "", false
	}
}

func (t Trend) Label(language iwls.Language) string {
	switch t {
	case Rising:
		return language.Pick("rising", "montante")
	case Falling:
		return language.Pick("falling", "descendante")
	default:
		return language.Pick("steady", "étale")
	}
}

// DeriveTrend compares two consecutive levels given in metres.
func DeriveTrend(previous, latest float64) Trend {
	delta := latest - previous
	switch {
	case delta >= SteadyThreshold:
		return Rising
	case delta <= -SteadyThreshold:
		return Falling
	default:
		return Steady
	}
}

type EventKind string

const (
	High EventKind = "high"
	Low  EventKind = "low"
)

func ParseEventKind(s string) (EventKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "h", "hw", "pleine mer", "pm":
		return High, true
	case "low", "l", "lw", "basse mer", "bm":
		return Low, true
	default:
		return "", false
	}
}

func (k EventKind) Label(language iwls.Language) string {
	if k == High {
		return language.Pick("high tide", "pleine mer")
	}
	return language.Pick("low tide", "basse mer")
}

// Event is a predicted high or low water.
type Event struct {
	EventDate time.Time `json:"eventDate"`
	Value     float64   `json:"value"`
	Event     EventKind `json:"event"`
	Label     string    `json:"label"`
}

// Snapshot is the latest observation of a station plus the high/low events
// around it, ordered by ascending EventDate.
type Snapshot struct {
	StationID   string    `json:"stationId"`
	Value       float64   `json:"value"`
	EventDate   time.Time `json:"eventDate"`
	Status      Trend     `json:"status"`
	StatusLabel string    `json:"statusLabel"`
	Unit        string    `json:"unit"`
	HiLo        []Event   `json:"hilo"`
	RetrievedAt time.Time `json:"retrievedAt"`
}

// NextEvent returns the first event strictly after t.
func (s *Snapshot) NextEvent(t time.Time) (Event, bool) {
	for _, event := range s.HiLo {
		if event.EventDate.After(t) {
			return event, true
		}
	}
	return Event{}, false
}
