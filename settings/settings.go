// Package settings turns environment variables, .env files and config files
// into a tides.Config for the command line tools.
package settings

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/timgluz/chstides/conditions"
	"github.com/timgluz/chstides/iwls"
	"github.com/timgluz/chstides/measurement"
	"github.com/timgluz/chstides/station"
	"github.com/timgluz/chstides/tides"
)

const EnvPrefix = "CHSTIDES"

const (
	KeyBaseURL           = "base_url"
	KeyLanguage          = "language"
	KeyUnit              = "unit"
	KeyTimeout           = "timeout"
	KeyHiLoWindow        = "hilo_window"
	KeyObservationWindow = "observation_window"
	KeyLogLevel          = "log_level"

	KeyCode      = "code"
	KeyStationID = "station_id"
	KeyLatitude  = "latitude"
	KeyLongitude = "longitude"

	KeyListenAddr = "listen_addr"
	KeyAPITokens  = "api_tokens"
)

const DefaultListenAddr = ":8080"

// LoadEnvFile loads variables from path into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Configure applies the CHSTIDES_ environment binding and the defaults to v.
func Configure(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyBaseURL, iwls.DefaultBaseURL)
	v.SetDefault(KeyLanguage, iwls.English.String())
	v.SetDefault(KeyUnit, measurement.Metric.String())
	v.SetDefault(KeyTimeout, iwls.DefaultTimeout)
	v.SetDefault(KeyHiLoWindow, conditions.DefaultHiLoWindow)
	v.SetDefault(KeyObservationWindow, conditions.DefaultObservationWindow)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyListenAddr, DefaultListenAddr)
}

// New returns a viper instance configured by Configure.
func New() *viper.Viper {
	v := viper.New()
	Configure(v)
	return v
}

// ClientConfig reads the client options and station selectors from v.
// Selectors that are not set stay empty; tides.New reports a missing one.
func ClientConfig(v *viper.Viper, logger *slog.Logger) (tides.Config, error) {
	language, err := iwls.ParseLanguage(v.GetString(KeyLanguage))
	if err != nil {
		return tides.Config{}, fmt.Errorf("%w: %w", tides.ErrConfig, err)
	}

	unit, err := measurement.ParseUnit(v.GetString(KeyUnit))
	if err != nil {
		return tides.Config{}, fmt.Errorf("%w: %w", tides.ErrConfig, err)
	}

	cfg := tides.Config{
		Code:              strings.TrimSpace(v.GetString(KeyCode)),
		ID:                strings.TrimSpace(v.GetString(KeyStationID)),
		Language:          language,
		Unit:              unit,
		BaseURL:           v.GetString(KeyBaseURL),
		Timeout:           v.GetDuration(KeyTimeout),
		Logger:            logger,
		ObservationWindow: v.GetString(KeyObservationWindow),
		HiLoWindow:        v.GetString(KeyHiLoWindow),
	}

	hasLatitude, hasLongitude := v.IsSet(KeyLatitude), v.IsSet(KeyLongitude)
	if hasLatitude != hasLongitude {
		return tides.Config{}, fmt.Errorf("%w: latitude and longitude must be set together", tides.ErrConfig)
	}
	if hasLatitude {
		cfg.Coordinates = &station.Coordinates{
			Latitude:  v.GetFloat64(KeyLatitude),
			Longitude: v.GetFloat64(KeyLongitude),
		}
	}

	return cfg, nil
}

// APITokens returns the comma separated bearer tokens accepted by the server.
func APITokens(v *viper.Viper) []string {
	var tokens []string
	for _, token := range strings.Split(v.GetString(KeyAPITokens), ",") {
		if token = strings.TrimSpace(token); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// NewLogger builds the text logger used by the binaries.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
