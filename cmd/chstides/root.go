package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/timgluz/chstides/conditions"
	"github.com/timgluz/chstides/iwls"
	"github.com/timgluz/chstides/settings"
	"github.com/timgluz/chstides/station"
	"github.com/timgluz/chstides/tides"
)

// app carries what every subcommand shares once flags are parsed.
type app struct {
	v       *viper.Viper
	cfgFile string
	envFile string
	output  string
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: settings.New()}
	a.v.SetDefault(settings.KeyLogLevel, "warn")

	rootCmd := &cobra.Command{
		Use:   "chstides",
		Short: "Tide stations and water levels from the Canadian Hydrographic Service",
		Long: `Looks up CHS tide stations by code, id or coordinates and reports their
reference heights, the latest observed water level with its trend and the
predicted high and low tides around now.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.chstides.yaml)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file with CHSTIDES_ variables")
	flags.StringVarP(&a.output, "output", "o", outputJSON, "output format (json, text)")
	flags.String("base-url", iwls.DefaultBaseURL, "IWLS API base URL")
	flags.StringP("language", "l", iwls.English.String(), "language of names and labels (en, fr)")
	flags.StringP("unit", "u", "metric", "measurement unit (metric, imperial)")
	flags.Duration("timeout", iwls.DefaultTimeout, "HTTP request timeout")
	flags.String("hilo-window", conditions.DefaultHiLoWindow, "ISO 8601 duration before and after now for high/low tides")
	flags.String("observation-window", conditions.DefaultObservationWindow, "ISO 8601 duration of observations to consider")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")

	bindFlags(a.v, flags, map[string]string{
		settings.KeyBaseURL:           "base-url",
		settings.KeyLanguage:          "language",
		settings.KeyUnit:              "unit",
		settings.KeyTimeout:           "timeout",
		settings.KeyHiLoWindow:        "hilo-window",
		settings.KeyObservationWindow: "observation-window",
		settings.KeyLogLevel:          "log-level",
	})

	rootCmd.AddCommand(
		newStationCmd(a),
		newConditionsCmd(a),
		newInvokeCmd(a),
		newOperationsCmd(a),
	)
	return rootCmd
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		cobra.CheckErr(v.BindPFlag(key, flags.Lookup(name)))
	}
}

// initConfig reads the .env file, the config file and the environment.
func (a *app) initConfig(cmd *cobra.Command) error {
	if err := settings.LoadEnvFile(a.envFile); err != nil {
		return err
	}

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home)
		}
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".chstides")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	logger, err := settings.NewLogger(cmd.ErrOrStderr(), a.v.GetString(settings.KeyLogLevel))
	if err != nil {
		return err
	}
	a.logger = logger
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("Using config file", "path", used)
	}

	if a.output != outputJSON && a.output != outputText {
		return fmt.Errorf("unknown output format %q", a.output)
	}
	return nil
}

// selector holds the station selection flags of one command.
type selector struct {
	id        string
	latitude  float64
	longitude float64
}

func (s *selector) register(flags *pflag.FlagSet) {
	flags.StringVar(&s.id, "id", "", "internal IWLS station id")
	flags.Float64Var(&s.latitude, "lat", 0, "latitude of the place to find the nearest station for")
	flags.Float64Var(&s.longitude, "lon", 0, "longitude of the place to find the nearest station for")
}

// apply overrides the selectors from config with the ones given on the
// command line. code is passed separately so commands can take several.
func (s *selector) apply(cmd *cobra.Command, cfg tides.Config, code string) (tides.Config, error) {
	flags := cmd.Flags()
	hasLatitude, hasLongitude := flags.Changed("lat"), flags.Changed("lon")
	if hasLatitude != hasLongitude {
		return cfg, fmt.Errorf("%w: --lat and --lon must be given together", tides.ErrConfig)
	}

	if code == "" && s.id == "" && !hasLatitude {
		return cfg, nil
	}

	cfg.Code, cfg.ID, cfg.Coordinates = code, s.id, nil
	if hasLatitude {
		cfg.Coordinates = &station.Coordinates{Latitude: s.latitude, Longitude: s.longitude}
	}
	return cfg, nil
}

// clientConfig reads the shared settings and applies the command's selectors.
func (a *app) clientConfig(cmd *cobra.Command, sel *selector, code string) (tides.Config, error) {
	cfg, err := settings.ClientConfig(a.v, a.logger)
	if err != nil {
		return cfg, err
	}
	return sel.apply(cmd, cfg, code)
}

// newClient builds a client from cfg and binds it to its station.
func newClient(ctx context.Context, cfg tides.Config) (*tides.Client, error) {
	client, err := tides.New(cfg)
	if err != nil {
		return nil, err
	}

	if err := client.Initialize(ctx); err != nil {
		return nil, err
	}
	return client, nil
}
