package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/timgluz/chstides/station"
)

func newStationCmd(a *app) *cobra.Command {
	var sel selector
	var code string

	cmd := &cobra.Command{
		Use:   "station",
		Short: "Show the metadata of a station",
		Example: `  chstides station --code 00490
  chstides station --lat 44.67 --lon -63.60 --unit imperial --language fr`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.clientConfig(cmd, &sel, code)
			if err != nil {
				return err
			}

			client, err := newClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			resolved, err := client.Station()
			if err != nil {
				return err
			}

			if a.output == outputText {
				return printStationText(cmd, resolved)
			}
			return printJSON(cmd.OutOrStdout(), resolved)
		},
	}

	cmd.Flags().StringVarP(&code, "code", "c", "", "public station code, e.g. 00490")
	sel.register(cmd.Flags())
	return cmd
}

func printStationText(cmd *cobra.Command, s *station.Station) error {
	out := cmd.OutOrStdout()

	details := [][]string{
		{"id", s.ID},
		{"code", s.Code},
		{"position", s.Coordinates().String()},
		{"type", s.Type},
		{"operating", fmt.Sprint(s.Operating)},
		{"tidal", fmt.Sprint(s.IsTidal)},
		{"time zone", s.TimeZoneCode},
		{"tide table", s.TideTable},
		{"time series", strings.Join(s.TimeSeries, ", ")},
	}
	if err := printTable(out, s.OfficialName, []string{"field", "value"}, details); err != nil {
		return err
	}

	heights := make([][]string, 0, len(s.Heights))
	for _, h := range s.Heights {
		heights = append(heights, []string{h.Code, h.Name, formatLevel(h.Value, s.Measurement)})
	}
	if err := printTable(out, "Heights", []string{"code", "name", "value"}, heights); err != nil {
		return err
	}

	datums := make([][]string, 0, len(s.Datums))
	for _, d := range s.Datums {
		datums = append(datums, []string{d.Code, formatLevel(d.Offset, s.Measurement)})
	}
	return printTable(out, "Datums", []string{"code", "offset"}, datums)
}
